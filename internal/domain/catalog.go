package domain

import "time"

// Author writes books.
type Author struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Biography *string   `json:"biography"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AuthorUpdate is a partial author update.
type AuthorUpdate struct {
	Name      *string
	Biography *string
}

// Publisher publishes books.
type Publisher struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Address     *string   `json:"address"`
	ContactInfo *string   `json:"contactInfo"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PublisherUpdate is a partial publisher update.
type PublisherUpdate struct {
	Name        *string
	Address     *string
	ContactInfo *string
}

// Category groups books by subject.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CategoryUpdate is a partial category update.
type CategoryUpdate struct {
	Name        *string
	Description *string
}

// Book is a catalog title. Related publisher, authors and categories are
// referenced by name on write and expanded on read.
type Book struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	ISBN            string     `json:"isbn"`
	PublicationYear int        `json:"publicationYear"`
	CoverImage      *string    `json:"coverImage"`
	Publisher       *Publisher `json:"publisher"`
	Authors         []Author   `json:"authors"`
	Categories      []Category `json:"categories"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// BookInput carries the fields needed to create a book.
type BookInput struct {
	Title           string
	ISBN            string
	PublicationYear int
	CoverImage      *string
	PublisherName   string
	AuthorNames     []string
	CategoryNames   []string
}

// BookUpdate is a partial book update. Non-nil name slices replace the
// existing relations.
type BookUpdate struct {
	Title           *string
	ISBN            *string
	PublicationYear *int
	CoverImage      *string
	PublisherName   *string
	AuthorNames     []string
	CategoryNames   []string
}

// Empty reports whether the update changes nothing.
func (u BookUpdate) Empty() bool {
	return u.Title == nil && u.ISBN == nil && u.PublicationYear == nil && u.CoverImage == nil &&
		u.PublisherName == nil && u.AuthorNames == nil && u.CategoryNames == nil
}

// BookFilter narrows book listings with case-insensitive substring matches.
type BookFilter struct {
	Title         string
	ISBN          string
	AuthorName    string
	CategoryName  string
	PublisherName string
}
