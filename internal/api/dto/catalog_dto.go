package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// AuthorRequest payload for create and update.
type AuthorRequest struct {
	Name      *string `json:"name"`
	Biography *string `json:"biography"`
}

// PublisherRequest payload for create and update.
type PublisherRequest struct {
	Name        *string `json:"name"`
	Address     *string `json:"address"`
	ContactInfo *string `json:"contactInfo"`
}

// CategoryRequest payload for create and update.
type CategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// BookRequest payload for create and update. publishYear is accepted as an
// alias of publicationYear.
type BookRequest struct {
	Title           *string  `json:"title"`
	ISBN            *string  `json:"isbn"`
	PublicationYear *Year    `json:"publicationYear"`
	PublishYear     *Year    `json:"publishYear"`
	CoverImage      *string  `json:"coverImage"`
	PublisherName   *string  `json:"publisherName"`
	AuthorNames     []string `json:"authorNames"`
	CategoryNames   []string `json:"categoryNames"`
}

// Year returns the publication year from either field.
func (r BookRequest) Year() *int {
	for _, y := range []*Year{r.PublicationYear, r.PublishYear} {
		if y != nil {
			v := int(*y)
			return &v
		}
	}
	return nil
}

// Year is an integer that also decodes from a numeric JSON string.
type Year int

// UnmarshalJSON implements json.Unmarshaler.
func (y *Year) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("invalid year %q", s)
		}
		*y = Year(n)
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid year %s", data)
	}
	*y = Year(n)
	return nil
}
