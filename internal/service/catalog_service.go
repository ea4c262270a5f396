package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spec-kit/library-service/internal/domain"
	"github.com/spec-kit/library-service/internal/repository"
	apperrors "github.com/spec-kit/library-service/pkg/util/errorutil"
)

// CatalogService manages books and the authors, publishers and categories
// they reference.
type CatalogService struct {
	authors    repository.AuthorRepository
	publishers repository.PublisherRepository
	categories repository.CategoryRepository
	books      repository.BookRepository
}

// CatalogDependencies encapsulates repositories required for catalog management.
type CatalogDependencies struct {
	AuthorRepo    repository.AuthorRepository
	PublisherRepo repository.PublisherRepository
	CategoryRepo  repository.CategoryRepository
	BookRepo      repository.BookRepository
}

// NewCatalogService constructs the service.
func NewCatalogService(deps CatalogDependencies) *CatalogService {
	return &CatalogService{
		authors:    deps.AuthorRepo,
		publishers: deps.PublisherRepo,
		categories: deps.CategoryRepo,
		books:      deps.BookRepo,
	}
}

func catalogError(resource string, err error, details map[string]any) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(resource, details)
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.NewConflict(resource+" already exists", details)
	case errors.Is(err, repository.ErrInUse):
		return apperrors.NewConflict(resource+" is still referenced by books", details)
	default:
		return apperrors.NewInternalError(err)
	}
}

func requireName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.NewValidationError("name is required", map[string]any{"field": "name"})
	}
	return nil
}

func optionalName(name *string) error {
	if name != nil {
		return requireName(*name)
	}
	return nil
}

// Authors

func (s *CatalogService) CreateAuthor(ctx context.Context, author *domain.Author) (*domain.Author, error) {
	if err := requireName(author.Name); err != nil {
		return nil, err
	}
	if err := s.authors.Create(ctx, author); err != nil {
		return nil, catalogError("author", err, map[string]any{"name": author.Name})
	}
	return author, nil
}

func (s *CatalogService) ListAuthors(ctx context.Context, nameContains string) ([]domain.Author, error) {
	authors, err := s.authors.List(ctx, nameContains)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return authors, nil
}

func (s *CatalogService) GetAuthorByID(ctx context.Context, id string) (*domain.Author, error) {
	author, err := s.authors.GetByID(ctx, id)
	if err != nil {
		return nil, catalogError("author", err, map[string]any{"id": id})
	}
	return author, nil
}

func (s *CatalogService) GetAuthorByName(ctx context.Context, name string) (*domain.Author, error) {
	author, err := s.authors.GetByName(ctx, name)
	if err != nil {
		return nil, catalogError("author", err, map[string]any{"name": name})
	}
	return author, nil
}

func (s *CatalogService) UpdateAuthorByID(ctx context.Context, id string, update domain.AuthorUpdate) (*domain.Author, error) {
	if update.Name == nil && update.Biography == nil {
		return nil, apperrors.NewValidationError("no fields to update", nil)
	}
	if err := optionalName(update.Name); err != nil {
		return nil, err
	}
	author, err := s.authors.Update(ctx, id, update)
	if err != nil {
		return nil, catalogError("author", err, map[string]any{"id": id})
	}
	return author, nil
}

func (s *CatalogService) UpdateAuthorByName(ctx context.Context, name string, update domain.AuthorUpdate) (*domain.Author, error) {
	existing, err := s.GetAuthorByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.UpdateAuthorByID(ctx, existing.ID, update)
}

func (s *CatalogService) DeleteAuthorByID(ctx context.Context, id string) error {
	if err := s.authors.DeleteByID(ctx, id); err != nil {
		return catalogError("author", err, map[string]any{"id": id})
	}
	return nil
}

func (s *CatalogService) DeleteAuthorByName(ctx context.Context, name string) error {
	if err := s.authors.DeleteByName(ctx, name); err != nil {
		return catalogError("author", err, map[string]any{"name": name})
	}
	return nil
}

func (s *CatalogService) DeleteAllAuthors(ctx context.Context) (int64, error) {
	n, err := s.authors.DeleteAll(ctx)
	if err != nil {
		return 0, catalogError("author", err, nil)
	}
	return n, nil
}

// Publishers

func (s *CatalogService) CreatePublisher(ctx context.Context, publisher *domain.Publisher) (*domain.Publisher, error) {
	if err := requireName(publisher.Name); err != nil {
		return nil, err
	}
	if err := s.publishers.Create(ctx, publisher); err != nil {
		return nil, catalogError("publisher", err, map[string]any{"name": publisher.Name})
	}
	return publisher, nil
}

func (s *CatalogService) ListPublishers(ctx context.Context, nameContains string) ([]domain.Publisher, error) {
	publishers, err := s.publishers.List(ctx, nameContains)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return publishers, nil
}

func (s *CatalogService) GetPublisherByID(ctx context.Context, id string) (*domain.Publisher, error) {
	publisher, err := s.publishers.GetByID(ctx, id)
	if err != nil {
		return nil, catalogError("publisher", err, map[string]any{"id": id})
	}
	return publisher, nil
}

func (s *CatalogService) GetPublisherByName(ctx context.Context, name string) (*domain.Publisher, error) {
	publisher, err := s.publishers.GetByName(ctx, name)
	if err != nil {
		return nil, catalogError("publisher", err, map[string]any{"name": name})
	}
	return publisher, nil
}

func (s *CatalogService) UpdatePublisherByID(ctx context.Context, id string, update domain.PublisherUpdate) (*domain.Publisher, error) {
	if update.Name == nil && update.Address == nil && update.ContactInfo == nil {
		return nil, apperrors.NewValidationError("no fields to update", nil)
	}
	if err := optionalName(update.Name); err != nil {
		return nil, err
	}
	publisher, err := s.publishers.Update(ctx, id, update)
	if err != nil {
		return nil, catalogError("publisher", err, map[string]any{"id": id})
	}
	return publisher, nil
}

func (s *CatalogService) UpdatePublisherByName(ctx context.Context, name string, update domain.PublisherUpdate) (*domain.Publisher, error) {
	existing, err := s.GetPublisherByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.UpdatePublisherByID(ctx, existing.ID, update)
}

func (s *CatalogService) DeletePublisherByID(ctx context.Context, id string) error {
	if err := s.publishers.DeleteByID(ctx, id); err != nil {
		return catalogError("publisher", err, map[string]any{"id": id})
	}
	return nil
}

func (s *CatalogService) DeletePublisherByName(ctx context.Context, name string) error {
	if err := s.publishers.DeleteByName(ctx, name); err != nil {
		return catalogError("publisher", err, map[string]any{"name": name})
	}
	return nil
}

func (s *CatalogService) DeleteAllPublishers(ctx context.Context) (int64, error) {
	n, err := s.publishers.DeleteAll(ctx)
	if err != nil {
		return 0, catalogError("publisher", err, nil)
	}
	return n, nil
}

// Categories

func (s *CatalogService) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if err := requireName(category.Name); err != nil {
		return nil, err
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, catalogError("category", err, map[string]any{"name": category.Name})
	}
	return category, nil
}

func (s *CatalogService) ListCategories(ctx context.Context, nameContains string) ([]domain.Category, error) {
	categories, err := s.categories.List(ctx, nameContains)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return categories, nil
}

func (s *CatalogService) GetCategoryByName(ctx context.Context, name string) (*domain.Category, error) {
	category, err := s.categories.GetByName(ctx, name)
	if err != nil {
		return nil, catalogError("category", err, map[string]any{"name": name})
	}
	return category, nil
}

func (s *CatalogService) UpdateCategoryByName(ctx context.Context, name string, update domain.CategoryUpdate) (*domain.Category, error) {
	if update.Name == nil && update.Description == nil {
		return nil, apperrors.NewValidationError("no fields to update", nil)
	}
	if err := optionalName(update.Name); err != nil {
		return nil, err
	}
	category, err := s.categories.UpdateByName(ctx, name, update)
	if err != nil {
		return nil, catalogError("category", err, map[string]any{"name": name})
	}
	return category, nil
}

func (s *CatalogService) DeleteCategoryByName(ctx context.Context, name string) error {
	if err := s.categories.DeleteByName(ctx, name); err != nil {
		return catalogError("category", err, map[string]any{"name": name})
	}
	return nil
}

func (s *CatalogService) DeleteAllCategories(ctx context.Context) (int64, error) {
	n, err := s.categories.DeleteAll(ctx)
	if err != nil {
		return 0, catalogError("category", err, nil)
	}
	return n, nil
}

// Books

// CreateBook validates the input and stores the book, creating any missing
// publisher, author or category by name.
func (s *CatalogService) CreateBook(ctx context.Context, input domain.BookInput) (*domain.Book, error) {
	var missing []string
	if strings.TrimSpace(input.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(input.ISBN) == "" {
		missing = append(missing, "isbn")
	}
	if strings.TrimSpace(input.PublisherName) == "" {
		missing = append(missing, "publisherName")
	}
	if input.PublicationYear == 0 {
		missing = append(missing, "publicationYear")
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("title, isbn, publisherName and publicationYear are required",
			map[string]any{"missing": missing})
	}
	if err := requireNames("authorNames", input.AuthorNames); err != nil {
		return nil, err
	}
	if err := requireNames("categoryNames", input.CategoryNames); err != nil {
		return nil, err
	}

	book, err := s.books.Create(ctx, input)
	if err != nil {
		return nil, catalogError("book", err, map[string]any{"isbn": input.ISBN})
	}
	return book, nil
}

func (s *CatalogService) ListBooks(ctx context.Context, filter domain.BookFilter) ([]domain.Book, error) {
	books, err := s.books.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return books, nil
}

func (s *CatalogService) ListBooksByTitle(ctx context.Context, title string) ([]domain.Book, error) {
	books, err := s.books.ListByTitle(ctx, title)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return books, nil
}

func (s *CatalogService) GetBookByID(ctx context.Context, id string) (*domain.Book, error) {
	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		return nil, catalogError("book", err, map[string]any{"id": id})
	}
	return book, nil
}

func (s *CatalogService) GetBookByISBN(ctx context.Context, isbn string) (*domain.Book, error) {
	book, err := s.books.GetByISBN(ctx, isbn)
	if err != nil {
		return nil, catalogError("book", err, map[string]any{"isbn": isbn})
	}
	return book, nil
}

func (s *CatalogService) UpdateBookByID(ctx context.Context, id string, update domain.BookUpdate) (*domain.Book, error) {
	if err := validateBookUpdate(update); err != nil {
		return nil, err
	}
	book, err := s.books.UpdateByID(ctx, id, update)
	if err != nil {
		return nil, catalogError("book", err, map[string]any{"id": id})
	}
	return book, nil
}

func (s *CatalogService) UpdateBookByISBN(ctx context.Context, isbn string, update domain.BookUpdate) (*domain.Book, error) {
	if err := validateBookUpdate(update); err != nil {
		return nil, err
	}
	book, err := s.books.UpdateByISBN(ctx, isbn, update)
	if err != nil {
		return nil, catalogError("book", err, map[string]any{"isbn": isbn})
	}
	return book, nil
}

func (s *CatalogService) DeleteBookByID(ctx context.Context, id string) error {
	if err := s.books.DeleteByID(ctx, id); err != nil {
		return catalogError("book", err, map[string]any{"id": id})
	}
	return nil
}

func (s *CatalogService) DeleteBookByISBN(ctx context.Context, isbn string) error {
	if err := s.books.DeleteByISBN(ctx, isbn); err != nil {
		return catalogError("book", err, map[string]any{"isbn": isbn})
	}
	return nil
}

func (s *CatalogService) DeleteAllBooks(ctx context.Context) (int64, error) {
	n, err := s.books.DeleteAll(ctx)
	if err != nil {
		return 0, catalogError("book", err, nil)
	}
	return n, nil
}

func requireNames(field string, names []string) error {
	if len(names) == 0 {
		return apperrors.NewValidationError(fmt.Sprintf("at least one entry in %s is required", field),
			map[string]any{"field": field})
	}
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			return apperrors.NewValidationError(fmt.Sprintf("%s must not contain empty names", field),
				map[string]any{"field": field})
		}
	}
	return nil
}

func validateBookUpdate(update domain.BookUpdate) error {
	if update.Empty() {
		return apperrors.NewValidationError("no fields to update", nil)
	}
	required := []struct {
		field string
		value *string
	}{
		{"title", update.Title},
		{"isbn", update.ISBN},
		{"publisherName", update.PublisherName},
	}
	for _, r := range required {
		if r.value != nil && strings.TrimSpace(*r.value) == "" {
			return apperrors.NewValidationError(r.field+" must not be empty", map[string]any{"field": r.field})
		}
	}
	if update.AuthorNames != nil {
		if err := requireNames("authorNames", update.AuthorNames); err != nil {
			return err
		}
	}
	if update.CategoryNames != nil {
		if err := requireNames("categoryNames", update.CategoryNames); err != nil {
			return err
		}
	}
	return nil
}
