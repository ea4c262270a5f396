package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/library-service/internal/api/dto"
	"github.com/spec-kit/library-service/internal/domain"
	"github.com/spec-kit/library-service/internal/service"
	apperrors "github.com/spec-kit/library-service/pkg/util/errorutil"
)

// BooksHandler exposes book endpoints.
type BooksHandler struct {
	catalog *service.CatalogService
}

// NewBooksHandler constructs handler.
func NewBooksHandler(catalog *service.CatalogService) *BooksHandler {
	return &BooksHandler{catalog: catalog}
}

// List handles GET /books.
func (h *BooksHandler) List(c *fiber.Ctx) error {
	books, err := h.catalog.ListBooks(c.UserContext(), domain.BookFilter{
		Title:         c.Query("title"),
		ISBN:          c.Query("isbn"),
		AuthorName:    c.Query("authorName"),
		CategoryName:  c.Query("categoryName"),
		PublisherName: c.Query("publisherName"),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": books})
}

// GetByID handles GET /books/id/:id.
func (h *BooksHandler) GetByID(c *fiber.Ctx) error {
	book, err := h.catalog.GetBookByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": book})
}

// GetByISBN handles GET /books/isbn/:isbn.
func (h *BooksHandler) GetByISBN(c *fiber.Ctx) error {
	isbn, err := pathParam(c, "isbn")
	if err != nil {
		return err
	}
	book, err := h.catalog.GetBookByISBN(c.UserContext(), isbn)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": book})
}

// ListByTitle handles GET /books/title/:title. Matches are exact.
func (h *BooksHandler) ListByTitle(c *fiber.Ctx) error {
	title, err := pathParam(c, "title")
	if err != nil {
		return err
	}
	books, err := h.catalog.ListBooksByTitle(c.UserContext(), title)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": books})
}

// Create handles POST /books.
func (h *BooksHandler) Create(c *fiber.Ctx) error {
	req, err := parseBookRequest(c)
	if err != nil {
		return err
	}
	input := domain.BookInput{
		Title:         deref(req.Title),
		ISBN:          deref(req.ISBN),
		CoverImage:    req.CoverImage,
		PublisherName: deref(req.PublisherName),
		AuthorNames:   req.AuthorNames,
		CategoryNames: req.CategoryNames,
	}
	if year := req.Year(); year != nil {
		input.PublicationYear = *year
	}

	book, err := h.catalog.CreateBook(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": book})
}

// UpdateByID handles PUT /books/id/:id.
func (h *BooksHandler) UpdateByID(c *fiber.Ctx) error {
	req, err := parseBookRequest(c)
	if err != nil {
		return err
	}
	book, err := h.catalog.UpdateBookByID(c.UserContext(), c.Params("id"), bookUpdate(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": book})
}

// UpdateByISBN handles PUT /books/isbn/:isbn.
func (h *BooksHandler) UpdateByISBN(c *fiber.Ctx) error {
	isbn, err := pathParam(c, "isbn")
	if err != nil {
		return err
	}
	req, err := parseBookRequest(c)
	if err != nil {
		return err
	}
	book, err := h.catalog.UpdateBookByISBN(c.UserContext(), isbn, bookUpdate(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": book})
}

// DeleteByID handles DELETE /books/id/:id.
func (h *BooksHandler) DeleteByID(c *fiber.Ctx) error {
	if err := h.catalog.DeleteBookByID(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteByISBN handles DELETE /books/isbn/:isbn.
func (h *BooksHandler) DeleteByISBN(c *fiber.Ctx) error {
	isbn, err := pathParam(c, "isbn")
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteBookByISBN(c.UserContext(), isbn); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteAll handles DELETE /books.
func (h *BooksHandler) DeleteAll(c *fiber.Ctx) error {
	count, err := h.catalog.DeleteAllBooks(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.DeleteAllResponse{Message: "all books deleted", Count: count})
}

func parseBookRequest(c *fiber.Ctx) (dto.BookRequest, error) {
	var req dto.BookRequest
	if err := c.BodyParser(&req); err != nil {
		return req, apperrors.NewValidationError("invalid payload", map[string]any{"reason": err.Error()})
	}
	return req, nil
}

func bookUpdate(req dto.BookRequest) domain.BookUpdate {
	return domain.BookUpdate{
		Title:           req.Title,
		ISBN:            req.ISBN,
		PublicationYear: req.Year(),
		CoverImage:      req.CoverImage,
		PublisherName:   req.PublisherName,
		AuthorNames:     req.AuthorNames,
		CategoryNames:   req.CategoryNames,
	}
}
