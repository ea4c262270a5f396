package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/library-service/internal/api/dto"
	"github.com/spec-kit/library-service/internal/domain"
	"github.com/spec-kit/library-service/internal/service"
	apperrors "github.com/spec-kit/library-service/pkg/util/errorutil"
)

// AuthorsHandler exposes author endpoints.
type AuthorsHandler struct {
	catalog *service.CatalogService
}

// NewAuthorsHandler constructs handler.
func NewAuthorsHandler(catalog *service.CatalogService) *AuthorsHandler {
	return &AuthorsHandler{catalog: catalog}
}

// List handles GET /authors.
func (h *AuthorsHandler) List(c *fiber.Ctx) error {
	authors, err := h.catalog.ListAuthors(c.UserContext(), c.Query("name"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": authors})
}

// GetByID handles GET /authors/id/:id.
func (h *AuthorsHandler) GetByID(c *fiber.Ctx) error {
	author, err := h.catalog.GetAuthorByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": author})
}

// GetByName handles GET /authors/by-name/:name.
func (h *AuthorsHandler) GetByName(c *fiber.Ctx) error {
	name, err := pathParam(c, "name")
	if err != nil {
		return err
	}
	author, err := h.catalog.GetAuthorByName(c.UserContext(), name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": author})
}

// Create handles POST /authors.
func (h *AuthorsHandler) Create(c *fiber.Ctx) error {
	var req dto.AuthorRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	author, err := h.catalog.CreateAuthor(c.UserContext(), &domain.Author{Name: deref(req.Name), Biography: req.Biography})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": author})
}

// UpdateByID handles PUT /authors/id/:id.
func (h *AuthorsHandler) UpdateByID(c *fiber.Ctx) error {
	var req dto.AuthorRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	author, err := h.catalog.UpdateAuthorByID(c.UserContext(), c.Params("id"), domain.AuthorUpdate{Name: req.Name, Biography: req.Biography})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": author})
}

// UpdateByName handles PUT /authors/by-name/:name.
func (h *AuthorsHandler) UpdateByName(c *fiber.Ctx) error {
	name, err := pathParam(c, "name")
	if err != nil {
		return err
	}
	var req dto.AuthorRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	author, err := h.catalog.UpdateAuthorByName(c.UserContext(), name, domain.AuthorUpdate{Name: req.Name, Biography: req.Biography})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": author})
}

// DeleteByID handles DELETE /authors/id/:id.
func (h *AuthorsHandler) DeleteByID(c *fiber.Ctx) error {
	if err := h.catalog.DeleteAuthorByID(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteByName handles DELETE /authors/by-name/:name.
func (h *AuthorsHandler) DeleteByName(c *fiber.Ctx) error {
	name, err := pathParam(c, "name")
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteAuthorByName(c.UserContext(), name); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteAll handles DELETE /authors.
func (h *AuthorsHandler) DeleteAll(c *fiber.Ctx) error {
	count, err := h.catalog.DeleteAllAuthors(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.DeleteAllResponse{Message: "all authors deleted", Count: count})
}
