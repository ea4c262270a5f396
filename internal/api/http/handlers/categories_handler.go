package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/library-service/internal/api/dto"
	"github.com/spec-kit/library-service/internal/domain"
	"github.com/spec-kit/library-service/internal/service"
	apperrors "github.com/spec-kit/library-service/pkg/util/errorutil"
)

// CategoriesHandler exposes category endpoints. Categories are addressed by name.
type CategoriesHandler struct {
	catalog *service.CatalogService
}

// NewCategoriesHandler constructs handler.
func NewCategoriesHandler(catalog *service.CatalogService) *CategoriesHandler {
	return &CategoriesHandler{catalog: catalog}
}

// List handles GET /categories.
func (h *CategoriesHandler) List(c *fiber.Ctx) error {
	categories, err := h.catalog.ListCategories(c.UserContext(), c.Query("name"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": categories})
}

// GetByName handles GET /categories/by-name/:name.
func (h *CategoriesHandler) GetByName(c *fiber.Ctx) error {
	name, err := pathParam(c, "name")
	if err != nil {
		return err
	}
	category, err := h.catalog.GetCategoryByName(c.UserContext(), name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": category})
}

// Create handles POST /categories.
func (h *CategoriesHandler) Create(c *fiber.Ctx) error {
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	category, err := h.catalog.CreateCategory(c.UserContext(), &domain.Category{Name: deref(req.Name), Description: req.Description})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": category})
}

// UpdateByName handles PUT /categories/by-name/:name.
func (h *CategoriesHandler) UpdateByName(c *fiber.Ctx) error {
	name, err := pathParam(c, "name")
	if err != nil {
		return err
	}
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	category, err := h.catalog.UpdateCategoryByName(c.UserContext(), name, domain.CategoryUpdate{Name: req.Name, Description: req.Description})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": category})
}

// DeleteByName handles DELETE /categories/by-name/:name.
func (h *CategoriesHandler) DeleteByName(c *fiber.Ctx) error {
	name, err := pathParam(c, "name")
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteCategoryByName(c.UserContext(), name); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteAll handles DELETE /categories.
func (h *CategoriesHandler) DeleteAll(c *fiber.Ctx) error {
	count, err := h.catalog.DeleteAllCategories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.DeleteAllResponse{Message: "all categories deleted", Count: count})
}
