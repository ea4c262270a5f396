package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/library-service/internal/api/dto"
	"github.com/spec-kit/library-service/internal/domain"
	"github.com/spec-kit/library-service/internal/service"
	apperrors "github.com/spec-kit/library-service/pkg/util/errorutil"
)

// PublishersHandler exposes publisher endpoints.
type PublishersHandler struct {
	catalog *service.CatalogService
}

// NewPublishersHandler constructs handler.
func NewPublishersHandler(catalog *service.CatalogService) *PublishersHandler {
	return &PublishersHandler{catalog: catalog}
}

// List handles GET /publishers.
func (h *PublishersHandler) List(c *fiber.Ctx) error {
	publishers, err := h.catalog.ListPublishers(c.UserContext(), c.Query("name"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": publishers})
}

// GetByID handles GET /publishers/id/:id.
func (h *PublishersHandler) GetByID(c *fiber.Ctx) error {
	publisher, err := h.catalog.GetPublisherByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": publisher})
}

// GetByName handles GET /publishers/by-name/:name.
func (h *PublishersHandler) GetByName(c *fiber.Ctx) error {
	name, err := pathParam(c, "name")
	if err != nil {
		return err
	}
	publisher, err := h.catalog.GetPublisherByName(c.UserContext(), name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": publisher})
}

// Create handles POST /publishers.
func (h *PublishersHandler) Create(c *fiber.Ctx) error {
	var req dto.PublisherRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	publisher, err := h.catalog.CreatePublisher(c.UserContext(), &domain.Publisher{Name: deref(req.Name), Address: req.Address, ContactInfo: req.ContactInfo})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": publisher})
}

// UpdateByID handles PUT /publishers/id/:id.
func (h *PublishersHandler) UpdateByID(c *fiber.Ctx) error {
	var req dto.PublisherRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	publisher, err := h.catalog.UpdatePublisherByID(c.UserContext(), c.Params("id"), domain.PublisherUpdate{Name: req.Name, Address: req.Address, ContactInfo: req.ContactInfo})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": publisher})
}

// UpdateByName handles PUT /publishers/by-name/:name.
func (h *PublishersHandler) UpdateByName(c *fiber.Ctx) error {
	name, err := pathParam(c, "name")
	if err != nil {
		return err
	}
	var req dto.PublisherRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	publisher, err := h.catalog.UpdatePublisherByName(c.UserContext(), name, domain.PublisherUpdate{Name: req.Name, Address: req.Address, ContactInfo: req.ContactInfo})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": publisher})
}

// DeleteByID handles DELETE /publishers/id/:id.
func (h *PublishersHandler) DeleteByID(c *fiber.Ctx) error {
	if err := h.catalog.DeletePublisherByID(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteByName handles DELETE /publishers/by-name/:name.
func (h *PublishersHandler) DeleteByName(c *fiber.Ctx) error {
	name, err := pathParam(c, "name")
	if err != nil {
		return err
	}
	if err := h.catalog.DeletePublisherByName(c.UserContext(), name); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteAll handles DELETE /publishers.
func (h *PublishersHandler) DeleteAll(c *fiber.Ctx) error {
	count, err := h.catalog.DeleteAllPublishers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.DeleteAllResponse{Message: "all publishers deleted", Count: count})
}
