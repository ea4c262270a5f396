package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/library-service/internal/api/dto"
	"github.com/spec-kit/library-service/internal/auth"
	"github.com/spec-kit/library-service/internal/domain"
	"github.com/spec-kit/library-service/internal/service"
	apperrors "github.com/spec-kit/library-service/pkg/util/errorutil"
)

// LibrariansHandler exposes librarian management endpoints.
type LibrariansHandler struct {
	librarians *service.LibrarianService
}

// NewLibrariansHandler constructs handler.
func NewLibrariansHandler(librarians *service.LibrarianService) *LibrariansHandler {
	return &LibrariansHandler{librarians: librarians}
}

// Create handles POST /librarians. It runs behind the bootstrap guard, which
// either authenticated an administrator or flagged the request as bootstrap.
func (h *LibrariansHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateLibrarianRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	identity, _ := auth.IdentityFromContext(c)
	librarian, err := h.librarians.Create(c.UserContext(), identity, auth.IsBootstrap(c), service.CreateLibrarianInput{
		Name:       req.Name,
		Email:      req.Email,
		EmployeeID: req.EmployeeID,
		Password:   req.Password,
		Role:       req.Role,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": librarianResponse(librarian)})
}

// List handles GET /librarians.
func (h *LibrariansHandler) List(c *fiber.Ctx) error {
	librarians, err := h.librarians.List(c.UserContext(), c.Query("role"))
	if err != nil {
		return err
	}
	resp := make([]dto.LibrarianResponse, 0, len(librarians))
	for i := range librarians {
		resp = append(resp, librarianResponse(&librarians[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// GetByID handles GET /librarians/id/:id.
func (h *LibrariansHandler) GetByID(c *fiber.Ctx) error {
	id, err := pathParam(c, "id")
	if err != nil {
		return err
	}
	librarian, err := h.librarians.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": librarianResponse(librarian)})
}

// GetByEmployeeID handles GET /librarians/employee/:employeeId.
func (h *LibrariansHandler) GetByEmployeeID(c *fiber.Ctx) error {
	employeeID, err := pathParam(c, "employeeId")
	if err != nil {
		return err
	}
	librarian, err := h.librarians.GetByEmployeeID(c.UserContext(), employeeID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": librarianResponse(librarian)})
}

// UpdateByID handles PUT /librarians/id/:id.
func (h *LibrariansHandler) UpdateByID(c *fiber.Ctx) error {
	id, err := pathParam(c, "id")
	if err != nil {
		return err
	}
	in, err := parseLibrarianUpdate(c)
	if err != nil {
		return err
	}
	identity, _ := auth.IdentityFromContext(c)
	librarian, err := h.librarians.UpdateByID(c.UserContext(), identity, id, in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": librarianResponse(librarian)})
}

// UpdateByEmployeeID handles PUT /librarians/employee/:employeeId.
func (h *LibrariansHandler) UpdateByEmployeeID(c *fiber.Ctx) error {
	employeeID, err := pathParam(c, "employeeId")
	if err != nil {
		return err
	}
	in, err := parseLibrarianUpdate(c)
	if err != nil {
		return err
	}
	identity, _ := auth.IdentityFromContext(c)
	librarian, err := h.librarians.UpdateByEmployeeID(c.UserContext(), identity, employeeID, in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": librarianResponse(librarian)})
}

// DeleteByID handles DELETE /librarians/id/:id.
func (h *LibrariansHandler) DeleteByID(c *fiber.Ctx) error {
	id, err := pathParam(c, "id")
	if err != nil {
		return err
	}
	identity, _ := auth.IdentityFromContext(c)
	if err := h.librarians.DeleteByID(c.UserContext(), identity, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteByEmployeeID handles DELETE /librarians/employee/:employeeId.
func (h *LibrariansHandler) DeleteByEmployeeID(c *fiber.Ctx) error {
	employeeID, err := pathParam(c, "employeeId")
	if err != nil {
		return err
	}
	identity, _ := auth.IdentityFromContext(c)
	if err := h.librarians.DeleteByEmployeeID(c.UserContext(), identity, employeeID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteAll handles DELETE /librarians.
func (h *LibrariansHandler) DeleteAll(c *fiber.Ctx) error {
	identity, _ := auth.IdentityFromContext(c)
	count, err := h.librarians.DeleteAll(c.UserContext(), identity)
	if err != nil {
		return err
	}
	return c.JSON(dto.DeleteAllResponse{Message: "all librarians deleted", Count: count})
}

func parseLibrarianUpdate(c *fiber.Ctx) (service.UpdateLibrarianInput, error) {
	var req dto.UpdateLibrarianRequest
	if err := c.BodyParser(&req); err != nil {
		return service.UpdateLibrarianInput{}, apperrors.NewValidationError("invalid payload", nil)
	}
	return service.UpdateLibrarianInput{
		Name:       req.Name,
		Email:      req.Email,
		EmployeeID: req.EmployeeID,
		Password:   req.Password,
		Role:       req.Role,
	}, nil
}

func librarianResponse(l *domain.Librarian) dto.LibrarianResponse {
	return dto.LibrarianResponse{
		ID:         l.ID,
		Name:       l.Name,
		Email:      l.Email,
		EmployeeID: l.EmployeeID,
		Role:       l.Role,
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}
}
