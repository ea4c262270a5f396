package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/library-service/internal/api/dto"
	"github.com/spec-kit/library-service/internal/service"
	apperrors "github.com/spec-kit/library-service/pkg/util/errorutil"
)

// AuthHandler exposes the login endpoint.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles POST /auth/librarian/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(dto.LoginResponse{
		Message:   "login successful",
		Token:     result.Token.Value,
		ExpiresAt: result.Token.ExpiresAt,
		Librarian: dto.LibrarianSummary{
			ID:    result.Librarian.ID,
			Name:  result.Librarian.Name,
			Email: result.Librarian.Email,
			Role:  result.Librarian.Role,
		},
	})
}
