package dto

import (
	"time"

	"github.com/spec-kit/library-service/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Message   string           `json:"message"`
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
	Librarian LibrarianSummary `json:"librarian"`
}

// LibrarianSummary is the public projection embedded in login responses.
type LibrarianSummary struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}
