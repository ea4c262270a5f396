package dto

import (
	"time"

	"github.com/spec-kit/library-service/internal/domain"
)

// CreateLibrarianRequest payload. Role is optional.
type CreateLibrarianRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	EmployeeID string `json:"employeeId"`
	Password   string `json:"password"`
	Role       string `json:"role"`
}

// UpdateLibrarianRequest payload. Omitted fields are left untouched.
type UpdateLibrarianRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	EmployeeID *string `json:"employeeId"`
	Password   *string `json:"password"`
	Role       *string `json:"role"`
}

// LibrarianResponse never carries the password hash.
type LibrarianResponse struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	EmployeeID string      `json:"employeeId"`
	Role       domain.Role `json:"role"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// DeleteAllResponse reports a bulk delete.
type DeleteAllResponse struct {
	Message string `json:"message"`
	Count   int64  `json:"count"`
}
