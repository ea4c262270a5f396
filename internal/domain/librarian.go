package domain

import "time"

// Role enumerates librarian privilege tiers. Roles carry no ordering; access
// rules name every role they accept.
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleManager Role = "Manager"
	RoleStaff   Role = "Staff"
)

// Roles lists the closed role set.
var Roles = []Role{RoleAdmin, RoleManager, RoleStaff}

// Valid reports whether r belongs to the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleStaff:
		return true
	}
	return false
}

// HighestRole is granted to the bootstrap librarian.
const HighestRole = RoleAdmin

// DefaultRole applies when a non-bootstrap creation omits the role.
const DefaultRole = RoleStaff

// Librarian is a staff account able to manage the catalog.
type Librarian struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	EmployeeID   string    `json:"employeeId"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// LibrarianUpdate holds the optional fields of a partial librarian update.
// Nil fields are left untouched.
type LibrarianUpdate struct {
	Name         *string
	Email        *string
	EmployeeID   *string
	Role         *Role
	PasswordHash *string
}

// Empty reports whether the update changes nothing.
func (u LibrarianUpdate) Empty() bool {
	return u.Name == nil && u.Email == nil && u.EmployeeID == nil && u.Role == nil && u.PasswordHash == nil
}

// Apply copies the set fields onto l.
func (u LibrarianUpdate) Apply(l *Librarian) {
	if u.Name != nil {
		l.Name = *u.Name
	}
	if u.Email != nil {
		l.Email = *u.Email
	}
	if u.EmployeeID != nil {
		l.EmployeeID = *u.EmployeeID
	}
	if u.Role != nil {
		l.Role = *u.Role
	}
	if u.PasswordHash != nil {
		l.PasswordHash = *u.PasswordHash
	}
}
