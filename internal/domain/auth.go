package domain

import "time"

// Identity is the verified caller materialized from a bearer token for the
// lifetime of a single request.
type Identity struct {
	LibrarianID string
	Email       string
	Role        Role
	Name        string
}

// Token describes an issued access token.
type Token struct {
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
