package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/library-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventLibrarianCreated      EventType = "librarian_created"
	EventBootstrapAdminCreated EventType = "bootstrap_admin_created"
	EventLibrarianUpdated      EventType = "librarian_updated"
	EventLibrarianDeleted      EventType = "librarian_deleted"
	EventLoginSucceeded        EventType = "login_succeeded"
	EventLoginFailed           EventType = "login_failed"
)

// AuditTypes lists every event the audit trail records.
var AuditTypes = []EventType{
	EventLibrarianCreated,
	EventBootstrapAdminCreated,
	EventLibrarianUpdated,
	EventLibrarianDeleted,
	EventLoginSucceeded,
	EventLoginFailed,
}

// Actor identifies who triggered an event. Anonymous actors (login attempts,
// bootstrap) leave LibrarianID empty.
type Actor struct {
	LibrarianID string      `json:"librarian_id,omitempty"`
	Role        domain.Role `json:"role,omitempty"`
}

// ActorFrom builds an Actor from a verified identity, which may be nil.
func ActorFrom(identity *domain.Identity) Actor {
	if identity == nil {
		return Actor{}
	}
	return Actor{LibrarianID: identity.LibrarianID, Role: identity.Role}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	SubjectID string    `json:"subject_id,omitempty"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, subjectID string, actor Actor, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// LibrarianPayload describes the librarian an event refers to.
type LibrarianPayload struct {
	Email      string      `json:"email"`
	EmployeeID string      `json:"employee_id,omitempty"`
	Role       domain.Role `json:"role,omitempty"`
}

// LibrarianDeletedPayload describes a delete operation.
type LibrarianDeletedPayload struct {
	By    string `json:"by"`
	Key   string `json:"key,omitempty"`
	Count int64  `json:"count"`
}

// LoginPayload describes a login attempt. Reason is set on failures.
type LoginPayload struct {
	Email  string `json:"email"`
	Reason string `json:"reason,omitempty"`
}
