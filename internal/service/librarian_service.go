package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/library-service/internal/auth"
	"github.com/spec-kit/library-service/internal/config"
	"github.com/spec-kit/library-service/internal/domain"
	"github.com/spec-kit/library-service/internal/events"
	"github.com/spec-kit/library-service/internal/repository"
	apperrors "github.com/spec-kit/library-service/pkg/util/errorutil"
)

// LibrarianService manages librarian accounts, including the first
// administrator created while the store is empty.
type LibrarianService struct {
	librarians repository.LibrarianRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int

	hashPassword func(password string, cost int) (string, error)
}

// LibrarianDependencies encapsulates collaborators for the librarian service.
type LibrarianDependencies struct {
	LibrarianRepo repository.LibrarianRepository
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
}

// NewLibrarianService constructs the service.
func NewLibrarianService(cfg config.Config, deps LibrarianDependencies) *LibrarianService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LibrarianService{
		librarians: deps.LibrarianRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		bcryptCost: cfg.Auth.BcryptCost,

		hashPassword: auth.HashPassword,
	}
}

// CreateLibrarianInput carries a creation request. Role is optional.
type CreateLibrarianInput struct {
	Name       string
	Email      string
	EmployeeID string
	Password   string
	Role       string
}

// UpdateLibrarianInput carries a partial update. Nil fields are untouched and
// an empty password is ignored.
type UpdateLibrarianInput struct {
	Name       *string
	Email      *string
	EmployeeID *string
	Password   *string
	Role       *string
}

// Create registers a librarian. In bootstrap mode the supplied role is
// ignored and the account becomes the highest role; creation only succeeds
// while the store is still empty.
func (s *LibrarianService) Create(ctx context.Context, actor *domain.Identity, bootstrap bool, in CreateLibrarianInput) (*domain.Librarian, error) {
	var missing []string
	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(in.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(in.EmployeeID) == "" {
		missing = append(missing, "employeeId")
	}
	if in.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("name, email, employeeId and password are required",
			map[string]any{"missing": missing})
	}
	if len(in.Password) < auth.MinPasswordLength {
		return nil, passwordTooShort()
	}

	role := domain.DefaultRole
	if bootstrap {
		role = domain.HighestRole
	} else if in.Role != "" {
		parsed, err := parseRole(in.Role)
		if err != nil {
			return nil, err
		}
		role = parsed
	}

	hash, err := s.hashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	librarian := &domain.Librarian{
		Name:         in.Name,
		Email:        in.Email,
		EmployeeID:   in.EmployeeID,
		Role:         role,
		PasswordHash: hash,
	}

	if bootstrap {
		err = s.librarians.CreateFirst(ctx, librarian)
	} else {
		err = s.librarians.Create(ctx, librarian)
	}
	switch {
	case errors.Is(err, repository.ErrBootstrapClosed):
		// another request created the first account after the guard ran
		return nil, apperrors.NewUnauthorized("authentication required")
	case errors.Is(err, repository.ErrDuplicate):
		return nil, duplicateLibrarian(err)
	case err != nil:
		return nil, apperrors.NewInternalError(err)
	}

	eventType := events.EventLibrarianCreated
	if bootstrap {
		eventType = events.EventBootstrapAdminCreated
		s.logger.Warn("bootstrap administrator created",
			zap.String("librarian_id", librarian.ID),
			zap.String("email", librarian.Email))
	}
	publish(ctx, s.dispatcher, s.logger, events.NewEvent(eventType, librarian.ID, events.ActorFrom(actor), events.LibrarianPayload{
		Email:      librarian.Email,
		EmployeeID: librarian.EmployeeID,
		Role:       librarian.Role,
	}))

	return librarian, nil
}

// List returns librarians, optionally narrowed by role.
func (s *LibrarianService) List(ctx context.Context, role string) ([]domain.Librarian, error) {
	filter := repository.LibrarianFilter{}
	if role != "" {
		parsed, err := parseRole(role)
		if err != nil {
			return nil, err
		}
		filter.Role = &parsed
	}

	librarians, err := s.librarians.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return librarians, nil
}

// GetByID fetches a librarian.
func (s *LibrarianService) GetByID(ctx context.Context, id string) (*domain.Librarian, error) {
	librarian, err := s.librarians.GetByID(ctx, id)
	if err != nil {
		return nil, librarianLookupError(err, "id", id)
	}
	return librarian, nil
}

// GetByEmployeeID fetches a librarian by employee id.
func (s *LibrarianService) GetByEmployeeID(ctx context.Context, employeeID string) (*domain.Librarian, error) {
	librarian, err := s.librarians.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, librarianLookupError(err, "employeeId", employeeID)
	}
	return librarian, nil
}

// UpdateByID applies a partial update.
func (s *LibrarianService) UpdateByID(ctx context.Context, actor *domain.Identity, id string, in UpdateLibrarianInput) (*domain.Librarian, error) {
	update, err := s.buildUpdate(in)
	if err != nil {
		return nil, err
	}
	return s.applyUpdate(ctx, actor, id, update)
}

// UpdateByEmployeeID resolves the employee id and applies a partial update.
func (s *LibrarianService) UpdateByEmployeeID(ctx context.Context, actor *domain.Identity, employeeID string, in UpdateLibrarianInput) (*domain.Librarian, error) {
	update, err := s.buildUpdate(in)
	if err != nil {
		return nil, err
	}
	existing, err := s.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return s.applyUpdate(ctx, actor, existing.ID, update)
}

func (s *LibrarianService) applyUpdate(ctx context.Context, actor *domain.Identity, id string, update domain.LibrarianUpdate) (*domain.Librarian, error) {
	librarian, err := s.librarians.Update(ctx, id, update)
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return nil, duplicateLibrarian(err)
	case err != nil:
		return nil, librarianLookupError(err, "id", id)
	}

	publish(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventLibrarianUpdated, librarian.ID, events.ActorFrom(actor), events.LibrarianPayload{
		Email:      librarian.Email,
		EmployeeID: librarian.EmployeeID,
		Role:       librarian.Role,
	}))
	return librarian, nil
}

// DeleteByID removes a librarian.
func (s *LibrarianService) DeleteByID(ctx context.Context, actor *domain.Identity, id string) error {
	if err := s.librarians.DeleteByID(ctx, id); err != nil {
		return librarianLookupError(err, "id", id)
	}
	publish(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventLibrarianDeleted, id, events.ActorFrom(actor),
		events.LibrarianDeletedPayload{By: "id", Key: id, Count: 1}))
	return nil
}

// DeleteByEmployeeID removes a librarian by employee id.
func (s *LibrarianService) DeleteByEmployeeID(ctx context.Context, actor *domain.Identity, employeeID string) error {
	if err := s.librarians.DeleteByEmployeeID(ctx, employeeID); err != nil {
		return librarianLookupError(err, "employeeId", employeeID)
	}
	publish(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventLibrarianDeleted, "", events.ActorFrom(actor),
		events.LibrarianDeletedPayload{By: "employeeId", Key: employeeID, Count: 1}))
	return nil
}

// DeleteAll removes every librarian and returns how many were deleted. An
// empty store re-opens the bootstrap path.
func (s *LibrarianService) DeleteAll(ctx context.Context, actor *domain.Identity) (int64, error) {
	count, err := s.librarians.DeleteAll(ctx)
	if err != nil {
		return 0, apperrors.NewInternalError(err)
	}
	s.logger.Warn("all librarians deleted", zap.Int64("count", count))
	publish(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventLibrarianDeleted, "", events.ActorFrom(actor),
		events.LibrarianDeletedPayload{By: "all", Count: count}))
	return count, nil
}

func (s *LibrarianService) buildUpdate(in UpdateLibrarianInput) (domain.LibrarianUpdate, error) {
	var update domain.LibrarianUpdate

	for _, f := range []struct {
		name  string
		value *string
	}{{"name", in.Name}, {"email", in.Email}, {"employeeId", in.EmployeeID}} {
		if f.value != nil && strings.TrimSpace(*f.value) == "" {
			return update, apperrors.NewValidationError(f.name+" must not be empty", map[string]any{"field": f.name})
		}
	}
	update.Name = in.Name
	update.Email = in.Email
	update.EmployeeID = in.EmployeeID

	if in.Role != nil {
		role, err := parseRole(*in.Role)
		if err != nil {
			return update, err
		}
		update.Role = &role
	}

	if in.Password != nil && *in.Password != "" {
		if len(*in.Password) < auth.MinPasswordLength {
			return update, passwordTooShort()
		}
		hash, err := s.hashPassword(*in.Password, s.bcryptCost)
		if err != nil {
			return update, apperrors.NewInternalError(err)
		}
		update.PasswordHash = &hash
	}

	if update.Empty() {
		return update, apperrors.NewValidationError("no fields to update", nil)
	}
	return update, nil
}

func parseRole(value string) (domain.Role, error) {
	role := domain.Role(value)
	if !role.Valid() {
		allowed := make([]string, 0, len(domain.Roles))
		for _, r := range domain.Roles {
			allowed = append(allowed, string(r))
		}
		return "", apperrors.NewValidationError(
			fmt.Sprintf("invalid role %q, allowed values: %s", value, strings.Join(allowed, ", ")),
			map[string]any{"allowed": allowed})
	}
	return role, nil
}

func passwordTooShort() error {
	return apperrors.NewValidationError(
		fmt.Sprintf("password must be at least %d characters", auth.MinPasswordLength),
		map[string]any{"field": "password"})
}

func duplicateLibrarian(err error) error {
	details := map[string]any{}
	if constraint := repository.DuplicateConstraint(err); constraint != "" {
		details["constraint"] = constraint
	}
	return apperrors.NewConflict("email or employee id already registered", details)
}

func librarianLookupError(err error, key, value string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("librarian", map[string]any{key: value})
	}
	return apperrors.NewInternalError(err)
}
