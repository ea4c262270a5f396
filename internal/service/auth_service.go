package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/library-service/internal/auth"
	"github.com/spec-kit/library-service/internal/domain"
	"github.com/spec-kit/library-service/internal/events"
	"github.com/spec-kit/library-service/internal/repository"
	apperrors "github.com/spec-kit/library-service/pkg/util/errorutil"
)

// MsgInvalidCredentials is returned for unknown emails and wrong passwords alike.
const MsgInvalidCredentials = "invalid credentials"

// TokenIssuer signs access tokens for a librarian.
type TokenIssuer interface {
	Issue(l *domain.Librarian) (domain.Token, error)
}

// LoginLimiter tracks failed login attempts per email.
type LoginLimiter interface {
	Allowed(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// LoginResult is a successful login.
type LoginResult struct {
	Librarian *domain.Librarian
	Token     domain.Token
}

// AuthService coordinates the librarian login flow.
type AuthService struct {
	librarians repository.LibrarianRepository
	tokens     TokenIssuer
	limiter    LoginLimiter
	dispatcher events.Dispatcher
	metrics    auth.EventRecorder
	logger     *zap.Logger

	// unknownEmailHash is compared against when no librarian matches the email.
	unknownEmailHash string
	verifyPassword   func(hashed, plain string) bool
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	LibrarianRepo repository.LibrarianRepository
	Tokens        TokenIssuer
	Limiter       LoginLimiter
	Dispatcher    events.Dispatcher
	Metrics       auth.EventRecorder
	Logger        *zap.Logger
	BcryptCost    int
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	unknownEmailHash, err := auth.HashPassword(uuid.NewString(), deps.BcryptCost)
	if err != nil {
		logger.Error("build unknown-email password hash", zap.Error(err))
	}
	return &AuthService{
		librarians:       deps.LibrarianRepo,
		tokens:           deps.Tokens,
		limiter:          deps.Limiter,
		dispatcher:       deps.Dispatcher,
		metrics:          deps.Metrics,
		logger:           logger,
		unknownEmailHash: unknownEmailHash,
		verifyPassword:   auth.VerifyPassword,
	}
}

// Login checks the credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password are required", nil)
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allowed(ctx, email)
		if err != nil {
			s.logger.Warn("login throttle unavailable", zap.Error(err))
		} else if !allowed {
			s.record("login_throttled")
			return nil, apperrors.NewTooManyRequests("too many login attempts")
		}
	}

	librarian, err := s.librarians.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.verifyPassword(s.unknownEmailHash, password)
		return nil, s.rejectLogin(ctx, email, "unknown_email")
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	if !s.verifyPassword(librarian.PasswordHash, password) {
		return nil, s.rejectLogin(ctx, email, "wrong_password")
	}

	token, err := s.tokens.Issue(librarian)
	if err != nil {
		if errors.Is(err, auth.ErrSecretMissing) || errors.Is(err, auth.ErrLifetimeMalformed) || errors.Is(err, auth.ErrLifetimeInvalid) {
			s.logger.Error("security alert: cannot issue tokens", zap.Error(err))
			s.record("config_error")
			return nil, apperrors.NewConfigurationError(err)
		}
		return nil, apperrors.NewInternalError(err)
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, email); err != nil {
			s.logger.Warn("reset login throttle", zap.Error(err))
		}
	}
	s.record("login_succeeded")
	publish(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventLoginSucceeded, librarian.ID,
		events.Actor{LibrarianID: librarian.ID, Role: librarian.Role},
		events.LoginPayload{Email: librarian.Email}))

	return &LoginResult{Librarian: librarian, Token: token}, nil
}

func (s *AuthService) rejectLogin(ctx context.Context, email, reason string) error {
	if s.limiter != nil {
		if err := s.limiter.RecordFailure(ctx, email); err != nil {
			s.logger.Warn("record login failure", zap.Error(err))
		}
	}
	s.record("login_failed")
	publish(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventLoginFailed, "", events.Actor{},
		events.LoginPayload{Email: email, Reason: reason}))
	return apperrors.NewUnauthorized(MsgInvalidCredentials)
}

func (s *AuthService) record(event string) {
	if s.metrics != nil {
		s.metrics.RecordAuthEvent(event)
	}
}
