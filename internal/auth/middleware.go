package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/library-service/internal/domain"
	apperrors "github.com/spec-kit/library-service/pkg/util/errorutil"
)

const identityKey = "auth_identity"

// Messages returned for rejected bearer tokens. Expired and invalid tokens
// are worded differently so clients know whether to log in again.
const (
	MsgTokenMissing  = "authentication token missing"
	MsgHeaderInvalid = "invalid authorization header"
	MsgTokenExpired  = "token expired, please log in again"
	MsgTokenInvalid  = "invalid or malformed token"
)

// Verifier validates bearer tokens.
type Verifier interface {
	Verify(token string) (*domain.Identity, error)
}

// EventRecorder counts authentication outcomes.
type EventRecorder interface {
	RecordAuthEvent(event string)
}

// AuthMiddleware validates bearer tokens and stores the caller identity.
type AuthMiddleware struct {
	tokens  Verifier
	logger  *zap.Logger
	metrics EventRecorder
}

// NewAuthMiddleware constructs middleware. metrics may be nil.
func NewAuthMiddleware(tokens Verifier, logger *zap.Logger, metrics EventRecorder) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{tokens: tokens, logger: logger, metrics: metrics}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	identity, err := m.Authenticate(c)
	if err != nil {
		return err
	}
	c.Locals(identityKey, identity)
	return c.Next()
}

// Authenticate verifies the request's bearer token without touching the
// handler chain.
func (m *AuthMiddleware) Authenticate(c *fiber.Ctx) (*domain.Identity, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		m.record("token_missing")
		return nil, apperrors.NewUnauthorized(MsgTokenMissing)
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		m.record("token_missing")
		return nil, apperrors.NewUnauthorized(MsgHeaderInvalid)
	}

	identity, err := m.tokens.Verify(parts[1])
	switch {
	case err == nil:
		m.record("token_valid")
		return identity, nil
	case errors.Is(err, ErrSecretMissing):
		m.record("config_error")
		m.logger.Error("security alert: JWT_SECRET not configured, rejecting authenticated request",
			zap.String("path", c.Path()))
		return nil, apperrors.NewConfigurationError(err)
	case errors.Is(err, ErrTokenExpired):
		m.record("token_expired")
		return nil, apperrors.NewUnauthorized(MsgTokenExpired)
	case errors.Is(err, ErrTokenMissing):
		m.record("token_missing")
		return nil, apperrors.NewUnauthorized(MsgTokenMissing)
	default:
		m.record("token_invalid")
		m.logger.Debug("token rejected", zap.Error(err))
		return nil, apperrors.NewForbidden(MsgTokenInvalid)
	}
}

func (m *AuthMiddleware) record(event string) {
	if m.metrics != nil {
		m.metrics.RecordAuthEvent(event)
	}
}

// IdentityFromContext retrieves the authenticated librarian.
func IdentityFromContext(c *fiber.Ctx) (*domain.Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	identity, ok := val.(*domain.Identity)
	return identity, ok && identity != nil
}
