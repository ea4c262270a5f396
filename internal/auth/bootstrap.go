package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/library-service/internal/domain"
	apperrors "github.com/spec-kit/library-service/pkg/util/errorutil"
)

const bootstrapKey = "auth_bootstrap"

// LibrarianCounter reports whether any librarian account exists.
type LibrarianCounter interface {
	Exists(ctx context.Context) (bool, error)
}

// BootstrapGuard protects librarian creation. While no librarian exists the
// request passes unauthenticated and is marked as a bootstrap; afterwards
// only an authenticated Admin may create accounts.
type BootstrapGuard struct {
	store  LibrarianCounter
	auth   *AuthMiddleware
	logger *zap.Logger
}

// NewBootstrapGuard constructs the guard.
func NewBootstrapGuard(store LibrarianCounter, auth *AuthMiddleware, logger *zap.Logger) *BootstrapGuard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BootstrapGuard{store: store, auth: auth, logger: logger}
}

// Handle evaluates the guard once per request.
func (g *BootstrapGuard) Handle(c *fiber.Ctx) error {
	exists, err := g.store.Exists(c.UserContext())
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	if !exists {
		g.logger.Info("no librarian exists, allowing unauthenticated bootstrap creation")
		c.Locals(bootstrapKey, true)
		return c.Next()
	}

	identity, err := g.auth.Authenticate(c)
	if err != nil {
		return err
	}
	if err := Authorize(identity, domain.RoleAdmin); err != nil {
		return err
	}
	c.Locals(identityKey, identity)
	return c.Next()
}

// IsBootstrap reports whether the guard admitted the request as the first
// librarian creation.
func IsBootstrap(c *fiber.Ctx) bool {
	val, ok := c.Locals(bootstrapKey).(bool)
	return ok && val
}
