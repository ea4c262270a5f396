package auth

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/library-service/internal/domain"
	apperrors "github.com/spec-kit/library-service/pkg/util/errorutil"
)

// MsgRoleUnidentified is returned when no role is attached to the request.
const MsgRoleUnidentified = "access denied: role not identified"

// Authorize allows the caller iff its role is one of allowed. There is no
// hierarchy between roles.
func Authorize(identity *domain.Identity, allowed ...domain.Role) error {
	if identity == nil || identity.Role == "" {
		return apperrors.NewForbidden(MsgRoleUnidentified)
	}
	for _, role := range allowed {
		if identity.Role == role {
			return nil
		}
	}
	return apperrors.NewForbidden(fmt.Sprintf("access denied: role '%s' is not permitted for this resource", identity.Role))
}

// RequireRoles ensures the authenticated librarian has one of the allowed roles.
// It must be mounted after AuthMiddleware.Handle.
func RequireRoles(allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, _ := IdentityFromContext(c)
		if err := Authorize(identity, allowed...); err != nil {
			return err
		}
		return c.Next()
	}
}
