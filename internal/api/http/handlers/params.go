package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/library-service/pkg/util/errorutil"
)

// pathParam returns the decoded route parameter, so names with spaces work
// whether or not the router unescapes paths.
func pathParam(c *fiber.Ctx, key string) (string, error) {
	raw := c.Params(key)
	value, err := url.PathUnescape(raw)
	if err != nil {
		return "", apperrors.NewValidationError("invalid path parameter", map[string]any{"param": key})
	}
	return value, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
