package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/library-service/internal/observability"
	apperrors "github.com/spec-kit/library-service/pkg/util/errorutil"
)

func newMiddlewareApp(t *testing.T) (*fiber.App, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	app := fiber.New()
	RegisterMiddlewares(app, zap.New(core), observability.NewMetrics(), 0)
	return app, logs
}

func decodeError(t *testing.T, app *fiber.App, path string) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Error map[string]any `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body.Error
}

func TestErrorHandlingRendersDomainErrors(t *testing.T) {
	app, _ := newMiddlewareApp(t)
	app.Get("/missing", func(c *fiber.Ctx) error {
		return apperrors.NewNotFound("book", map[string]any{"isbn": "123"})
	})

	status, body := decodeError(t, app, "/missing")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, apperrors.CodeNotFound, body["code"])
	assert.Equal(t, map[string]any{"isbn": "123"}, body["details"])
}

func TestErrorHandlingHidesInternalErrors(t *testing.T) {
	app, logs := newMiddlewareApp(t)
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("connection refused on 10.0.0.5")
	})

	status, body := decodeError(t, app, "/boom")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, apperrors.CodeInternal, body["code"])
	assert.NotContains(t, body["message"], "10.0.0.5")
	assert.Equal(t, 1, logs.FilterMessage("request failed").Len())
}

func TestErrorHandlingRecoversPanics(t *testing.T) {
	app, logs := newMiddlewareApp(t)
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("unexpected")
	})

	status, body := decodeError(t, app, "/panic")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, apperrors.CodeInternal, body["code"])
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestErrorHandlingMapsFiberErrors(t *testing.T) {
	app, _ := newMiddlewareApp(t)
	app.Get("/teapot", func(c *fiber.Ctx) error {
		return fiber.NewError(http.StatusTeapot, "short and stout")
	})
	app.Get("/bad", func(c *fiber.Ctx) error {
		return fiber.ErrBadRequest
	})

	status, body := decodeError(t, app, "/teapot")
	assert.Equal(t, http.StatusTeapot, status)
	assert.Equal(t, "HTTP_418", body["code"])
	assert.Equal(t, "short and stout", body["message"])

	status, body = decodeError(t, app, "/bad")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, apperrors.CodeValidation, body["code"])

	status, body = decodeError(t, app, "/nowhere")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, apperrors.CodeNotFound, body["code"])
}
