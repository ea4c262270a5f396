package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/library-service/internal/api/http/handlers"
	"github.com/spec-kit/library-service/internal/auth"
	"github.com/spec-kit/library-service/internal/config"
	"github.com/spec-kit/library-service/internal/domain"
	"github.com/spec-kit/library-service/internal/events"
	"github.com/spec-kit/library-service/internal/observability"
	"github.com/spec-kit/library-service/internal/repository"
	"github.com/spec-kit/library-service/internal/service"
)

const testSecret = "router-test-secret"

// memLibrarians is a minimal in-memory LibrarianRepository.
type memLibrarians struct {
	mu   sync.Mutex
	rows []domain.Librarian
}

func (m *memLibrarians) find(match func(domain.Librarian) bool) (*domain.Librarian, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.rows {
		if match(l) {
			cp := l
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memLibrarians) GetByEmail(_ context.Context, email string) (*domain.Librarian, error) {
	return m.find(func(l domain.Librarian) bool { return l.Email == email })
}

func (m *memLibrarians) GetByID(_ context.Context, id string) (*domain.Librarian, error) {
	return m.find(func(l domain.Librarian) bool { return l.ID == id })
}

func (m *memLibrarians) GetByEmployeeID(_ context.Context, employeeID string) (*domain.Librarian, error) {
	return m.find(func(l domain.Librarian) bool { return l.EmployeeID == employeeID })
}

func (m *memLibrarians) Exists(context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows) > 0, nil
}

func (m *memLibrarians) Create(_ context.Context, l *domain.Librarian) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.rows {
		if existing.Email == l.Email || existing.EmployeeID == l.EmployeeID {
			return repository.ErrDuplicate
		}
	}
	l.ID = uuid.NewString()
	l.CreatedAt = time.Now()
	l.UpdatedAt = l.CreatedAt
	m.rows = append(m.rows, *l)
	return nil
}

func (m *memLibrarians) CreateFirst(ctx context.Context, l *domain.Librarian) error {
	if exists, _ := m.Exists(ctx); exists {
		return repository.ErrBootstrapClosed
	}
	return m.Create(ctx, l)
}

func (m *memLibrarians) Update(_ context.Context, id string, update domain.LibrarianUpdate) (*domain.Librarian, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id {
			update.Apply(&m.rows[i])
			cp := m.rows[i]
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memLibrarians) List(context.Context, repository.LibrarianFilter) ([]domain.Librarian, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Librarian{}, m.rows...), nil
}

func (m *memLibrarians) DeleteByID(_ context.Context, id string) error {
	return m.remove(func(l domain.Librarian) bool { return l.ID == id })
}

func (m *memLibrarians) DeleteByEmployeeID(_ context.Context, employeeID string) error {
	return m.remove(func(l domain.Librarian) bool { return l.EmployeeID == employeeID })
}

func (m *memLibrarians) remove(match func(domain.Librarian) bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, l := range m.rows {
		if match(l) {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memLibrarians) DeleteAll(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.rows))
	m.rows = nil
	return n, nil
}

func (m *memLibrarians) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type testServer struct {
	app     *fiber.App
	store   *memLibrarians
	tokens  *auth.TokenManager
	metrics *observability.Metrics
}

func newTestServer(t *testing.T, secret string) *testServer {
	t.Helper()

	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: secret, JWTExpiresIn: "1h", BcryptCost: 4}}
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	store := &memLibrarians{}
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiresIn)
	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(service.AuthDependencies{
		LibrarianRepo: store,
		Tokens:        tokens,
		Dispatcher:    dispatcher,
		Metrics:       metrics,
		Logger:        logger,
		BcryptCost:    cfg.Auth.BcryptCost,
	})
	librarianService := service.NewLibrarianService(cfg, service.LibrarianDependencies{
		LibrarianRepo: store,
		Dispatcher:    dispatcher,
		Logger:        logger,
	})
	catalog := service.NewCatalogService(service.CatalogDependencies{})
	authMiddleware := auth.NewAuthMiddleware(tokens, logger, metrics)

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:          handlers.NewHealthHandler("library-service", "test"),
		Auth:            handlers.NewAuthHandler(authService),
		Librarians:      handlers.NewLibrariansHandler(librarianService),
		Authors:         handlers.NewAuthorsHandler(catalog),
		Publishers:      handlers.NewPublishersHandler(catalog),
		Categories:      handlers.NewCategoriesHandler(catalog),
		Books:           handlers.NewBooksHandler(catalog),
		AuthMiddleware:  authMiddleware,
		BootstrapGuard:  auth.NewBootstrapGuard(store, authMiddleware, logger),
		MetricsGatherer: metrics.Registry(),
	})

	return &testServer{app: app, store: store, tokens: tokens, metrics: metrics}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	status, body := s.do(t, http.MethodPost, "/auth/librarian/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, status, body)
	return body["token"].(string)
}

func errorMessage(body map[string]any) string {
	errBody, _ := body["error"].(map[string]any)
	msg, _ := errBody["message"].(string)
	return msg
}

func errorCode(body map[string]any) string {
	errBody, _ := body["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}

func TestBootstrapAndRoleGating(t *testing.T) {
	s := newTestServer(t, testSecret)

	// first account needs no credentials and becomes Admin
	status, body := s.do(t, http.MethodPost, "/librarians", "", map[string]string{
		"name": "A", "email": "a@x.com", "employeeId": "E1", "password": "secret1", "role": "Staff",
	})
	require.Equal(t, http.StatusCreated, status, body)
	data := body["data"].(map[string]any)
	assert.Equal(t, "Admin", data["role"])
	assert.NotContains(t, data, "passwordHash")
	assert.NotContains(t, data, "PasswordHash")

	// store is no longer empty
	status, body = s.do(t, http.MethodPost, "/librarians", "", map[string]string{
		"name": "B", "email": "b@x.com", "employeeId": "E2", "password": "secret2",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, auth.MsgTokenMissing, errorMessage(body))
	assert.Equal(t, 1, s.store.count())

	adminToken := s.login(t, "a@x.com", "secret1")

	status, body = s.do(t, http.MethodPost, "/librarians", adminToken, map[string]string{
		"name": "B", "email": "b@x.com", "employeeId": "E2", "password": "secret2",
	})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "Staff", body["data"].(map[string]any)["role"])

	status, body = s.do(t, http.MethodPost, "/librarians", adminToken, map[string]string{
		"name": "C", "email": "c@x.com", "employeeId": "E3", "password": "secret3", "role": "Overlord",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	staffToken := s.login(t, "b@x.com", "secret2")

	status, body = s.do(t, http.MethodDelete, "/librarians", staffToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "access denied: role 'Staff' is not permitted for this resource", errorMessage(body))

	status, _ = s.do(t, http.MethodPost, "/librarians", staffToken, map[string]string{
		"name": "D", "email": "d@x.com", "employeeId": "E4", "password": "secret4",
	})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(t, http.MethodGet, "/librarians", staffToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = s.do(t, http.MethodGet, "/librarians", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 2)

	status, body = s.do(t, http.MethodPut, "/librarians/employee/E2", adminToken, map[string]string{"role": "Manager"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Manager", body["data"].(map[string]any)["role"])

	status, _ = s.do(t, http.MethodDelete, "/librarians/employee/E2", adminToken, nil)
	assert.Equal(t, http.StatusNoContent, status)
	assert.Equal(t, 1, s.store.count())
}

func TestLibrarianEmployeeIDIsDecoded(t *testing.T) {
	s := newTestServer(t, testSecret)
	status, _ := s.do(t, http.MethodPost, "/librarians", "", map[string]string{
		"name": "A", "email": "a@x.com", "employeeId": "E1", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, status)
	adminToken := s.login(t, "a@x.com", "secret1")

	status, _ = s.do(t, http.MethodPost, "/librarians", adminToken, map[string]string{
		"name": "B", "email": "b@x.com", "employeeId": "EMP 7", "password": "secret2",
	})
	require.Equal(t, http.StatusCreated, status)

	status, body := s.do(t, http.MethodGet, "/librarians/employee/EMP%207", adminToken, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "b@x.com", body["data"].(map[string]any)["email"])

	status, body = s.do(t, http.MethodPut, "/librarians/employee/EMP%207", adminToken, map[string]string{"name": "Bea"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Bea", body["data"].(map[string]any)["name"])

	status, _ = s.do(t, http.MethodDelete, "/librarians/employee/EMP%207", adminToken, nil)
	assert.Equal(t, http.StatusNoContent, status)
	assert.Equal(t, 1, s.store.count())
}

func TestLoginResponses(t *testing.T) {
	s := newTestServer(t, testSecret)
	status, _ := s.do(t, http.MethodPost, "/librarians", "", map[string]string{
		"name": "A", "email": "a@x.com", "employeeId": "E1", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, status)

	status, body := s.do(t, http.MethodPost, "/auth/librarian/login", "", map[string]string{"email": "a@x.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["message"])
	assert.NotEmpty(t, body["token"])
	assert.NotEmpty(t, body["expiresAt"])
	librarian := body["librarian"].(map[string]any)
	assert.Equal(t, "a@x.com", librarian["email"])
	assert.Equal(t, "Admin", librarian["role"])
	assert.NotContains(t, librarian, "passwordHash")

	wrongStatus, wrongBody := s.do(t, http.MethodPost, "/auth/librarian/login", "", map[string]string{"email": "a@x.com", "password": "nope"})
	unknownStatus, unknownBody := s.do(t, http.MethodPost, "/auth/librarian/login", "", map[string]string{"email": "z@x.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, wrongStatus)
	assert.Equal(t, wrongStatus, unknownStatus)
	assert.Equal(t, wrongBody, unknownBody)
	assert.Equal(t, service.MsgInvalidCredentials, errorMessage(wrongBody))

	status, _ = s.do(t, http.MethodPost, "/auth/librarian/login", "", map[string]string{"email": "a@x.com"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestLoginWithoutSecretFailsClosed(t *testing.T) {
	s := newTestServer(t, "")
	status, _ := s.do(t, http.MethodPost, "/librarians", "", map[string]string{
		"name": "A", "email": "a@x.com", "employeeId": "E1", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, status)

	status, body := s.do(t, http.MethodPost, "/auth/librarian/login", "", map[string]string{"email": "a@x.com", "password": "secret1"})
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "CONFIGURATION_ERROR", errorCode(body))
	assert.NotContains(t, body, "token")
}

func TestProtectedCatalogRoutes(t *testing.T) {
	s := newTestServer(t, testSecret)

	status, body := s.do(t, http.MethodPost, "/authors", "", map[string]string{"name": "X"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, auth.MsgTokenMissing, errorMessage(body))

	status, body = s.do(t, http.MethodDelete, "/books", "garbage.token.value", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, auth.MsgTokenInvalid, errorMessage(body))

	past := auth.NewTokenManager(testSecret, "1h").WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
	expired, err := past.Issue(&domain.Librarian{ID: "lib-1", Email: "a@x.com", Role: domain.RoleAdmin})
	require.NoError(t, err)

	status, body = s.do(t, http.MethodPut, "/categories/by-name/Fantasy", expired.Value, map[string]string{"description": "x"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, auth.MsgTokenExpired, errorMessage(body))
}

func TestOperationalRoutes(t *testing.T) {
	s := newTestServer(t, testSecret)

	status, body := s.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body = s.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", body["status"])

	status, body = s.do(t, http.MethodGet, "/does-not-exist", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "library_http_requests_total")
}
