package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/library-service/internal/auth"
	"github.com/spec-kit/library-service/internal/config"
	"github.com/spec-kit/library-service/internal/domain"
	"github.com/spec-kit/library-service/internal/events"
	apperrors "github.com/spec-kit/library-service/pkg/util/errorutil"
)

func testConfig() config.Config {
	return config.Config{Auth: config.AuthConfig{BcryptCost: 4, JWTSecret: "test-secret", JWTExpiresIn: "1h"}}
}

func newLibrarianService(repo *fakeLibrarianRepo) (*LibrarianService, *recordingDispatcher) {
	dispatcher := &recordingDispatcher{}
	svc := NewLibrarianService(testConfig(), LibrarianDependencies{
		LibrarianRepo: repo,
		Dispatcher:    dispatcher,
	})
	return svc, dispatcher
}

func requireStatus(t *testing.T, err error, status int) *apperrors.DomainError {
	t.Helper()
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr), "expected DomainError, got %T: %v", err, err)
	assert.Equal(t, status, domainErr.HTTPStatus)
	return domainErr
}

func validInput() CreateLibrarianInput {
	return CreateLibrarianInput{Name: "A", Email: "a@x.com", EmployeeID: "E1", Password: "secret1"}
}

func adminIdentity() *domain.Identity {
	return &domain.Identity{LibrarianID: "admin-1", Email: "root@x.com", Role: domain.RoleAdmin}
}

func TestCreateBootstrapGrantsHighestRole(t *testing.T) {
	repo := newFakeLibrarianRepo()
	svc, dispatcher := newLibrarianService(repo)

	in := validInput()
	in.Role = string(domain.RoleStaff)

	librarian, err := svc.Create(context.Background(), nil, true, in)
	require.NoError(t, err)

	assert.Equal(t, domain.HighestRole, librarian.Role, "bootstrap ignores the supplied role")
	assert.NotEqual(t, "secret1", librarian.PasswordHash)
	assert.True(t, auth.VerifyPassword(librarian.PasswordHash, "secret1"))
	assert.Equal(t, []events.EventType{events.EventBootstrapAdminCreated}, dispatcher.types())
}

func TestCreateBootstrapLostRace(t *testing.T) {
	repo := newFakeLibrarianRepo()
	repo.raced = true
	svc, _ := newLibrarianService(repo)

	_, err := svc.Create(context.Background(), nil, true, validInput())
	domainErr := requireStatus(t, err, http.StatusUnauthorized)
	assert.Equal(t, "authentication required", domainErr.Message)
	assert.Zero(t, repo.count())
}

func TestCreateRoleHandling(t *testing.T) {
	cases := []struct {
		name   string
		role   string
		want   domain.Role
		status int
	}{
		{name: "omitted defaults to staff", role: "", want: domain.RoleStaff},
		{name: "manager accepted", role: "Manager", want: domain.RoleManager},
		{name: "admin accepted", role: "Admin", want: domain.RoleAdmin},
		{name: "unknown rejected", role: "Janitor", status: http.StatusBadRequest},
		{name: "case sensitive", role: "admin", status: http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newFakeLibrarianRepo()
			svc, _ := newLibrarianService(repo)

			in := validInput()
			in.Role = tc.role
			librarian, err := svc.Create(context.Background(), adminIdentity(), false, in)

			if tc.status != 0 {
				requireStatus(t, err, tc.status)
				assert.Zero(t, repo.count())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, librarian.Role)
		})
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newLibrarianService(newFakeLibrarianRepo())

	missing := validInput()
	missing.EmployeeID = " "
	err := requireStatusOf(t, svc, missing)
	assert.Equal(t, []string{"employeeId"}, err.Details["missing"])

	short := validInput()
	short.Password = "12345"
	err = requireStatusOf(t, svc, short)
	assert.Contains(t, err.Message, "at least 6")
}

func requireStatusOf(t *testing.T, svc *LibrarianService, in CreateLibrarianInput) *apperrors.DomainError {
	t.Helper()
	_, err := svc.Create(context.Background(), adminIdentity(), false, in)
	return requireStatus(t, err, http.StatusBadRequest)
}

func TestCreateDuplicate(t *testing.T) {
	repo := newFakeLibrarianRepo()
	svc, _ := newLibrarianService(repo)

	_, err := svc.Create(context.Background(), adminIdentity(), false, validInput())
	require.NoError(t, err)

	dup := validInput()
	dup.EmployeeID = "E2"
	_, err = svc.Create(context.Background(), adminIdentity(), false, dup)
	requireStatus(t, err, http.StatusConflict)
	assert.Equal(t, 1, repo.count())
}

func TestLookups(t *testing.T) {
	repo := newFakeLibrarianRepo()
	svc, _ := newLibrarianService(repo)
	created, err := svc.Create(context.Background(), adminIdentity(), false, validInput())
	require.NoError(t, err)

	byID, err := svc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Email, byID.Email)

	byEmployee, err := svc.GetByEmployeeID(context.Background(), "E1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmployee.ID)

	_, err = svc.GetByID(context.Background(), "missing")
	requireStatus(t, err, http.StatusNotFound)

	repo.fail = errors.New("db down")
	_, err = svc.GetByEmployeeID(context.Background(), "E1")
	requireStatus(t, err, http.StatusInternalServerError)
}

func TestListFiltersByRole(t *testing.T) {
	repo := newFakeLibrarianRepo(
		&domain.Librarian{Email: "a@x.com", EmployeeID: "1", Role: domain.RoleAdmin},
		&domain.Librarian{Email: "b@x.com", EmployeeID: "2", Role: domain.RoleStaff},
	)
	svc, _ := newLibrarianService(repo)

	all, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	staff, err := svc.List(context.Background(), "Staff")
	require.NoError(t, err)
	require.Len(t, staff, 1)
	assert.Equal(t, "b@x.com", staff[0].Email)

	_, err = svc.List(context.Background(), "Boss")
	requireStatus(t, err, http.StatusBadRequest)
}

func ptr[T any](v T) *T { return &v }

func TestUpdate(t *testing.T) {
	repo := newFakeLibrarianRepo()
	svc, dispatcher := newLibrarianService(repo)
	created, err := svc.Create(context.Background(), adminIdentity(), false, validInput())
	require.NoError(t, err)
	oldHash := created.PasswordHash

	t.Run("nothing to update", func(t *testing.T) {
		_, err := svc.UpdateByID(context.Background(), adminIdentity(), created.ID, UpdateLibrarianInput{Password: ptr("")})
		requireStatus(t, err, http.StatusBadRequest)
	})

	t.Run("invalid role", func(t *testing.T) {
		_, err := svc.UpdateByID(context.Background(), adminIdentity(), created.ID, UpdateLibrarianInput{Role: ptr("Root")})
		requireStatus(t, err, http.StatusBadRequest)
	})

	t.Run("short password", func(t *testing.T) {
		_, err := svc.UpdateByID(context.Background(), adminIdentity(), created.ID, UpdateLibrarianInput{Password: ptr("abc")})
		requireStatus(t, err, http.StatusBadRequest)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := svc.UpdateByID(context.Background(), adminIdentity(), created.ID, UpdateLibrarianInput{Name: ptr("")})
		requireStatus(t, err, http.StatusBadRequest)
	})

	t.Run("role and password", func(t *testing.T) {
		updated, err := svc.UpdateByID(context.Background(), adminIdentity(), created.ID, UpdateLibrarianInput{
			Role:     ptr("Manager"),
			Password: ptr("new-secret"),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.RoleManager, updated.Role)
		assert.NotEqual(t, oldHash, updated.PasswordHash)
		assert.True(t, auth.VerifyPassword(updated.PasswordHash, "new-secret"))
	})

	t.Run("by employee id", func(t *testing.T) {
		updated, err := svc.UpdateByEmployeeID(context.Background(), adminIdentity(), "E1", UpdateLibrarianInput{Name: ptr("Renamed")})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Name)

		_, err = svc.UpdateByEmployeeID(context.Background(), adminIdentity(), "E404", UpdateLibrarianInput{Name: ptr("x")})
		requireStatus(t, err, http.StatusNotFound)
	})

	t.Run("password hashed once by employee id", func(t *testing.T) {
		hashes := 0
		svc.hashPassword = func(password string, cost int) (string, error) {
			hashes++
			return auth.HashPassword(password, cost)
		}
		defer func() { svc.hashPassword = auth.HashPassword }()

		updated, err := svc.UpdateByEmployeeID(context.Background(), adminIdentity(), "E1", UpdateLibrarianInput{Password: ptr("other-secret")})
		require.NoError(t, err)
		assert.Equal(t, 1, hashes)
		assert.True(t, auth.VerifyPassword(updated.PasswordHash, "other-secret"))
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.UpdateByID(context.Background(), adminIdentity(), "nope", UpdateLibrarianInput{Name: ptr("x")})
		requireStatus(t, err, http.StatusNotFound)
	})

	assert.Contains(t, dispatcher.types(), events.EventLibrarianUpdated)
}

func TestDelete(t *testing.T) {
	repo := newFakeLibrarianRepo(
		&domain.Librarian{Email: "a@x.com", EmployeeID: "1", Role: domain.RoleAdmin},
		&domain.Librarian{Email: "b@x.com", EmployeeID: "2", Role: domain.RoleStaff},
		&domain.Librarian{Email: "c@x.com", EmployeeID: "3", Role: domain.RoleStaff},
	)
	svc, dispatcher := newLibrarianService(repo)
	ctx := context.Background()

	require.NoError(t, svc.DeleteByEmployeeID(ctx, adminIdentity(), "2"))
	requireStatus(t, svc.DeleteByEmployeeID(ctx, adminIdentity(), "2"), http.StatusNotFound)
	requireStatus(t, svc.DeleteByID(ctx, adminIdentity(), "missing"), http.StatusNotFound)

	n, err := svc.DeleteAll(ctx, adminIdentity())
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.Zero(t, repo.count())

	assert.Equal(t, []events.EventType{events.EventLibrarianDeleted, events.EventLibrarianDeleted}, dispatcher.types())
}
