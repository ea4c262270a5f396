package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/library-service/internal/domain"
)

// LibrarianRepository persists librarian accounts.
type LibrarianRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.Librarian, error)
	GetByID(ctx context.Context, id string) (*domain.Librarian, error)
	GetByEmployeeID(ctx context.Context, employeeID string) (*domain.Librarian, error)
	Exists(ctx context.Context) (bool, error)
	Create(ctx context.Context, librarian *domain.Librarian) error
	CreateFirst(ctx context.Context, librarian *domain.Librarian) error
	Update(ctx context.Context, id string, update domain.LibrarianUpdate) (*domain.Librarian, error)
	List(ctx context.Context, filter LibrarianFilter) ([]domain.Librarian, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteByEmployeeID(ctx context.Context, employeeID string) error
	DeleteAll(ctx context.Context) (int64, error)
}

// LibrarianFilter defines query params for librarian listing.
type LibrarianFilter struct {
	Role   *domain.Role
	Limit  int
	Offset int
}

// bootstrapLockKey serializes first-librarian creation across connections.
const bootstrapLockKey int64 = 0x6c696272

const librarianColumns = `id, name, email, employee_id, role, password_hash, created_at, updated_at`

type librarianRepository struct {
	pool *pgxpool.Pool
}

// NewLibrarianRepository instantiates the repository.
func NewLibrarianRepository(pool *pgxpool.Pool) LibrarianRepository {
	return &librarianRepository{pool: pool}
}

func scanLibrarian(row pgx.Row) (*domain.Librarian, error) {
	var l domain.Librarian
	if err := row.Scan(
		&l.ID,
		&l.Name,
		&l.Email,
		&l.EmployeeID,
		&l.Role,
		&l.PasswordHash,
		&l.CreatedAt,
		&l.UpdatedAt,
	); err != nil {
		return nil, translate(err)
	}
	return &l, nil
}

func (r *librarianRepository) GetByEmail(ctx context.Context, email string) (*domain.Librarian, error) {
	query := `SELECT ` + librarianColumns + ` FROM librarians WHERE email=$1`
	return scanLibrarian(r.pool.QueryRow(ctx, query, email))
}

func (r *librarianRepository) GetByID(ctx context.Context, id string) (*domain.Librarian, error) {
	query := `SELECT ` + librarianColumns + ` FROM librarians WHERE id=$1`
	return scanLibrarian(r.pool.QueryRow(ctx, query, id))
}

func (r *librarianRepository) GetByEmployeeID(ctx context.Context, employeeID string) (*domain.Librarian, error) {
	query := `SELECT ` + librarianColumns + ` FROM librarians WHERE employee_id=$1`
	return scanLibrarian(r.pool.QueryRow(ctx, query, employeeID))
}

func (r *librarianRepository) Exists(ctx context.Context) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM librarians)`).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

const insertLibrarian = `
        INSERT INTO librarians (name, email, employee_id, role, password_hash)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`

func insertLibrarianRow(ctx context.Context, q querier, l *domain.Librarian) error {
	return translate(q.QueryRow(ctx, insertLibrarian,
		l.Name,
		l.Email,
		l.EmployeeID,
		l.Role,
		l.PasswordHash,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt))
}

func (r *librarianRepository) Create(ctx context.Context, librarian *domain.Librarian) error {
	return insertLibrarianRow(ctx, r.pool, librarian)
}

// CreateFirst inserts librarian only while the table is empty. Concurrent
// callers are serialized on a transaction-scoped advisory lock; losers get
// ErrBootstrapClosed.
func (r *librarianRepository) CreateFirst(ctx context.Context, librarian *domain.Librarian) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, bootstrapLockKey); err != nil {
			return err
		}

		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM librarians)`).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return ErrBootstrapClosed
		}
		return insertLibrarianRow(ctx, tx, librarian)
	})
}

func (r *librarianRepository) Update(ctx context.Context, id string, update domain.LibrarianUpdate) (*domain.Librarian, error) {
	if update.Empty() {
		return r.GetByID(ctx, id)
	}

	args := []any{}
	sets := []string{}
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}

	if update.Name != nil {
		set("name", *update.Name)
	}
	if update.Email != nil {
		set("email", *update.Email)
	}
	if update.EmployeeID != nil {
		set("employee_id", *update.EmployeeID)
	}
	if update.Role != nil {
		set("role", *update.Role)
	}
	if update.PasswordHash != nil {
		set("password_hash", *update.PasswordHash)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE librarians SET %s, updated_at=NOW() WHERE id=$%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), librarianColumns)

	return scanLibrarian(r.pool.QueryRow(ctx, query, args...))
}

func (r *librarianRepository) List(ctx context.Context, filter LibrarianFilter) ([]domain.Librarian, error) {
	query := `SELECT ` + librarianColumns + ` FROM librarians`
	args := []any{}

	if filter.Role != nil {
		args = append(args, *filter.Role)
		query += fmt.Sprintf(" WHERE role=$%d", len(args))
	}

	query += " ORDER BY created_at ASC"
	if filter.Limit > 0 {
		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Librarian{}
	for rows.Next() {
		l, err := scanLibrarian(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *l)
	}
	return result, rows.Err()
}

func (r *librarianRepository) DeleteByID(ctx context.Context, id string) error {
	return deleteWhere(ctx, r.pool, `DELETE FROM librarians WHERE id=$1`, id)
}

func (r *librarianRepository) DeleteByEmployeeID(ctx context.Context, employeeID string) error {
	return deleteWhere(ctx, r.pool, `DELETE FROM librarians WHERE employee_id=$1`, employeeID)
}

func (r *librarianRepository) DeleteAll(ctx context.Context) (int64, error) {
	return deleteAll(ctx, r.pool, `DELETE FROM librarians`)
}
