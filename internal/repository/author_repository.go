package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/library-service/internal/domain"
)

// AuthorRepository persists authors.
type AuthorRepository interface {
	Create(ctx context.Context, author *domain.Author) error
	GetByID(ctx context.Context, id string) (*domain.Author, error)
	GetByName(ctx context.Context, name string) (*domain.Author, error)
	List(ctx context.Context, nameContains string) ([]domain.Author, error)
	Update(ctx context.Context, id string, update domain.AuthorUpdate) (*domain.Author, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteByName(ctx context.Context, name string) error
	DeleteAll(ctx context.Context) (int64, error)
}

const authorColumns = `id, name, biography, created_at, updated_at`

type authorRepository struct {
	pool *pgxpool.Pool
}

// NewAuthorRepository instantiates the repository.
func NewAuthorRepository(pool *pgxpool.Pool) AuthorRepository {
	return &authorRepository{pool: pool}
}

func scanAuthor(row pgx.Row) (*domain.Author, error) {
	var a domain.Author
	if err := row.Scan(&a.ID, &a.Name, &a.Biography, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *authorRepository) Create(ctx context.Context, author *domain.Author) error {
	const query = `
        INSERT INTO authors (name, biography)
        VALUES ($1,$2)
        RETURNING id, created_at, updated_at`
	return translate(r.pool.QueryRow(ctx, query, author.Name, author.Biography).
		Scan(&author.ID, &author.CreatedAt, &author.UpdatedAt))
}

func (r *authorRepository) GetByID(ctx context.Context, id string) (*domain.Author, error) {
	return scanAuthor(r.pool.QueryRow(ctx, `SELECT `+authorColumns+` FROM authors WHERE id=$1`, id))
}

func (r *authorRepository) GetByName(ctx context.Context, name string) (*domain.Author, error) {
	return scanAuthor(r.pool.QueryRow(ctx, `SELECT `+authorColumns+` FROM authors WHERE name=$1`, name))
}

func (r *authorRepository) List(ctx context.Context, nameContains string) ([]domain.Author, error) {
	query := `SELECT ` + authorColumns + ` FROM authors`
	args := []any{}
	if nameContains != "" {
		args = append(args, containsPattern(nameContains))
		query += " WHERE name ILIKE $1"
	}
	query += " ORDER BY name"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Author{}
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}

func (r *authorRepository) Update(ctx context.Context, id string, update domain.AuthorUpdate) (*domain.Author, error) {
	args := []any{}
	sets := []string{}
	if update.Name != nil {
		args = append(args, *update.Name)
		sets = append(sets, fmt.Sprintf("name=$%d", len(args)))
	}
	if update.Biography != nil {
		args = append(args, *update.Biography)
		sets = append(sets, fmt.Sprintf("biography=$%d", len(args)))
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE authors SET %s, updated_at=NOW() WHERE id=$%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), authorColumns)
	return scanAuthor(r.pool.QueryRow(ctx, query, args...))
}

func (r *authorRepository) DeleteByID(ctx context.Context, id string) error {
	return deleteWhere(ctx, r.pool, `DELETE FROM authors WHERE id=$1`, id)
}

func (r *authorRepository) DeleteByName(ctx context.Context, name string) error {
	return deleteWhere(ctx, r.pool, `DELETE FROM authors WHERE name=$1`, name)
}

func (r *authorRepository) DeleteAll(ctx context.Context) (int64, error) {
	return deleteAll(ctx, r.pool, `DELETE FROM authors`)
}
