package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/library-service/internal/domain"
)

// CategoryRepository persists categories. Categories are addressed by name.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	GetByName(ctx context.Context, name string) (*domain.Category, error)
	List(ctx context.Context, nameContains string) ([]domain.Category, error)
	UpdateByName(ctx context.Context, name string, update domain.CategoryUpdate) (*domain.Category, error)
	DeleteByName(ctx context.Context, name string) error
	DeleteAll(ctx context.Context) (int64, error)
}

const categoryColumns = `id, name, description, created_at, updated_at`

type categoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository instantiates the repository.
func NewCategoryRepository(pool *pgxpool.Pool) CategoryRepository {
	return &categoryRepository{pool: pool}
}

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var c domain.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	const query = `
        INSERT INTO categories (name, description)
        VALUES ($1,$2)
        RETURNING id, created_at, updated_at`
	return translate(r.pool.QueryRow(ctx, query, category.Name, category.Description).
		Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt))
}

func (r *categoryRepository) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	return scanCategory(r.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE name=$1`, name))
}

func (r *categoryRepository) List(ctx context.Context, nameContains string) ([]domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories`
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

	result := []domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

func (r *categoryRepository) UpdateByName(ctx context.Context, name string, update domain.CategoryUpdate) (*domain.Category, error) {
	args := []any{}
	sets := []string{}
	if update.Name != nil {
		args = append(args, *update.Name)
		sets = append(sets, fmt.Sprintf("name=$%d", len(args)))
	}
	if update.Description != nil {
		args = append(args, *update.Description)
		sets = append(sets, fmt.Sprintf("description=$%d", len(args)))
	}
	if len(sets) == 0 {
		return r.GetByName(ctx, name)
	}

	args = append(args, name)
	query := fmt.Sprintf(`UPDATE categories SET %s, updated_at=NOW() WHERE name=$%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), categoryColumns)
	return scanCategory(r.pool.QueryRow(ctx, query, args...))
}

func (r *categoryRepository) DeleteByName(ctx context.Context, name string) error {
	return deleteWhere(ctx, r.pool, `DELETE FROM categories WHERE name=$1`, name)
}

func (r *categoryRepository) DeleteAll(ctx context.Context) (int64, error) {
	return deleteAll(ctx, r.pool, `DELETE FROM categories`)
}
