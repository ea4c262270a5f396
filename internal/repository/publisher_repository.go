package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/library-service/internal/domain"
)

// PublisherRepository persists publishers.
type PublisherRepository interface {
	Create(ctx context.Context, publisher *domain.Publisher) error
	GetByID(ctx context.Context, id string) (*domain.Publisher, error)
	GetByName(ctx context.Context, name string) (*domain.Publisher, error)
	List(ctx context.Context, nameContains string) ([]domain.Publisher, error)
	Update(ctx context.Context, id string, update domain.PublisherUpdate) (*domain.Publisher, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteByName(ctx context.Context, name string) error
	DeleteAll(ctx context.Context) (int64, error)
}

const publisherColumns = `id, name, address, contact_info, created_at, updated_at`

type publisherRepository struct {
	pool *pgxpool.Pool
}

// NewPublisherRepository instantiates the repository.
func NewPublisherRepository(pool *pgxpool.Pool) PublisherRepository {
	return &publisherRepository{pool: pool}
}

func scanPublisher(row pgx.Row) (*domain.Publisher, error) {
	var p domain.Publisher
	if err := row.Scan(&p.ID, &p.Name, &p.Address, &p.ContactInfo, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *publisherRepository) Create(ctx context.Context, publisher *domain.Publisher) error {
	const query = `
        INSERT INTO publishers (name, address, contact_info)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return translate(r.pool.QueryRow(ctx, query, publisher.Name, publisher.Address, publisher.ContactInfo).
		Scan(&publisher.ID, &publisher.CreatedAt, &publisher.UpdatedAt))
}

func (r *publisherRepository) GetByID(ctx context.Context, id string) (*domain.Publisher, error) {
	return scanPublisher(r.pool.QueryRow(ctx, `SELECT `+publisherColumns+` FROM publishers WHERE id=$1`, id))
}

func (r *publisherRepository) GetByName(ctx context.Context, name string) (*domain.Publisher, error) {
	return scanPublisher(r.pool.QueryRow(ctx, `SELECT `+publisherColumns+` FROM publishers WHERE name=$1`, name))
}

func (r *publisherRepository) List(ctx context.Context, nameContains string) ([]domain.Publisher, error) {
	query := `SELECT ` + publisherColumns + ` FROM publishers`
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

	result := []domain.Publisher{}
	for rows.Next() {
		p, err := scanPublisher(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

func (r *publisherRepository) Update(ctx context.Context, id string, update domain.PublisherUpdate) (*domain.Publisher, error) {
	args := []any{}
	sets := []string{}
	if update.Name != nil {
		args = append(args, *update.Name)
		sets = append(sets, fmt.Sprintf("name=$%d", len(args)))
	}
	if update.Address != nil {
		args = append(args, *update.Address)
		sets = append(sets, fmt.Sprintf("address=$%d", len(args)))
	}
	if update.ContactInfo != nil {
		args = append(args, *update.ContactInfo)
		sets = append(sets, fmt.Sprintf("contact_info=$%d", len(args)))
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE publishers SET %s, updated_at=NOW() WHERE id=$%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), publisherColumns)
	return scanPublisher(r.pool.QueryRow(ctx, query, args...))
}

func (r *publisherRepository) DeleteByID(ctx context.Context, id string) error {
	return deleteWhere(ctx, r.pool, `DELETE FROM publishers WHERE id=$1`, id)
}

func (r *publisherRepository) DeleteByName(ctx context.Context, name string) error {
	return deleteWhere(ctx, r.pool, `DELETE FROM publishers WHERE name=$1`, name)
}

func (r *publisherRepository) DeleteAll(ctx context.Context) (int64, error) {
	return deleteAll(ctx, r.pool, `DELETE FROM publishers`)
}
