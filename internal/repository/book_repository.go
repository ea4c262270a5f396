package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/library-service/internal/domain"
)

// BookRepository persists books together with their publisher, author and
// category relations. Related rows are connected by name and created when
// missing.
type BookRepository interface {
	Create(ctx context.Context, input domain.BookInput) (*domain.Book, error)
	GetByID(ctx context.Context, id string) (*domain.Book, error)
	GetByISBN(ctx context.Context, isbn string) (*domain.Book, error)
	ListByTitle(ctx context.Context, title string) ([]domain.Book, error)
	List(ctx context.Context, filter domain.BookFilter) ([]domain.Book, error)
	UpdateByID(ctx context.Context, id string, update domain.BookUpdate) (*domain.Book, error)
	UpdateByISBN(ctx context.Context, isbn string, update domain.BookUpdate) (*domain.Book, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteByISBN(ctx context.Context, isbn string) error
	DeleteAll(ctx context.Context) (int64, error)
}

const bookSelect = `
        SELECT b.id, b.title, b.isbn, b.publication_year, b.cover_image, b.created_at, b.updated_at,
               p.id, p.name, p.address, p.contact_info, p.created_at, p.updated_at
        FROM books b
        JOIN publishers p ON p.id = b.publisher_id`

type bookRepository struct {
	pool *pgxpool.Pool
}

// NewBookRepository instantiates the repository.
func NewBookRepository(pool *pgxpool.Pool) BookRepository {
	return &bookRepository{pool: pool}
}

func scanBook(row pgx.Row) (*domain.Book, error) {
	var (
		b domain.Book
		p domain.Publisher
	)
	if err := row.Scan(
		&b.ID,
		&b.Title,
		&b.ISBN,
		&b.PublicationYear,
		&b.CoverImage,
		&b.CreatedAt,
		&b.UpdatedAt,
		&p.ID,
		&p.Name,
		&p.Address,
		&p.ContactInfo,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, translate(err)
	}
	b.Publisher = &p
	b.Authors = []domain.Author{}
	b.Categories = []domain.Category{}
	return &b, nil
}

func (r *bookRepository) Create(ctx context.Context, input domain.BookInput) (*domain.Book, error) {
	var book *domain.Book
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		publisherID, err := upsertNamed(ctx, tx, "publishers", input.PublisherName)
		if err != nil {
			return err
		}

		const query = `
            INSERT INTO books (title, isbn, publication_year, cover_image, publisher_id)
            VALUES ($1,$2,$3,$4,$5)
            RETURNING id`
		var id string
		if err := tx.QueryRow(ctx, query,
			input.Title,
			input.ISBN,
			input.PublicationYear,
			input.CoverImage,
			publisherID,
		).Scan(&id); err != nil {
			return translate(err)
		}

		if err := linkNamed(ctx, tx, id, "authors", "book_authors", "author_id", input.AuthorNames); err != nil {
			return err
		}
		if err := linkNamed(ctx, tx, id, "categories", "book_categories", "category_id", input.CategoryNames); err != nil {
			return err
		}

		book, err = getBook(ctx, tx, "b.id=$1", id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

func (r *bookRepository) GetByID(ctx context.Context, id string) (*domain.Book, error) {
	return getBook(ctx, r.pool, "b.id=$1", id)
}

func (r *bookRepository) GetByISBN(ctx context.Context, isbn string) (*domain.Book, error) {
	return getBook(ctx, r.pool, "b.isbn=$1", isbn)
}

func (r *bookRepository) ListByTitle(ctx context.Context, title string) ([]domain.Book, error) {
	return listBooks(ctx, r.pool, bookSelect+" WHERE b.title=$1 ORDER BY b.created_at", title)
}

func (r *bookRepository) List(ctx context.Context, filter domain.BookFilter) ([]domain.Book, error) {
	query := bookSelect
	args := []any{}
	clauses := []string{}

	if filter.Title != "" {
		args = append(args, containsPattern(filter.Title))
		clauses = append(clauses, fmt.Sprintf("b.title ILIKE $%d", len(args)))
	}
	if filter.ISBN != "" {
		args = append(args, containsPattern(filter.ISBN))
		clauses = append(clauses, fmt.Sprintf("b.isbn ILIKE $%d", len(args)))
	}
	if filter.PublisherName != "" {
		args = append(args, containsPattern(filter.PublisherName))
		clauses = append(clauses, fmt.Sprintf("p.name ILIKE $%d", len(args)))
	}
	if filter.AuthorName != "" {
		args = append(args, containsPattern(filter.AuthorName))
		clauses = append(clauses, fmt.Sprintf(`EXISTS (
            SELECT 1 FROM book_authors ba JOIN authors a ON a.id = ba.author_id
            WHERE ba.book_id = b.id AND a.name ILIKE $%d)`, len(args)))
	}
	if filter.CategoryName != "" {
		args = append(args, containsPattern(filter.CategoryName))
		clauses = append(clauses, fmt.Sprintf(`EXISTS (
            SELECT 1 FROM book_categories bc JOIN categories c ON c.id = bc.category_id
            WHERE bc.book_id = b.id AND c.name ILIKE $%d)`, len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY b.title, b.created_at"

	return listBooks(ctx, r.pool, query, args...)
}

func (r *bookRepository) UpdateByID(ctx context.Context, id string, update domain.BookUpdate) (*domain.Book, error) {
	return r.update(ctx, "id=$1", id, update)
}

func (r *bookRepository) UpdateByISBN(ctx context.Context, isbn string, update domain.BookUpdate) (*domain.Book, error) {
	return r.update(ctx, "isbn=$1", isbn, update)
}

func (r *bookRepository) update(ctx context.Context, where string, key string, update domain.BookUpdate) (*domain.Book, error) {
	var book *domain.Book
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var id string
		if err := tx.QueryRow(ctx, `SELECT id FROM books WHERE `+where+` FOR UPDATE`, key).Scan(&id); err != nil {
			return translate(err)
		}

		args := []any{}
		sets := []string{}
		set := func(column string, value any) {
			args = append(args, value)
			sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
		}

		if update.Title != nil {
			set("title", *update.Title)
		}
		if update.ISBN != nil {
			set("isbn", *update.ISBN)
		}
		if update.PublicationYear != nil {
			set("publication_year", *update.PublicationYear)
		}
		if update.CoverImage != nil {
			set("cover_image", *update.CoverImage)
		}
		if update.PublisherName != nil {
			publisherID, err := upsertNamed(ctx, tx, "publishers", *update.PublisherName)
			if err != nil {
				return err
			}
			set("publisher_id", publisherID)
		}

		args = append(args, id)
		query := fmt.Sprintf(`UPDATE books SET %s WHERE id=$%d`,
			strings.Join(append(sets, "updated_at=NOW()"), ", "), len(args))
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return translate(err)
		}

		if update.AuthorNames != nil {
			if _, err := tx.Exec(ctx, `DELETE FROM book_authors WHERE book_id=$1`, id); err != nil {
				return err
			}
			if err := linkNamed(ctx, tx, id, "authors", "book_authors", "author_id", update.AuthorNames); err != nil {
				return err
			}
		}
		if update.CategoryNames != nil {
			if _, err := tx.Exec(ctx, `DELETE FROM book_categories WHERE book_id=$1`, id); err != nil {
				return err
			}
			if err := linkNamed(ctx, tx, id, "categories", "book_categories", "category_id", update.CategoryNames); err != nil {
				return err
			}
		}

		var err error
		book, err = getBook(ctx, tx, "b.id=$1", id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

func (r *bookRepository) DeleteByID(ctx context.Context, id string) error {
	return deleteWhere(ctx, r.pool, `DELETE FROM books WHERE id=$1`, id)
}

func (r *bookRepository) DeleteByISBN(ctx context.Context, isbn string) error {
	return deleteWhere(ctx, r.pool, `DELETE FROM books WHERE isbn=$1`, isbn)
}

func (r *bookRepository) DeleteAll(ctx context.Context) (int64, error) {
	return deleteAll(ctx, r.pool, `DELETE FROM books`)
}

// upsertNamed returns the id of the row called name in table, inserting it if needed.
func upsertNamed(ctx context.Context, q querier, table, name string) (string, error) {
	query := fmt.Sprintf(`
        INSERT INTO %s (name) VALUES ($1)
        ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
        RETURNING id`, table)
	var id string
	if err := q.QueryRow(ctx, query, name).Scan(&id); err != nil {
		return "", translate(err)
	}
	return id, nil
}

func linkNamed(ctx context.Context, q querier, bookID, table, joinTable, column string, names []string) error {
	link := fmt.Sprintf(`INSERT INTO %s (book_id, %s) VALUES ($1,$2) ON CONFLICT DO NOTHING`, joinTable, column)
	for _, name := range names {
		id, err := upsertNamed(ctx, q, table, name)
		if err != nil {
			return err
		}
		if _, err := q.Exec(ctx, link, bookID, id); err != nil {
			return translate(err)
		}
	}
	return nil
}

func getBook(ctx context.Context, q querier, where string, key string) (*domain.Book, error) {
	book, err := scanBook(q.QueryRow(ctx, bookSelect+" WHERE "+where, key))
	if err != nil {
		return nil, err
	}
	if err := loadRelations(ctx, q, []*domain.Book{book}); err != nil {
		return nil, err
	}
	return book, nil
}

func listBooks(ctx context.Context, q querier, query string, args ...any) ([]domain.Book, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		books = append(books, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := loadRelations(ctx, q, books); err != nil {
		return nil, err
	}

	result := make([]domain.Book, 0, len(books))
	for _, b := range books {
		result = append(result, *b)
	}
	return result, nil
}

// loadRelations fills authors and categories for books with one query per relation.
func loadRelations(ctx context.Context, q querier, books []*domain.Book) error {
	if len(books) == 0 {
		return nil
	}

	byID := make(map[string]*domain.Book, len(books))
	ids := make([]string, 0, len(books))
	for _, b := range books {
		byID[b.ID] = b
		ids = append(ids, b.ID)
	}

	const authorsQuery = `
        SELECT ba.book_id::text, a.id, a.name, a.biography, a.created_at, a.updated_at
        FROM book_authors ba JOIN authors a ON a.id = ba.author_id
        WHERE ba.book_id::text = ANY($1)
        ORDER BY a.name`
	rows, err := q.Query(ctx, authorsQuery, ids)
	if err != nil {
		return err
	}
	for rows.Next() {
		var (
			bookID string
			a      domain.Author
		)
		if err := rows.Scan(&bookID, &a.ID, &a.Name, &a.Biography, &a.CreatedAt, &a.UpdatedAt); err != nil {
			rows.Close()
			return err
		}
		byID[bookID].Authors = append(byID[bookID].Authors, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	const categoriesQuery = `
        SELECT bc.book_id::text, c.id, c.name, c.description, c.created_at, c.updated_at
        FROM book_categories bc JOIN categories c ON c.id = bc.category_id
        WHERE bc.book_id::text = ANY($1)
        ORDER BY c.name`
	rows, err = q.Query(ctx, categoriesQuery, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			bookID string
			c      domain.Category
		)
		if err := rows.Scan(&bookID, &c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return err
		}
		byID[bookID].Categories = append(byID[bookID].Categories, c)
	}
	return rows.Err()
}
