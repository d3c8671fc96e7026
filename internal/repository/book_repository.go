package repository

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/library-engine/internal/domain"
)

const (
	dialectPostgres     = "postgres"
	defaultPageSize     = 20
	bookSelectColumns   = `id, title, author_id, isbn, publisher, publication_year, category_id, description, total_copies, available_copies, status, created_at, updated_at`
	bookSelectFromBooks = `SELECT ` + bookSelectColumns + ` FROM books`
)

type bookRepository struct {
	q sqlx.ExtContext
}

func (r *bookRepository) Create(ctx context.Context, book *domain.Book) error {
	query := `
		INSERT INTO books (title, author_id, isbn, publisher, publication_year, category_id, description,
		                   total_copies, available_copies, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRowxContext(ctx, query,
		book.Title,
		book.AuthorID,
		book.ISBN,
		book.Publisher,
		book.PublicationYear,
		book.CategoryID,
		book.Description,
		book.TotalCopies,
		book.AvailableCopies,
		book.Status,
		time.Now(),
	).Scan(&book.ID, &book.CreatedAt, &book.UpdatedAt)

	return mapError(err)
}

func (r *bookRepository) GetByID(ctx context.Context, id int64) (*domain.Book, error) {
	return r.get(ctx, bookSelectFromBooks+` WHERE id = $1`, id)
}

func (r *bookRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Book, error) {
	return r.get(ctx, bookSelectFromBooks+` WHERE id = $1 FOR UPDATE`, id)
}

func (r *bookRepository) get(ctx context.Context, query string, args ...interface{}) (*domain.Book, error) {
	var book domain.Book
	if err := sqlx.GetContext(ctx, r.q, &book, query, args...); err != nil {
		return nil, mapError(err)
	}

	return &book, nil
}

func (r *bookRepository) Update(ctx context.Context, book *domain.Book) error {
	query := `
		UPDATE books
		SET title = $2, author_id = $3, isbn = $4, publisher = $5, publication_year = $6, category_id = $7,
		    description = $8, total_copies = $9, available_copies = $10, status = $11, updated_at = $12
		WHERE id = $1
	`

	book.UpdatedAt = time.Now()
	res, err := r.q.ExecContext(ctx, query,
		book.ID,
		book.Title,
		book.AuthorID,
		book.ISBN,
		book.Publisher,
		book.PublicationYear,
		book.CategoryID,
		book.Description,
		book.TotalCopies,
		book.AvailableCopies,
		book.Status,
		book.UpdatedAt,
	)
	if err != nil {
		return mapError(err)
	}

	return requireAffected(res)
}

// Search builds the catalog query with goqu so that only the filters that
// were given end up in the WHERE clause.
func (r *bookRepository) Search(ctx context.Context, filter domain.BookFilter) ([]*domain.BookListing, error) {
	query, args, err := buildSearchQuery(filter)
	if err != nil {
		return nil, err
	}

	books := []*domain.BookListing{}
	if err := sqlx.SelectContext(ctx, r.q, &books, query, args...); err != nil {
		return nil, mapError(err)
	}

	return books, nil
}

func buildSearchQuery(filter domain.BookFilter) (string, []interface{}, error) {
	if filter.PageSize <= 0 {
		filter.PageSize = defaultPageSize
	}

	ds := goqu.Dialect(dialectPostgres).
		From(goqu.T("books").As("b")).
		InnerJoin(goqu.T("authors").As("a"), goqu.On(goqu.I("a.id").Eq(goqu.I("b.author_id")))).
		LeftJoin(goqu.T("categories").As("c"), goqu.On(goqu.I("c.id").Eq(goqu.I("b.category_id")))).
		Select(
			goqu.I("b.id"), goqu.I("b.title"), goqu.I("b.author_id"), goqu.I("b.isbn"),
			goqu.I("b.publisher"), goqu.I("b.publication_year"), goqu.I("b.category_id"),
			goqu.I("b.description"), goqu.I("b.total_copies"), goqu.I("b.available_copies"),
			goqu.I("b.status"), goqu.I("b.created_at"), goqu.I("b.updated_at"),
			goqu.I("a.name").As("author_name"),
			goqu.I("c.name").As("category_name"),
		).
		Order(goqu.I("b.title").Asc(), goqu.I("b.id").Asc()).
		Limit(uint(filter.PageSize)).
		Offset(uint(filter.Offset())).
		Prepared(true)

	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		ds = ds.Where(goqu.Or(
			goqu.I("b.title").ILike(pattern),
			goqu.I("a.name").ILike(pattern),
			goqu.I("b.isbn").ILike(pattern),
			goqu.I("b.description").ILike(pattern),
		))
	}

	if filter.CategoryID != nil {
		ds = ds.Where(goqu.I("b.category_id").Eq(*filter.CategoryID))
	}

	if filter.AuthorID != nil {
		ds = ds.Where(goqu.I("b.author_id").Eq(*filter.AuthorID))
	}

	return ds.ToSQL()
}

func (r *bookRepository) ListRecentAvailable(ctx context.Context, limit int) ([]*domain.Book, error) {
	query := bookSelectFromBooks + `
		WHERE available_copies > 0
		ORDER BY created_at DESC
		LIMIT $1
	`

	books := []*domain.Book{}
	if err := sqlx.SelectContext(ctx, r.q, &books, query, limit); err != nil {
		return nil, mapError(err)
	}

	return books, nil
}

func (r *bookRepository) ListPopular(ctx context.Context, limit int) ([]*domain.Book, error) {
	query := bookSelectFromBooks + `
		WHERE EXISTS (SELECT 1 FROM loans l WHERE l.book_id = books.id)
		ORDER BY random()
		LIMIT $1
	`

	books := []*domain.Book{}
	if err := sqlx.SelectContext(ctx, r.q, &books, query, limit); err != nil {
		return nil, mapError(err)
	}

	return books, nil
}
