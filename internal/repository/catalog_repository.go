package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/segyhp/library-engine/internal/domain"
)

type categoryRepository struct {
	q sqlx.ExtContext
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (name, description)
		VALUES ($1, $2)
		RETURNING id
	`

	err := r.q.QueryRowxContext(ctx, query, category.Name, category.Description).Scan(&category.ID)
	return mapError(err)
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	query := `
		SELECT id, name, description
		FROM categories
		WHERE id = $1
	`

	var category domain.Category
	if err := sqlx.GetContext(ctx, r.q, &category, query, id); err != nil {
		return nil, mapError(err)
	}

	return &category, nil
}

func (r *categoryRepository) List(ctx context.Context, limit int) ([]*domain.Category, error) {
	query := `
		SELECT id, name, description
		FROM categories
		ORDER BY name
	`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	categories := []*domain.Category{}
	if err := sqlx.SelectContext(ctx, r.q, &categories, query, args...); err != nil {
		return nil, mapError(err)
	}

	return categories, nil
}

type authorRepository struct {
	q sqlx.ExtContext
}

func (r *authorRepository) Create(ctx context.Context, author *domain.Author) error {
	query := `
		INSERT INTO authors (name, nationality, birth_date, biography)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.q.QueryRowxContext(ctx, query,
		author.Name,
		author.Nationality,
		author.BirthDate,
		author.Biography,
	).Scan(&author.ID)

	return mapError(err)
}

func (r *authorRepository) GetByID(ctx context.Context, id int64) (*domain.Author, error) {
	query := `
		SELECT id, name, nationality, birth_date, biography
		FROM authors
		WHERE id = $1
	`

	var author domain.Author
	if err := sqlx.GetContext(ctx, r.q, &author, query, id); err != nil {
		return nil, mapError(err)
	}

	return &author, nil
}

func (r *authorRepository) List(ctx context.Context) ([]*domain.Author, error) {
	query := `
		SELECT id, name, nationality, birth_date, biography
		FROM authors
		ORDER BY name
	`

	authors := []*domain.Author{}
	if err := sqlx.SelectContext(ctx, r.q, &authors, query); err != nil {
		return nil, mapError(err)
	}

	return authors, nil
}
