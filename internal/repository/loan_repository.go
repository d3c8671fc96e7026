package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/segyhp/library-engine/internal/domain"
)

const loanColumns = `id, book_id, user_id, loan_date, due_date, return_date, status, fine, notes, created_at, updated_at`

// open statuses, kept in one place for every query that needs them
const openLoanCondition = `status IN ('active', 'renewed', 'late')`

type loanRepository struct {
	q sqlx.ExtContext
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (book_id, user_id, loan_date, due_date, return_date, status, fine, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRowxContext(ctx, query,
		loan.BookID,
		loan.UserID,
		loan.LoanDate,
		loan.DueDate,
		loan.ReturnDate,
		loan.Status,
		loan.Fine,
		loan.Notes,
		time.Now(),
	).Scan(&loan.ID, &loan.CreatedAt, &loan.UpdatedAt)

	return mapError(err)
}

func (r *loanRepository) GetByID(ctx context.Context, id int64) (*domain.Loan, error) {
	return r.get(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1`, id)
}

func (r *loanRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Loan, error) {
	return r.get(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1 FOR UPDATE`, id)
}

func (r *loanRepository) FindOpenByBookAndUser(ctx context.Context, bookID, userID int64) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans
		WHERE book_id = $1 AND user_id = $2 AND ` + openLoanCondition + `
		ORDER BY loan_date DESC, id DESC
		LIMIT 1`

	return r.get(ctx, query, bookID, userID)
}

func (r *loanRepository) get(ctx context.Context, query string, args ...interface{}) (*domain.Loan, error) {
	var loan domain.Loan
	if err := sqlx.GetContext(ctx, r.q, &loan, query, args...); err != nil {
		return nil, mapError(err)
	}

	return &loan, nil
}

func (r *loanRepository) Update(ctx context.Context, loan *domain.Loan) error {
	query := `
		UPDATE loans
		SET due_date = $2, return_date = $3, status = $4, fine = $5, notes = $6, updated_at = $7
		WHERE id = $1
	`

	loan.UpdatedAt = time.Now()
	res, err := r.q.ExecContext(ctx, query,
		loan.ID,
		loan.DueDate,
		loan.ReturnDate,
		loan.Status,
		loan.Fine,
		loan.Notes,
		loan.UpdatedAt,
	)
	if err != nil {
		return mapError(err)
	}

	return requireAffected(res)
}

func (r *loanRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.LoanDetail, error) {
	query := `
		SELECT l.id, l.book_id, l.user_id, l.loan_date, l.due_date, l.return_date, l.status, l.fine,
		       l.notes, l.created_at, l.updated_at, b.title AS book_title
		FROM loans l
		JOIN books b ON b.id = l.book_id
		WHERE l.user_id = $1
		ORDER BY l.loan_date DESC, l.id DESC
	`

	loans := []*domain.LoanDetail{}
	if err := sqlx.SelectContext(ctx, r.q, &loans, query, userID); err != nil {
		return nil, mapError(err)
	}

	return loans, nil
}

func (r *loanRepository) ListOpen(ctx context.Context) ([]*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE ` + openLoanCondition + ` ORDER BY due_date, id`

	loans := []*domain.Loan{}
	if err := sqlx.SelectContext(ctx, r.q, &loans, query); err != nil {
		return nil, mapError(err)
	}

	return loans, nil
}

func (r *loanRepository) CountOpenByUser(ctx context.Context, userID int64) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM loans WHERE user_id = $1 AND `+openLoanCondition, userID)
}

func (r *loanRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM loans WHERE user_id = $1`, userID)
}

func (r *loanRepository) count(ctx context.Context, query string, args ...interface{}) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, r.q, &n, query, args...); err != nil {
		return 0, mapError(err)
	}
	return n, nil
}
