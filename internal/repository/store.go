package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a lookup matches no row
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a write violates a unique constraint
	ErrDuplicate = errors.New("duplicate record")
)

const uniqueViolation = "23505"

type store struct {
	db *sqlx.DB        // nil inside a transaction
	q  sqlx.ExtContext // *sqlx.DB or *sqlx.Tx
}

// NewStore creates a Store backed by db
func NewStore(db *sqlx.DB) Store {
	return &store{db: db, q: db}
}

func (s *store) Categories() CategoryRepository      { return &categoryRepository{q: s.q} }
func (s *store) Authors() AuthorRepository           { return &authorRepository{q: s.q} }
func (s *store) Books() BookRepository               { return &bookRepository{q: s.q} }
func (s *store) Loans() LoanRepository               { return &loanRepository{q: s.q} }
func (s *store) Reservations() ReservationRepository { return &reservationRepository{q: s.q} }
func (s *store) Profiles() ProfileRepository         { return &profileRepository{q: s.q} }

func (s *store) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	if s.db == nil {
		// already inside a transaction
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&store{q: tx}); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *store) LockUser(ctx context.Context, userID int64) error {
	// transaction-scoped advisory lock; released on commit or rollback
	_, err := s.q.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, userID)
	return err
}

// mapError translates driver errors into the repository sentinels
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrDuplicate, constraintName(err))
	}

	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}

	return false
}

func constraintName(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}

	return ""
}

// requireAffected turns an UPDATE that matched nothing into ErrNotFound
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
