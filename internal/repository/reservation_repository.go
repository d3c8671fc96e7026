package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/segyhp/library-engine/internal/domain"
)

const reservationColumns = `id, book_id, user_id, reserved_at, expires_on, status, notes`

type reservationRepository struct {
	q sqlx.ExtContext
}

func (r *reservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	query := `
		INSERT INTO reservations (book_id, user_id, reserved_at, expires_on, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.q.QueryRowxContext(ctx, query,
		reservation.BookID,
		reservation.UserID,
		reservation.ReservedAt,
		reservation.ExpiresOn,
		reservation.Status,
		reservation.Notes,
	).Scan(&reservation.ID)

	return mapError(err)
}

func (r *reservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	return r.get(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id)
}

func (r *reservationRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Reservation, error) {
	return r.get(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1 FOR UPDATE`, id)
}

func (r *reservationRepository) FindActiveByBookAndUser(ctx context.Context, bookID, userID int64) (*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
		WHERE book_id = $1 AND user_id = $2 AND status = 'active'`

	return r.get(ctx, query, bookID, userID)
}

func (r *reservationRepository) get(ctx context.Context, query string, args ...interface{}) (*domain.Reservation, error) {
	var reservation domain.Reservation
	if err := sqlx.GetContext(ctx, r.q, &reservation, query, args...); err != nil {
		return nil, mapError(err)
	}

	return &reservation, nil
}

func (r *reservationRepository) Update(ctx context.Context, reservation *domain.Reservation) error {
	query := `
		UPDATE reservations
		SET expires_on = $2, status = $3, notes = $4
		WHERE id = $1
	`

	res, err := r.q.ExecContext(ctx, query,
		reservation.ID,
		reservation.ExpiresOn,
		reservation.Status,
		reservation.Notes,
	)
	if err != nil {
		return mapError(err)
	}

	return requireAffected(res)
}

func (r *reservationRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.ReservationDetail, error) {
	query := `
		SELECT r.id, r.book_id, r.user_id, r.reserved_at, r.expires_on, r.status, r.notes,
		       b.title AS book_title
		FROM reservations r
		JOIN books b ON b.id = r.book_id
		WHERE r.user_id = $1
		ORDER BY r.reserved_at DESC, r.id DESC
	`

	reservations := []*domain.ReservationDetail{}
	if err := sqlx.SelectContext(ctx, r.q, &reservations, query, userID); err != nil {
		return nil, mapError(err)
	}

	return reservations, nil
}

func (r *reservationRepository) ListActive(ctx context.Context) ([]*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE status = 'active' ORDER BY expires_on, id`

	reservations := []*domain.Reservation{}
	if err := sqlx.SelectContext(ctx, r.q, &reservations, query); err != nil {
		return nil, mapError(err)
	}

	return reservations, nil
}

func (r *reservationRepository) CountActiveByUser(ctx context.Context, userID int64) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM reservations WHERE user_id = $1 AND status = 'active'`
	if err := sqlx.GetContext(ctx, r.q, &n, query, userID); err != nil {
		return 0, mapError(err)
	}
	return n, nil
}
