package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/segyhp/library-engine/internal/config"
	"github.com/segyhp/library-engine/internal/domain"
	"github.com/segyhp/library-engine/internal/repository"
	customError "github.com/segyhp/library-engine/pkg/errors"
)

type ReservationService struct {
	base
}

func NewReservationService(store repository.Store, cfg *config.Config, logger *slog.Logger) *ReservationService {
	return &ReservationService{base: newBase(store, cfg, logger)}
}

// CreateReservation places a hold on a book that cannot be borrowed right
// now. A book with a free copy is refused with an informational error so the
// caller can offer a loan instead.
func (s *ReservationService) CreateReservation(ctx context.Context, userID, bookID int64) (*domain.Reservation, error) {
	now := s.now()
	today := s.today()
	var reservation *domain.Reservation

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.LockUser(ctx, userID); err != nil {
			return dbError(err)
		}

		book, err := tx.Books().GetByID(ctx, bookID)
		if err != nil {
			return lookupError(err, customError.WrapBookNotFound(bookID))
		}
		if book.IsAvailableForLoan() {
			return customError.WrapBookAvailableForLoan(bookID)
		}

		// stale holds must not count against the user
		if _, err := s.expireForUser(ctx, tx, userID); err != nil {
			return err
		}

		_, err = tx.Reservations().FindActiveByBookAndUser(ctx, bookID, userID)
		if err == nil {
			return customError.WrapReservationAlreadyActive(bookID)
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return dbError(err)
		}

		active, err := tx.Reservations().CountActiveByUser(ctx, userID)
		if err != nil {
			return dbError(err)
		}
		if active >= s.config.Business.MaxActiveReservations {
			return customError.WrapReservationLimitExceeded(s.config.Business.MaxActiveReservations)
		}

		reservation = domain.NewReservation(bookID, userID, now, today, s.config.Business.ReservationDays)
		err = tx.Reservations().Create(ctx, reservation)
		if errors.Is(err, repository.ErrDuplicate) {
			return customError.WrapReservationAlreadyActive(bookID)
		}
		return dbError(err)
	})
	if err != nil {
		return nil, dbError(err)
	}

	s.logger.InfoContext(ctx, "reservation created",
		slog.Int64("reservation_id", reservation.ID),
		slog.Int64("book_id", bookID),
		slog.Int64("user_id", userID),
	)

	return reservation, nil
}

// expireForUser moves the user's past-expiry active reservations to expired
func (s *ReservationService) expireForUser(ctx context.Context, tx repository.Store, userID int64) (int, error) {
	today := s.today()

	reservations, err := tx.Reservations().ListByUser(ctx, userID)
	if err != nil {
		return 0, dbError(err)
	}

	expired := 0
	for _, r := range reservations {
		if r.RefreshExpiry(today) {
			if err := tx.Reservations().Update(ctx, &r.Reservation); err != nil {
				return 0, dbError(err)
			}
			expired++
		}
	}

	return expired, nil
}

// ListUserReservations returns the user's reservations, newest first, with
// past-expiry holds already marked expired.
func (s *ReservationService) ListUserReservations(ctx context.Context, userID int64) ([]*domain.ReservationDetail, error) {
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		_, err := s.expireForUser(ctx, tx, userID)
		return err
	})
	if err != nil {
		return nil, dbError(err)
	}

	reservations, err := s.store.Reservations().ListByUser(ctx, userID)
	if err != nil {
		return nil, dbError(err)
	}

	return reservations, nil
}

// CancelReservation cancels one of the user's active reservations
func (s *ReservationService) CancelReservation(ctx context.Context, userID, reservationID int64) (*domain.Reservation, error) {
	return s.transition(ctx, reservationID,
		func(r *domain.Reservation) bool { return r.UserID == userID },
		(*domain.Reservation).Cancel,
	)
}

// CompleteReservation marks a reservation as handed over to the user
func (s *ReservationService) CompleteReservation(ctx context.Context, reservationID int64) (*domain.Reservation, error) {
	return s.transition(ctx, reservationID,
		func(*domain.Reservation) bool { return true },
		(*domain.Reservation).Complete,
	)
}

func (s *ReservationService) transition(
	ctx context.Context,
	reservationID int64,
	visible func(*domain.Reservation) bool,
	apply func(*domain.Reservation) bool,
) (*domain.Reservation, error) {
	var reservation *domain.Reservation

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		r, err := tx.Reservations().GetByIDForUpdate(ctx, reservationID)
		if err != nil {
			return lookupError(err, customError.WrapReservationNotFound(reservationID))
		}
		if !visible(r) {
			return customError.WrapReservationNotFound(reservationID)
		}

		if !apply(r) {
			return customError.WrapReservationNotActive(reservationID)
		}

		reservation = r
		return dbError(tx.Reservations().Update(ctx, r))
	})
	if err != nil {
		return nil, dbError(err)
	}

	return reservation, nil
}

// ExpireReservations expires every active reservation past its date and
// returns how many changed.
func (s *ReservationService) ExpireReservations(ctx context.Context) (int, error) {
	today := s.today()

	active, err := s.store.Reservations().ListActive(ctx)
	if err != nil {
		return 0, dbError(err)
	}

	expired := 0
	for _, candidate := range active {
		if !candidate.IsExpired(today) {
			continue
		}

		err := s.store.WithinTx(ctx, func(tx repository.Store) error {
			r, err := tx.Reservations().GetByIDForUpdate(ctx, candidate.ID)
			if err != nil {
				return lookupError(err, customError.WrapReservationNotFound(candidate.ID))
			}
			if !r.RefreshExpiry(today) {
				return nil
			}
			if err := tx.Reservations().Update(ctx, r); err != nil {
				return dbError(err)
			}
			expired++
			return nil
		})
		if err != nil {
			return expired, dbError(err)
		}
	}

	s.logger.InfoContext(ctx, "reservations expired", slog.Int("expired", expired))

	return expired, nil
}
