package domain

import (
	"time"

	"github.com/segyhp/library-engine/pkg/utils"
)

const (
	ReservationStatusActive    = "active"
	ReservationStatusCancelled = "cancelled"
	ReservationStatusCompleted = "completed"
	ReservationStatusExpired   = "expired"
)

// Reservation is a user's claim on a book that cannot be borrowed right now
type Reservation struct {
	ID         int64     `json:"id" db:"id"`
	BookID     int64     `json:"book_id" db:"book_id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	ReservedAt time.Time `json:"reserved_at" db:"reserved_at"`
	ExpiresOn  time.Time `json:"expires_on" db:"expires_on"`
	Status     string    `json:"status" db:"status"`
	Notes      string    `json:"notes" db:"notes"`
}

// NewReservation creates an active reservation expiring days after today
func NewReservation(bookID, userID int64, now time.Time, today time.Time, days int) *Reservation {
	return &Reservation{
		BookID:     bookID,
		UserID:     userID,
		ReservedAt: now,
		ExpiresOn:  utils.AddDays(today, days),
		Status:     ReservationStatusActive,
	}
}

func (r *Reservation) IsActive() bool {
	return r.Status == ReservationStatusActive
}

// IsExpired is true for an active reservation whose expiry date has passed
func (r *Reservation) IsExpired(today time.Time) bool {
	return r.IsActive() && utils.IsPastDate(r.ExpiresOn, today)
}

// Cancel moves an active reservation to cancelled
func (r *Reservation) Cancel() bool {
	return r.transition(ReservationStatusCancelled)
}

// Complete marks the reserved copy as handed over
func (r *Reservation) Complete() bool {
	return r.transition(ReservationStatusCompleted)
}

// RefreshExpiry expires the reservation when its date has passed.
// It returns true when the status changed.
func (r *Reservation) RefreshExpiry(today time.Time) bool {
	if !r.IsExpired(today) {
		return false
	}
	return r.transition(ReservationStatusExpired)
}

// every transition leaves active; the other states are terminal
func (r *Reservation) transition(to string) bool {
	if !r.IsActive() {
		return false
	}
	r.Status = to
	return true
}

// ReservationDetail is a reservation row with the book title
type ReservationDetail struct {
	Reservation
	BookTitle string `json:"book_title" db:"book_title"`
}
