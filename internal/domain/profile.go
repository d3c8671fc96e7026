package domain

import "time"

const (
	UserKindRegular = "regular"
	UserKindStaff   = "staff"
	UserKindAdmin   = "admin"
)

// UserProfile holds the auxiliary attributes of an account
type UserProfile struct {
	ID         int64      `json:"id" db:"id"`
	UserID     int64      `json:"user_id" db:"user_id"`
	Phone      string     `json:"phone" db:"phone"`
	BirthDate  *time.Time `json:"birth_date,omitempty" db:"birth_date"`
	Address    string     `json:"address" db:"address"`
	IDDocument *string    `json:"id_document,omitempty" db:"id_document"`
	Kind       string     `json:"kind" db:"kind"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// IsStaff reports whether the account may manage the catalog
func (p *UserProfile) IsStaff() bool {
	return p.Kind == UserKindStaff || p.Kind == UserKindAdmin
}

// KindDisplay returns the human label of the user kind
func (p *UserProfile) KindDisplay() string {
	switch p.Kind {
	case UserKindRegular:
		return "Regular"
	case UserKindStaff:
		return "Staff"
	case UserKindAdmin:
		return "Administrator"
	}
	return p.Kind
}

type UpdateProfileRequest struct {
	Phone      string     `json:"phone" validate:"max=20"`
	BirthDate  *time.Time `json:"birth_date"`
	Address    string     `json:"address"`
	IDDocument string     `json:"id_document" validate:"max=14"`
}

// ProfileSummary is the profile page with the user's lending statistics
type ProfileSummary struct {
	Profile            *UserProfile `json:"profile"`
	KindDisplay        string       `json:"kind_display"`
	OpenLoans          int          `json:"open_loans"`
	TotalLoans         int          `json:"total_loans"`
	ActiveReservations int          `json:"active_reservations"`
}
