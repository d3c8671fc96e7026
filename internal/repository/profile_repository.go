package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/segyhp/library-engine/internal/domain"
)

type profileRepository struct {
	q sqlx.ExtContext
}

// Ensure is get-or-create. Concurrent first requests for the same user race
// on the unique user_id index; the loser's insert is a no-op.
func (r *profileRepository) Ensure(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	insert := `
		INSERT INTO user_profiles (user_id, phone, address, kind, created_at, updated_at)
		VALUES ($1, '', '', $2, $3, $3)
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := r.q.ExecContext(ctx, insert, userID, domain.UserKindRegular, time.Now()); err != nil {
		return nil, mapError(err)
	}

	query := `
		SELECT id, user_id, phone, birth_date, address, id_document, kind, created_at, updated_at
		FROM user_profiles
		WHERE user_id = $1
	`

	var profile domain.UserProfile
	if err := sqlx.GetContext(ctx, r.q, &profile, query, userID); err != nil {
		return nil, mapError(err)
	}

	return &profile, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *domain.UserProfile) error {
	query := `
		UPDATE user_profiles
		SET phone = $2, birth_date = $3, address = $4, id_document = $5, kind = $6, updated_at = $7
		WHERE user_id = $1
	`

	profile.UpdatedAt = time.Now()
	res, err := r.q.ExecContext(ctx, query,
		profile.UserID,
		profile.Phone,
		profile.BirthDate,
		profile.Address,
		profile.IDDocument,
		profile.Kind,
		profile.UpdatedAt,
	)
	if err != nil {
		return mapError(err)
	}

	return requireAffected(res)
}
