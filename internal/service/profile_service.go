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

type ProfileService struct {
	base
}

func NewProfileService(store repository.Store, cfg *config.Config, logger *slog.Logger) *ProfileService {
	return &ProfileService{base: newBase(store, cfg, logger)}
}

// EnsureProfile returns the user's profile, creating it on first access
func (s *ProfileService) EnsureProfile(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	profile, err := s.store.Profiles().Ensure(ctx, userID)
	if err != nil {
		return nil, dbError(err)
	}
	return profile, nil
}

// GetProfile returns the profile with the user's lending statistics
func (s *ProfileService) GetProfile(ctx context.Context, userID int64) (*domain.ProfileSummary, error) {
	profile, err := s.EnsureProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &domain.ProfileSummary{
		Profile:     profile,
		KindDisplay: profile.KindDisplay(),
	}

	if summary.OpenLoans, err = s.store.Loans().CountOpenByUser(ctx, userID); err != nil {
		return nil, dbError(err)
	}
	if summary.TotalLoans, err = s.store.Loans().CountByUser(ctx, userID); err != nil {
		return nil, dbError(err)
	}
	if summary.ActiveReservations, err = s.store.Reservations().CountActiveByUser(ctx, userID); err != nil {
		return nil, dbError(err)
	}

	return summary, nil
}

// UpdateProfile edits the contact fields. The id document can only be set
// once; later values are ignored.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID int64, request *domain.UpdateProfileRequest) (*domain.UserProfile, error) {
	profile, err := s.EnsureProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile.Phone = request.Phone
	profile.BirthDate = request.BirthDate
	profile.Address = request.Address
	if profile.IDDocument == nil && request.IDDocument != "" {
		document := request.IDDocument
		profile.IDDocument = &document
	}

	err = s.store.Profiles().Update(ctx, profile)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, customError.WrapDuplicateIDDocument()
	}
	if err != nil {
		return nil, dbError(err)
	}

	return profile, nil
}

// IsStaff reports whether the user may use the staff routes
func (s *ProfileService) IsStaff(ctx context.Context, userID int64) (bool, error) {
	profile, err := s.EnsureProfile(ctx, userID)
	if err != nil {
		return false, err
	}
	return profile.IsStaff(), nil
}
