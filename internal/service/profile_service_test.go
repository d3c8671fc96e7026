package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/library-engine/internal/domain"
	"github.com/segyhp/library-engine/internal/repository"
	"github.com/segyhp/library-engine/internal/repository/mocks"
	customError "github.com/segyhp/library-engine/pkg/errors"
)

func TestGetProfile(t *testing.T) {
	store := mocks.NewMockStore()
	profile := &domain.UserProfile{ID: 1, UserID: 7, Kind: domain.UserKindStaff}

	store.ProfileRepo.On("Ensure", mock.Anything, int64(7)).Return(profile, nil)
	store.LoanRepo.On("CountOpenByUser", mock.Anything, int64(7)).Return(2, nil)
	store.LoanRepo.On("CountByUser", mock.Anything, int64(7)).Return(9, nil)
	store.ReservationRepo.On("CountActiveByUser", mock.Anything, int64(7)).Return(1, nil)

	svc := NewProfileService(store, testConfig(), testLogger())
	summary, err := svc.GetProfile(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, profile, summary.Profile)
	assert.Equal(t, "Staff", summary.KindDisplay)
	assert.Equal(t, 2, summary.OpenLoans)
	assert.Equal(t, 9, summary.TotalLoans)
	assert.Equal(t, 1, summary.ActiveReservations)
	store.AssertExpectations(t)
}

func TestGetProfile_DatabaseError(t *testing.T) {
	store := mocks.NewMockStore()
	store.ProfileRepo.On("Ensure", mock.Anything, int64(7)).Return(nil, errors.New("connection refused"))

	_, err := NewProfileService(store, testConfig(), testLogger()).GetProfile(context.Background(), 7)
	requireBusinessError(t, err, customError.KindInternal, customError.ErrCodeDatabaseError)
}

func TestUpdateProfile(t *testing.T) {
	existing := "12345678901"

	tests := []struct {
		name         string
		profile      *domain.UserProfile
		request      *domain.UpdateProfileRequest
		updateErr    error
		expectedDoc  *string
		expectedCode string
	}{
		{
			name:        "sets contact fields and a first id document",
			profile:     &domain.UserProfile{UserID: 7, Kind: domain.UserKindRegular},
			request:     &domain.UpdateProfileRequest{Phone: "555-0101", Address: "Rua A, 1", IDDocument: "98765432100"},
			expectedDoc: strPtr("98765432100"),
		},
		{
			name:        "id document is not replaced once set",
			profile:     &domain.UserProfile{UserID: 7, Kind: domain.UserKindRegular, IDDocument: &existing},
			request:     &domain.UpdateProfileRequest{Phone: "555-0101", IDDocument: "98765432100"},
			expectedDoc: &existing,
		},
		{
			name:         "id document taken by someone else",
			profile:      &domain.UserProfile{UserID: 7, Kind: domain.UserKindRegular},
			request:      &domain.UpdateProfileRequest{IDDocument: "98765432100"},
			updateErr:    repository.ErrDuplicate,
			expectedCode: customError.ErrCodeDuplicateIDDocument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mocks.NewMockStore()
			store.ProfileRepo.On("Ensure", mock.Anything, int64(7)).Return(tt.profile, nil)
			store.ProfileRepo.On("Update", mock.Anything, tt.profile).Return(tt.updateErr)

			profile, err := NewProfileService(store, testConfig(), testLogger()).
				UpdateProfile(context.Background(), 7, tt.request)

			if tt.expectedCode != "" {
				requireBusinessError(t, err, customError.KindConflict, tt.expectedCode)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.request.Phone, profile.Phone)
			assert.Equal(t, tt.request.Address, profile.Address)
			assert.Equal(t, *tt.expectedDoc, *profile.IDDocument)
			store.AssertExpectations(t)
		})
	}
}

func TestIsStaff(t *testing.T) {
	for kind, want := range map[string]bool{
		domain.UserKindRegular: false,
		domain.UserKindStaff:   true,
		domain.UserKindAdmin:   true,
	} {
		store := mocks.NewMockStore()
		store.ProfileRepo.On("Ensure", mock.Anything, int64(7)).Return(&domain.UserProfile{UserID: 7, Kind: kind}, nil)

		got, err := NewProfileService(store, testConfig(), testLogger()).IsStaff(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, want, got, kind)
	}
}

func strPtr(s string) *string {
	return &s
}
