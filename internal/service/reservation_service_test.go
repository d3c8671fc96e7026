package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/library-engine/internal/domain"
	"github.com/segyhp/library-engine/internal/repository"
	"github.com/segyhp/library-engine/internal/repository/mocks"
	customError "github.com/segyhp/library-engine/pkg/errors"
)

func newTestReservationService(store *mocks.MockStore) *ReservationService {
	svc := NewReservationService(store, testConfig(), testLogger())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestCreateReservation(t *testing.T) {
	loanedBook := &domain.Book{ID: 1, TotalCopies: 1, AvailableCopies: 0, Status: domain.BookStatusLoaned}

	tests := []struct {
		name          string
		setupMocks    func(*mocks.MockStore)
		expectedKind  customError.Kind
		expectedCode  string
		expectedLevel string
	}{
		{
			name: "Success - book out on loan",
			setupMocks: func(store *mocks.MockStore) {
				store.BookRepo.On("GetByID", mock.Anything, int64(1)).Return(loanedBook, nil)
				store.ReservationRepo.On("ListByUser", mock.Anything, int64(7)).Return([]*domain.ReservationDetail{}, nil)
				store.ReservationRepo.On("FindActiveByBookAndUser", mock.Anything, int64(1), int64(7)).Return(nil, repository.ErrNotFound)
				store.ReservationRepo.On("CountActiveByUser", mock.Anything, int64(7)).Return(1, nil)
				store.ReservationRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.Reservation) bool {
					return r.Status == domain.ReservationStatusActive &&
						r.ExpiresOn.Equal(date(2024, 6, 22)) &&
						r.ReservedAt.Equal(fixedNow)
				})).Return(nil)
			},
		},
		{
			name: "Success - stale hold expires before the limit check",
			setupMocks: func(store *mocks.MockStore) {
				stale := &domain.ReservationDetail{Reservation: domain.Reservation{
					ID: 4, BookID: 2, UserID: 7, ExpiresOn: date(2024, 6, 10), Status: domain.ReservationStatusActive,
				}}
				store.BookRepo.On("GetByID", mock.Anything, int64(1)).Return(loanedBook, nil)
				store.ReservationRepo.On("ListByUser", mock.Anything, int64(7)).Return([]*domain.ReservationDetail{stale}, nil)
				store.ReservationRepo.On("Update", mock.Anything, mock.MatchedBy(func(r *domain.Reservation) bool {
					return r.ID == 4 && r.Status == domain.ReservationStatusExpired
				})).Return(nil)
				store.ReservationRepo.On("FindActiveByBookAndUser", mock.Anything, int64(1), int64(7)).Return(nil, repository.ErrNotFound)
				store.ReservationRepo.On("CountActiveByUser", mock.Anything, int64(7)).Return(1, nil)
				store.ReservationRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
			},
		},
		{
			name: "Failure - book can be borrowed instead",
			setupMocks: func(store *mocks.MockStore) {
				store.BookRepo.On("GetByID", mock.Anything, int64(1)).Return(&domain.Book{
					ID: 1, TotalCopies: 1, AvailableCopies: 1, Status: domain.BookStatusAvailable,
				}, nil)
			},
			expectedKind:  customError.KindUnavailable,
			expectedCode:  customError.ErrCodeBookAvailableForLoan,
			expectedLevel: customError.LevelInfo,
		},
		{
			name: "Failure - already reserved",
			setupMocks: func(store *mocks.MockStore) {
				store.BookRepo.On("GetByID", mock.Anything, int64(1)).Return(loanedBook, nil)
				store.ReservationRepo.On("ListByUser", mock.Anything, int64(7)).Return([]*domain.ReservationDetail{}, nil)
				store.ReservationRepo.On("FindActiveByBookAndUser", mock.Anything, int64(1), int64(7)).Return(&domain.Reservation{ID: 3}, nil)
			},
			expectedKind:  customError.KindConflict,
			expectedCode:  customError.ErrCodeReservationAlreadyActive,
			expectedLevel: customError.LevelWarning,
		},
		{
			name: "Failure - active reservation limit reached",
			setupMocks: func(store *mocks.MockStore) {
				store.BookRepo.On("GetByID", mock.Anything, int64(1)).Return(loanedBook, nil)
				store.ReservationRepo.On("ListByUser", mock.Anything, int64(7)).Return([]*domain.ReservationDetail{}, nil)
				store.ReservationRepo.On("FindActiveByBookAndUser", mock.Anything, int64(1), int64(7)).Return(nil, repository.ErrNotFound)
				store.ReservationRepo.On("CountActiveByUser", mock.Anything, int64(7)).Return(2, nil)
			},
			expectedKind:  customError.KindLimitExceeded,
			expectedCode:  customError.ErrCodeReservationLimitExceeded,
			expectedLevel: customError.LevelError,
		},
		{
			name: "Failure - concurrent duplicate caught by the unique index",
			setupMocks: func(store *mocks.MockStore) {
				store.BookRepo.On("GetByID", mock.Anything, int64(1)).Return(loanedBook, nil)
				store.ReservationRepo.On("ListByUser", mock.Anything, int64(7)).Return([]*domain.ReservationDetail{}, nil)
				store.ReservationRepo.On("FindActiveByBookAndUser", mock.Anything, int64(1), int64(7)).Return(nil, repository.ErrNotFound)
				store.ReservationRepo.On("CountActiveByUser", mock.Anything, int64(7)).Return(0, nil)
				store.ReservationRepo.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicate)
			},
			expectedKind:  customError.KindConflict,
			expectedCode:  customError.ErrCodeReservationAlreadyActive,
			expectedLevel: customError.LevelWarning,
		},
		{
			name: "Failure - book not found",
			setupMocks: func(store *mocks.MockStore) {
				store.BookRepo.On("GetByID", mock.Anything, int64(1)).Return(nil, repository.ErrNotFound)
			},
			expectedKind:  customError.KindNotFound,
			expectedCode:  customError.ErrCodeBookNotFound,
			expectedLevel: customError.LevelError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mocks.NewMockStore()
			tt.setupMocks(store)

			reservation, err := newTestReservationService(store).CreateReservation(context.Background(), 7, 1)

			if tt.expectedCode != "" {
				be := requireBusinessError(t, err, tt.expectedKind, tt.expectedCode)
				assert.Equal(t, tt.expectedLevel, be.Level)
				assert.Nil(t, reservation)
			} else {
				require.NoError(t, err)
				assert.Equal(t, domain.ReservationStatusActive, reservation.Status)
				assert.Equal(t, date(2024, 6, 22), reservation.ExpiresOn)
			}

			store.AssertExpectations(t)
		})
	}
}

func TestCancelReservation(t *testing.T) {
	tests := []struct {
		name         string
		reservation  *domain.Reservation
		expectUpdate bool
		expectedKind customError.Kind
		expectedCode string
	}{
		{
			name:         "active reservation is cancelled",
			reservation:  &domain.Reservation{ID: 5, UserID: 7, Status: domain.ReservationStatusActive},
			expectUpdate: true,
		},
		{
			name:         "cancelled reservation cannot be cancelled again",
			reservation:  &domain.Reservation{ID: 5, UserID: 7, Status: domain.ReservationStatusCancelled},
			expectedKind: customError.KindInvalidState,
			expectedCode: customError.ErrCodeReservationNotActive,
		},
		{
			name:         "expired reservation cannot be cancelled",
			reservation:  &domain.Reservation{ID: 5, UserID: 7, Status: domain.ReservationStatusExpired},
			expectedKind: customError.KindInvalidState,
			expectedCode: customError.ErrCodeReservationNotActive,
		},
		{
			name:         "another user's reservation is not found",
			reservation:  &domain.Reservation{ID: 5, UserID: 8, Status: domain.ReservationStatusActive},
			expectedKind: customError.KindNotFound,
			expectedCode: customError.ErrCodeReservationNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mocks.NewMockStore()
			store.ReservationRepo.On("GetByIDForUpdate", mock.Anything, int64(5)).Return(tt.reservation, nil)
			if tt.expectUpdate {
				store.ReservationRepo.On("Update", mock.Anything, tt.reservation).Return(nil)
			}

			reservation, err := newTestReservationService(store).CancelReservation(context.Background(), 7, 5)

			if tt.expectedCode != "" {
				requireBusinessError(t, err, tt.expectedKind, tt.expectedCode)
				store.ReservationRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, domain.ReservationStatusCancelled, reservation.Status)
			store.AssertExpectations(t)
		})
	}
}

func TestCompleteReservation(t *testing.T) {
	store := mocks.NewMockStore()
	r := &domain.Reservation{ID: 5, UserID: 99, Status: domain.ReservationStatusActive}
	store.ReservationRepo.On("GetByIDForUpdate", mock.Anything, int64(5)).Return(r, nil)
	store.ReservationRepo.On("Update", mock.Anything, r).Return(nil)

	reservation, err := newTestReservationService(store).CompleteReservation(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusCompleted, reservation.Status)

	_, err = newTestReservationService(store).CompleteReservation(context.Background(), 5)
	requireBusinessError(t, err, customError.KindInvalidState, customError.ErrCodeReservationNotActive)
}

func TestCompleteReservation_NotFound(t *testing.T) {
	store := mocks.NewMockStore()
	store.ReservationRepo.On("GetByIDForUpdate", mock.Anything, int64(5)).Return(nil, repository.ErrNotFound)

	_, err := newTestReservationService(store).CompleteReservation(context.Background(), 5)
	requireBusinessError(t, err, customError.KindNotFound, customError.ErrCodeReservationNotFound)
}

func TestListUserReservations_ExpiresStaleHolds(t *testing.T) {
	store := mocks.NewMockStore()

	stale := &domain.ReservationDetail{Reservation: domain.Reservation{
		ID: 1, UserID: 7, ExpiresOn: date(2024, 6, 14), Status: domain.ReservationStatusActive,
	}}
	lastDay := &domain.ReservationDetail{Reservation: domain.Reservation{
		ID: 2, UserID: 7, ExpiresOn: date(2024, 6, 15), Status: domain.ReservationStatusActive,
	}}

	store.ReservationRepo.On("ListByUser", mock.Anything, int64(7)).Return([]*domain.ReservationDetail{stale, lastDay}, nil)
	store.ReservationRepo.On("Update", mock.Anything, &stale.Reservation).Return(nil).Once()

	reservations, err := newTestReservationService(store).ListUserReservations(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, reservations, 2)

	assert.Equal(t, domain.ReservationStatusExpired, reservations[0].Status)
	assert.Equal(t, domain.ReservationStatusActive, reservations[1].Status)
	store.AssertExpectations(t)
}

func TestExpireReservations(t *testing.T) {
	store := mocks.NewMockStore()

	expired := &domain.Reservation{ID: 1, ExpiresOn: date(2024, 6, 1), Status: domain.ReservationStatusActive}
	fresh := &domain.Reservation{ID: 2, ExpiresOn: date(2024, 6, 20), Status: domain.ReservationStatusActive}

	store.ReservationRepo.On("ListActive", mock.Anything).Return([]*domain.Reservation{expired, fresh}, nil)
	locked := *expired
	store.ReservationRepo.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(&locked, nil)
	store.ReservationRepo.On("Update", mock.Anything, &locked).Return(nil)

	n, err := newTestReservationService(store).ExpireReservations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, domain.ReservationStatusExpired, locked.Status)
	store.ReservationRepo.AssertNotCalled(t, "GetByIDForUpdate", mock.Anything, int64(2))
	store.AssertExpectations(t)
}

func TestExpireReservations_CountsOnlyWrittenRows(t *testing.T) {
	store := mocks.NewMockStore()

	first := &domain.Reservation{ID: 1, ExpiresOn: date(2024, 6, 1), Status: domain.ReservationStatusActive}
	second := &domain.Reservation{ID: 2, ExpiresOn: date(2024, 6, 2), Status: domain.ReservationStatusActive}

	store.ReservationRepo.On("ListActive", mock.Anything).Return([]*domain.Reservation{first, second}, nil)
	lockedFirst, lockedSecond := *first, *second
	store.ReservationRepo.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(&lockedFirst, nil)
	store.ReservationRepo.On("Update", mock.Anything, &lockedFirst).Return(nil)
	store.ReservationRepo.On("GetByIDForUpdate", mock.Anything, int64(2)).Return(&lockedSecond, nil)
	store.ReservationRepo.On("Update", mock.Anything, &lockedSecond).Return(errors.New("connection reset"))

	n, err := newTestReservationService(store).ExpireReservations(context.Background())
	require.Error(t, err)
	assert.True(t, customError.IsKind(err, customError.KindInternal))
	assert.Equal(t, 1, n)
}
