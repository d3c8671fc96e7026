package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/segyhp/library-engine/internal/domain"
)

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) Home(ctx context.Context) (*domain.HomePage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HomePage), args.Error(1)
}

func (m *MockCatalogService) SearchBooks(ctx context.Context, filter domain.BookFilter) ([]*domain.BookListing, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.BookListing), args.Error(1)
}

func (m *MockCatalogService) GetBook(ctx context.Context, bookID, userID int64) (*domain.BookDetail, error) {
	args := m.Called(ctx, bookID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookDetail), args.Error(1)
}

func (m *MockCatalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Category), args.Error(1)
}

func (m *MockCatalogService) ListAuthors(ctx context.Context) ([]*domain.Author, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Author), args.Error(1)
}

func (m *MockCatalogService) CreateCategory(ctx context.Context, request *domain.CreateCategoryRequest) (*domain.Category, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCatalogService) CreateAuthor(ctx context.Context, request *domain.CreateAuthorRequest) (*domain.Author, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Author), args.Error(1)
}

func (m *MockCatalogService) CreateBook(ctx context.Context, request *domain.CreateBookRequest) (*domain.Book, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}

func (m *MockCatalogService) SetBookStatus(ctx context.Context, bookID int64, status string) (*domain.Book, error) {
	args := m.Called(ctx, bookID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}

type MockLoanService struct {
	mock.Mock
}

func (m *MockLoanService) CreateLoan(ctx context.Context, userID, bookID int64) (*domain.Loan, error) {
	args := m.Called(ctx, userID, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanService) ListUserLoans(ctx context.Context, userID int64) ([]*domain.LoanDetail, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LoanDetail), args.Error(1)
}

func (m *MockLoanService) ReturnLoan(ctx context.Context, userID, loanID int64) (*domain.ReturnResult, error) {
	args := m.Called(ctx, userID, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReturnResult), args.Error(1)
}

func (m *MockLoanService) ReturnLoanAsStaff(ctx context.Context, loanID int64) (*domain.ReturnResult, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReturnResult), args.Error(1)
}

func (m *MockLoanService) RenewLoan(ctx context.Context, userID, loanID int64) (*domain.Loan, error) {
	args := m.Called(ctx, userID, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanService) RecomputeFines(ctx context.Context) (*domain.FineSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FineSummary), args.Error(1)
}

type MockReservationService struct {
	mock.Mock
}

func (m *MockReservationService) CreateReservation(ctx context.Context, userID, bookID int64) (*domain.Reservation, error) {
	args := m.Called(ctx, userID, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationService) ListUserReservations(ctx context.Context, userID int64) ([]*domain.ReservationDetail, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ReservationDetail), args.Error(1)
}

func (m *MockReservationService) CancelReservation(ctx context.Context, userID, reservationID int64) (*domain.Reservation, error) {
	args := m.Called(ctx, userID, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationService) CompleteReservation(ctx context.Context, reservationID int64) (*domain.Reservation, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationService) ExpireReservations(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) GetProfile(ctx context.Context, userID int64) (*domain.ProfileSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProfileSummary), args.Error(1)
}

func (m *MockProfileService) UpdateProfile(ctx context.Context, userID int64, request *domain.UpdateProfileRequest) (*domain.UserProfile, error) {
	args := m.Called(ctx, userID, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserProfile), args.Error(1)
}

func (m *MockProfileService) IsStaff(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

var (
	_ CatalogService     = (*MockCatalogService)(nil)
	_ LoanService        = (*MockLoanService)(nil)
	_ ReservationService = (*MockReservationService)(nil)
	_ ProfileService     = (*MockProfileService)(nil)
)
