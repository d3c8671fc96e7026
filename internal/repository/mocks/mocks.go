package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/segyhp/library-engine/internal/domain"
	"github.com/segyhp/library-engine/internal/repository"
)

// MockStore hands out the embedded repository mocks. WithinTx runs fn
// against the same store, so expectations set on the repositories apply
// inside and outside a transaction.
type MockStore struct {
	mock.Mock

	CategoryRepo    *MockCategoryRepository
	AuthorRepo      *MockAuthorRepository
	BookRepo        *MockBookRepository
	LoanRepo        *MockLoanRepository
	ReservationRepo *MockReservationRepository
	ProfileRepo     *MockProfileRepository
}

func NewMockStore() *MockStore {
	return &MockStore{
		CategoryRepo:    new(MockCategoryRepository),
		AuthorRepo:      new(MockAuthorRepository),
		BookRepo:        new(MockBookRepository),
		LoanRepo:        new(MockLoanRepository),
		ReservationRepo: new(MockReservationRepository),
		ProfileRepo:     new(MockProfileRepository),
	}
}

func (m *MockStore) Categories() repository.CategoryRepository      { return m.CategoryRepo }
func (m *MockStore) Authors() repository.AuthorRepository           { return m.AuthorRepo }
func (m *MockStore) Books() repository.BookRepository               { return m.BookRepo }
func (m *MockStore) Loans() repository.LoanRepository               { return m.LoanRepo }
func (m *MockStore) Reservations() repository.ReservationRepository { return m.ReservationRepo }
func (m *MockStore) Profiles() repository.ProfileRepository         { return m.ProfileRepo }

func (m *MockStore) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	return fn(m)
}

// LockUser succeeds unless an expectation was registered for it
func (m *MockStore) LockUser(ctx context.Context, userID int64) error {
	for _, call := range m.ExpectedCalls {
		if call.Method == "LockUser" {
			return m.Called(ctx, userID).Error(0)
		}
	}
	return nil
}

// AssertExpectations checks every repository mock
func (m *MockStore) AssertExpectations(t mock.TestingT) bool {
	return m.Mock.AssertExpectations(t) &&
		m.CategoryRepo.AssertExpectations(t) &&
		m.AuthorRepo.AssertExpectations(t) &&
		m.BookRepo.AssertExpectations(t) &&
		m.LoanRepo.AssertExpectations(t) &&
		m.ReservationRepo.AssertExpectations(t) &&
		m.ProfileRepo.AssertExpectations(t)
}

type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) List(ctx context.Context, limit int) ([]*domain.Category, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Category), args.Error(1)
}

type MockAuthorRepository struct {
	mock.Mock
}

func (m *MockAuthorRepository) Create(ctx context.Context, author *domain.Author) error {
	args := m.Called(ctx, author)
	return args.Error(0)
}

func (m *MockAuthorRepository) GetByID(ctx context.Context, id int64) (*domain.Author, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Author), args.Error(1)
}

func (m *MockAuthorRepository) List(ctx context.Context) ([]*domain.Author, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Author), args.Error(1)
}

type MockBookRepository struct {
	mock.Mock
}

func (m *MockBookRepository) Create(ctx context.Context, book *domain.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *MockBookRepository) GetByID(ctx context.Context, id int64) (*domain.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}

func (m *MockBookRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}

func (m *MockBookRepository) Update(ctx context.Context, book *domain.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *MockBookRepository) Search(ctx context.Context, filter domain.BookFilter) ([]*domain.BookListing, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.BookListing), args.Error(1)
}

func (m *MockBookRepository) ListRecentAvailable(ctx context.Context, limit int) ([]*domain.Book, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Book), args.Error(1)
}

func (m *MockBookRepository) ListPopular(ctx context.Context, limit int) ([]*domain.Book, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Book), args.Error(1)
}

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) GetByID(ctx context.Context, id int64) (*domain.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) Update(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.LoanDetail, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LoanDetail), args.Error(1)
}

func (m *MockLoanRepository) ListOpen(ctx context.Context) ([]*domain.Loan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) FindOpenByBookAndUser(ctx context.Context, bookID, userID int64) (*domain.Loan, error) {
	args := m.Called(ctx, bookID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) CountOpenByUser(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockLoanRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	args := m.Called(ctx, reservation)
	return args.Error(0)
}

func (m *MockReservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) Update(ctx context.Context, reservation *domain.Reservation) error {
	args := m.Called(ctx, reservation)
	return args.Error(0)
}

func (m *MockReservationRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.ReservationDetail, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ReservationDetail), args.Error(1)
}

func (m *MockReservationRepository) ListActive(ctx context.Context) ([]*domain.Reservation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) FindActiveByBookAndUser(ctx context.Context, bookID, userID int64) (*domain.Reservation, error) {
	args := m.Called(ctx, bookID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) CountActiveByUser(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Ensure(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserProfile), args.Error(1)
}

func (m *MockProfileRepository) Update(ctx context.Context, profile *domain.UserProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

var _ repository.Store = (*MockStore)(nil)
