package repository

import (
	"context"

	"github.com/segyhp/library-engine/internal/domain"
)

// Store hands out the repositories and runs units of work in a transaction
type Store interface {
	Categories() CategoryRepository
	Authors() AuthorRepository
	Books() BookRepository
	Loans() LoanRepository
	Reservations() ReservationRepository
	Profiles() ProfileRepository

	// WithinTx runs fn with a Store bound to one transaction. The transaction
	// commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(tx Store) error) error

	// LockUser serialises the current transaction against others for the same user
	LockUser(ctx context.Context, userID int64) error
}

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	GetByID(ctx context.Context, id int64) (*domain.Category, error)

	// List returns categories ordered by name; limit <= 0 means no limit
	List(ctx context.Context, limit int) ([]*domain.Category, error)
}

// AuthorRepository defines the interface for author data operations
type AuthorRepository interface {
	Create(ctx context.Context, author *domain.Author) error
	GetByID(ctx context.Context, id int64) (*domain.Author, error)
	List(ctx context.Context) ([]*domain.Author, error)
}

// BookRepository defines the interface for book data operations
type BookRepository interface {
	// Create creates a new book
	Create(ctx context.Context, book *domain.Book) error

	// GetByID retrieves a book by its ID
	GetByID(ctx context.Context, id int64) (*domain.Book, error)

	// GetByIDForUpdate retrieves a book and locks its row until the transaction ends
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Book, error)

	// Update persists counters, status and descriptive fields
	Update(ctx context.Context, book *domain.Book) error

	// Search lists books matching the filter, ordered by title
	Search(ctx context.Context, filter domain.BookFilter) ([]*domain.BookListing, error)

	// ListRecentAvailable returns the newest books that have copies on the shelf
	ListRecentAvailable(ctx context.Context, limit int) ([]*domain.Book, error)

	// ListPopular returns books that have been loaned at least once, in random order
	ListPopular(ctx context.Context, limit int) ([]*domain.Book, error)
}

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	Create(ctx context.Context, loan *domain.Loan) error
	GetByID(ctx context.Context, id int64) (*domain.Loan, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Loan, error)
	Update(ctx context.Context, loan *domain.Loan) error

	// ListByUser returns the user's loans with book titles, newest first
	ListByUser(ctx context.Context, userID int64) ([]*domain.LoanDetail, error)

	// ListOpen returns every loan that is active, renewed or late
	ListOpen(ctx context.Context) ([]*domain.Loan, error)

	// FindOpenByBookAndUser returns ErrNotFound when the user holds no open loan of the book
	FindOpenByBookAndUser(ctx context.Context, bookID, userID int64) (*domain.Loan, error)

	CountOpenByUser(ctx context.Context, userID int64) (int, error)
	CountByUser(ctx context.Context, userID int64) (int, error)
}

// ReservationRepository defines the interface for reservation data operations
type ReservationRepository interface {
	Create(ctx context.Context, reservation *domain.Reservation) error
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Reservation, error)
	Update(ctx context.Context, reservation *domain.Reservation) error

	// ListByUser returns the user's reservations with book titles, newest first
	ListByUser(ctx context.Context, userID int64) ([]*domain.ReservationDetail, error)

	// ListActive returns every active reservation
	ListActive(ctx context.Context) ([]*domain.Reservation, error)

	// FindActiveByBookAndUser returns ErrNotFound when there is no active reservation
	FindActiveByBookAndUser(ctx context.Context, bookID, userID int64) (*domain.Reservation, error)

	CountActiveByUser(ctx context.Context, userID int64) (int, error)
}

// ProfileRepository defines the interface for user profile data operations
type ProfileRepository interface {
	// Ensure returns the user's profile, creating an empty regular one first if needed
	Ensure(ctx context.Context, userID int64) (*domain.UserProfile, error)
	Update(ctx context.Context, profile *domain.UserProfile) error
}
