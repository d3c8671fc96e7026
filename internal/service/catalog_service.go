package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/segyhp/library-engine/internal/cache"
	"github.com/segyhp/library-engine/internal/config"
	"github.com/segyhp/library-engine/internal/domain"
	"github.com/segyhp/library-engine/internal/repository"
	customError "github.com/segyhp/library-engine/pkg/errors"
)

const (
	homeRecentBooks  = 6
	homePopularBooks = 6
	homeCategories   = 5
	maxPageSize      = 100
	maxPage          = math.MaxInt32 / maxPageSize
	defaultPageSize  = 20
)

type CatalogService struct {
	base
	books cache.BookCache
	cache bookInvalidator
}

func NewCatalogService(store repository.Store, books cache.BookCache, cfg *config.Config, logger *slog.Logger) *CatalogService {
	b := newBase(store, cfg, logger)
	return &CatalogService{
		base:  b,
		books: books,
		cache: bookInvalidator{books: books, logger: b.logger},
	}
}

// Home returns the landing page listings
func (s *CatalogService) Home(ctx context.Context) (*domain.HomePage, error) {
	recent, err := s.store.Books().ListRecentAvailable(ctx, homeRecentBooks)
	if err != nil {
		return nil, dbError(err)
	}

	popular, err := s.store.Books().ListPopular(ctx, homePopularBooks)
	if err != nil {
		return nil, dbError(err)
	}

	categories, err := s.store.Categories().List(ctx, homeCategories)
	if err != nil {
		return nil, dbError(err)
	}

	return &domain.HomePage{
		RecentBooks:  recent,
		PopularBooks: popular,
		Categories:   categories,
	}, nil
}

// SearchBooks lists books matching the filter. Page sizes are clamped.
func (s *CatalogService) SearchBooks(ctx context.Context, filter domain.BookFilter) ([]*domain.BookListing, error) {
	if filter.PageSize <= 0 {
		filter.PageSize = defaultPageSize
	}
	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Page > maxPage {
		filter.Page = maxPage
	}

	books, err := s.store.Books().Search(ctx, filter)
	if err != nil {
		return nil, dbError(err)
	}

	return books, nil
}

// GetBook returns the book page. userID 0 means an anonymous visitor, who
// gets no loan or reservation details.
func (s *CatalogService) GetBook(ctx context.Context, bookID, userID int64) (*domain.BookDetail, error) {
	book, err := s.getBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	detail := &domain.BookDetail{Book: book}

	if detail.Author, err = s.store.Authors().GetByID(ctx, book.AuthorID); err != nil {
		return nil, lookupError(err, customError.WrapAuthorNotFound(book.AuthorID))
	}

	if book.CategoryID != nil {
		category, err := s.store.Categories().GetByID(ctx, *book.CategoryID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, dbError(err)
		}
		detail.Category = category
	}

	if userID == 0 {
		return detail, nil
	}

	loan, err := s.store.Loans().FindOpenByBookAndUser(ctx, bookID, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, dbError(err)
	}
	detail.OpenLoan = loan

	reservation, err := s.store.Reservations().FindActiveByBookAndUser(ctx, bookID, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, dbError(err)
	}
	if reservation != nil && !reservation.IsExpired(s.today()) {
		detail.ActiveReservation = reservation
	}

	return detail, nil
}

// getBook reads through the cache. A broken cache degrades to the database.
func (s *CatalogService) getBook(ctx context.Context, bookID int64) (*domain.Book, error) {
	if s.books != nil {
		book, err := s.books.Get(ctx, bookID)
		if err != nil {
			s.logger.WarnContext(ctx, "book cache read failed",
				slog.Int64("book_id", bookID),
				slog.Any("error", customError.WrapCacheError(err)),
			)
		} else if book != nil {
			return book, nil
		}
	}

	book, err := s.store.Books().GetByID(ctx, bookID)
	if err != nil {
		return nil, lookupError(err, customError.WrapBookNotFound(bookID))
	}

	if s.books != nil {
		if err := s.books.Set(ctx, book); err != nil {
			s.logger.WarnContext(ctx, "book cache write failed",
				slog.Int64("book_id", bookID),
				slog.Any("error", customError.WrapCacheError(err)),
			)
		}
	}

	return book, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.store.Categories().List(ctx, 0)
	if err != nil {
		return nil, dbError(err)
	}
	return categories, nil
}

func (s *CatalogService) ListAuthors(ctx context.Context) ([]*domain.Author, error) {
	authors, err := s.store.Authors().List(ctx)
	if err != nil {
		return nil, dbError(err)
	}
	return authors, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, request *domain.CreateCategoryRequest) (*domain.Category, error) {
	category := &domain.Category{
		Name:        request.Name,
		Description: request.Description,
	}

	err := s.store.Categories().Create(ctx, category)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, customError.WrapDuplicateCategory(request.Name)
	}
	if err != nil {
		return nil, dbError(err)
	}

	return category, nil
}

func (s *CatalogService) CreateAuthor(ctx context.Context, request *domain.CreateAuthorRequest) (*domain.Author, error) {
	author := &domain.Author{
		Name:        request.Name,
		Nationality: request.Nationality,
		BirthDate:   request.BirthDate,
		Biography:   request.Biography,
	}

	if err := s.store.Authors().Create(ctx, author); err != nil {
		return nil, dbError(err)
	}

	return author, nil
}

// CreateBook adds a title with every copy on the shelf
func (s *CatalogService) CreateBook(ctx context.Context, request *domain.CreateBookRequest) (*domain.Book, error) {
	if year := s.today().Year(); request.PublicationYear > year {
		return nil, customError.WrapInvalidInput(fmt.Sprintf("publication year cannot be after %d", year))
	}

	if _, err := s.store.Authors().GetByID(ctx, request.AuthorID); err != nil {
		return nil, lookupError(err, customError.WrapAuthorNotFound(request.AuthorID))
	}

	if request.CategoryID != nil {
		if _, err := s.store.Categories().GetByID(ctx, *request.CategoryID); err != nil {
			return nil, lookupError(err, customError.WrapCategoryNotFound(*request.CategoryID))
		}
	}

	book := &domain.Book{
		Title:           request.Title,
		AuthorID:        request.AuthorID,
		ISBN:            request.ISBN,
		Publisher:       request.Publisher,
		PublicationYear: request.PublicationYear,
		CategoryID:      request.CategoryID,
		Description:     request.Description,
		TotalCopies:     request.TotalCopies,
		AvailableCopies: request.TotalCopies,
		Status:          domain.BookStatusAvailable,
	}
	book.RefreshStatus()

	err := s.store.Books().Create(ctx, book)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, customError.WrapDuplicateISBN(request.ISBN)
	}
	if err != nil {
		return nil, dbError(err)
	}

	return book, nil
}

// SetBookStatus applies a staff status change. Marking a book available
// with no copies left keeps it loaned.
func (s *CatalogService) SetBookStatus(ctx context.Context, bookID int64, status string) (*domain.Book, error) {
	if !domain.IsValidBookStatus(status) {
		return nil, customError.WrapInvalidInput(fmt.Sprintf("unknown book status %q", status))
	}

	var book *domain.Book
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		b, err := tx.Books().GetByIDForUpdate(ctx, bookID)
		if err != nil {
			return lookupError(err, customError.WrapBookNotFound(bookID))
		}

		b.Status = status
		if status == domain.BookStatusAvailable {
			b.RefreshStatus()
		}

		book = b
		return dbError(tx.Books().Update(ctx, b))
	})
	if err != nil {
		return nil, dbError(err)
	}

	s.cache.invalidate(ctx, bookID)
	return book, nil
}
