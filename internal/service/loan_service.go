package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/segyhp/library-engine/internal/cache"
	"github.com/segyhp/library-engine/internal/config"
	"github.com/segyhp/library-engine/internal/domain"
	"github.com/segyhp/library-engine/internal/repository"
	customError "github.com/segyhp/library-engine/pkg/errors"
)

type LoanService struct {
	base
	cache bookInvalidator
}

func NewLoanService(store repository.Store, books cache.BookCache, cfg *config.Config, logger *slog.Logger) *LoanService {
	b := newBase(store, cfg, logger)
	return &LoanService{
		base:  b,
		cache: bookInvalidator{books: books, logger: b.logger},
	}
}

// CreateLoan lends one copy of the book to the user. The book row is locked
// and the user's loans are serialised, so the availability and limit checks
// hold at commit time.
func (s *LoanService) CreateLoan(ctx context.Context, userID, bookID int64) (*domain.Loan, error) {
	today := s.today()
	var loan *domain.Loan

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.LockUser(ctx, userID); err != nil {
			return dbError(err)
		}

		book, err := tx.Books().GetByIDForUpdate(ctx, bookID)
		if err != nil {
			return lookupError(err, customError.WrapBookNotFound(bookID))
		}

		if !book.IsAvailableForLoan() {
			return customError.WrapBookUnavailable(bookID)
		}

		_, err = tx.Loans().FindOpenByBookAndUser(ctx, bookID, userID)
		if err == nil {
			return customError.WrapLoanAlreadyOpen(bookID)
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return dbError(err)
		}

		open, err := tx.Loans().CountOpenByUser(ctx, userID)
		if err != nil {
			return dbError(err)
		}
		if open >= s.config.Business.MaxOpenLoans {
			return customError.WrapLoanLimitExceeded(s.config.Business.MaxOpenLoans)
		}

		book.CheckOut()
		if err := tx.Books().Update(ctx, book); err != nil {
			return dbError(err)
		}

		loan = domain.NewLoan(bookID, userID, today, s.config.Business.LoanPeriodDays)
		return dbError(tx.Loans().Create(ctx, loan))
	})
	if err != nil {
		return nil, dbError(err)
	}

	s.cache.invalidate(ctx, bookID)
	s.logger.InfoContext(ctx, "loan created",
		slog.Int64("loan_id", loan.ID),
		slog.Int64("book_id", bookID),
		slog.Int64("user_id", userID),
	)

	return loan, nil
}

// ListUserLoans returns the user's loans, newest first. Overdue loans are
// moved to late and their fines stored before the list is returned.
func (s *LoanService) ListUserLoans(ctx context.Context, userID int64) ([]*domain.LoanDetail, error) {
	today := s.today()

	loans, err := s.store.Loans().ListByUser(ctx, userID)
	if err != nil {
		return nil, dbError(err)
	}

	for _, l := range loans {
		if l.Loan.IsLate(today) {
			refreshed, err := s.applyFine(ctx, l.ID)
			if err != nil {
				return nil, err
			}
			l.Loan = *refreshed
		}
		l.IsLate = l.Status == domain.LoanStatusLate || l.Loan.IsLate(today)
	}

	return loans, nil
}

// applyFine recomputes one loan's fine under its row lock and persists a change
func (s *LoanService) applyFine(ctx context.Context, loanID int64) (*domain.Loan, error) {
	today := s.today()
	var loan *domain.Loan

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		l, err := tx.Loans().GetByIDForUpdate(ctx, loanID)
		if err != nil {
			return lookupError(err, customError.WrapLoanNotFound(loanID))
		}
		loan = l

		if _, changed := l.ComputeFine(today, s.config.GetDailyFine()); changed {
			return dbError(tx.Loans().Update(ctx, l))
		}
		return nil
	})
	if err != nil {
		return nil, dbError(err)
	}

	return loan, nil
}

// ReturnLoan closes a loan held by userID. Loans of other users are reported
// as not found.
func (s *LoanService) ReturnLoan(ctx context.Context, userID, loanID int64) (*domain.ReturnResult, error) {
	return s.returnLoan(ctx, loanID, func(l *domain.Loan) bool { return l.UserID == userID })
}

// ReturnLoanAsStaff closes any loan
func (s *LoanService) ReturnLoanAsStaff(ctx context.Context, loanID int64) (*domain.ReturnResult, error) {
	return s.returnLoan(ctx, loanID, func(*domain.Loan) bool { return true })
}

func (s *LoanService) returnLoan(ctx context.Context, loanID int64, visible func(*domain.Loan) bool) (*domain.ReturnResult, error) {
	today := s.today()
	result := &domain.ReturnResult{}

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		loan, err := tx.Loans().GetByIDForUpdate(ctx, loanID)
		if err != nil {
			return lookupError(err, customError.WrapLoanNotFound(loanID))
		}
		if !visible(loan) {
			return customError.WrapLoanNotFound(loanID)
		}
		result.Loan = loan

		if loan.Status == domain.LoanStatusReturned {
			result.AlreadyReturned = true
			return nil
		}

		// a late return carries the fine accrued up to today
		loan.ComputeFine(today, s.config.GetDailyFine())
		loan.Return(today)
		if err := tx.Loans().Update(ctx, loan); err != nil {
			return dbError(err)
		}

		book, err := tx.Books().GetByIDForUpdate(ctx, loan.BookID)
		if err != nil {
			return lookupError(err, customError.WrapBookNotFound(loan.BookID))
		}
		if book.CheckIn() {
			return dbError(tx.Books().Update(ctx, book))
		}
		return nil
	})
	if err != nil {
		return nil, dbError(err)
	}

	if !result.AlreadyReturned {
		s.cache.invalidate(ctx, result.Loan.BookID)
		s.logger.InfoContext(ctx, "loan returned",
			slog.Int64("loan_id", loanID),
			slog.String("fine", result.Loan.Fine.StringFixed(2)),
		)
	}

	return result, nil
}

// RenewLoan extends the due date of an active loan that is not overdue
func (s *LoanService) RenewLoan(ctx context.Context, userID, loanID int64) (*domain.Loan, error) {
	today := s.today()
	var loan *domain.Loan

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		l, err := tx.Loans().GetByIDForUpdate(ctx, loanID)
		if err != nil {
			return lookupError(err, customError.WrapLoanNotFound(loanID))
		}
		if l.UserID != userID {
			return customError.WrapLoanNotFound(loanID)
		}

		if l.IsLate(today) {
			return customError.WrapLoanOverdue(loanID)
		}
		if !l.Renew(today, s.config.Business.RenewalDays) {
			return customError.WrapLoanNotRenewable(loanID)
		}

		loan = l
		return dbError(tx.Loans().Update(ctx, l))
	})
	if err != nil {
		return nil, dbError(err)
	}

	return loan, nil
}

// RecomputeFines walks every open loan and applies today's fine. Running it
// twice on the same day changes nothing the second time.
func (s *LoanService) RecomputeFines(ctx context.Context) (*domain.FineSummary, error) {
	today := s.today()

	loans, err := s.store.Loans().ListOpen(ctx)
	if err != nil {
		return nil, dbError(err)
	}

	summary := &domain.FineSummary{Total: decimal.Zero}
	for _, l := range loans {
		if l.IsLate(today) {
			refreshed, err := s.applyFine(ctx, l.ID)
			if err != nil {
				return nil, err
			}
			if refreshed.Status == domain.LoanStatusLate {
				summary.MarkedLate++
			}
			l = refreshed
		}
		summary.Processed++
		summary.Total = summary.Total.Add(l.Fine)
	}

	s.logger.InfoContext(ctx, "fines recomputed",
		slog.Int("processed", summary.Processed),
		slog.Int("marked_late", summary.MarkedLate),
		slog.String("total", summary.Total.StringFixed(2)),
	)

	return summary, nil
}
