package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/library-engine/pkg/utils"
)

const (
	LoanStatusActive   = "active"
	LoanStatusReturned = "returned"
	LoanStatusLate     = "late"
	LoanStatusRenewed  = "renewed"
)

// Loan represents a book lent to a user
type Loan struct {
	ID         int64           `json:"id" db:"id"`
	BookID     int64           `json:"book_id" db:"book_id"`
	UserID     int64           `json:"user_id" db:"user_id"`
	LoanDate   time.Time       `json:"loan_date" db:"loan_date"`
	DueDate    time.Time       `json:"due_date" db:"due_date"`
	ReturnDate *time.Time      `json:"return_date,omitempty" db:"return_date"`
	Status     string          `json:"status" db:"status"`
	Fine       decimal.Decimal `json:"fine" db:"fine"`
	Notes      string          `json:"notes" db:"notes"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`
}

// NewLoan opens a loan dated today and due periodDays later
func NewLoan(bookID, userID int64, today time.Time, periodDays int) *Loan {
	return &Loan{
		BookID:   bookID,
		UserID:   userID,
		LoanDate: utils.DateOf(today),
		DueDate:  utils.AddDays(today, periodDays),
		Status:   LoanStatusActive,
		Fine:     decimal.Zero,
	}
}

// IsOpen reports whether the book is still out (active, renewed or late).
func (l *Loan) IsOpen() bool {
	return IsOpenLoanStatus(l.Status)
}

func IsOpenLoanStatus(status string) bool {
	return status == LoanStatusActive || status == LoanStatusRenewed || status == LoanStatusLate
}

func (l *Loan) accruesFine() bool {
	return l.Status == LoanStatusActive || l.Status == LoanStatusRenewed
}

// IsLate is true when today is past the due date and the loan still accrues fines.
func (l *Loan) IsLate(today time.Time) bool {
	return l.accruesFine() && utils.IsPastDate(l.DueDate, today)
}

// DaysOverdue returns how many days today is past the due date, 0 when not overdue
func (l *Loan) DaysOverdue(today time.Time) int {
	days := utils.DaysBetween(l.DueDate, today)
	if days < 0 {
		return 0
	}
	return days
}

// ComputeFine charges dailyFine per overdue day on an active or renewed loan
// and moves it to late. Loans in any other state keep their stored fine.
// The second result reports whether the loan changed and must be persisted.
func (l *Loan) ComputeFine(today time.Time, dailyFine decimal.Decimal) (decimal.Decimal, bool) {
	if !l.IsLate(today) {
		return l.Fine, false
	}

	l.Fine = utils.CalculateFine(l.DaysOverdue(today), dailyFine)
	l.Status = LoanStatusLate
	return l.Fine, true
}

// Return closes the loan. It returns false if the loan was already returned.
func (l *Loan) Return(today time.Time) bool {
	if l.Status == LoanStatusReturned {
		return false
	}

	returned := utils.DateOf(today)
	l.ReturnDate = &returned
	l.Status = LoanStatusReturned
	return true
}

// Renew pushes the due date by days. Only an active loan that is not past
// due can be renewed, so a loan is renewed at most once.
func (l *Loan) Renew(today time.Time, days int) bool {
	if l.Status != LoanStatusActive || utils.IsPastDate(l.DueDate, today) {
		return false
	}

	l.DueDate = utils.AddDays(l.DueDate, days)
	l.Status = LoanStatusRenewed
	return true
}

// LoanDetail is a loan row with the book title and the computed late flag
type LoanDetail struct {
	Loan
	BookTitle string `json:"book_title" db:"book_title"`
	IsLate    bool   `json:"is_late" db:"-"`
}

// ReturnResult describes the outcome of a return request
type ReturnResult struct {
	Loan            *Loan `json:"loan"`
	AlreadyReturned bool  `json:"already_returned"`
}

// HasFine reports whether the returned loan carries a fine
func (r *ReturnResult) HasFine() bool {
	return r.Loan != nil && r.Loan.Fine.IsPositive()
}

// FineSummary is the outcome of recomputing fines over all open loans
type FineSummary struct {
	Processed  int             `json:"processed"`
	MarkedLate int             `json:"marked_late"`
	Total      decimal.Decimal `json:"total"`
}
