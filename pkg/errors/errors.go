package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrBookNotFound             = errors.New("book not found")
	ErrAuthorNotFound           = errors.New("author not found")
	ErrCategoryNotFound         = errors.New("category not found")
	ErrLoanNotFound             = errors.New("loan not found")
	ErrReservationNotFound      = errors.New("reservation not found")
	ErrBookUnavailable          = errors.New("book is not available for loan")
	ErrBookAvailableForLoan     = errors.New("book is available for immediate loan")
	ErrLoanAlreadyOpen          = errors.New("user already holds an open loan for this book")
	ErrLoanLimitExceeded        = errors.New("open loan limit reached")
	ErrReservationAlreadyActive = errors.New("user already holds an active reservation for this book")
	ErrReservationLimitExceeded = errors.New("active reservation limit reached")
	ErrLoanNotRenewable         = errors.New("loan cannot be renewed")
	ErrLoanOverdue              = errors.New("overdue loans cannot be renewed")
	ErrReservationNotActive     = errors.New("reservation is not active")
	ErrDuplicateISBN            = errors.New("isbn already registered")
	ErrDuplicateCategory        = errors.New("category already exists")
	ErrDuplicateIDDocument      = errors.New("id document already registered")
	ErrInvalidInput             = errors.New("invalid input")
)

// Kind groups errors by how callers should react to them.
type Kind string

const (
	KindNotFound      Kind = "not_found"
	KindUnavailable   Kind = "unavailable"
	KindConflict      Kind = "conflict"
	KindLimitExceeded Kind = "limit_exceeded"
	KindInvalidState  Kind = "invalid_state"
	KindValidation    Kind = "validation"
	KindInternal      Kind = "internal"
)

// Severity levels shown to the user
const (
	LevelError   = "error"
	LevelWarning = "warning"
	LevelInfo    = "info"
)

// BusinessError represents a business logic error
type BusinessError struct {
	Kind    Kind
	Code    string
	Message string
	Level   string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error with error severity
func NewBusinessError(kind Kind, code, message string, err error) *BusinessError {
	return &BusinessError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Level:   LevelError,
		Err:     err,
	}
}

func (e *BusinessError) withLevel(level string) *BusinessError {
	e.Level = level
	return e
}

// KindOf returns the kind of err, KindInternal for anything that is not a BusinessError.
func KindOf(err error) Kind {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindInternal
}

// IsKind reports whether err is a BusinessError of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Error codes
const (
	ErrCodeBookNotFound             = "BOOK_NOT_FOUND"
	ErrCodeAuthorNotFound           = "AUTHOR_NOT_FOUND"
	ErrCodeCategoryNotFound         = "CATEGORY_NOT_FOUND"
	ErrCodeLoanNotFound             = "LOAN_NOT_FOUND"
	ErrCodeReservationNotFound      = "RESERVATION_NOT_FOUND"
	ErrCodeBookUnavailable          = "BOOK_UNAVAILABLE"
	ErrCodeBookAvailableForLoan     = "BOOK_AVAILABLE_FOR_LOAN"
	ErrCodeLoanAlreadyOpen          = "LOAN_ALREADY_OPEN"
	ErrCodeLoanLimitExceeded        = "LOAN_LIMIT_EXCEEDED"
	ErrCodeReservationAlreadyActive = "RESERVATION_ALREADY_ACTIVE"
	ErrCodeReservationLimitExceeded = "RESERVATION_LIMIT_EXCEEDED"
	ErrCodeLoanNotRenewable         = "LOAN_NOT_RENEWABLE"
	ErrCodeLoanOverdue              = "LOAN_OVERDUE"
	ErrCodeReservationNotActive     = "RESERVATION_NOT_ACTIVE"
	ErrCodeDuplicateISBN            = "DUPLICATE_ISBN"
	ErrCodeDuplicateCategory        = "DUPLICATE_CATEGORY"
	ErrCodeDuplicateIDDocument      = "DUPLICATE_ID_DOCUMENT"
	ErrCodeInvalidInput             = "INVALID_INPUT"
	ErrCodeDatabaseError            = "DATABASE_ERROR"
	ErrCodeCacheError               = "CACHE_ERROR"
)

// Wrap common errors with business context

func WrapBookNotFound(bookID int64) *BusinessError {
	return NewBusinessError(
		KindNotFound,
		ErrCodeBookNotFound,
		fmt.Sprintf("Book with ID %d not found", bookID),
		ErrBookNotFound,
	)
}

func WrapAuthorNotFound(authorID int64) *BusinessError {
	return NewBusinessError(
		KindNotFound,
		ErrCodeAuthorNotFound,
		fmt.Sprintf("Author with ID %d not found", authorID),
		ErrAuthorNotFound,
	)
}

func WrapCategoryNotFound(categoryID int64) *BusinessError {
	return NewBusinessError(
		KindNotFound,
		ErrCodeCategoryNotFound,
		fmt.Sprintf("Category with ID %d not found", categoryID),
		ErrCategoryNotFound,
	)
}

func WrapLoanNotFound(loanID int64) *BusinessError {
	return NewBusinessError(
		KindNotFound,
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %d not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapReservationNotFound(reservationID int64) *BusinessError {
	return NewBusinessError(
		KindNotFound,
		ErrCodeReservationNotFound,
		fmt.Sprintf("Reservation with ID %d not found", reservationID),
		ErrReservationNotFound,
	)
}

func WrapBookUnavailable(bookID int64) *BusinessError {
	return NewBusinessError(
		KindUnavailable,
		ErrCodeBookUnavailable,
		fmt.Sprintf("Book with ID %d is not available for loan at the moment", bookID),
		ErrBookUnavailable,
	)
}

// WrapBookAvailableForLoan is returned when a reservation is requested for a book that
// can be borrowed right away. It is informational: the caller should offer a loan instead.
func WrapBookAvailableForLoan(bookID int64) *BusinessError {
	return NewBusinessError(
		KindUnavailable,
		ErrCodeBookAvailableForLoan,
		fmt.Sprintf("Book with ID %d is available for immediate loan", bookID),
		ErrBookAvailableForLoan,
	).withLevel(LevelInfo)
}

func WrapLoanAlreadyOpen(bookID int64) *BusinessError {
	return NewBusinessError(
		KindConflict,
		ErrCodeLoanAlreadyOpen,
		fmt.Sprintf("You already have an open loan for book %d", bookID),
		ErrLoanAlreadyOpen,
	).withLevel(LevelWarning)
}

func WrapLoanLimitExceeded(limit int) *BusinessError {
	return NewBusinessError(
		KindLimitExceeded,
		ErrCodeLoanLimitExceeded,
		fmt.Sprintf("You reached the maximum of %d open loans", limit),
		ErrLoanLimitExceeded,
	)
}

func WrapReservationAlreadyActive(bookID int64) *BusinessError {
	return NewBusinessError(
		KindConflict,
		ErrCodeReservationAlreadyActive,
		fmt.Sprintf("You already have an active reservation for book %d", bookID),
		ErrReservationAlreadyActive,
	).withLevel(LevelWarning)
}

func WrapReservationLimitExceeded(limit int) *BusinessError {
	return NewBusinessError(
		KindLimitExceeded,
		ErrCodeReservationLimitExceeded,
		fmt.Sprintf("You reached the maximum of %d active reservations", limit),
		ErrReservationLimitExceeded,
	)
}

func WrapLoanNotRenewable(loanID int64) *BusinessError {
	return NewBusinessError(
		KindInvalidState,
		ErrCodeLoanNotRenewable,
		fmt.Sprintf("Loan with ID %d cannot be renewed", loanID),
		ErrLoanNotRenewable,
	)
}

func WrapLoanOverdue(loanID int64) *BusinessError {
	return NewBusinessError(
		KindInvalidState,
		ErrCodeLoanOverdue,
		fmt.Sprintf("Loan with ID %d is overdue and cannot be renewed", loanID),
		ErrLoanOverdue,
	)
}

func WrapReservationNotActive(reservationID int64) *BusinessError {
	return NewBusinessError(
		KindInvalidState,
		ErrCodeReservationNotActive,
		fmt.Sprintf("Reservation with ID %d is not active", reservationID),
		ErrReservationNotActive,
	)
}

func WrapDuplicateISBN(isbn string) *BusinessError {
	return NewBusinessError(
		KindConflict,
		ErrCodeDuplicateISBN,
		fmt.Sprintf("A book with ISBN %s already exists", isbn),
		ErrDuplicateISBN,
	)
}

func WrapDuplicateCategory(name string) *BusinessError {
	return NewBusinessError(
		KindConflict,
		ErrCodeDuplicateCategory,
		fmt.Sprintf("Category %q already exists", name),
		ErrDuplicateCategory,
	)
}

func WrapDuplicateIDDocument() *BusinessError {
	return NewBusinessError(
		KindConflict,
		ErrCodeDuplicateIDDocument,
		"This id document is already registered",
		ErrDuplicateIDDocument,
	)
}

func WrapInvalidInput(message string) *BusinessError {
	return NewBusinessError(
		KindValidation,
		ErrCodeInvalidInput,
		message,
		ErrInvalidInput,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		KindInternal,
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		KindInternal,
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}
