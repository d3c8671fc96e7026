package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"

	"github.com/segyhp/library-engine/internal/domain"
	customError "github.com/segyhp/library-engine/pkg/errors"
	"github.com/segyhp/library-engine/pkg/response"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CatalogService is what the catalog handlers need from the service layer
type CatalogService interface {
	Home(ctx context.Context) (*domain.HomePage, error)
	SearchBooks(ctx context.Context, filter domain.BookFilter) ([]*domain.BookListing, error)
	GetBook(ctx context.Context, bookID, userID int64) (*domain.BookDetail, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	ListAuthors(ctx context.Context) ([]*domain.Author, error)
	CreateCategory(ctx context.Context, request *domain.CreateCategoryRequest) (*domain.Category, error)
	CreateAuthor(ctx context.Context, request *domain.CreateAuthorRequest) (*domain.Author, error)
	CreateBook(ctx context.Context, request *domain.CreateBookRequest) (*domain.Book, error)
	SetBookStatus(ctx context.Context, bookID int64, status string) (*domain.Book, error)
}

type LoanService interface {
	CreateLoan(ctx context.Context, userID, bookID int64) (*domain.Loan, error)
	ListUserLoans(ctx context.Context, userID int64) ([]*domain.LoanDetail, error)
	ReturnLoan(ctx context.Context, userID, loanID int64) (*domain.ReturnResult, error)
	ReturnLoanAsStaff(ctx context.Context, loanID int64) (*domain.ReturnResult, error)
	RenewLoan(ctx context.Context, userID, loanID int64) (*domain.Loan, error)
	RecomputeFines(ctx context.Context) (*domain.FineSummary, error)
}

type ReservationService interface {
	CreateReservation(ctx context.Context, userID, bookID int64) (*domain.Reservation, error)
	ListUserReservations(ctx context.Context, userID int64) ([]*domain.ReservationDetail, error)
	CancelReservation(ctx context.Context, userID, reservationID int64) (*domain.Reservation, error)
	CompleteReservation(ctx context.Context, reservationID int64) (*domain.Reservation, error)
	ExpireReservations(ctx context.Context) (int, error)
}

type ProfileService interface {
	GetProfile(ctx context.Context, userID int64) (*domain.ProfileSummary, error)
	UpdateProfile(ctx context.Context, userID int64, request *domain.UpdateProfileRequest) (*domain.UserProfile, error)
	IsStaff(ctx context.Context, userID int64) (bool, error)
}

// statusFor maps an error kind to its HTTP status
func statusFor(kind customError.Kind) int {
	switch kind {
	case customError.KindNotFound:
		return http.StatusNotFound
	case customError.KindUnavailable, customError.KindConflict, customError.KindInvalidState:
		return http.StatusConflict
	case customError.KindLimitExceeded:
		return http.StatusUnprocessableEntity
	case customError.KindValidation:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeError renders a service error. Business rejections keep their code,
// message and level; anything else is logged and hidden behind a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var be *customError.BusinessError
	if !errors.As(err, &be) {
		slog.ErrorContext(r.Context(), "unhandled error", slog.Any("error", err))
		response.InternalServerError(w, "internal server error", nil)
		return
	}

	if be.Kind == customError.KindInternal {
		slog.ErrorContext(r.Context(), be.Message,
			slog.String("code", be.Code),
			slog.Any("error", be.Err),
		)
	}

	response.Fail(w, statusFor(be.Kind), response.Level(be.Level), be.Code, be.Message)
}

// pathID reads a positive integer route variable
func pathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, customError.WrapInvalidInput(fmt.Sprintf("invalid %s: %q", name, raw))
	}
	return id, nil
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags
func decodeAndValidate(r *http.Request, v *validator.Validate, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return customError.WrapInvalidInput("invalid request body")
	}

	if err := v.Struct(dst); err != nil {
		return customError.WrapInvalidInput(err.Error())
	}

	return nil
}

// queryInt reads an optional integer query parameter
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, customError.WrapInvalidInput(fmt.Sprintf("invalid %s: %q", name, raw))
	}
	return n, nil
}

func queryID(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, customError.WrapInvalidInput(fmt.Sprintf("invalid %s: %q", name, raw))
	}
	return &id, nil
}
