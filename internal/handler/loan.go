package handler

import (
	"fmt"
	"net/http"

	"github.com/segyhp/library-engine/internal/domain"
	"github.com/segyhp/library-engine/pkg/response"
)

const dateLayout = "2006-01-02"

type LoanHandler struct {
	service LoanService
}

func NewLoanHandler(service LoanService) *LoanHandler {
	return &LoanHandler{service: service}
}

// CreateLoan handles POST /api/v1/books/{bookId}/loans
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	bookID, err := pathID(r, "bookId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	userID, _ := UserIDFromContext(r.Context())
	loan, err := h.service.CreateLoan(r.Context(), userID, bookID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Message(w, http.StatusCreated, response.LevelSuccess,
		fmt.Sprintf("Book borrowed. Return it by %s.", loan.DueDate.Format(dateLayout)), loan)
}

// ListMyLoans handles GET /api/v1/me/loans
func (h *LoanHandler) ListMyLoans(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	loans, err := h.service.ListUserLoans(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, loans)
}

// ReturnLoan handles POST /api/v1/loans/{loanId}/return
func (h *LoanHandler) ReturnLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathID(r, "loanId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	userID, _ := UserIDFromContext(r.Context())
	result, err := h.service.ReturnLoan(r.Context(), userID, loanID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeReturn(w, result)
}

// ReturnLoanAsStaff handles POST /api/v1/admin/loans/{loanId}/return
func (h *LoanHandler) ReturnLoanAsStaff(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathID(r, "loanId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.service.ReturnLoanAsStaff(r.Context(), loanID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeReturn(w, result)
}

// writeReturn picks the level of a return: info when nothing happened,
// warning when a fine is due, success otherwise.
func writeReturn(w http.ResponseWriter, result *domain.ReturnResult) {
	switch {
	case result.AlreadyReturned:
		response.Message(w, http.StatusOK, response.LevelInfo, "This loan was already returned.", result)
	case result.HasFine():
		response.Message(w, http.StatusOK, response.LevelWarning,
			fmt.Sprintf("Book returned late. Fine due: %s.", result.Loan.Fine.StringFixed(2)), result)
	default:
		response.Message(w, http.StatusOK, response.LevelSuccess, "Book returned.", result)
	}
}

// RenewLoan handles POST /api/v1/loans/{loanId}/renew
func (h *LoanHandler) RenewLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathID(r, "loanId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	userID, _ := UserIDFromContext(r.Context())
	loan, err := h.service.RenewLoan(r.Context(), userID, loanID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Message(w, http.StatusOK, response.LevelSuccess,
		fmt.Sprintf("Loan renewed. New due date: %s.", loan.DueDate.Format(dateLayout)), loan)
}

// RecomputeFines handles POST /api/v1/admin/loans/fines
func (h *LoanHandler) RecomputeFines(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.RecomputeFines(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, summary)
}
