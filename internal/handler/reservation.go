package handler

import (
	"fmt"
	"net/http"

	"github.com/segyhp/library-engine/pkg/response"
)

type ReservationHandler struct {
	service ReservationService
}

func NewReservationHandler(service ReservationService) *ReservationHandler {
	return &ReservationHandler{service: service}
}

// CreateReservation handles POST /api/v1/books/{bookId}/reservations
func (h *ReservationHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	bookID, err := pathID(r, "bookId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	userID, _ := UserIDFromContext(r.Context())
	reservation, err := h.service.CreateReservation(r.Context(), userID, bookID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Message(w, http.StatusCreated, response.LevelSuccess,
		fmt.Sprintf("Book reserved until %s.", reservation.ExpiresOn.Format(dateLayout)), reservation)
}

// ListMyReservations handles GET /api/v1/me/reservations
func (h *ReservationHandler) ListMyReservations(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	reservations, err := h.service.ListUserReservations(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, reservations)
}

func (h *ReservationHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	reservationID, err := pathID(r, "reservationId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	userID, _ := UserIDFromContext(r.Context())
	reservation, err := h.service.CancelReservation(r.Context(), userID, reservationID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Message(w, http.StatusOK, response.LevelSuccess, "Reservation cancelled.", reservation)
}

func (h *ReservationHandler) CompleteReservation(w http.ResponseWriter, r *http.Request) {
	reservationID, err := pathID(r, "reservationId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	reservation, err := h.service.CompleteReservation(r.Context(), reservationID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Message(w, http.StatusOK, response.LevelSuccess, "Reservation completed.", reservation)
}

func (h *ReservationHandler) ExpireReservations(w http.ResponseWriter, r *http.Request) {
	expired, err := h.service.ExpireReservations(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, map[string]int{"expired": expired})
}
