package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/segyhp/library-engine/internal/domain"
	"github.com/segyhp/library-engine/pkg/response"
)

type ProfileHandler struct {
	service   ProfileService
	validator *validator.Validate
}

func NewProfileHandler(service ProfileService) *ProfileHandler {
	return &ProfileHandler{
		service:   service,
		validator: validator.New(),
	}
}

// GetProfile handles GET /api/v1/me/profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	summary, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, summary)
}

// UpdateProfile handles PUT /api/v1/me/profile
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var request domain.UpdateProfileRequest
	if err := decodeAndValidate(r, h.validator, &request); err != nil {
		writeError(w, r, err)
		return
	}

	userID, _ := UserIDFromContext(r.Context())
	profile, err := h.service.UpdateProfile(r.Context(), userID, &request)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Message(w, http.StatusOK, response.LevelSuccess, "Profile updated.", profile)
}
