package main

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/library-engine/internal/domain"
	"github.com/segyhp/library-engine/internal/handler"
	"github.com/segyhp/library-engine/pkg/response"
)

const routesSecret = "routes-secret"

// stubProfiles treats user 1 as staff and everyone else as a regular member
type stubProfiles struct{}

func (stubProfiles) GetProfile(_ context.Context, userID int64) (*domain.ProfileSummary, error) {
	return &domain.ProfileSummary{Profile: &domain.UserProfile{UserID: userID, Kind: domain.UserKindRegular}}, nil
}

func (stubProfiles) UpdateProfile(_ context.Context, userID int64, _ *domain.UpdateProfileRequest) (*domain.UserProfile, error) {
	return &domain.UserProfile{UserID: userID}, nil
}

func (stubProfiles) IsStaff(_ context.Context, userID int64) (bool, error) {
	return userID == 1, nil
}

func newTestRouter(t *testing.T) (http.Handler, *handler.Authenticator) {
	t.Helper()

	rdb := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	t.Cleanup(func() { rdb.Close() })

	profiles := stubProfiles{}
	h := handlers{
		catalog:      handler.NewCatalogHandler(nil),
		loans:        handler.NewLoanHandler(nil),
		reservations: handler.NewReservationHandler(nil),
		profiles:     handler.NewProfileHandler(profiles),
		health:       handler.NewHealthHandler(sqlx.NewDb(new(sql.DB), "postgres"), rdb, time.Second),
	}
	auth := handler.NewAuthenticator(routesSecret)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return setupRoutes(h, auth, profiles, log), auth
}

func bearer(t *testing.T, auth *handler.Authenticator, userID int64) string {
	t.Helper()
	token, err := auth.IssueToken(userID, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRoutes_Health(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get(response.HeaderRequestID))
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRoutes_Access(t *testing.T) {
	router, auth := newTestRouter(t)

	tests := []struct {
		name       string
		method     string
		path       string
		userID     int64
		wantStatus int
	}{
		{name: "member route without token", method: http.MethodGet, path: "/api/v1/me/loans", wantStatus: http.StatusUnauthorized},
		{name: "borrow without token", method: http.MethodPost, path: "/api/v1/books/3/loans", wantStatus: http.StatusUnauthorized},
		{name: "admin route without token", method: http.MethodPost, path: "/api/v1/admin/books", wantStatus: http.StatusUnauthorized},
		{name: "admin route as member", method: http.MethodPost, path: "/api/v1/admin/reservations/expire", userID: 2, wantStatus: http.StatusForbidden},
		{name: "own profile", method: http.MethodGet, path: "/api/v1/me/profile", userID: 2, wantStatus: http.StatusOK},
		{name: "unknown route", method: http.MethodGet, path: "/api/v1/shelves", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.userID != 0 {
				req.Header.Set("Authorization", bearer(t, auth, tt.userID))
			}

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}
