package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHealthHandler_Ready(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("dial tcp: connection refused") }

	tests := []struct {
		name           string
		checks         map[string]func(context.Context) error
		expectedStatus int
		expectedChecks map[string]interface{}
	}{
		{
			name:           "all dependencies up",
			checks:         map[string]func(context.Context) error{"database": ok, "redis": ok},
			expectedStatus: http.StatusOK,
			expectedChecks: map[string]interface{}{"database": "ok", "redis": "ok"},
		},
		{
			name:           "redis down",
			checks:         map[string]func(context.Context) error{"database": ok, "redis": down},
			expectedStatus: http.StatusServiceUnavailable,
			expectedChecks: map[string]interface{}{"database": "ok", "redis": "failed: dial tcp: connection refused"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHealthHandler(tt.checks, time.Second)

			rr := httptest.NewRecorder()
			h.Ready(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			assert.Equal(t, tt.expectedStatus, rr.Code)
			data := decodeBody(t, rr)["data"].(map[string]interface{})
			assert.Equal(t, tt.expectedChecks, data["checks"])
		})
	}
}

func TestHealthHandler_ReadyAppliesTimeout(t *testing.T) {
	slow := func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}
	h := newHealthHandler(map[string]func(context.Context) error{"database": slow}, 10*time.Millisecond)

	rr := httptest.NewRecorder()
	h.Ready(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestHealthHandler_Health(t *testing.T) {
	rr := httptest.NewRecorder()
	newHealthHandler(nil, 0).Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decodeBody(t, rr)["data"].(map[string]interface{})["status"])
}
