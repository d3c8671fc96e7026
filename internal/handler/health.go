package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/segyhp/library-engine/pkg/response"
)

type HealthHandler struct {
	checks  map[string]func(ctx context.Context) error
	timeout time.Duration
}

func NewHealthHandler(db *sqlx.DB, rdb *redis.Client, timeout time.Duration) *HealthHandler {
	return newHealthHandler(map[string]func(ctx context.Context) error{
		"database": db.PingContext,
		"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}, timeout)
}

func newHealthHandler(checks map[string]func(ctx context.Context) error, timeout time.Duration) *HealthHandler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HealthHandler{checks: checks, timeout: timeout}
}

type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Health performs a basic health check
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.Success(w, HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	})
}

// Ready performs readiness check including database and redis connectivity
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Checks:    make(map[string]string, len(h.checks)),
	}

	for name, check := range h.checks {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		err := check(ctx)
		cancel()

		if err != nil {
			status.Status = "error"
			status.Checks[name] = "failed: " + err.Error()
		} else {
			status.Checks[name] = "ok"
		}
	}

	if status.Status == "error" {
		response.Message(w, http.StatusServiceUnavailable, response.LevelError, "Service not ready", status)
		return
	}

	response.Success(w, status)
}
