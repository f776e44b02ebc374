package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// BrokerStatus is the slice of the broker the health probe needs.
type BrokerStatus interface {
	Closed() bool
}

// HealthHandler serves the liveness/readiness probe endpoint.
type HealthHandler struct {
	pool *pgxpool.Pool
	brk  BrokerStatus
}

func NewHealthHandler(pool *pgxpool.Pool, brk BrokerStatus) *HealthHandler {
	return &HealthHandler{pool: pool, brk: brk}
}

// Health handles GET /health. Reports 503 when the record store or the
// broker connection is down — the worker cannot make progress without both.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := map[string]string{"database": "ok", "broker": "ok"}
	status := http.StatusOK

	if err := h.pool.Ping(ctx); err != nil {
		components["database"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	if h.brk.Closed() {
		components["broker"] = "connection closed"
		status = http.StatusServiceUnavailable
	}

	respondJSON(w, status, components)
}
