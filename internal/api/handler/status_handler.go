package handler

import (
	"net/http"
	"time"

	"github.com/jalsetu/notify-worker/internal/domain"
	"github.com/jalsetu/notify-worker/internal/worker"
)

// StatusHandler serves a human-readable snapshot of the retry policy in
// effect. Raw Prometheus metrics (counters, histograms) are available at
// /metrics via promhttp and are separate from this endpoint.
type StatusHandler struct {
	policy      worker.RetryPolicy
	retryDelays []time.Duration
}

func NewStatusHandler(policy worker.RetryPolicy, retryDelays []time.Duration) *StatusHandler {
	return &StatusHandler{policy: policy, retryDelays: retryDelays}
}

// Status handles GET /status.
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	stages := make([]string, len(h.retryDelays))
	for i, d := range h.retryDelays {
		stages[i] = d.String()
	}

	budgets := make(map[string]int, len(domain.Channels()))
	for _, ch := range domain.Channels() {
		budgets[string(ch)] = h.policy.MaxAttempts(ch)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"retry_stage_delays": stages,
		"channel_budgets":    budgets,
	})
}
