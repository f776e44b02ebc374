package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jalsetu/notify-worker/internal/api/handler"
	apimw "github.com/jalsetu/notify-worker/internal/api/middleware"
	"github.com/jalsetu/notify-worker/internal/repository"
	"github.com/jalsetu/notify-worker/internal/worker"
)

// NewRouter wires the worker's HTTP surface: liveness, Prometheus scrape, a
// policy snapshot for on-call debugging, record lookup and the producer entry
// that enqueues new jobs. Delivery itself is queue-driven; nothing here
// touches the send path.
func NewRouter(
	pool *pgxpool.Pool,
	brk handler.BrokerStatus,
	pub handler.JobPublisher,
	records repository.RecordRepository,
	policy worker.RetryPolicy,
	retryDelays []time.Duration,
	reg prometheus.Gatherer,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(apimw.CorrelationID)
	r.Use(apimw.RequestLogger(logger))

	hh := handler.NewHealthHandler(pool, brk)
	sh := handler.NewStatusHandler(policy, retryDelays)
	rh := handler.NewRecordHandler(records)
	ph := handler.NewPublishHandler(pub, logger)

	r.Get("/health", hh.Health)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Get("/status", sh.Status)
	r.Get("/records/{id}", rh.GetByID)
	r.Post("/jobs", ph.Publish)

	return r
}
