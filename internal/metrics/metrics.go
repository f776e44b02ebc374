package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jalsetu/notify-worker/internal/domain"
)

// Metrics groups all Prometheus instruments used across the worker.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	NotificationsSent    *prometheus.CounterVec
	NotificationsFailed  *prometheus.CounterVec
	NotificationsRetried *prometheus.CounterVec
	DeliveryLatency      *prometheus.HistogramVec
	InFlight             prometheus.Gauge
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		NotificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Total number of successfully delivered notifications.",
		}, []string{"channel"}),

		NotificationsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_failed_total",
			Help: "Total number of permanently failed notifications (retry budget exhausted).",
		}, []string{"channel"}),

		NotificationsRetried: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_retried_total",
			Help: "Total number of jobs republished to a delayed retry stage.",
		}, []string{"channel", "stage"}),

		DeliveryLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "notification_delivery_seconds",
			Help:    "Per-delivery latency from dequeue to terminal ack.",
			Buckets: prometheus.DefBuckets,
		}, []string{"channel"}),

		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "worker_inflight_messages",
			Help: "Unacknowledged deliveries currently being processed (bounded by prefetch).",
		}),
	}

	reg.MustRegister(
		m.NotificationsSent,
		m.NotificationsFailed,
		m.NotificationsRetried,
		m.DeliveryLatency,
		m.InFlight,
	)

	return m
}

// WorkerHooks returns the metric callback functions expected by
// worker.MetricHooks. Centralises the prometheus observation calls so the
// worker package stays metrics-agnostic.
func (m *Metrics) WorkerHooks() (
	onSent func(domain.Channel, time.Duration),
	onRetried func(domain.Channel, int),
	onFailed func(domain.Channel),
	onInFlight func(int),
) {
	onSent = func(ch domain.Channel, latency time.Duration) {
		m.NotificationsSent.WithLabelValues(string(ch)).Inc()
		m.DeliveryLatency.WithLabelValues(string(ch)).Observe(latency.Seconds())
	}
	onRetried = func(ch domain.Channel, stage int) {
		m.NotificationsRetried.WithLabelValues(string(ch), strconv.Itoa(stage)).Inc()
	}
	onFailed = func(ch domain.Channel) {
		m.NotificationsFailed.WithLabelValues(string(ch)).Inc()
	}
	onInFlight = func(delta int) {
		m.InFlight.Add(float64(delta))
	}
	return
}
