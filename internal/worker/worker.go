package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/jalsetu/notify-worker/internal/broker"
	"github.com/jalsetu/notify-worker/internal/domain"
	"github.com/jalsetu/notify-worker/internal/ratelimiter"
	"github.com/jalsetu/notify-worker/internal/repository"
	"github.com/jalsetu/notify-worker/internal/sender"
)

// Source hands out the manual-ack delivery stream from the processing queue.
type Source interface {
	Consume(ctx context.Context) (<-chan amqp.Delivery, error)
}

// Publisher covers the two republish operations the worker performs on a
// send failure. The broker implements it; tests use a fake.
type Publisher interface {
	PublishRetry(ctx context.Context, stage int, body []byte, attempts int) error
	PublishFailed(ctx context.Context, body []byte, attempts int) error
}

// PresenceNotifier pushes a delivered payload to a connected client session.
// Best-effort: errors are logged, never fail the job.
type PresenceNotifier interface {
	Notify(ctx context.Context, userID string, payload []byte) error
}

// MetricHooks carries the metric callback functions injected by main.
// Using a struct keeps the worker constructor signature clean.
type MetricHooks struct {
	OnSent     func(channel domain.Channel, latency time.Duration)
	OnRetried  func(channel domain.Channel, stage int)
	OnFailed   func(channel domain.Channel)
	OnInFlight func(delta int)
}

func (h *MetricHooks) fillDefaults() {
	if h.OnSent == nil {
		h.OnSent = func(domain.Channel, time.Duration) {}
	}
	if h.OnRetried == nil {
		h.OnRetried = func(domain.Channel, int) {}
	}
	if h.OnFailed == nil {
		h.OnFailed = func(domain.Channel) {}
	}
	if h.OnInFlight == nil {
		h.OnInFlight = func(int) {}
	}
}

// Worker is the notification control loop: it consumes jobs from the
// processing queue, dispatches them to the matching channel sender and
// applies the retry policy on failure. Behaviour is observed only through
// record-store mutations and queue side effects — there is no caller.
type Worker struct {
	source      Source
	pub         Publisher
	records     repository.RecordRepository
	senders     *sender.Registry
	limiter     *ratelimiter.ChannelLimiters
	presence    PresenceNotifier // nil when no presence backend is configured
	policy      RetryPolicy
	sendTimeout time.Duration
	logger      *zap.Logger
	hooks       MetricHooks

	wg sync.WaitGroup
}

func New(
	source Source,
	pub Publisher,
	records repository.RecordRepository,
	senders *sender.Registry,
	limiter *ratelimiter.ChannelLimiters,
	presence PresenceNotifier,
	policy RetryPolicy,
	sendTimeout time.Duration,
	logger *zap.Logger,
	hooks MetricHooks,
) *Worker {
	hooks.fillDefaults()
	return &Worker{
		source:      source,
		pub:         pub,
		records:     records,
		senders:     senders,
		limiter:     limiter,
		presence:    presence,
		policy:      policy,
		sendTimeout: sendTimeout,
		logger:      logger,
		hooks:       hooks,
	}
}

// Run consumes until ctx is cancelled or the delivery stream closes, then
// waits for every in-flight handler to reach its terminal ack. Handlers run
// on a detached context so cancellation stops intake without cutting off
// messages already being processed.
func (w *Worker) Run(ctx context.Context) error {
	deliveries, err := w.source.Consume(ctx)
	if err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}

	w.logger.Info("worker started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker stopping, draining in-flight messages")
			w.wg.Wait()
			return nil
		case d, ok := <-deliveries:
			if !ok {
				w.logger.Info("delivery stream closed, draining in-flight messages")
				w.wg.Wait()
				return nil
			}
			w.wg.Add(1)
			go func(d amqp.Delivery) {
				defer w.wg.Done()
				w.process(context.WithoutCancel(ctx), d)
			}(d)
		}
	}
}

// process handles one dequeued message through to exactly one terminal ack.
// Concurrency across messages is bounded by the broker prefetch: once that
// many deliveries are unacknowledged, no more arrive.
func (w *Worker) process(ctx context.Context, d amqp.Delivery) {
	start := time.Now()
	w.hooks.OnInFlight(1)
	defer w.hooks.OnInFlight(-1)

	var job domain.Job
	if err := json.Unmarshal(d.Body, &job); err != nil {
		w.logger.Error("dropping malformed job message", zap.Error(err))
		w.ack(d)
		return
	}
	if err := job.Validate(); err != nil {
		w.logger.Error("dropping invalid job message",
			zap.String("notification_id", job.NotificationID), zap.Error(err))
		w.ack(d)
		return
	}

	attempts := broker.Attempts(d.Headers) + 1
	log := w.logger.With(
		zap.String("notification_id", job.NotificationID),
		zap.String("channel", string(job.Type)),
		zap.Int("attempts", attempts),
	)

	sendErr := w.deliver(ctx, &job)
	if sendErr == nil {
		if err := w.records.MarkSent(ctx, job.NotificationID, attempts); err != nil {
			log.Error("processing anomaly: record not marked sent", zap.Error(err))
		}
		w.notifyPresence(&job, d.Body)
		w.hooks.OnSent(job.Type, time.Since(start))
		log.Info("notification sent")
		w.ack(d)
		return
	}

	if stage, ok := w.policy.NextStage(job.Type, attempts); ok {
		if err := w.pub.PublishRetry(ctx, stage, d.Body, attempts); err != nil {
			log.Error("processing anomaly: retry republish failed", zap.Error(err))
		} else {
			if err := w.records.MarkRetrying(ctx, job.NotificationID, attempts); err != nil {
				log.Error("processing anomaly: attempt count not recorded", zap.Error(err))
			}
			w.hooks.OnRetried(job.Type, stage)
			log.Warn("send failed, staged for retry",
				zap.Int("stage", stage), zap.Error(sendErr))
		}
		w.ack(d)
		return
	}

	if err := w.pub.PublishFailed(ctx, d.Body, attempts); err != nil {
		log.Error("processing anomaly: failed-sink publish failed", zap.Error(err))
	}
	if err := w.records.MarkFailed(ctx, job.NotificationID, attempts, sendErr.Error()); err != nil {
		log.Error("processing anomaly: record not marked failed", zap.Error(err))
	}
	w.hooks.OnFailed(job.Type)
	log.Error("retry budget exhausted, routed to failed sink", zap.Error(sendErr))
	w.ack(d)
}

// deliver runs the fallible half of processing: record creation, sender
// resolution and the external send. Any error here feeds the retry policy.
func (w *Worker) deliver(ctx context.Context, job *domain.Job) error {
	if err := w.records.EnsureExists(ctx, job); err != nil {
		return fmt.Errorf("ensure record: %w", err)
	}

	s, err := w.senders.Resolve(job.Type)
	if err != nil {
		return err
	}

	if w.limiter != nil {
		if err := w.limiter.Wait(ctx, job.Type); err != nil {
			return err
		}
	}

	sendCtx := ctx
	if w.sendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, w.sendTimeout)
		defer cancel()
	}
	return s.Send(sendCtx, job)
}

// notifyPresence fires the best-effort real-time delivery event inside its
// own error boundary, independent of the retry state machine.
func (w *Worker) notifyPresence(job *domain.Job, body []byte) {
	if w.presence == nil {
		return
	}
	userID := job.UserID()
	if userID == "" {
		return
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := w.presence.Notify(ctx, userID, body); err != nil {
			w.logger.Debug("presence notify failed",
				zap.String("notification_id", job.NotificationID),
				zap.String("user_id", userID),
				zap.Error(err))
		}
	}()
}

// ack acknowledges the inbound message. Every terminal path funnels through
// here exactly once; an ack error is logged and the message is left to the
// broker's redelivery semantics.
func (w *Worker) ack(d amqp.Delivery) {
	if err := d.Ack(false); err != nil {
		w.logger.Error("ack failed", zap.Uint64("delivery_tag", d.DeliveryTag), zap.Error(err))
	}
}
