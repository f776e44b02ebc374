package broker

import (
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange and queue names of the delivery topology. Retry stage queues are
// derived per stage: notifications.retry.<n>, routed with key retry.<n>.
const (
	ExchangeNotifications = "notifications"        // topic; all inbound jobs
	ExchangeRetry         = "notifications.retry"  // topic; staged redelivery
	ExchangeFailed        = "notifications.failed" // fanout; terminal sink

	QueueProcessing = "notifications.processing"
	QueueFailed     = "notifications.failed"

	// AttemptsHeader carries the prior delivery count on a message.
	// Absent means zero.
	AttemptsHeader = "x-attempts"
)

// RetryQueueName returns the durable queue for retry stage n (1-based).
func RetryQueueName(stage int) string {
	return fmt.Sprintf("%s.%d", ExchangeRetry, stage)
}

// RetryRoutingKey returns the routing key addressing retry stage n.
func RetryRoutingKey(stage int) string {
	return fmt.Sprintf("retry.%d", stage)
}

// declareTopology provisions the exchanges, the processing queue, one
// delay-bound queue per retry stage and the failed sink. Every declaration
// is idempotent: redeclaring on restart neither errors nor duplicates
// bindings.
//
// Each retry queue carries a per-message TTL equal to its stage delay and
// dead-letters expired messages back onto the notifications exchange, which
// routes them to the processing queue again.
func (b *Broker) declareTopology(retryDelays []time.Duration) error {
	exchanges := []struct {
		name string
		kind string
	}{
		{ExchangeNotifications, "topic"},
		{ExchangeRetry, "topic"},
		{ExchangeFailed, "fanout"},
	}
	for _, e := range exchanges {
		if err := b.ch.ExchangeDeclare(e.name, e.kind, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare exchange %s: %w", e.name, err)
		}
	}

	if _, err := b.ch.QueueDeclare(QueueProcessing, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", QueueProcessing, err)
	}
	if err := b.ch.QueueBind(QueueProcessing, "#", ExchangeNotifications, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", QueueProcessing, err)
	}

	for i, delay := range retryDelays {
		stage := i + 1
		name := RetryQueueName(stage)
		args := amqp.Table{
			"x-message-ttl":          delay.Milliseconds(),
			"x-dead-letter-exchange": ExchangeNotifications,
		}
		if _, err := b.ch.QueueDeclare(name, true, false, false, false, args); err != nil {
			return fmt.Errorf("declare queue %s: %w", name, err)
		}
		if err := b.ch.QueueBind(name, RetryRoutingKey(stage), ExchangeRetry, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", name, err)
		}
	}

	if _, err := b.ch.QueueDeclare(QueueFailed, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", QueueFailed, err)
	}
	if err := b.ch.QueueBind(QueueFailed, "#", ExchangeFailed, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", QueueFailed, err)
	}

	return nil
}
