package broker

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// PublishJob enqueues a new notification job onto the notifications
// exchange. This is the producer entry used by collaborating services; the
// worker itself only republishes.
func (b *Broker) PublishJob(ctx context.Context, routingKey string, body []byte) error {
	err := b.ch.PublishWithContext(ctx, ExchangeNotifications, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish job: %w", err)
	}
	return nil
}

// PublishRetry republishes the original message bytes to the given retry
// stage with the updated attempt count in the x-attempts header. The stage
// queue's TTL and dead-letter route bring the message back to the
// processing queue after the stage delay.
func (b *Broker) PublishRetry(ctx context.Context, stage int, body []byte, attempts int) error {
	err := b.ch.PublishWithContext(ctx, ExchangeRetry, RetryRoutingKey(stage), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Headers:      amqp.Table{AttemptsHeader: int32(attempts)},
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish retry stage %d: %w", stage, err)
	}
	return nil
}

// PublishFailed routes a job whose retry budget is exhausted to the failed
// sink. The fanout exchange needs no routing key.
func (b *Broker) PublishFailed(ctx context.Context, body []byte, attempts int) error {
	err := b.ch.PublishWithContext(ctx, ExchangeFailed, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Headers:      amqp.Table{AttemptsHeader: int32(attempts)},
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish failed sink: %w", err)
	}
	return nil
}

// Attempts reads the prior delivery count from message headers. A missing
// or malformed header counts as zero. The broker may hand the value back as
// any integer width depending on how it was published.
func Attempts(headers amqp.Table) int {
	v, ok := headers[AttemptsHeader]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int8:
		return int(n)
	case int16:
		return int(n)
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
