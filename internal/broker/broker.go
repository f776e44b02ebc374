// Package broker owns the RabbitMQ side of the pipeline: the durable
// delivery topology, the manual-ack consumer feeding the worker, and the
// publish operations for retry staging and terminal failure routing.
package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Broker wraps one AMQP connection/channel pair. It is constructed once at
// startup and passed by reference everywhere it is needed — no package-level
// channel state.
type Broker struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	logger *zap.Logger
}

// Connect dials the broker, opens a channel, applies the prefetch bound and
// declares the full delivery topology. Any declaration failure is returned
// to the caller, which must treat it as fatal: running with a
// partially-declared topology would silently drop retries.
func Connect(url string, prefetch int, retryDelays []time.Duration, logger *zap.Logger) (*Broker, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	// Prefetch caps unacknowledged in-flight deliveries per consumer; this
	// is the backpressure bound against slow channel senders.
	if err := ch.Qos(prefetch, 0, false); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set prefetch: %w", err)
	}

	b := &Broker{conn: conn, ch: ch, logger: logger}
	if err := b.declareTopology(retryDelays); err != nil {
		conn.Close()
		return nil, err
	}

	logger.Info("broker topology declared",
		zap.Int("prefetch", prefetch),
		zap.Int("retry_stages", len(retryDelays)),
	)
	return b, nil
}

// Consume starts a manual-ack consumer on the processing queue. The returned
// channel closes when ctx is cancelled or the connection drops.
func (b *Broker) Consume(ctx context.Context) (<-chan amqp.Delivery, error) {
	tag := "notify-worker-" + uuid.NewString()[:8]
	deliveries, err := b.ch.ConsumeWithContext(ctx,
		QueueProcessing,
		tag,
		false, // autoAck — the worker acks after reaching a terminal path
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("consume %s: %w", QueueProcessing, err)
	}
	b.logger.Info("consuming", zap.String("queue", QueueProcessing), zap.String("consumer_tag", tag))
	return deliveries, nil
}

// Closed reports whether the underlying connection has been lost.
func (b *Broker) Closed() bool {
	return b.conn.IsClosed()
}

func (b *Broker) Close() error {
	if err := b.ch.Close(); err != nil {
		b.conn.Close()
		return err
	}
	return b.conn.Close()
}
