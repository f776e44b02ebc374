// Package realtime pushes already-delivered notifications to connected
// client sessions. Delivery is best-effort: the worker never fails a job
// over a presence error.
package realtime

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisNotifier publishes the delivered payload on a per-user pub/sub
// channel ("user:<id>"); the websocket gateway subscribed there forwards it
// to any live session.
type RedisNotifier struct {
	rdb *redis.Client
}

func NewRedisNotifier(addr, password string, db int) *RedisNotifier {
	return &RedisNotifier{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

func (n *RedisNotifier) Notify(ctx context.Context, userID string, payload []byte) error {
	if err := n.rdb.Publish(ctx, "user:"+userID, payload).Err(); err != nil {
		return fmt.Errorf("publish presence event: %w", err)
	}
	return nil
}

func (n *RedisNotifier) Close() error {
	return n.rdb.Close()
}
