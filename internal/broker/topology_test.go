package broker

import (
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
)

func TestRetryNaming(t *testing.T) {
	if got := RetryQueueName(2); got != "notifications.retry.2" {
		t.Fatalf("unexpected queue name: %q", got)
	}
	if got := RetryRoutingKey(3); got != "retry.3" {
		t.Fatalf("unexpected routing key: %q", got)
	}
}

func TestAttempts(t *testing.T) {
	tests := []struct {
		name    string
		headers amqp.Table
		want    int
	}{
		{"nil headers", nil, 0},
		{"absent header", amqp.Table{}, 0},
		{"int32 as published", amqp.Table{AttemptsHeader: int32(2)}, 2},
		{"int64 from broker", amqp.Table{AttemptsHeader: int64(3)}, 3},
		{"plain int", amqp.Table{AttemptsHeader: 1}, 1},
		{"float64 from json", amqp.Table{AttemptsHeader: float64(4)}, 4},
		{"malformed string", amqp.Table{AttemptsHeader: "2"}, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Attempts(tc.headers); got != tc.want {
				t.Fatalf("Attempts(%v) = %d, want %d", tc.headers, got, tc.want)
			}
		})
	}
}
