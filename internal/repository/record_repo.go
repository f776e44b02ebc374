package repository

import (
	"context"

	"github.com/jalsetu/notify-worker/internal/domain"
)

// RecordRepository is the durable bookkeeping store for notification jobs,
// independent of the delivery mechanism. All operations are idempotent with
// respect to queue redelivery: calling them twice for the same id never
// creates duplicate records or corrupts counters.
//
// The pgx implementation is in pg_record_repo.go.
// Tests use a hand-written mock (mock_record_repo.go).
type RecordRepository interface {
	// EnsureExists creates the record for the job's notification id if it
	// does not exist yet. Existing records are left untouched.
	EnsureExists(ctx context.Context, job *domain.Job) error

	GetByID(ctx context.Context, id string) (*domain.Record, error)

	// MarkSent sets status=sent with the final attempt count.
	MarkSent(ctx context.Context, id string, attempts int) error

	// MarkRetrying bumps the attempt count without changing status.
	// It has no effect on records already in a terminal state.
	MarkRetrying(ctx context.Context, id string, attempts int) error

	// MarkFailed sets status=failed with the final attempt count and the
	// last delivery error.
	MarkFailed(ctx context.Context, id string, attempts int, errMsg string) error
}
