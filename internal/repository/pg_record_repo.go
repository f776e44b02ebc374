package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jalsetu/notify-worker/internal/domain"
)

type pgRecordRepository struct {
	pool *pgxpool.Pool
}

// NewPgRecordRepository returns a RecordRepository backed by PostgreSQL.
func NewPgRecordRepository(pool *pgxpool.Pool) RecordRepository {
	return &pgRecordRepository{pool: pool}
}

// EnsureExists is an atomic create-if-absent: ON CONFLICT DO NOTHING makes it
// safe under concurrent redelivery of the same notification id.
func (r *pgRecordRepository) EnsureExists(ctx context.Context, job *domain.Job) error {
	var userID *string
	if id := job.UserID(); id != "" {
		userID = &id
	}
	payload := job.Payload
	if payload == nil {
		payload = map[string]any{}
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (id, user_id, type, payload, status, attempts)
		VALUES ($1, $2, $3, $4, 'pending', 0)
		ON CONFLICT (id) DO NOTHING`,
		job.NotificationID, userID, job.Type, payload,
	)
	if err != nil {
		return fmt.Errorf("ensure notification record: %w", err)
	}
	return nil
}

func (r *pgRecordRepository) GetByID(ctx context.Context, id string) (*domain.Record, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, type, payload, status, attempts, error, created_at, updated_at
		FROM notifications WHERE id = $1`, id)

	var rec domain.Record
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Type, &rec.Payload,
		&rec.Status, &rec.Attempts, &rec.Error, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get notification record: %w", err)
	}
	return &rec, nil
}

func (r *pgRecordRepository) MarkSent(ctx context.Context, id string, attempts int) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET status = 'sent', attempts = $2, error = NULL, updated_at = NOW()
		WHERE id = $1`, id, attempts)
	if err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}
	return nil
}

// MarkRetrying is guarded on status='pending' so a redelivered message for a
// record that already reached a terminal state cannot pull it back.
func (r *pgRecordRepository) MarkRetrying(ctx context.Context, id string, attempts int) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET attempts = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`, id, attempts)
	if err != nil {
		return fmt.Errorf("mark retrying: %w", err)
	}
	return nil
}

func (r *pgRecordRepository) MarkFailed(ctx context.Context, id string, attempts int, errMsg string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET status = 'failed', attempts = $2, error = $3, updated_at = NOW()
		WHERE id = $1`, id, attempts, errMsg)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}

// compile-time check
var _ RecordRepository = (*pgRecordRepository)(nil)
