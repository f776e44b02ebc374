package repository

import (
	"context"
	"sync"
	"time"

	"github.com/jalsetu/notify-worker/internal/domain"
)

// MockRecordRepository is a hand-written, in-memory implementation of
// RecordRepository used in unit tests. No mock-generation library needed.
type MockRecordRepository struct {
	mu      sync.RWMutex
	records map[string]*domain.Record

	// Optional error overrides — set in tests to simulate failure paths.
	EnsureExistsErr error
	MarkSentErr     error
	MarkRetryingErr error
	MarkFailedErr   error

	// EnsureCalls counts EnsureExists invocations, including no-ops.
	EnsureCalls int
}

func NewMockRecordRepository() *MockRecordRepository {
	return &MockRecordRepository{records: make(map[string]*domain.Record)}
}

func (m *MockRecordRepository) EnsureExists(_ context.Context, job *domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EnsureCalls++
	if m.EnsureExistsErr != nil {
		return m.EnsureExistsErr
	}
	if _, ok := m.records[job.NotificationID]; ok {
		return nil
	}
	var userID *string
	if id := job.UserID(); id != "" {
		userID = &id
	}
	now := time.Now().UTC()
	m.records[job.NotificationID] = &domain.Record{
		ID:        job.NotificationID,
		UserID:    userID,
		Type:      job.Type,
		Payload:   job.Payload,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

func (m *MockRecordRepository) GetByID(_ context.Context, id string) (*domain.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *rec
	return &clone, nil
}

func (m *MockRecordRepository) MarkSent(_ context.Context, id string, attempts int) error {
	if m.MarkSentErr != nil {
		return m.MarkSentErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.records[id]; ok {
		rec.Status = domain.StatusSent
		rec.Attempts = attempts
		rec.Error = nil
		rec.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (m *MockRecordRepository) MarkRetrying(_ context.Context, id string, attempts int) error {
	if m.MarkRetryingErr != nil {
		return m.MarkRetryingErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.records[id]; ok && rec.Status == domain.StatusPending {
		rec.Attempts = attempts
		rec.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (m *MockRecordRepository) MarkFailed(_ context.Context, id string, attempts int, errMsg string) error {
	if m.MarkFailedErr != nil {
		return m.MarkFailedErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.records[id]; ok {
		rec.Status = domain.StatusFailed
		rec.Attempts = attempts
		rec.Error = &errMsg
		rec.UpdatedAt = time.Now().UTC()
	}
	return nil
}

// Count returns the number of records held, for idempotency assertions.
func (m *MockRecordRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

var _ RecordRepository = (*MockRecordRepository)(nil)
