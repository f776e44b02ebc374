// Package sender holds the per-channel delivery capabilities. Each sender
// performs one best-effort external transmission and returns an error on any
// failure; the worker's retry policy decides what happens next.
package sender

import (
	"context"
	"fmt"

	"github.com/jalsetu/notify-worker/internal/domain"
)

// Sender transmits one rendered notification over a single channel.
type Sender interface {
	Send(ctx context.Context, job *domain.Job) error
}

// Registry resolves the sender for a job's channel. Dispatch is an explicit
// map lookup; an unregistered channel is an error, never a silent no-op.
type Registry struct {
	senders map[domain.Channel]Sender
}

func NewRegistry() *Registry {
	return &Registry{senders: make(map[domain.Channel]Sender)}
}

func (r *Registry) Register(ch domain.Channel, s Sender) {
	r.senders[ch] = s
}

func (r *Registry) Resolve(ch domain.Channel) (Sender, error) {
	s, ok := r.senders[ch]
	if !ok {
		return nil, fmt.Errorf("channel %q: %w", ch, domain.ErrUnsupportedChannel)
	}
	return s, nil
}
