package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/jalsetu/notify-worker/internal/domain"
)

// ChannelLimiters holds one token bucket limiter per channel type, keeping a
// misbehaving channel from starving the others of gateway capacity.
// Burst is set equal to the rate so no extra burst capacity is allowed
// beyond the configured per-second maximum.
type ChannelLimiters struct {
	limiters map[domain.Channel]*rate.Limiter
}

// New creates a ChannelLimiters with ratePerSec tokens per second per channel.
func New(ratePerSec int) *ChannelLimiters {
	r := rate.Limit(ratePerSec)
	burst := ratePerSec // burst == rate: prevents any "saved up" burst above the limit

	limiters := make(map[domain.Channel]*rate.Limiter, len(domain.Channels()))
	for _, ch := range domain.Channels() {
		limiters[ch] = rate.NewLimiter(r, burst)
	}
	return &ChannelLimiters{limiters: limiters}
}

// Wait blocks until the channel's limiter grants a token.
// Called by the worker immediately before invoking a sender.
// Returns a non-nil error only if ctx is cancelled while waiting.
func (cl *ChannelLimiters) Wait(ctx context.Context, ch domain.Channel) error {
	l, ok := cl.limiters[ch]
	if !ok {
		return nil
	}
	return l.Wait(ctx)
}
