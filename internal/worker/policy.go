package worker

import "github.com/jalsetu/notify-worker/internal/domain"

// defaultMaxAttempts applies to any channel without a configured budget.
const defaultMaxAttempts = 3

// RetryPolicy decides whether a failed delivery gets another staged retry.
//
// A channel's declared budget can exceed the number of provisioned retry
// stages (email defaults to 5 attempts against 3 stages). The effective
// budget is capped by the stage count: once stages run out the job is
// terminally failed even if the channel counter has room left.
type RetryPolicy struct {
	maxAttempts map[domain.Channel]int
	stageCount  int
}

func NewRetryPolicy(maxAttempts map[domain.Channel]int, stageCount int) RetryPolicy {
	m := make(map[domain.Channel]int, len(maxAttempts))
	for ch, n := range maxAttempts {
		m[ch] = n
	}
	return RetryPolicy{maxAttempts: m, stageCount: stageCount}
}

// MaxAttempts returns the declared budget for a channel.
func (p RetryPolicy) MaxAttempts(ch domain.Channel) int {
	if n, ok := p.maxAttempts[ch]; ok && n > 0 {
		return n
	}
	return defaultMaxAttempts
}

// StageCount returns the number of provisioned retry stages.
func (p RetryPolicy) StageCount() int {
	return p.stageCount
}

// NextStage reports whether delivery number attempts (1-based: the first
// delivery is 1) leaves room for another staged retry, and which stage the
// job must be routed to. A retry is granted only while the attempt count is
// below the channel budget and a stage with that index exists; the stage
// index equals the attempt count, so attempt 1 routes to retry.1.
func (p RetryPolicy) NextStage(ch domain.Channel, attempts int) (int, bool) {
	if attempts >= p.MaxAttempts(ch) {
		return 0, false
	}
	if attempts > p.stageCount {
		return 0, false
	}
	return attempts, true
}
