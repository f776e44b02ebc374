package worker

import (
	"testing"

	"github.com/jalsetu/notify-worker/internal/domain"
)

func referencePolicy() RetryPolicy {
	return NewRetryPolicy(map[domain.Channel]int{
		domain.ChannelEmail: 5,
		domain.ChannelSMS:   3,
		domain.ChannelPush:  3,
		domain.ChannelInApp: 1,
	}, 3)
}

func TestRetryPolicy_NextStage(t *testing.T) {
	p := referencePolicy()

	tests := []struct {
		name      string
		channel   domain.Channel
		attempts  int
		wantStage int
		wantOK    bool
	}{
		{"sms first failure retries at stage 1", domain.ChannelSMS, 1, 1, true},
		{"sms second failure retries at stage 2", domain.ChannelSMS, 2, 2, true},
		{"sms third failure exhausts budget", domain.ChannelSMS, 3, 0, false},
		{"email third failure still retries at stage 3", domain.ChannelEmail, 3, 3, true},
		{"email fourth failure overflows the stages", domain.ChannelEmail, 4, 0, false},
		{"inapp never retries", domain.ChannelInApp, 1, 0, false},
		{"push first failure retries", domain.ChannelPush, 1, 1, true},
		{"push third failure exhausts budget", domain.ChannelPush, 3, 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stage, ok := p.NextStage(tc.channel, tc.attempts)
			if ok != tc.wantOK || stage != tc.wantStage {
				t.Fatalf("NextStage(%s, %d) = (%d, %v), want (%d, %v)",
					tc.channel, tc.attempts, stage, ok, tc.wantStage, tc.wantOK)
			}
		})
	}
}

func TestRetryPolicy_UnknownChannelDefaultsBudget(t *testing.T) {
	p := NewRetryPolicy(nil, 3)

	if got := p.MaxAttempts(domain.ChannelSMS); got != defaultMaxAttempts {
		t.Fatalf("expected default budget %d, got %d", defaultMaxAttempts, got)
	}
	if _, ok := p.NextStage(domain.ChannelSMS, defaultMaxAttempts); ok {
		t.Fatal("expected budget to be exhausted at the default max")
	}
}

func TestRetryPolicy_StageCapBelowBudget(t *testing.T) {
	// One provisioned stage: every channel degrades to fail after stage 1,
	// no matter how large its declared budget is.
	p := NewRetryPolicy(map[domain.Channel]int{domain.ChannelEmail: 5}, 1)

	if stage, ok := p.NextStage(domain.ChannelEmail, 1); !ok || stage != 1 {
		t.Fatalf("expected retry at stage 1, got (%d, %v)", stage, ok)
	}
	if _, ok := p.NextStage(domain.ChannelEmail, 2); ok {
		t.Fatal("expected no stage beyond the provisioned count")
	}
}
