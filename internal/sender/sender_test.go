package sender

import (
	"context"
	"errors"
	"testing"

	"github.com/jalsetu/notify-worker/internal/domain"
)

type stubSender struct{ calls int }

func (s *stubSender) Send(context.Context, *domain.Job) error {
	s.calls++
	return nil
}

func TestRegistry_Resolve(t *testing.T) {
	reg := NewRegistry()
	email := &stubSender{}
	sms := &stubSender{}
	reg.Register(domain.ChannelEmail, email)
	reg.Register(domain.ChannelSMS, sms)

	got, err := reg.Resolve(domain.ChannelSMS)
	if err != nil {
		t.Fatalf("expected sms sender, got %v", err)
	}
	if err := got.Send(context.Background(), &domain.Job{}); err != nil {
		t.Fatalf("unexpected send error: %v", err)
	}
	if sms.calls != 1 || email.calls != 0 {
		t.Fatalf("dispatch crossed channels: sms=%d email=%d", sms.calls, email.calls)
	}
}

func TestRegistry_UnregisteredChannel(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Resolve(domain.ChannelPush); !errors.Is(err, domain.ErrUnsupportedChannel) {
		t.Fatalf("expected ErrUnsupportedChannel, got %v", err)
	}
}
