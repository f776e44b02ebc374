package sender

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jalsetu/notify-worker/internal/domain"
	"github.com/jalsetu/notify-worker/internal/render"
)

func newTestRenderer(t *testing.T) *render.Renderer {
	t.Helper()
	r, err := render.New()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}
	return r
}

func smsTestConfig(gatewayURL string) SMSConfig {
	return SMSConfig{
		GatewayURL: gatewayURL,
		Username:   "acct",
		Password:   "secret",
		EntityID:   "1101",
		Sender:     "UKITDA",
	}
}

func smsTestJob() *domain.Job {
	return &domain.Job{
		NotificationID: "n1",
		Type:           domain.ChannelSMS,
		User:           &domain.UserRef{ID: "u1", MobileNumber: "9990001111"},
		TemplateID:     "STATUS_UPDATE",
		Payload:        map[string]any{"trackingId": "SR-42", "status": "RESOLVED"},
	}
}

func TestSMSSender_SendsGatewayRequest(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewSMSSender(smsTestConfig(srv.URL), newTestRenderer(t))
	if err := s.Send(context.Background(), smsTestJob()); err != nil {
		t.Fatalf("expected send to succeed, got %v", err)
	}

	q := got.URL.Query()
	if q.Get("to") != "9990001111" {
		t.Fatalf("expected recipient phone, got %q", q.Get("to"))
	}
	if q.Get("t_id") != "STATUS_UPDATE" || q.Get("e_id") != "1101" {
		t.Fatalf("expected DLT ids forwarded, got t_id=%q e_id=%q", q.Get("t_id"), q.Get("e_id"))
	}
	if msg := q.Get("message"); msg != "Service request SR-42 status: RESOLVED. - UKITDA" {
		t.Fatalf("unexpected rendered message: %q", msg)
	}
	if q.Get("priority") != "11" {
		t.Fatalf("expected priority 11, got %q", q.Get("priority"))
	}
}

func TestSMSSender_GatewayErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewSMSSender(smsTestConfig(srv.URL), newTestRenderer(t))
	if err := s.Send(context.Background(), smsTestJob()); err == nil {
		t.Fatal("expected error for non-200 gateway response")
	}
}

func TestSMSSender_ValidationShortCircuits(t *testing.T) {
	// A panicking handler proves validation failures never reach the gateway.
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("gateway must not be contacted")
	}))
	defer srv.Close()
	renderer := newTestRenderer(t)

	t.Run("missing credentials", func(t *testing.T) {
		cfg := smsTestConfig(srv.URL)
		cfg.Password = ""
		s := NewSMSSender(cfg, renderer)
		if err := s.Send(context.Background(), smsTestJob()); !errors.Is(err, domain.ErrGatewayNotConfigured) {
			t.Fatalf("expected ErrGatewayNotConfigured, got %v", err)
		}
	})

	t.Run("missing template id", func(t *testing.T) {
		s := NewSMSSender(smsTestConfig(srv.URL), renderer)
		job := smsTestJob()
		job.TemplateID = ""
		if err := s.Send(context.Background(), job); !errors.Is(err, domain.ErrMissingTemplate) {
			t.Fatalf("expected ErrMissingTemplate, got %v", err)
		}
	})

	t.Run("missing phone", func(t *testing.T) {
		s := NewSMSSender(smsTestConfig(srv.URL), renderer)
		job := smsTestJob()
		job.User = nil
		if err := s.Send(context.Background(), job); !errors.Is(err, domain.ErrMissingRecipient) {
			t.Fatalf("expected ErrMissingRecipient, got %v", err)
		}
	})

	t.Run("unregistered template id", func(t *testing.T) {
		s := NewSMSSender(smsTestConfig(srv.URL), renderer)
		job := smsTestJob()
		job.TemplateID = "UNKNOWN"
		if err := s.Send(context.Background(), job); !errors.Is(err, domain.ErrMissingTemplate) {
			t.Fatalf("expected ErrMissingTemplate, got %v", err)
		}
	})
}

func TestSMSSender_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := NewSMSSender(smsTestConfig(srv.URL), newTestRenderer(t))
	job := smsTestJob()
	for i := 0; i < 10; i++ {
		if err := s.Send(context.Background(), job); err == nil {
			t.Fatal("expected every send to fail")
		}
	}
	// Breaker trips at 5 consecutive failures: later sends fail fast
	// without touching the gateway.
	if hits >= 10 {
		t.Fatalf("expected breaker to shed load, gateway saw %d requests", hits)
	}
}
