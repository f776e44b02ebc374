package sender

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/jalsetu/notify-worker/internal/domain"
	"github.com/jalsetu/notify-worker/internal/render"
)

// SMSConfig carries the DLT gateway account settings. Username, password and
// entity id are mandatory; a send with any of them missing fails before the
// gateway is contacted.
type SMSConfig struct {
	GatewayURL string
	Username   string
	Password   string
	EntityID   string
	Sender     string
	Timeout    time.Duration
}

// SMSSender delivers via the HTTP SMS gateway. Calls go through a circuit
// breaker so a down gateway sheds load quickly instead of holding a prefetch
// slot per job; a breaker-open error is an ordinary send failure for
// retry-policy purposes.
type SMSSender struct {
	cfg      SMSConfig
	renderer *render.Renderer
	client   *http.Client
	cb       *gobreaker.CircuitBreaker
}

func NewSMSSender(cfg SMSConfig, renderer *render.Renderer) *SMSSender {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &SMSSender{
		cfg:      cfg,
		renderer: renderer,
		client:   &http.Client{Timeout: timeout},
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "sms-gateway",
			MaxRequests: 3,
			Interval:    30 * time.Second,
			Timeout:     60 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				ratio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 5 && ratio >= 0.6
			},
		}),
	}
}

func (s *SMSSender) Send(ctx context.Context, job *domain.Job) error {
	if s.cfg.Username == "" || s.cfg.Password == "" || s.cfg.EntityID == "" {
		return domain.ErrGatewayNotConfigured
	}
	if job.TemplateID == "" {
		return domain.ErrMissingTemplate
	}
	phone := job.RecipientPhone()
	if phone == "" {
		return domain.ErrMissingRecipient
	}

	text, err := s.renderer.SMS(job.TemplateID, job.Payload)
	if err != nil {
		return err
	}

	u, err := url.Parse(s.cfg.GatewayURL)
	if err != nil {
		return fmt.Errorf("parse gateway url: %w", err)
	}
	q := u.Query()
	q.Set("username", s.cfg.Username)
	q.Set("api_password", s.cfg.Password)
	q.Set("sender", s.cfg.Sender)
	q.Set("to", phone)
	q.Set("message", text)
	q.Set("priority", "11")
	q.Set("e_id", s.cfg.EntityID)
	q.Set("t_id", job.TemplateID)
	u.RawQuery = q.Encode()

	_, err = s.cb.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("create gateway request: %w", err)
		}
		resp, err := s.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("call sms gateway: %w", err)
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected gateway status: %d", resp.StatusCode)
		}
		return nil, nil
	})
	return err
}

var _ Sender = (*SMSSender)(nil)
