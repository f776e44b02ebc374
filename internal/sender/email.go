package sender

import (
	"context"
	"fmt"
	"time"

	mail "gopkg.in/mail.v2"

	"github.com/jalsetu/notify-worker/internal/domain"
	"github.com/jalsetu/notify-worker/internal/render"
)

// EmailConfig carries the SMTP transport settings and the login URL injected
// into every rendered template.
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	LoginURL string
	Timeout  time.Duration
}

// EmailSender renders the job's named template and hands the markup to the
// SMTP transport.
type EmailSender struct {
	cfg      EmailConfig
	renderer *render.Renderer

	// sendMail is swapped out in tests; defaults to a mail.v2 dialer.
	sendMail func(m *mail.Message) error
}

func NewEmailSender(cfg EmailConfig, renderer *render.Renderer) *EmailSender {
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	if cfg.Timeout > 0 {
		d.Timeout = cfg.Timeout
	}
	return &EmailSender{
		cfg:      cfg,
		renderer: renderer,
		// DialAndSend is variadic; the transport field takes one message.
		sendMail: func(m *mail.Message) error { return d.DialAndSend(m) },
	}
}

func (s *EmailSender) Send(ctx context.Context, job *domain.Job) error {
	if job.TemplateName == "" {
		return domain.ErrMissingTemplate
	}
	to := job.RecipientEmail()
	if to == "" {
		return domain.ErrMissingRecipient
	}

	data := make(map[string]any, len(job.Payload)+2)
	for k, v := range job.Payload {
		data[k] = v
	}
	data["loginUrl"] = s.cfg.LoginURL
	if job.User != nil {
		data["user"] = job.User
	}

	html, err := s.renderer.Email(job.TemplateName, data)
	if err != nil {
		return err
	}

	subject := job.Subject
	if subject == "" {
		subject = "Notification"
	}

	m := mail.NewMessage()
	m.SetAddressHeader("From", s.cfg.From, "No Reply")
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	// mail.v2 has no context-aware API, so the transport call runs in its
	// own goroutine and the caller's deadline is enforced here. On timeout
	// the goroutine is abandoned; the dialer's own Timeout bounds it.
	errCh := make(chan error, 1)
	go func() { errCh <- s.sendMail(m) }()

	select {
	case <-ctx.Done():
		return fmt.Errorf("smtp send to %s: %w", to, ctx.Err())
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("smtp send to %s: %w", to, err)
		}
		return nil
	}
}

var _ Sender = (*EmailSender)(nil)
