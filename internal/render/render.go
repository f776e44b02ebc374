// Package render is the content-rendering capability behind the channel
// senders: embedded HTML templates for email bodies and DLT-registered text
// templates for SMS, keyed by template id.
package render

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/jalsetu/notify-worker/internal/domain"
)

//go:embed templates/email/*.gohtml
var emailFS embed.FS

//go:embed templates/sms/*.tmpl
var smsFS embed.FS

// Renderer parses all embedded templates once at startup.
type Renderer struct {
	email *htmltemplate.Template
	sms   *texttemplate.Template
}

func New() (*Renderer, error) {
	email, err := htmltemplate.ParseFS(emailFS, "templates/email/*.gohtml")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}
	sms, err := texttemplate.ParseFS(smsFS, "templates/sms/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse sms templates: %w", err)
	}
	return &Renderer{email: email, sms: sms}, nil
}

// Email renders the named email template to HTML markup.
func (r *Renderer) Email(name string, data map[string]any) (string, error) {
	t := r.email.Lookup(name + ".gohtml")
	if t == nil {
		return "", fmt.Errorf("email template %q: %w", name, domain.ErrMissingTemplate)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render email template %q: %w", name, err)
	}
	return buf.String(), nil
}

// SMS renders the text registered for the given DLT template id.
func (r *Renderer) SMS(templateID string, data map[string]any) (string, error) {
	t := r.sms.Lookup(templateID)
	if t == nil {
		return "", fmt.Errorf("sms template %q: %w", templateID, domain.ErrMissingTemplate)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render sms template %q: %w", templateID, err)
	}
	return buf.String(), nil
}
