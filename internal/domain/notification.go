package domain

import "time"

// Channel is the delivery medium for a notification job.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelPush  Channel = "push"
	ChannelInApp Channel = "inapp"
)

func (c Channel) IsValid() bool {
	switch c {
	case ChannelEmail, ChannelSMS, ChannelPush, ChannelInApp:
		return true
	}
	return false
}

// Channels lists every valid channel, in a stable order.
func Channels() []Channel {
	return []Channel{ChannelEmail, ChannelSMS, ChannelPush, ChannelInApp}
}

// Status tracks the delivery lifecycle of a notification record.
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// UserRef is the optional pre-resolved user carried inside a job message.
// Field names match the wire format produced by the service-request API.
type UserRef struct {
	ID           string `json:"_id"`
	Email        string `json:"email,omitempty"`
	MobileNumber string `json:"mobile_number,omitempty"`
}

// Job is the message payload consumed from the processing queue.
// The delivery-attempt counter travels in message metadata (the x-attempts
// header), not in the body — the body is republished byte-identical on retry.
type Job struct {
	NotificationID string         `json:"notificationId"`
	Type           Channel        `json:"type"`
	Payload        map[string]any `json:"payload,omitempty"`
	User           *UserRef       `json:"user,omitempty"`
	TemplateName   string         `json:"templateName,omitempty"`
	TemplateID     string         `json:"templateId,omitempty"`
	Subject        string         `json:"subject,omitempty"`
}

// Validate checks the fields the worker cannot proceed without.
func (j *Job) Validate() error {
	if j.NotificationID == "" {
		return ErrInvalidJob
	}
	if !j.Type.IsValid() {
		return ErrUnsupportedChannel
	}
	return nil
}

// RecipientEmail resolves the destination address for an email job:
// the resolved user's address first, then the payload's "email" key.
func (j *Job) RecipientEmail() string {
	if j.User != nil && j.User.Email != "" {
		return j.User.Email
	}
	if v, ok := j.Payload["email"].(string); ok {
		return v
	}
	return ""
}

// RecipientPhone resolves the destination number for an sms job.
func (j *Job) RecipientPhone() string {
	if j.User != nil {
		return j.User.MobileNumber
	}
	return ""
}

// UserID returns the resolved user's id, or "" when the job carries no user.
func (j *Job) UserID() string {
	if j.User != nil {
		return j.User.ID
	}
	return ""
}

// Record is the durable bookkeeping row, one per notification id.
//
// Invariants: status=sent means Error is stale; status=failed implies
// Attempts >= 1 and Error set. Records are created lazily by the worker on
// first processing and never deleted by this subsystem.
type Record struct {
	ID        string         `json:"id"`
	UserID    *string        `json:"user_id,omitempty"`
	Type      Channel        `json:"type"`
	Payload   map[string]any `json:"payload,omitempty"`
	Status    Status         `json:"status"`
	Attempts  int            `json:"attempts"`
	Error     *string        `json:"error,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
