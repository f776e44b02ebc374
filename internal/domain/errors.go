package domain

import "errors"

// Sentinel errors shared across the worker. Per-job delivery errors end up
// on the notification record; these are matched with errors.Is.
var (
	ErrNotFound             = errors.New("notification not found")
	ErrInvalidJob           = errors.New("job is missing a notification id")
	ErrUnsupportedChannel   = errors.New("unsupported channel: must be email, sms, push, or inapp")
	ErrMissingRecipient     = errors.New("no recipient resolvable for job")
	ErrMissingTemplate      = errors.New("no template reference on job")
	ErrGatewayNotConfigured = errors.New("sms gateway credentials are not configured")
)
