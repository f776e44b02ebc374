package sender

import (
	"context"

	"go.uber.org/zap"

	"github.com/jalsetu/notify-worker/internal/domain"
)

// LogSender is the fallback capability for channels with no external
// transport wired in this deployment (push, inapp). It logs the delivery and
// reports success so those jobs flow through the same worker paths as real
// channels.
type LogSender struct {
	channel domain.Channel
	logger  *zap.Logger
}

func NewLogSender(channel domain.Channel, logger *zap.Logger) *LogSender {
	return &LogSender{channel: channel, logger: logger}
}

func (s *LogSender) Send(_ context.Context, job *domain.Job) error {
	s.logger.Info("delivered via log sender",
		zap.String("channel", string(s.channel)),
		zap.String("notification_id", job.NotificationID),
		zap.String("user_id", job.UserID()),
	)
	return nil
}

var _ Sender = (*LogSender)(nil)
