package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apimw "github.com/jalsetu/notify-worker/internal/api/middleware"
	"github.com/jalsetu/notify-worker/internal/domain"
)

// JobPublisher enqueues a new job onto the notifications exchange.
type JobPublisher interface {
	PublishJob(ctx context.Context, routingKey string, body []byte) error
}

// PublishHandler is the producer entry point: collaborating services POST a
// job here and the handler enqueues it for the worker. Delivery itself stays
// asynchronous; a 202 only means the job is on the queue.
type PublishHandler struct {
	pub    JobPublisher
	logger *zap.Logger
}

func NewPublishHandler(pub JobPublisher, logger *zap.Logger) *PublishHandler {
	return &PublishHandler{pub: pub, logger: logger}
}

// Publish handles POST /jobs.
func (h *PublishHandler) Publish(w http.ResponseWriter, r *http.Request) {
	var job domain.Job
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if job.NotificationID == "" {
		job.NotificationID = uuid.New().String()
	}
	if err := job.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	body, err := json.Marshal(job)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to encode job")
		return
	}
	if err := h.pub.PublishJob(r.Context(), string(job.Type), body); err != nil {
		h.logger.Error("job publish failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.String("notification_id", job.NotificationID),
			zap.Error(err),
		)
		respondError(w, http.StatusServiceUnavailable, "failed to enqueue job")
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{
		"notificationId": job.NotificationID,
	})
}
