package notifications

import (
	"context"
	"errors"
	"time"

	"github.com/ShashankBhake/st-shield-backend/observability"
	"github.com/ShashankBhake/st-shield-backend/sender"
	"go.uber.org/zap"
)

var (
	ErrDispatcherClosed = errors.New("email dispatcher closed")
	ErrQueueFull        = errors.New("email queue full")
)

// Job is a fully rendered email waiting for delivery.
type Job struct {
	ID        string `json:"id"`
	Kind      Kind   `json:"kind"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	RequestID string `json:"request_id,omitempty"`
}

// Dispatcher accepts jobs for asynchronous delivery.
type Dispatcher interface {
	Enqueue(ctx context.Context, job Job) error
	Close(ctx context.Context) error
}

const sendTimeout = 30 * time.Second

// deliver makes a single send attempt and records the outcome.
func deliver(ctx context.Context, s sender.EmailSender, job Job, log *zap.Logger) error {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	res, err := s.SendEmail(sendCtx, job.To, job.Subject, job.Body)
	if err != nil {
		observability.EmailDeliveries.WithLabelValues(string(job.Kind), "failed").Inc()
		return err
	}

	observability.EmailDeliveries.WithLabelValues(string(job.Kind), "sent").Inc()
	log.Info("email sent",
		zap.String("job_id", job.ID),
		zap.String("kind", string(job.Kind)),
		zap.String("message_id", res.MessageID),
		zap.String("request_id", job.RequestID),
	)
	return nil
}
