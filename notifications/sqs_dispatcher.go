package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	awspkg "github.com/ShashankBhake/st-shield-backend/pkg/aws"
	"github.com/ShashankBhake/st-shield-backend/sender"
	"go.uber.org/zap"
)

// JobQueue is the durable queue behind SQSDispatcher.
type JobQueue interface {
	Send(ctx context.Context, body string) error
	StartPolling(ctx context.Context, handler awspkg.MessageHandler) error
}

// SQSDispatcher hands jobs to SQS and delivers them from a poller. A message is
// deleted only after a successful send, so SQS redelivery is the retry policy.
type SQSDispatcher struct {
	queue  JobQueue
	sender sender.EmailSender
	logger *zap.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func NewSQSDispatcher(queue JobQueue, s sender.EmailSender, logger *zap.Logger) *SQSDispatcher {
	return &SQSDispatcher{queue: queue, sender: s, logger: logger}
}

// Start launches the poller.
func (d *SQSDispatcher) Start(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(ctx)
	d.done = make(chan struct{})
	go func() {
		defer close(d.done)
		_ = d.queue.StartPolling(ctx, d.Handle)
	}()
}

func (d *SQSDispatcher) Enqueue(ctx context.Context, job Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal email job: %w", err)
	}
	return d.queue.Send(ctx, string(body))
}

// Handle delivers one queued job. Undecodable messages are dropped.
func (d *SQSDispatcher) Handle(ctx context.Context, body string) error {
	var job Job
	if err := json.Unmarshal([]byte(body), &job); err != nil {
		d.logger.Error("dropping malformed email job", zap.Error(err))
		return nil
	}

	log := d.logger.With(zap.String("job_id", job.ID), zap.String("kind", string(job.Kind)))
	if err := deliver(ctx, d.sender, job, log); err != nil {
		log.Warn("send attempt failed, leaving message for redelivery", zap.Error(err))
		return err
	}
	return nil
}

func (d *SQSDispatcher) Close(ctx context.Context) error {
	if d.cancel == nil {
		return nil
	}
	d.cancel()
	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
