package aws

import (
	"context"
	"errors"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// SQSAPI is the subset of the SQS client used here.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// SQSQueue sends to and consumes from a single SQS queue.
type SQSQueue struct {
	client   SQSAPI
	queueURL string
	logger   *zap.Logger

	// WaitTimeSeconds is the long-poll duration for ReceiveMessage.
	WaitTimeSeconds int32
	// VisibilityTimeout hides a received message until it is deleted or the timeout expires.
	VisibilityTimeout int32
	// ErrorDelay is the pause after a failed poll. It doubles on consecutive
	// failures up to MaxErrorDelay.
	ErrorDelay    time.Duration
	MaxErrorDelay time.Duration
}

// MessageHandler processes an SQS message body. A nil return deletes the message.
type MessageHandler func(ctx context.Context, body string) error

// NewSQSQueue creates a queue bound to queueURL.
func NewSQSQueue(cfg sdkaws.Config, queueURL string, logger *zap.Logger) *SQSQueue {
	return NewSQSQueueWithAPI(sqs.NewFromConfig(cfg), queueURL, logger)
}

// NewSQSQueueWithAPI wraps an existing SQS API implementation.
func NewSQSQueueWithAPI(api SQSAPI, queueURL string, logger *zap.Logger) *SQSQueue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQSQueue{
		client:            api,
		queueURL:          queueURL,
		logger:            logger,
		WaitTimeSeconds:   20,
		VisibilityTimeout: 60,
		ErrorDelay:        5 * time.Second,
		MaxErrorDelay:     time.Minute,
	}
}

// Send enqueues body.
func (q *SQSQueue) Send(ctx context.Context, body string) error {
	_, err := q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    sdkaws.String(q.queueURL),
		MessageBody: sdkaws.String(body),
	})
	if err != nil {
		return fmt.Errorf("sqs send failed: %w", err)
	}
	return nil
}

// StartPolling polls the queue and dispatches messages to handler until ctx is cancelled.
// Failed polls are retried after an exponentially growing delay.
func (q *SQSQueue) StartPolling(ctx context.Context, handler MessageHandler) error {
	q.logger.Info("Starting SQS polling", zap.String("queue_url", q.queueURL))

	retry := q.errorBackOff()
	for {
		if ctx.Err() != nil {
			q.logger.Info("SQS polling stopped")
			return ctx.Err()
		}

		err := q.PollOnce(ctx, handler)
		if err == nil {
			retry.Reset()
			continue
		}
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			continue
		}

		delay := retry.NextBackOff()
		q.logger.Warn("Error polling SQS", zap.Error(err), zap.Duration("retry_in", delay))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
		case <-timer.C:
		}
	}
}

func (q *SQSQueue) errorBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = q.ErrorDelay
	b.MaxInterval = q.MaxErrorDelay
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// PollOnce performs a single receive and handles every returned message.
// Messages whose handler fails are left for redelivery after VisibilityTimeout.
func (q *SQSQueue) PollOnce(ctx context.Context, handler MessageHandler) error {
	result, err := q.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            sdkaws.String(q.queueURL),
		MaxNumberOfMessages: 10,
		WaitTimeSeconds:     q.WaitTimeSeconds,
		VisibilityTimeout:   q.VisibilityTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to receive messages: %w", err)
	}

	for _, msg := range result.Messages {
		if msg.Body == nil {
			continue
		}

		if err := handler(ctx, *msg.Body); err != nil {
			q.logger.Warn("Failed to process SQS message", zap.Error(err))
			continue
		}

		if _, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
			QueueUrl:      sdkaws.String(q.queueURL),
			ReceiptHandle: msg.ReceiptHandle,
		}); err != nil {
			q.logger.Warn("Failed to delete SQS message", zap.Error(err))
		}
	}

	return nil
}
