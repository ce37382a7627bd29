package notifications

import (
	"context"
	"sync"
	"time"

	"github.com/ShashankBhake/st-shield-backend/observability"
	"github.com/ShashankBhake/st-shield-backend/sender"
	"go.uber.org/zap"
)

type QueueConfig struct {
	Workers     int
	Buffer      int
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func (c *QueueConfig) withDefaults() {
	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.Buffer <= 0 {
		c.Buffer = 256
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = time.Second
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 30 * time.Second
	}
}

// QueueDispatcher delivers jobs on in-process workers, retrying each job with
// exponential backoff. Failures are logged only.
type QueueDispatcher struct {
	sender sender.EmailSender
	cfg    QueueConfig
	logger *zap.Logger

	jobs   chan Job
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	// stopCtx aborts in-flight backoff waits when Close runs out of time.
	stopCtx context.Context
	stop    context.CancelFunc

	sleep func(ctx context.Context, d time.Duration) bool
}

func NewQueueDispatcher(s sender.EmailSender, cfg QueueConfig, logger *zap.Logger) *QueueDispatcher {
	cfg.withDefaults()
	stopCtx, stop := context.WithCancel(context.Background())

	d := &QueueDispatcher{
		sender:  s,
		cfg:     cfg,
		logger:  logger,
		jobs:    make(chan Job, cfg.Buffer),
		stopCtx: stopCtx,
		stop:    stop,
		sleep:   sleepCtx,
	}

	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Enqueue never blocks: a full buffer returns ErrQueueFull.
func (d *QueueDispatcher) Enqueue(_ context.Context, job Job) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrDispatcherClosed
	}
	select {
	case d.jobs <- job:
		observability.EmailQueueDepth.Inc()
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting jobs and waits for queued ones until ctx is done.
func (d *QueueDispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.stop()
		return nil
	case <-ctx.Done():
		d.stop()
		return ctx.Err()
	}
}

func (d *QueueDispatcher) worker() {
	defer d.wg.Done()
	for job := range d.jobs {
		observability.EmailQueueDepth.Dec()
		d.process(job)
	}
}

func (d *QueueDispatcher) process(job Job) {
	log := d.logger.With(
		zap.String("job_id", job.ID),
		zap.String("kind", string(job.Kind)),
		zap.String("request_id", job.RequestID),
	)

	delays := newRetryBackOff(d.cfg.BaseDelay, d.cfg.MaxDelay)
	for attempt := 1; attempt <= d.cfg.MaxAttempts; attempt++ {
		err := deliver(d.stopCtx, d.sender, job, log)
		if err == nil {
			return
		}

		log.Warn("send attempt failed", zap.Int("attempt", attempt), zap.Error(err))

		if attempt == d.cfg.MaxAttempts {
			break
		}
		if !d.sleep(d.stopCtx, delays.NextBackOff()) {
			log.Warn("email retry aborted by shutdown", zap.Int("attempt", attempt))
			return
		}
	}

	log.Error("email delivery failed after retries", zap.Int("attempts", d.cfg.MaxAttempts))
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
