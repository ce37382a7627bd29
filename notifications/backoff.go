package notifications

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// newRetryBackOff doubles from base up to max with ±12.5% jitter. It never
// stops on its own; the attempt limit lives in QueueDispatcher.
func newRetryBackOff(base, max time.Duration) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = base
	b.MaxInterval = max
	b.Multiplier = 2
	b.RandomizationFactor = 0.125
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}
