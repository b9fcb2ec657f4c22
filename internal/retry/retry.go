// Package retry wraps remote reads in exponential backoff. The controller
// regularly stops answering for a few seconds while it talks to its RS485
// bus, so transient failures are expected and absorbed here.
package retry

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  5,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     30 * time.Second,
	}
}

// Do runs op until it succeeds or the attempt budget is spent, sleeping an
// exponentially growing interval between attempts. The final error is
// returned. Writes must not go through this: repeating an offset-delta
// command is not idempotent.
func (p Policy) Do(op func() error) error {
	if p.MaxAttempts <= 1 {
		return op()
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.InitialDelay
	bo.MaxInterval = p.MaxDelay
	bo.MaxElapsedTime = 0
	return backoff.Retry(op, backoff.WithMaxRetries(bo, uint64(p.MaxAttempts-1)))
}
