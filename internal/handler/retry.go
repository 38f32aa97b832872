package handler

import (
	"context"
	"errors"
	"time"

	"removaltracker/internal/service"

	"github.com/juju/clock"
	"github.com/juju/retry"
	"github.com/sirupsen/logrus"
)

// ConflictRetry re-runs a whole lifecycle operation when it lost an
// optimistic version check. Each attempt re-reads the removal, so a retried
// call is validated against the state that beat it.
type ConflictRetry struct {
	Attempts int
	Delay    time.Duration
	Clock    clock.Clock
}

const defaultRetryDelay = 10 * time.Millisecond

// NoRetry runs operations exactly once.
var NoRetry = ConflictRetry{Attempts: 1}

// Do calls fn until it succeeds, fails with anything but service.ErrConflict,
// runs out of attempts, or ctx is done. The returned error is fn's last error.
func (p ConflictRetry) Do(ctx context.Context, fn func() error) error {
	if p.Attempts <= 1 {
		return fn()
	}
	clk := p.Clock
	if clk == nil {
		clk = clock.WallClock
	}
	delay := p.Delay
	if delay <= 0 {
		delay = defaultRetryDelay
	}

	err := retry.Call(retry.CallArgs{
		Func: fn,
		IsFatalError: func(err error) bool {
			return !errors.Is(err, service.ErrConflict)
		},
		NotifyFunc: func(lastError error, attempt int) {
			logrus.WithField("component", "conflict_retry").WithError(lastError).
				WithField("attempt", attempt).Debug("retrying after version conflict")
		},
		Attempts: p.Attempts,
		Delay:    delay,
		Clock:    clk,
		Stop:     ctx.Done(),
	})
	if retry.IsAttemptsExceeded(err) || retry.IsRetryStopped(err) {
		return retry.LastError(err)
	}
	return err
}
