package scheduler

import (
	"context"
	"time"
)

// Ticker delivers ticks on C until stopped
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock abstracts wall-clock time so loops can run on virtual time in tests
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// SystemClock is the real clock
type SystemClock struct{}

// Now returns the current time
func (SystemClock) Now() time.Time {
	return time.Now()
}

// NewTicker wraps time.NewTicker
func (SystemClock) NewTicker(d time.Duration) Ticker {
	return &systemTicker{t: time.NewTicker(d)}
}

type systemTicker struct {
	t *time.Ticker
}

func (s *systemTicker) C() <-chan time.Time { return s.t.C }
func (s *systemTicker) Stop()               { s.t.Stop() }

// Every calls fn once per interval until ctx is cancelled.
// Ticks are fixed-rate: a slow fn delays the next call but never queues extra ones.
func Every(ctx context.Context, clock Clock, interval time.Duration, fn func(context.Context)) {
	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			fn(ctx)
		}
	}
}
