package core

import (
	"context"
	"math/rand"
	"time"
)

// JitteredDelay returns a duration uniformly distributed in
// [0.95*base, base], the refresh-jitter window spec §4.1 specifies for
// exec and service-account credential renewal (and reused here for
// client-cert file re-read timers, which follow the same contract).
func JitteredDelay(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	floor := time.Duration(float64(base) * 0.95)
	span := base - floor
	if span <= 0 {
		return base
	}
	return floor + time.Duration(rand.Int63n(int64(span)))
}

// SleepContext blocks for d or until ctx is cancelled, whichever comes
// first, returning ctx.Err() in the latter case.
func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
