package asana

import (
	"context"
	"sync"
	"time"
)

// DefaultRateLimit is the default request ceiling per window.
const DefaultRateLimit = 100

// rateWindow is the fixed counting period for outbound calls.
const rateWindow = time.Minute

// rateLimiter bounds outbound calls to a ceiling per fixed 60-second
// window. It is owned by a single Client instance so independently
// configured clients (and tests) never share a limiter.
//
// The limiter never fails; it only delays. A caller that would exceed the
// ceiling sleeps until the window resets, after which its own call counts
// as the first of the new window.
type rateLimiter struct {
	mu      sync.Mutex
	limit   int
	count   int
	resetAt time.Time

	// injectable for tests
	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

func newRateLimiter(limit int) *rateLimiter {
	if limit <= 0 {
		limit = DefaultRateLimit
	}
	return &rateLimiter{
		limit: limit,
		now:   time.Now,
		sleep: sleepContext,
	}
}

// wait blocks until the caller may issue one outbound call, then records
// it. The count is incremented unconditionally once the caller is admitted,
// so a call that had to wait for the boundary leaves the new window at 1.
// The returned duration is the delay imposed on this caller, zero when the
// call was admitted immediately.
func (rl *rateLimiter) wait(ctx context.Context) (time.Duration, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if !now.Before(rl.resetAt) {
		rl.count = 0
		rl.resetAt = now.Add(rateWindow)
	}

	var waited time.Duration
	if rl.count >= rl.limit {
		delay := rl.resetAt.Sub(now)
		if err := rl.sleep(ctx, delay); err != nil {
			return 0, err
		}
		waited = delay
		rl.count = 0
		rl.resetAt = rl.now().Add(rateWindow)
	}

	rl.count++
	return waited, nil
}

// sleepContext sleeps for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
