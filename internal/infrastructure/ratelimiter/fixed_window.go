package ratelimiter

import (
	"sync"
	"time"
)

// FixedWindowRateLimiter counts requests per source within a fixed time
// window. Sources whose window has lapsed are swept periodically so the
// map does not grow with every address ever seen.
type FixedWindowRateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	frame   time.Duration

	cleanupTick *time.Ticker
	done        chan struct{}
	closeOnce   sync.Once
}

type window struct {
	count   int
	resetAt time.Time
}

func NewFixedWindowRateLimiter(limit int, frame time.Duration) *FixedWindowRateLimiter {
	if limit <= 0 {
		limit = 20
	}
	if frame <= 0 {
		frame = 5 * time.Second
	}

	rl := &FixedWindowRateLimiter{
		windows:     make(map[string]*window),
		limit:       limit,
		frame:       frame,
		cleanupTick: time.NewTicker(frame),
		done:        make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

// Allow reports whether the source may proceed; when denied it also returns
// how long until the window resets.
func (rl *FixedWindowRateLimiter) Allow(source string) (bool, time.Duration) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[source]
	if !ok || !now.Before(w.resetAt) {
		rl.windows[source] = &window{count: 1, resetAt: now.Add(rl.frame)}
		return true, 0
	}

	if w.count >= rl.limit {
		return false, time.Until(w.resetAt)
	}

	w.count++
	return true, 0
}

func (rl *FixedWindowRateLimiter) startCleanup() {
	for {
		select {
		case <-rl.cleanupTick.C:
			rl.cleanup()
		case <-rl.done:
			return
		}
	}
}

func (rl *FixedWindowRateLimiter) cleanup() {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for source, w := range rl.windows {
		if now.After(w.resetAt) {
			delete(rl.windows, source)
		}
	}
}

func (rl *FixedWindowRateLimiter) Close() {
	rl.closeOnce.Do(func() {
		close(rl.done)
		rl.cleanupTick.Stop()
	})
}
