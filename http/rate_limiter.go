package http

import (
	"sync"
	"time"
)

const (
	idleBucketTTL   = 1 * time.Hour
	cleanupInterval = 30 * time.Minute
)

// bucket stores its tokens as earned time: one token is worth perToken.
type bucket struct {
	credit   time.Duration
	lastSeen time.Time
}

// RateLimiter grants each client capacity requests per window. Tokens drip
// back continuously at capacity/window instead of all at once.
type RateLimiter struct {
	mu        sync.Mutex
	capacity  int
	window    time.Duration
	perToken  time.Duration
	maxCredit time.Duration
	buckets   map[string]*bucket
	now       func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

func NewRateLimiter(capacity int, window time.Duration) *RateLimiter {
	perToken := window / time.Duration(capacity)
	rl := &RateLimiter{
		capacity:  capacity,
		window:    window,
		perToken:  perToken,
		maxCredit: perToken * time.Duration(capacity),
		buckets:   make(map[string]*bucket),
		now:       time.Now,
		stop:      make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

// Capacity and Window describe the configured limit.
func (r *RateLimiter) Capacity() int         { return r.capacity }
func (r *RateLimiter) Window() time.Duration { return r.window }

// Allow spends one token of client's bucket. When the bucket is empty it
// reports how long until the next token is available.
func (r *RateLimiter) Allow(client string) (bool, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	b, ok := r.buckets[client]
	if !ok {
		b = &bucket{credit: r.maxCredit, lastSeen: now}
		r.buckets[client] = b
	} else {
		b.credit = min(r.maxCredit, b.credit+now.Sub(b.lastSeen))
		b.lastSeen = now
	}

	if b.credit < r.perToken {
		return false, r.perToken - b.credit
	}
	b.credit -= r.perToken
	return true, 0
}

func (r *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.sweep()
		case <-r.stop:
			return
		}
	}
}

// sweep forgets clients idle long enough for their bucket to be full again.
func (r *RateLimiter) sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for client, b := range r.buckets {
		if now.Sub(b.lastSeen) > idleBucketTTL && now.Sub(b.lastSeen) >= r.window {
			delete(r.buckets, client)
		}
	}
}

// Stop ends the sweep goroutine. Safe to call more than once.
func (r *RateLimiter) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}
