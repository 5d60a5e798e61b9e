package ratelimit

import (
	"context"
	"sync"
	"time"
)

const (
	ActionCreateRequest = "create_request"
	ActionSendMessage   = "send_message"
	ActionHTTPRequest   = "http_request"
)

// Limit describes a token bucket: Burst tokens, one token regained per Interval.
type Limit struct {
	Burst    int
	Interval time.Duration
}

// DefaultLimits caps chat requests much harder than messages inside an
// approved chat.
var DefaultLimits = map[string]Limit{
	ActionCreateRequest: {Burst: 5, Interval: 12 * time.Minute},
	ActionSendMessage:   {Burst: 10, Interval: 6 * time.Second},
	ActionHTTPRequest:   {Burst: 60, Interval: time.Second},
}

var fallbackLimit = Limit{Burst: 20, Interval: 3 * time.Second}

type tokenBucket struct {
	mu         sync.Mutex
	tokens     int
	limit      Limit
	lastRefill time.Time
}

func newTokenBucket(limit Limit, now time.Time) *tokenBucket {
	return &tokenBucket{tokens: limit.Burst, limit: limit, lastRefill: now}
}

// take consumes a token if one is available, otherwise reports the wait
// until the next refill.
func (b *tokenBucket) take(now time.Time) (bool, time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if refills := int(now.Sub(b.lastRefill) / b.limit.Interval); refills > 0 {
		b.tokens += refills
		if b.tokens > b.limit.Burst {
			b.tokens = b.limit.Burst
		}
		b.lastRefill = b.lastRefill.Add(time.Duration(refills) * b.limit.Interval)
	}

	if b.tokens > 0 {
		b.tokens--
		return true, 0
	}
	return false, b.lastRefill.Add(b.limit.Interval).Sub(now)
}

func (b *tokenBucket) idleSince() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastRefill
}

// RateLimiter keeps one token bucket per (user, action).
type RateLimiter struct {
	mu      sync.RWMutex
	buckets map[string]*tokenBucket
	limits  map[string]Limit
	now     func() time.Time
}

func NewRateLimiter(limits map[string]Limit) *RateLimiter {
	if limits == nil {
		limits = DefaultLimits
	}
	return &RateLimiter{
		buckets: make(map[string]*tokenBucket),
		limits:  limits,
		now:     time.Now,
	}
}

func (rl *RateLimiter) Allow(userID, action string) (bool, time.Duration) {
	key := userID + ":" + action
	now := rl.now()

	rl.mu.RLock()
	bucket, exists := rl.buckets[key]
	rl.mu.RUnlock()

	if !exists {
		rl.mu.Lock()
		if bucket, exists = rl.buckets[key]; !exists {
			limit, ok := rl.limits[action]
			if !ok {
				limit = fallbackLimit
			}
			bucket = newTokenBucket(limit, now)
			rl.buckets[key] = bucket
		}
		rl.mu.Unlock()
	}

	return bucket.take(now)
}

// Cleanup drops buckets that have been idle for longer than an hour.
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, bucket := range rl.buckets {
		if now.Sub(bucket.idleSince()) > time.Hour {
			delete(rl.buckets, key)
		}
	}
}

func (rl *RateLimiter) StartCleanupRoutine(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.Cleanup()
			}
		}
	}()
}
