package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_AllowsBurstThenBlocks(t *testing.T) {
	now := time.Unix(1700000000, 0)
	rl := NewRateLimiter(map[string]Limit{ActionSendMessage: {Burst: 2, Interval: time.Second}})
	rl.now = func() time.Time { return now }

	ok, _ := rl.Allow("u1", ActionSendMessage)
	assert.True(t, ok)
	ok, _ = rl.Allow("u1", ActionSendMessage)
	assert.True(t, ok)

	ok, wait := rl.Allow("u1", ActionSendMessage)
	assert.False(t, ok)
	assert.Equal(t, time.Second, wait)

	ok, _ = rl.Allow("u2", ActionSendMessage)
	assert.True(t, ok, "buckets are per user")

	now = now.Add(1500 * time.Millisecond)
	ok, _ = rl.Allow("u1", ActionSendMessage)
	assert.True(t, ok)
	ok, wait = rl.Allow("u1", ActionSendMessage)
	assert.False(t, ok)
	assert.Equal(t, 500*time.Millisecond, wait)
}

func TestRateLimiter_UnknownActionUsesFallback(t *testing.T) {
	rl := NewRateLimiter(nil)
	for i := 0; i < fallbackLimit.Burst; i++ {
		ok, _ := rl.Allow("u1", "typing")
		assert.True(t, ok)
	}
	ok, _ := rl.Allow("u1", "typing")
	assert.False(t, ok)
}

func TestRateLimiter_CleanupDropsIdleBuckets(t *testing.T) {
	now := time.Unix(1700000000, 0)
	rl := NewRateLimiter(nil)
	rl.now = func() time.Time { return now }

	rl.Allow("u1", ActionCreateRequest)
	now = now.Add(2 * time.Hour)
	rl.Cleanup()

	assert.Empty(t, rl.buckets)
}
