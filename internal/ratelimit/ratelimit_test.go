package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// frozen returns a limiter whose clock only moves when the test says so.
func frozen(t *testing.T, rps float64, burst int) (*KeyedRateLimiter, *time.Time) {
	t.Helper()
	rl := NewWithIdleTTL(rps, burst, time.Hour)
	t.Cleanup(rl.Stop)

	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestTake_BurstThenThrottle(t *testing.T) {
	tests := []struct {
		name     string
		burst    int
		calls    int
		wantPass int
	}{
		{"within burst", 3, 3, 3},
		{"beyond burst", 3, 5, 3},
		{"single token", 1, 4, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl, _ := frozen(t, 1.0/30, tt.burst)

			passed := 0
			for range tt.calls {
				if ok, _ := rl.Take("10.0.0.1"); ok {
					passed++
				}
			}
			assert.Equal(t, tt.wantPass, passed)
		})
	}
}

func TestTake_RetryAfterAndRefill(t *testing.T) {
	rl, now := frozen(t, 1.0/30, 1) // one comment per 30s

	ok, _ := rl.Take("10.0.0.1")
	assert.True(t, ok)

	ok, wait := rl.Take("10.0.0.1")
	assert.False(t, ok)
	assert.Equal(t, 30*time.Second, wait.Round(time.Second))

	// A refused attempt spends nothing.
	*now = now.Add(15 * time.Second)
	ok, wait = rl.Take("10.0.0.1")
	assert.False(t, ok)
	assert.Equal(t, 15*time.Second, wait.Round(time.Second))

	*now = now.Add(15 * time.Second)
	ok, _ = rl.Take("10.0.0.1")
	assert.True(t, ok)
}

func TestTake_KeysAreIndependent(t *testing.T) {
	rl, _ := frozen(t, 1, 1)

	assert.True(t, rl.Allow("key1"))
	assert.False(t, rl.Allow("key1"))
	assert.True(t, rl.Allow("key2"))
}

func TestTake_ZeroBurstNeverAllows(t *testing.T) {
	rl, _ := frozen(t, 1, 0)

	ok, wait := rl.Take("10.0.0.1")
	assert.False(t, ok)
	assert.Positive(t, wait)
}

func TestEvictIdle(t *testing.T) {
	rl := NewWithIdleTTL(1, 1, time.Minute)
	defer rl.Stop()

	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow("stale")
	now = now.Add(45 * time.Second)
	rl.Allow("fresh")
	now = now.Add(30 * time.Second)

	assert.Equal(t, 1, rl.evictIdle())
	assert.Equal(t, 1, rl.Len())

	// An evicted key starts over with a full bucket.
	assert.True(t, rl.Allow("stale"))
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 1, RetryAfterSeconds(0))
	assert.Equal(t, 1, RetryAfterSeconds(200*time.Millisecond))
	assert.Equal(t, 30, RetryAfterSeconds(29*time.Second+time.Millisecond))
}
