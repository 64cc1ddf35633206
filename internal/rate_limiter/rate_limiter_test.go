package rate_limiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestLimiter(limit int, window time.Duration, clock *time.Time) *RateLimiter {
	rl := NewRateLimiter(limit, window)
	rl.now = func() time.Time { return *clock }
	return rl
}

func TestIsAllowed(t *testing.T) {
	clock := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	rl := newTestLimiter(3, 5*time.Minute, &clock)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, rl.IsAllowed("10.0.0.1"), "attempt %d", i+1)
	}
	assert.False(t, rl.IsAllowed("10.0.0.1"))
	assert.Equal(t, 0, rl.GetRemainingRequests("10.0.0.1"))

	assert.True(t, rl.IsAllowed("10.0.0.2"), "other keys are independent")
	assert.Equal(t, 2, rl.GetRemainingRequests("10.0.0.2"))

	clock = clock.Add(5*time.Minute + time.Second)
	assert.True(t, rl.IsAllowed("10.0.0.1"), "window slid past old attempts")
}

func TestResetAt(t *testing.T) {
	clock := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	rl := newTestLimiter(1, time.Minute, &clock)
	defer rl.Stop()

	assert.Equal(t, clock, rl.ResetAt("a"))
	rl.IsAllowed("a")
	assert.Equal(t, clock.Add(time.Minute), rl.ResetAt("a"))
}

func TestCleanupDropsExpiredKeys(t *testing.T) {
	clock := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	rl := newTestLimiter(2, time.Minute, &clock)
	defer rl.Stop()

	rl.IsAllowed("a")
	clock = clock.Add(2 * time.Minute)
	rl.cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Empty(t, rl.requests)
}

func TestStopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(1, time.Second)
	rl.Stop()
	rl.Stop()
}
