package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestRateLimiterRequests(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	rl := newRateLimiter(2, 1000, clock.now)

	require.NoError(t, rl.Allow(1))
	require.NoError(t, rl.Allow(1))
	assert.ErrorIs(t, rl.Allow(1), ErrRateLimited)

	clock.t = clock.t.Add(30 * time.Second)
	assert.NoError(t, rl.Allow(1))
}

func TestRateLimiterTokensNotChargedOnRejection(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	rl := newRateLimiter(10, 100, clock.now)

	assert.ErrorIs(t, rl.Allow(101), ErrRateLimited)

	requests, tokens := rl.Stats()
	assert.Equal(t, 10, requests)
	assert.Equal(t, 100, tokens)

	require.NoError(t, rl.Allow(60))
	rl.Consume(30)
	_, tokens = rl.Stats()
	assert.Equal(t, 10, tokens)
}

func TestRateLimiterDefaults(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	requests, tokens := rl.Stats()
	assert.Equal(t, 60, requests)
	assert.Equal(t, 2_000_000, tokens)
}
