package llm

import (
	"fmt"
	"sync"
	"time"
)

// bucket: token bucket, пополняемый равномерно за период.
type bucket struct {
	capacity  float64
	available float64
	period    time.Duration
	last      time.Time
}

func newBucket(capacity int, period time.Duration, now time.Time) *bucket {
	return &bucket{
		capacity:  float64(capacity),
		available: float64(capacity),
		period:    period,
		last:      now,
	}
}

func (b *bucket) refill(now time.Time) {
	elapsed := now.Sub(b.last)
	if elapsed <= 0 {
		return
	}
	b.available += b.capacity * float64(elapsed) / float64(b.period)
	if b.available > b.capacity {
		b.available = b.capacity
	}
	b.last = now
}

// wait: время до накопления n единиц.
func (b *bucket) wait(n float64) time.Duration {
	missing := n - b.available
	if missing <= 0 {
		return 0
	}
	return time.Duration(missing / b.capacity * float64(b.period))
}

// RateLimiter ограничивает число запросов в минуту и токенов в час.
// При исчерпании лимита возвращается ошибка, ожидания нет.
type RateLimiter struct {
	mu       sync.Mutex
	requests *bucket
	tokens   *bucket
	now      func() time.Time
}

func NewRateLimiter(requestsPerMinute, tokensPerHour int) *RateLimiter {
	return newRateLimiter(requestsPerMinute, tokensPerHour, time.Now)
}

func newRateLimiter(requestsPerMinute, tokensPerHour int, now func() time.Time) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	if tokensPerHour <= 0 {
		tokensPerHour = 2_000_000
	}

	t := now()
	return &RateLimiter{
		requests: newBucket(requestsPerMinute, time.Minute, t),
		tokens:   newBucket(tokensPerHour, time.Hour, t),
		now:      now,
	}
}

// Allow резервирует один запрос и tokens токенов. Если хотя бы один из
// лимитов исчерпан, ничего не списывается.
func (rl *RateLimiter) Allow(tokens int) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.requests.refill(now)
	rl.tokens.refill(now)

	if rl.requests.available < 1 {
		return fmt.Errorf("%w запросов (%.0f RPM), повторите через %v",
			ErrRateLimited, rl.requests.capacity, rl.requests.wait(1).Round(time.Millisecond))
	}
	if float64(tokens) > rl.tokens.available {
		return fmt.Errorf("%w токенов (%.0f TPH): требуется %d, доступно %.0f",
			ErrRateLimited, rl.tokens.capacity, tokens, rl.tokens.available)
	}

	rl.requests.available--
	rl.tokens.available -= float64(tokens)
	return nil
}

// Consume списывает токены, израсходованные сверх оценки.
func (rl *RateLimiter) Consume(tokens int) {
	if tokens <= 0 {
		return
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.tokens.available -= float64(tokens)
	if rl.tokens.available < 0 {
		rl.tokens.available = 0
	}
}

// Stats возвращает доступные запросы и токены.
func (rl *RateLimiter) Stats() (requests int, tokens int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.requests.refill(now)
	rl.tokens.refill(now)
	return int(rl.requests.available), int(rl.tokens.available)
}
