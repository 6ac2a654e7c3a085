package llm

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrCircuitOpen: модель недавно подряд не отвечала, запросы временно не отправляются.
var ErrCircuitOpen = errors.New("модель недоступна, запросы приостановлены")

type circuitState int

const (
	stateClosed circuitState = iota
	stateOpen
	stateHalfOpen
)

// breaker размыкается после maxFailures ошибок транспорта подряд. Пока он
// разомкнут, пакеты сразу уходят в откат, не дожидаясь таймаута каждого.
type breaker struct {
	mu           sync.Mutex
	maxFailures  int
	resetTimeout time.Duration
	state        circuitState
	failures     int
	openedAt     time.Time
	now          func() time.Time
}

func newBreaker(maxFailures int, resetTimeout time.Duration, now func() time.Time) *breaker {
	if maxFailures <= 0 {
		maxFailures = 3
	}
	if resetTimeout <= 0 {
		resetTimeout = 30 * time.Second
	}
	return &breaker{maxFailures: maxFailures, resetTimeout: resetTimeout, now: now}
}

// allow пропускает запрос. После resetTimeout разомкнутый breaker пропускает
// одну пробную попытку.
func (b *breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case stateOpen:
		if b.now().Sub(b.openedAt) < b.resetTimeout {
			return fmt.Errorf("%w (ещё %v)", ErrCircuitOpen,
				(b.resetTimeout - b.now().Sub(b.openedAt)).Round(time.Second))
		}
		b.state = stateHalfOpen
	case stateHalfOpen:
		return ErrCircuitOpen
	}
	return nil
}

func (b *breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		b.state = stateClosed
		b.failures = 0
		return
	}

	b.failures++
	if b.state == stateHalfOpen || b.failures >= b.maxFailures {
		b.state = stateOpen
		b.openedAt = b.now()
	}
}
