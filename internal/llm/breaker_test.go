package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakerOpensAndRecovers(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	b := newBreaker(2, time.Minute, clock.now)
	fail := errors.New("connection refused")

	require.NoError(t, b.allow())
	b.record(fail)
	require.NoError(t, b.allow())
	b.record(fail)

	assert.ErrorIs(t, b.allow(), ErrCircuitOpen)

	clock.t = clock.t.Add(time.Minute)
	require.NoError(t, b.allow(), "пробная попытка после паузы")
	assert.ErrorIs(t, b.allow(), ErrCircuitOpen, "вторая попытка ждет результата пробной")

	b.record(nil)
	assert.NoError(t, b.allow())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	b := newBreaker(1, time.Minute, clock.now)

	b.record(errors.New("x"))
	clock.t = clock.t.Add(2 * time.Minute)
	require.NoError(t, b.allow())
	b.record(errors.New("x"))

	assert.ErrorIs(t, b.allow(), ErrCircuitOpen)
}

func TestAskFailsFastWhenModelIsDown(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, `{"error":{"message":"model not loaded"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Config{
		Model:       "test",
		BaseURL:     srv.URL + "/v1",
		Timeout:     time.Second,
		MaxFailures: 2,
	}, runeCounter{}, nil, nil)

	msgs := []Message{{Role: RoleUser, Content: "x"}}
	for i := 0; i < 2; i++ {
		_, err := c.Ask(context.Background(), msgs, nil, i)
		require.Error(t, err)
	}

	_, err := c.Ask(context.Background(), msgs, nil, 3)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(2), hits.Load())
}
