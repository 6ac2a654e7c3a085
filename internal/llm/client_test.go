package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type runeCounter struct{}

func (runeCounter) Count(text string) (int, error) {
	return len([]rune(text)), nil
}

type logEntry struct {
	batch    int
	prompt   string
	response string
}

type memLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *memLogger) LogLLMRequest(_ context.Context, _ *uint, batchNo int, _, prompt, response, _ string, _ int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{batch: batchNo, prompt: prompt, response: response})
	return nil
}

func completionServer(t *testing.T, content string, delay time.Duration) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"test",` +
			`"choices":[{"index":0,"message":{"role":"assistant","content":` + content + `},"finish_reason":"stop"}],` +
			`"usage":{"prompt_tokens":5,"completion_tokens":2,"total_tokens":7}}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server, logger Logger, timeout time.Duration) *Client {
	return NewClient(Config{
		APIKey:         "ollama",
		Model:          "test",
		BaseURL:        srv.URL + "/v1",
		Timeout:        timeout,
		MaxInputTokens: 1000,
	}, runeCounter{}, logger, nil)
}

func TestAskSuccess(t *testing.T) {
	srv := completionServer(t, `"integrated text"`, 0)
	logger := &memLogger{}
	c := newTestClient(srv, logger, time.Second)

	out, err := c.Ask(context.Background(), []Message{
		{Role: RoleSystem, Content: "extract"},
		{Role: RoleUser, Content: "mail me at user@example.com"},
	}, nil, 3)
	require.NoError(t, err)
	assert.Equal(t, "integrated text", out)

	require.Len(t, logger.entries, 1)
	assert.Equal(t, 3, logger.entries[0].batch)
	assert.Equal(t, "integrated text", logger.entries[0].response)
	assert.Contains(t, logger.entries[0].prompt, "[FILTERED_EMAIL]")
	assert.NotContains(t, logger.entries[0].prompt, "user@example.com")
}

func TestAskEmptyContent(t *testing.T) {
	srv := completionServer(t, `"   "`, 0)
	logger := &memLogger{}
	c := newTestClient(srv, logger, time.Second)

	_, err := c.Ask(context.Background(), []Message{{Role: RoleUser, Content: "x"}}, nil, 1)
	assert.ErrorIs(t, err, ErrEmptyResponse)
	require.Len(t, logger.entries, 1)
	assert.True(t, strings.HasPrefix(logger.entries[0].response, "ERROR: "))
}

func TestAskTimeout(t *testing.T) {
	srv := completionServer(t, `"late"`, 2*time.Second)
	c := newTestClient(srv, nil, 50*time.Millisecond)

	started := time.Now()
	_, err := c.Ask(context.Background(), []Message{{Role: RoleUser, Content: "x"}}, nil, 1)
	require.Error(t, err)
	assert.Less(t, time.Since(started), time.Second)
}

func TestAskRejectsInvalidMessagesBeforeCall(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := newTestClient(srv, nil, time.Second)

	_, err := c.Ask(context.Background(), []Message{{Role: "tool", Content: "x"}}, nil, 1)
	assert.ErrorIs(t, err, ErrInvalidMessage)

	_, err = c.Ask(context.Background(), []Message{{Role: RoleUser, Content: strings.Repeat("a", 1001)}}, nil, 1)
	assert.ErrorIs(t, err, ErrInvalidMessage)

	_, err = c.Ask(context.Background(), nil, nil, 1)
	assert.ErrorIs(t, err, ErrInvalidMessage)

	assert.False(t, called)
}

func TestValidateMessagesCountsTokens(t *testing.T) {
	n, err := ValidateMessages([]Message{
		{Role: RoleSystem, Content: "abc"},
		{Role: RoleAssistant, Content: "de"},
	}, runeCounter{}, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}
