package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"spiderAgent/internal/sanitizer"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Config: параметры подключения к модели.
type Config struct {
	APIKey            string
	Model             string
	BaseURL           string
	Timeout           time.Duration
	MaxInputTokens    int
	RequestsPerMinute int
	TokensPerHour     int
	// MaxFailures ошибок транспорта подряд приостанавливают запросы на CooldownPeriod.
	MaxFailures    int
	CooldownPeriod time.Duration
}

type Client struct {
	client      *openai.Client
	cfg         Config
	counter     Counter
	logger      Logger
	log         *zap.Logger
	sanitizer   *sanitizer.DataSanitizer
	rateLimiter *RateLimiter
	breaker     *breaker
}

// NewClient создает клиента. logger может быть nil, тогда запросы не
// журналируются в БД.
func NewClient(cfg Config, counter Counter, logger Logger, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 360 * time.Second
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Client{
		client:      openai.NewClientWithConfig(oc),
		cfg:         cfg,
		counter:     counter,
		logger:      logger,
		log:         log.With(zap.String("component", "llm")),
		sanitizer:   sanitizer.New(),
		rateLimiter: NewRateLimiter(cfg.RequestsPerMinute, cfg.TokensPerHour),
		breaker:     newBreaker(cfg.MaxFailures, cfg.CooldownPeriod, time.Now),
	}
}

func (c *Client) Model() string { return c.cfg.Model }

// Ask выполняет один chat completion и возвращает текст первого варианта.
// Повторных попыток нет: любая ошибка окончательна для вызова.
func (c *Client) Ask(ctx context.Context, messages []Message, runID *uint, batchNo int) (string, error) {
	estimated, err := ValidateMessages(messages, c.counter, c.cfg.MaxInputTokens)
	if err != nil {
		return "", err
	}

	if err := c.rateLimiter.Allow(estimated); err != nil {
		return "", err
	}

	if err := c.breaker.allow(); err != nil {
		return "", err
	}

	req := openai.ChatCompletionRequest{
		Model:    c.cfg.Model,
		Messages: toOpenAI(messages),
	}

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	started := time.Now()
	resp, err := c.client.CreateChatCompletion(callCtx, req)
	c.breaker.record(transportError(ctx, err))
	if err != nil {
		var netErr net.Error
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			err = fmt.Errorf("таймаут запроса к LLM (%v): %w", c.cfg.Timeout, err)
		} else {
			err = fmt.Errorf("ошибка запроса к LLM: %w", err)
		}
		c.record(ctx, runID, batchNo, messages, "", estimated, err)
		return "", err
	}

	if resp.Usage.TotalTokens > estimated {
		c.rateLimiter.Consume(resp.Usage.TotalTokens - estimated)
	}

	tokens := resp.Usage.TotalTokens
	if tokens == 0 {
		tokens = estimated
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("%w: нет вариантов ответа", ErrEmptyResponse)
		c.record(ctx, runID, batchNo, messages, "", tokens, err)
		return "", err
	}

	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		err := fmt.Errorf("%w: пустое содержимое", ErrEmptyResponse)
		c.record(ctx, runID, batchNo, messages, "", tokens, err)
		return "", err
	}

	c.log.Debug("Ответ LLM получен",
		zap.Int("batch", batchNo),
		zap.Int("tokens", tokens),
		zap.Duration("elapsed", time.Since(started)),
	)
	c.record(ctx, runID, batchNo, messages, content, tokens, nil)

	return content, nil
}

func (c *Client) record(ctx context.Context, runID *uint, batchNo int, messages []Message, response string, tokens int, callErr error) {
	if c.logger == nil {
		return
	}

	if callErr != nil {
		response = "ERROR: " + callErr.Error()
	}

	prompt := c.sanitizer.Sanitize(joinPrompt(messages))
	response = c.sanitizer.Sanitize(response)

	if err := c.logger.LogLLMRequest(ctx, runID, batchNo, string(RoleUser), prompt, response, c.cfg.Model, tokens); err != nil {
		c.log.Warn("Не удалось сохранить лог LLM запроса", zap.Error(err))
	}
}

func joinPrompt(messages []Message) string {
	parts := make([]string, len(messages))
	for i, m := range messages {
		parts[i] = fmt.Sprintf("[%s]\n%s", m.Role, m.Content)
	}
	return strings.Join(parts, "\n\n")
}

func toOpenAI(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
	}
	return out
}

// transportError отбрасывает отмену вызывающей стороной: она не говорит о
// недоступности модели.
func transportError(ctx context.Context, err error) error {
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
