// Package llm выполняет запросы к OpenAI-совместимому chat completion API
// (по умолчанию локальная Ollama). Включает проверку сообщений, rate limiting
// и журналирование запросов.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Role: роль автора сообщения.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Message: одно сообщение промпта. Не сохраняется.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

var (
	// ErrInvalidMessage: сообщения отклонены до обращения к модели.
	ErrInvalidMessage = errors.New("некорректное сообщение")
	// ErrEmptyResponse: модель не вернула ни одного варианта или вернула пустой текст.
	ErrEmptyResponse = errors.New("пустой ответ модели")
	// ErrRateLimited: исчерпан лимит запросов или токенов.
	ErrRateLimited = errors.New("превышен лимит")
)

// Logger сохраняет запросы к LLM (реализуется репозиторием БД).
type Logger interface {
	LogLLMRequest(ctx context.Context, runID *uint, batchNo int, role, promptText, responseText, model string, tokensUsed int) error
}

// Counter считает токены в тексте.
type Counter interface {
	Count(text string) (int, error)
}

// ValidateMessages проверяет роли и возвращает суммарное число токенов.
// Превышение maxTokens (если он больше нуля) считается ошибкой проверки.
func ValidateMessages(messages []Message, counter Counter, maxTokens int) (int, error) {
	if len(messages) == 0 {
		return 0, fmt.Errorf("%w: список сообщений пуст", ErrInvalidMessage)
	}

	total := 0
	for i, msg := range messages {
		if !msg.Role.Valid() {
			return 0, fmt.Errorf("%w: сообщение %d имеет неизвестную роль %q", ErrInvalidMessage, i, msg.Role)
		}
		n, err := counter.Count(msg.Content)
		if err != nil {
			return 0, err
		}
		total += n
	}

	if maxTokens > 0 && total > maxTokens {
		return total, fmt.Errorf("%w: %d токенов при лимите %d", ErrInvalidMessage, total, maxTokens)
	}
	return total, nil
}
