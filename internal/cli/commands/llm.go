package commands

import (
	"context"
	"fmt"
	"io"

	"spiderAgent/internal/cli/ui"
	"spiderAgent/internal/llm"
)

// LLMHandler проверяет доступность модели
type LLMHandler struct {
	client Asker
	out    io.Writer
}

func NewLLMHandler(client Asker, out io.Writer) *LLMHandler {
	return &LLMHandler{client: client, out: out}
}

func (h *LLMHandler) Test(ctx context.Context, text string) {
	if h.client == nil {
		printError(h.out, "LLM клиент не инициализирован")
		return
	}

	fmt.Fprintln(h.out, ui.ColorCyan+ui.IconRobot+" Запрос к модели..."+ui.ColorReset)
	resp, err := h.client.Ask(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: "Отвечай кратко."},
		{Role: llm.RoleUser, Content: text},
	}, nil, 0)
	if err != nil {
		printError(h.out, "Ошибка: %v", err)
		return
	}

	fmt.Fprintln(h.out, ui.ColorGreen+ui.IconCheckmark+" Ответ:"+ui.ColorReset)
	fmt.Fprintln(h.out, resp)
}
