package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"spiderAgent/internal/cli/ui"

	"go.uber.org/zap"
)

const previewLen = 120

// LogsHandler обрабатывает команды просмотра логов
type LogsHandler struct {
	repo RunReader
	out  io.Writer
	log  *zap.Logger
}

func NewLogsHandler(repo RunReader, out io.Writer, log *zap.Logger) *LogsHandler {
	return &LogsHandler{repo: repo, out: out, log: log}
}

// Show выводит LLM логи запуска
func (h *LogsHandler) Show(ctx context.Context, idStr string) {
	if h.repo == nil {
		printError(h.out, "База данных не настроена")
		return
	}
	id, ok := parseID(h.out, idStr)
	if !ok {
		return
	}

	logs, err := h.repo.GetLogsByRunID(ctx, id)
	if err != nil {
		h.log.Error("Ошибка получения логов", zap.Error(err))
		printError(h.out, "Ошибка получения логов")
		return
	}

	fmt.Fprintf(h.out, "\n"+ui.ColorBold+"=== "+ui.IconList+" Логи запуска #%d ==="+ui.ColorReset+"\n", id)
	if len(logs) == 0 {
		fmt.Fprintln(h.out, ui.ColorGray+"Запросов к LLM не было"+ui.ColorReset)
		return
	}

	for _, l := range logs {
		fmt.Fprintf(h.out, ui.ColorGray+"[%s]"+ui.ColorReset+" "+ui.ColorCyan+"пакет %d"+ui.ColorReset+" %s, %d токенов\n",
			l.CreatedAt.Format("15:04:05"), l.BatchNo, l.Model, l.TokensUsed)
		if strings.HasPrefix(l.ResponseText, "ERROR: ") {
			fmt.Fprintf(h.out, "  "+ui.ColorRed+"[ОШИБКА]"+ui.ColorReset+" %s\n", strings.TrimPrefix(l.ResponseText, "ERROR: "))
		} else {
			fmt.Fprintf(h.out, "  "+ui.ColorGreen+"[OK]"+ui.ColorReset+" %s\n", preview(l.ResponseText))
		}
	}
	fmt.Fprintln(h.out)
}

func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= previewLen {
		return s
	}
	return string(r[:previewLen]) + "…"
}
