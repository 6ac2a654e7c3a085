package commands

import (
	"context"
	"fmt"
	"io"

	"spiderAgent/internal/cli/ui"

	"go.uber.org/zap"
)

// RunsHandler выводит историю запусков
type RunsHandler struct {
	repo RunReader
	out  io.Writer
	log  *zap.Logger
}

func NewRunsHandler(repo RunReader, out io.Writer, log *zap.Logger) *RunsHandler {
	return &RunsHandler{repo: repo, out: out, log: log}
}

func (h *RunsHandler) List(ctx context.Context) {
	if h.repo == nil {
		printError(h.out, "База данных не настроена")
		return
	}

	runs, err := h.repo.ListRuns(ctx, 20, 0)
	if err != nil {
		h.log.Error("Ошибка получения запусков", zap.Error(err))
		printError(h.out, "Ошибка получения запусков")
		return
	}
	if len(runs) == 0 {
		fmt.Fprintln(h.out, ui.ColorGray+"Запусков нет"+ui.ColorReset)
		return
	}

	for _, run := range runs {
		icon, color, _ := ui.FormatStatus(run.Status)
		target := run.URL
		if target == "" {
			target = run.Name
		}
		fmt.Fprintf(h.out, "%s%s #%d%s %s "+ui.ColorGray+"%s"+ui.ColorReset+"\n",
			color, icon, run.ID, ui.ColorReset, target, run.CreatedAt.Format("2006-01-02 15:04"))
	}
}

// Show выводит детали запуска
func (h *RunsHandler) Show(ctx context.Context, idStr string) {
	if h.repo == nil {
		printError(h.out, "База данных не настроена")
		return
	}
	id, ok := parseID(h.out, idStr)
	if !ok {
		return
	}

	run, err := h.repo.GetRunByID(ctx, id)
	if err != nil {
		printError(h.out, "Запуск не найден")
		return
	}

	_, _, statusText := ui.FormatStatus(run.Status)

	fmt.Fprintf(h.out, "\n"+ui.ColorBold+"=== Запуск #%d ==="+ui.ColorReset+"\n", run.ID)
	if run.URL != "" {
		fmt.Fprintf(h.out, ui.ColorCyan+ui.IconGlobe+" URL:"+ui.ColorReset+" %s\n", run.URL)
	}
	fmt.Fprintf(h.out, ui.ColorCyan+ui.IconDocument+" Имя:"+ui.ColorReset+" %s\n", run.Name)
	fmt.Fprintf(h.out, ui.ColorCyan+ui.IconChart+" Статус:"+ui.ColorReset+" %s\n", statusText)
	fmt.Fprintf(h.out, ui.ColorCyan+ui.IconTime+" Создан:"+ui.ColorReset+" %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(h.out, ui.ColorCyan+"Каталог:"+ui.ColorReset+" %s\n", run.SavePath)
	fmt.Fprintf(h.out, ui.ColorCyan+"Узлы:"+ui.ColorReset+" дерево %d, упрощено %d, итог %d\n",
		run.TreeNodes, run.SimpleNodes, run.FitNodes)
	fmt.Fprintf(h.out, ui.ColorCyan+"Пакеты:"+ui.ColorReset+" %d, ошибок %d\n", run.Batches, run.Failed)
	if run.Error != "" {
		fmt.Fprintf(h.out, ui.ColorRed+"Ошибка:"+ui.ColorReset+" %s\n", run.Error)
	}
	fmt.Fprintln(h.out)
}
