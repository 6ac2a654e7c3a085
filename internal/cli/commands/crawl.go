package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"spiderAgent/internal/cli/ui"
	"spiderAgent/internal/crawler"

	"go.uber.org/zap"
)

// CrawlHandler обрабатывает команды crawl и digest
type CrawlHandler struct {
	crawler  Crawler
	savePath string
	out      io.Writer
	log      *zap.Logger
}

func NewCrawlHandler(c Crawler, savePath string, out io.Writer, log *zap.Logger) *CrawlHandler {
	return &CrawlHandler{crawler: c, savePath: savePath, out: out, log: log}
}

// Crawl: crawl <url> [каталог]
func (h *CrawlHandler) Crawl(ctx context.Context, args string) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		printError(h.out, "Использование: crawl <url> [каталог]")
		return
	}
	savePath := h.savePath
	if len(fields) > 1 {
		savePath = fields[1]
	}

	fmt.Fprintln(h.out, ui.ColorCyan+ui.IconGlobe+" Загрузка "+fields[0]+"..."+ui.ColorReset)
	outcome, err := h.crawler.Crawl(ctx, fields[0], savePath)
	if err != nil {
		h.log.Error("Ошибка загрузки страницы", zap.String("url", fields[0]), zap.Error(err))
		printError(h.out, "Ошибка: %v", err)
		return
	}
	h.printOutcome(outcome)
}

// Digest: digest <файл.html> [каталог]
func (h *CrawlHandler) Digest(ctx context.Context, args string) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		printError(h.out, "Использование: digest <файл.html> [каталог]")
		return
	}
	savePath := h.savePath
	if len(fields) > 1 {
		savePath = fields[1]
	}

	markup, err := os.ReadFile(fields[0])
	if err != nil {
		printError(h.out, "Не удалось прочитать файл: %v", err)
		return
	}
	name := strings.TrimSuffix(filepath.Base(fields[0]), filepath.Ext(fields[0]))

	fmt.Fprintln(h.out, ui.ColorCyan+ui.IconDocument+" Обработка "+fields[0]+"..."+ui.ColorReset)
	outcome, err := h.crawler.Digest(ctx, string(markup), savePath, name)
	if err != nil {
		h.log.Error("Ошибка обработки файла", zap.String("file", fields[0]), zap.Error(err))
		printError(h.out, "Ошибка: %v", err)
		return
	}
	h.printOutcome(outcome)
}

func (h *CrawlHandler) printOutcome(o *crawler.Outcome) {
	fmt.Fprintf(h.out, ui.ColorGreen+ui.IconCheckmark+" Готово: %s"+ui.ColorReset+"\n", o.Name)
	if o.Title != "" {
		fmt.Fprintf(h.out, "  "+ui.ColorCyan+"Заголовок:"+ui.ColorReset+" %s\n", o.Title)
	}
	if o.RunID != nil {
		fmt.Fprintf(h.out, "  "+ui.ColorCyan+"Запуск:"+ui.ColorReset+" #%d\n", *o.RunID)
	}
	r := o.Report
	fmt.Fprintf(h.out, "  "+ui.ColorCyan+"Пакеты:"+ui.ColorReset+" %d (интегрировано %d, без изменений %d, ошибок %d)\n",
		r.Batches, r.Integrated, r.Passthrough, r.Failed)
	if r.Cancelled {
		fmt.Fprintln(h.out, "  "+ui.ColorYellow+"Интеграция прервана"+ui.ColorReset)
	}
	fmt.Fprintf(h.out, "  "+ui.ColorCyan+ui.IconList+" Файлы (%d):"+ui.ColorReset+"\n", len(o.Files))
	for _, f := range o.Files {
		fmt.Fprintln(h.out, "    "+f)
	}
}
