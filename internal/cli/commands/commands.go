// Package commands содержит обработчики команд консоли.
package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"spiderAgent/internal/cli/ui"
	"spiderAgent/internal/crawler"
	"spiderAgent/internal/database"
	"spiderAgent/internal/llm"
)

type Crawler interface {
	Crawl(ctx context.Context, url, savePath string) (*crawler.Outcome, error)
	Digest(ctx context.Context, markup, savePath, name string) (*crawler.Outcome, error)
}

type RunReader interface {
	GetRunByID(ctx context.Context, id uint) (*database.CrawlRun, error)
	ListRuns(ctx context.Context, limit, offset int) ([]database.CrawlRun, error)
	GetLogsByRunID(ctx context.Context, runID uint) ([]database.LlmLog, error)
}

type Asker interface {
	Ask(ctx context.Context, messages []llm.Message, runID *uint, batchNo int) (string, error)
}

func printError(out io.Writer, format string, args ...any) {
	fmt.Fprintf(out, ui.ColorRed+ui.IconCross+" "+format+ui.ColorReset+"\n", args...)
}

func parseID(out io.Writer, idStr string) (uint, bool) {
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		printError(out, "Неверный ID запуска")
		return 0, false
	}
	return uint(id), true
}
