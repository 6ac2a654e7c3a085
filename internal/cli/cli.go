package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"spiderAgent/internal/cli/commands"
	"spiderAgent/internal/cli/ui"
	"spiderAgent/internal/logger"

	"github.com/chzyer/readline"
)

type Options struct {
	SavePath string
	Model    string
}

// Deps: зависимости консоли. Runs и LLM могут быть nil.
type Deps struct {
	Crawler commands.Crawler
	Runs    commands.RunReader
	LLM     commands.Asker
}

type CLI struct {
	opts         Options
	log          *logger.Zap
	out          io.Writer
	rl           *readline.Instance
	stdin        *bufio.Reader
	crawlHandler *commands.CrawlHandler
	runsHandler  *commands.RunsHandler
	logsHandler  *commands.LogsHandler
	llmHandler   *commands.LLMHandler
}

func New(opts Options, deps Deps, log *logger.Zap) *CLI {
	c := newCLI(opts, deps, log, os.Stdout)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     ".spider-agent-history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		log.Warn("Не удалось инициализировать readline, будет использован fallback режим")
	} else {
		c.rl = rl
	}

	return c
}

func newCLI(opts Options, deps Deps, log *logger.Zap, out io.Writer) *CLI {
	return &CLI{
		opts:         opts,
		log:          log,
		out:          out,
		crawlHandler: commands.NewCrawlHandler(deps.Crawler, opts.SavePath, out, log.Logger),
		runsHandler:  commands.NewRunsHandler(deps.Runs, out, log.Logger),
		logsHandler:  commands.NewLogsHandler(deps.Runs, out, log.Logger),
		llmHandler:   commands.NewLLMHandler(deps.LLM, out),
	}
}

func (c *CLI) readLine() (string, error) {
	if c.rl != nil {
		return c.rl.Readline()
	}
	// Fallback для работы без readline
	if c.stdin == nil {
		c.stdin = bufio.NewReader(os.Stdin)
	}
	fmt.Fprint(c.out, ui.ColorCyan+"> "+ui.ColorReset)
	line, err := c.stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *CLI) closeReadline() {
	if c.rl != nil {
		c.rl.Close()
	}
}

func (c *CLI) Run(ctx context.Context) {
	ui.PrintWelcome(c.out, c.opts.Model)
	defer c.closeReadline()

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(c.out, "\n"+ui.ColorCyan+ui.IconWave+" Получен сигнал завершения..."+ui.ColorReset)
			return
		default:
		}

		line, err := c.readLine()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				return
			}
			continue
		} else if err != nil {
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if !c.handleCommand(ctx, line) {
			return
		}
	}
}

// handleCommand возвращает false, когда нужно выйти.
func (c *CLI) handleCommand(ctx context.Context, line string) bool {
	cmd, args, _ := strings.Cut(line, " ")
	args = strings.TrimSpace(args)

	switch cmd {
	case "exit":
		fmt.Fprintln(c.out, ui.ColorCyan+ui.IconWave+" До свидания!"+ui.ColorReset)
		return false

	case "clear":
		ui.ClearScreen()

	case "crawl":
		c.crawlHandler.Crawl(ctx, args)

	case "digest":
		c.crawlHandler.Digest(ctx, args)

	case "runs":
		c.runsHandler.List(ctx)

	case "show":
		c.runsHandler.Show(ctx, args)

	case "logs":
		c.logsHandler.Show(ctx, args)

	case "test-llm":
		c.llmHandler.Test(ctx, args)

	default:
		ui.PrintHelp(c.out)
	}
	return true
}
