package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"spiderAgent/internal/crawler"
	"spiderAgent/internal/database"
	"spiderAgent/internal/llm"
	"spiderAgent/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCrawler struct {
	url, savePath, name, markup string
}

func (f *fakeCrawler) Crawl(_ context.Context, url, savePath string) (*crawler.Outcome, error) {
	f.url, f.savePath = url, savePath
	return &crawler.Outcome{Name: crawler.NameForURL(url), Files: []string{"a.json"}}, nil
}

func (f *fakeCrawler) Digest(_ context.Context, markup, savePath, name string) (*crawler.Outcome, error) {
	f.markup, f.savePath, f.name = markup, savePath, name
	return &crawler.Outcome{Name: name, Files: []string{"b.json"}}, nil
}

type fakeRuns struct{}

func (fakeRuns) GetRunByID(_ context.Context, id uint) (*database.CrawlRun, error) {
	return &database.CrawlRun{ID: id, Name: "page", Status: database.StatusFailed, Error: "boom"}, nil
}

func (fakeRuns) ListRuns(context.Context, int, int) ([]database.CrawlRun, error) {
	return []database.CrawlRun{{ID: 3, URL: "https://example.com", Status: database.StatusCompleted}}, nil
}

func (fakeRuns) GetLogsByRunID(context.Context, uint) ([]database.LlmLog, error) {
	return []database.LlmLog{
		{BatchNo: 1, Model: "gemma3:4b", ResponseText: "merged text"},
		{BatchNo: 2, Model: "gemma3:4b", ResponseText: "ERROR: timeout"},
	}, nil
}

type fakeLLM struct{ got []llm.Message }

func (f *fakeLLM) Ask(_ context.Context, messages []llm.Message, _ *uint, _ int) (string, error) {
	f.got = messages
	return "pong", nil
}

func newTestCLI(deps Deps) (*CLI, *bytes.Buffer) {
	var out bytes.Buffer
	return newCLI(Options{SavePath: "/out"}, deps, logger.Nop(), &out), &out
}

func TestCrawlCommand(t *testing.T) {
	f := &fakeCrawler{}
	c, out := newTestCLI(Deps{Crawler: f})

	assert.True(t, c.handleCommand(context.Background(), "crawl https://example.com/a"))
	assert.Equal(t, "https://example.com/a", f.url)
	assert.Equal(t, "/out", f.savePath)
	assert.Contains(t, out.String(), "example.com_a")

	c.handleCommand(context.Background(), "crawl https://example.com /tmp/x")
	assert.Equal(t, "/tmp/x", f.savePath)
}

func TestDigestCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "article.html")
	require.NoError(t, os.WriteFile(path, []byte("<p>hi</p>"), 0o644))

	f := &fakeCrawler{}
	c, out := newTestCLI(Deps{Crawler: f})

	c.handleCommand(context.Background(), "digest "+path)
	assert.Equal(t, "<p>hi</p>", f.markup)
	assert.Equal(t, "article", f.name)
	assert.Contains(t, out.String(), "b.json")

	out.Reset()
	c.handleCommand(context.Background(), "digest /definitely/missing.html")
	assert.Contains(t, out.String(), "Не удалось прочитать файл")
}

func TestRunsCommands(t *testing.T) {
	c, out := newTestCLI(Deps{Runs: fakeRuns{}})

	c.handleCommand(context.Background(), "runs")
	assert.Contains(t, out.String(), "#3")
	assert.Contains(t, out.String(), "https://example.com")

	out.Reset()
	c.handleCommand(context.Background(), "show 5")
	assert.Contains(t, out.String(), "Запуск #5")
	assert.Contains(t, out.String(), "boom")

	out.Reset()
	c.handleCommand(context.Background(), "show x")
	assert.Contains(t, out.String(), "Неверный ID")

	out.Reset()
	c.handleCommand(context.Background(), "logs 5")
	assert.Contains(t, out.String(), "merged text")
	assert.Contains(t, out.String(), "[ОШИБКА]")
}

func TestCommandsWithoutDatabase(t *testing.T) {
	c, out := newTestCLI(Deps{})
	c.handleCommand(context.Background(), "runs")
	assert.Contains(t, out.String(), "База данных не настроена")
}

func TestTestLLMCommand(t *testing.T) {
	f := &fakeLLM{}
	c, out := newTestCLI(Deps{LLM: f})

	c.handleCommand(context.Background(), "test-llm ping")
	require.Len(t, f.got, 2)
	assert.Equal(t, "ping", f.got[1].Content)
	assert.Contains(t, out.String(), "pong")
}

func TestExitAndHelp(t *testing.T) {
	c, out := newTestCLI(Deps{})

	assert.True(t, c.handleCommand(context.Background(), "unknown"))
	assert.Contains(t, out.String(), "Доступные команды")
	assert.False(t, c.handleCommand(context.Background(), "exit"))
}
