// Package crawler связывает загрузку страницы, конвейер обработки, запись
// артефактов и учет запусков в БД.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"spiderAgent/internal/browser"
	"spiderAgent/internal/database"
	"spiderAgent/internal/integrator"
	"spiderAgent/internal/output"
	"spiderAgent/internal/pipeline"

	"go.uber.org/zap"
)

// RunStore учитывает запуски (реализуется репозиторием БД).
type RunStore interface {
	CreateRun(ctx context.Context, run *database.CrawlRun) error
	FinishRun(ctx context.Context, id uint, stats database.RunStats, runErr error) error
}

type Processor interface {
	Process(ctx context.Context, markup string, runID *uint) (*pipeline.Result, error)
}

// Outcome: итог одного запуска.
type Outcome struct {
	RunID  *uint             `json:"run_id,omitempty"`
	Name   string            `json:"name"`
	Title  string            `json:"title,omitempty"`
	Files  []string          `json:"files"`
	Report integrator.Report `json:"report"`
}

type Service struct {
	fetcher   browser.Fetcher
	processor Processor
	store     *output.Store
	runs      RunStore
	log       *zap.Logger
}

// NewService собирает сервис. fetcher и runs могут быть nil: без fetcher
// доступна только обработка готового HTML, без runs запуски не учитываются.
func NewService(fetcher browser.Fetcher, processor Processor, store *output.Store, runs RunStore, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		fetcher:   fetcher,
		processor: processor,
		store:     store,
		runs:      runs,
		log:       log.With(zap.String("component", "crawler")),
	}
}

// Crawl загружает страницу, сохраняет сырые артефакты и результат обработки.
func (s *Service) Crawl(ctx context.Context, rawURL, savePath string) (*Outcome, error) {
	if rawURL == "" {
		return nil, errors.New("не указан URL")
	}
	if savePath == "" {
		return nil, errors.New("не указан каталог для сохранения")
	}
	if err := CheckURL(rawURL); err != nil {
		return nil, err
	}
	if s.fetcher == nil {
		return nil, errors.New("браузер не настроен")
	}

	name := NameForURL(rawURL)
	runID := s.startRun(ctx, rawURL, name, savePath)

	outcome, stats, err := s.crawl(ctx, rawURL, savePath, name, runID)
	s.finishRun(ctx, runID, stats, err)
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

func (s *Service) crawl(ctx context.Context, rawURL, savePath, name string, runID *uint) (*Outcome, database.RunStats, error) {
	s.log.Info("Загрузка страницы", zap.String("url", rawURL))

	page, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, database.RunStats{}, err
	}

	raw, err := s.store.SaveRaw(savePath, name, page.HTML, page.Screenshot, page.PDF)
	if err != nil {
		return nil, database.RunStats{}, err
	}

	outcome, stats, err := s.digest(ctx, page.HTML, savePath, name, runID)
	if err != nil {
		return nil, stats, err
	}
	outcome.Title = page.Title
	outcome.Files = append(raw, outcome.Files...)
	return outcome, stats, nil
}

// Digest обрабатывает готовую разметку без браузера.
func (s *Service) Digest(ctx context.Context, markup, savePath, name string) (*Outcome, error) {
	if savePath == "" {
		return nil, errors.New("не указан каталог для сохранения")
	}
	// Имя идет в путь файла, поэтому чистится так же, как имя из URL.
	name = cleanName(name)
	if name == "" {
		name = "output"
	}

	runID := s.startRun(ctx, "", name, savePath)
	outcome, stats, err := s.digest(ctx, markup, savePath, name, runID)
	s.finishRun(ctx, runID, stats, err)
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

func (s *Service) digest(ctx context.Context, markup, savePath, name string, runID *uint) (*Outcome, database.RunStats, error) {
	res, err := s.processor.Process(ctx, markup, runID)
	if err != nil {
		return nil, database.RunStats{}, fmt.Errorf("обработка документа: %w", err)
	}

	stats := database.RunStats{
		TreeNodes:   res.Tree.Size(),
		SimpleNodes: len(res.Simplified),
		FitNodes:    len(res.Integrated),
		Batches:     res.Report.Batches,
		Failed:      res.Report.Failed,
	}

	files, err := s.store.SavePage(savePath, name, markup)
	if err != nil {
		return nil, stats, err
	}
	saved, err := s.store.SaveDigest(savePath, name, res)
	files = append(files, saved...)
	if err != nil {
		return nil, stats, err
	}

	s.log.Info("Артефакты сохранены",
		zap.String("name", name),
		zap.Int("files", len(files)),
		zap.Int("batches", stats.Batches),
		zap.Int("failed", stats.Failed),
	)

	return &Outcome{RunID: runID, Name: name, Files: files, Report: res.Report}, stats, nil
}

// Ошибки учета запусков не прерывают обработку.
func (s *Service) startRun(ctx context.Context, rawURL, name, savePath string) *uint {
	if s.runs == nil {
		return nil
	}

	run := &database.CrawlRun{URL: rawURL, Name: name, SavePath: savePath}
	if err := s.runs.CreateRun(ctx, run); err != nil {
		s.log.Warn("Не удалось создать запись запуска", zap.Error(err))
		return nil
	}
	return &run.ID
}

func (s *Service) finishRun(ctx context.Context, runID *uint, stats database.RunStats, runErr error) {
	if s.runs == nil || runID == nil {
		return
	}
	// Запуск завершается даже после отмены исходного контекста.
	if err := s.runs.FinishRun(context.WithoutCancel(ctx), *runID, stats, runErr); err != nil {
		s.log.Warn("Не удалось завершить запись запуска", zap.Uint("run_id", *runID), zap.Error(err))
	}
}

var unsafeName = regexp.MustCompile(`[^a-z0-9._-]+`)

const maxNameLen = 100

// NameForURL строит безопасное имя файла из хоста и пути адреса.
func NameForURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	source := rawURL
	if err == nil && u.Host != "" {
		source = u.Host + u.Path
	}

	if name := cleanName(source); name != "" {
		return name
	}
	return "page"
}

// cleanName оставляет только [a-z0-9._-] без разделителей по краям.
// Результат не содержит "/" и не может начинаться с "..".
func cleanName(s string) string {
	name := unsafeName.ReplaceAllString(strings.ToLower(s), "_")
	name = strings.Trim(name, "_.-")
	if len(name) > maxNameLen {
		name = strings.TrimRight(name[:maxNameLen], "_.-")
	}
	return name
}
