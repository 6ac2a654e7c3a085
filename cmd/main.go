package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"spiderAgent/internal/browser"
	"spiderAgent/internal/cli"
	"spiderAgent/internal/config"
	"spiderAgent/internal/crawler"
	"spiderAgent/internal/database"
	"spiderAgent/internal/integrator"
	"spiderAgent/internal/llm"
	"spiderAgent/internal/logger"
	"spiderAgent/internal/migrations"
	"spiderAgent/internal/output"
	"spiderAgent/internal/pipeline"
	"spiderAgent/internal/server"
	"spiderAgent/internal/tokenizer"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Logger.Env, cfg.Logger.Level)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := migrations.Run(cfg, log); err != nil {
		log.Fatal("Ошибка миграций", zap.Error(err))
	}

	// Интерфейсы заполняются только при настроенной БД, иначе остаются nil.
	var (
		repo      *database.RunRepository
		runStore  crawler.RunStore
		llmLogger llm.Logger
	)
	if cfg.Database.Enabled() {
		db, err := database.New(cfg, log)
		if err != nil {
			log.Fatal("Ошибка подключения к БД", zap.Error(err))
		}
		defer db.Close(log)

		repo = database.NewRunRepository(db.DB)
		runStore = repo
		llmLogger = repo
	}

	tok, err := tokenizer.New(cfg.Tokenizer.Encoding)
	if err != nil {
		log.Fatal("Ошибка инициализации токенизатора", zap.Error(err))
	}

	llmClient := llm.NewClient(llm.Config{
		APIKey:            cfg.LLM.APIKey,
		Model:             cfg.LLM.Model,
		BaseURL:           cfg.LLM.BaseURL,
		Timeout:           cfg.LLM.Timeout,
		MaxInputTokens:    cfg.Tokenizer.MaxInputTokens,
		RequestsPerMinute: cfg.LLM.RequestsPerMinute,
		TokensPerHour:     cfg.LLM.TokensPerHour,
	}, tok, llmLogger, log.Logger)

	var completer integrator.Completer
	if cfg.Digest.Integrate {
		completer = llmClient
	}

	proc := pipeline.New(pipeline.Config{
		Encoding:       cfg.Tokenizer.Encoding,
		MaxInputTokens: cfg.Tokenizer.MaxInputTokens,
		MinTokens:      cfg.Digest.MinTokens,
		Integrate:      cfg.Digest.Integrate,
	}, completer, log.Logger)

	fetcher, err := browser.New(browser.Config{
		Engine:          cfg.Browser.Engine,
		Headless:        cfg.Browser.Headless,
		Display:         cfg.Browser.Display,
		NavigateTimeout: cfg.Browser.NavigateTimeout,
	}, log.Logger)
	if err != nil {
		log.Fatal("Ошибка настройки браузера", zap.Error(err))
	}
	defer func() {
		if err := fetcher.Close(); err != nil {
			log.Warn("Ошибка закрытия браузера", zap.Error(err))
		}
	}()

	store := output.NewStore(func(path string) {
		log.Info("Сохранен файл", zap.String("path", path))
	}, log.Logger)

	svc := crawler.NewService(fetcher, proc, store, runStore, log.Logger)

	if cfg.App.Mode == "server" {
		var runs server.RunReader
		if repo != nil {
			runs = repo
		}
		srv := server.New(server.Options{
			Host:     cfg.App.Host,
			Port:     cfg.App.Port,
			SavePath: cfg.Digest.SavePath,
		}, svc, runs, log)
		if err := srv.Run(ctx); err != nil {
			log.Error("Ошибка сервера", zap.Error(err))
		}
		return
	}

	deps := cli.Deps{Crawler: svc, LLM: llmClient}
	if repo != nil {
		deps.Runs = repo
	}
	console := cli.New(cli.Options{SavePath: cfg.Digest.SavePath, Model: cfg.LLM.Model}, deps, log)
	console.Run(ctx)
}
