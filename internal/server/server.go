// Package server отдает обработку страниц и историю запусков по HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"spiderAgent/internal/crawler"
	"spiderAgent/internal/database"
	"spiderAgent/internal/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Crawler interface {
	Crawl(ctx context.Context, url, savePath string) (*crawler.Outcome, error)
	Digest(ctx context.Context, markup, savePath, name string) (*crawler.Outcome, error)
}

// RunReader читает историю запусков (реализуется репозиторием БД).
type RunReader interface {
	GetRunByID(ctx context.Context, id uint) (*database.CrawlRun, error)
	ListRuns(ctx context.Context, limit, offset int) ([]database.CrawlRun, error)
	GetLogsByRunID(ctx context.Context, runID uint) ([]database.LlmLog, error)
}

type Options struct {
	Host     string
	Port     string
	SavePath string
}

type Server struct {
	router  chi.Router
	crawler Crawler
	runs    RunReader
	opts    Options
	log     *logger.Zap
}

// New собирает роутер. runs может быть nil, тогда эндпоинты истории
// отвечают 503.
func New(opts Options, c Crawler, runs RunReader, log *logger.Zap) *Server {
	s := &Server{
		crawler: c,
		runs:    runs,
		opts:    opts,
		log:     log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/digest", s.handleDigest)
		r.Post("/crawl", s.handleCrawl)

		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
		r.Get("/runs/{id}/logs", s.handleRunLogs)
	})

	s.router = r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("HTTP",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(started)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// Run слушает адрес до отмены ctx, затем мягко останавливается.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%s", s.opts.Host, s.opts.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Сервер запущен", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info("Остановка сервера")
		return srv.Shutdown(shutdownCtx)
	}
}
