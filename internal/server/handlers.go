package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxBodyBytes = 32 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDigest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HTML     string `json:"html"`
		Name     string `json:"name"`
		SavePath string `json:"save_path"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.HTML == "" {
		jsonError(w, "поле html обязательно", http.StatusBadRequest)
		return
	}

	out, err := s.crawler.Digest(r.Context(), req.HTML, s.savePath(req.SavePath), req.Name)
	if err != nil {
		s.log.Error("Ошибка обработки html", zap.Error(err))
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCrawl(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL      string `json:"url"`
		SavePath string `json:"save_path"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.URL == "" {
		jsonError(w, "поле url обязательно", http.StatusBadRequest)
		return
	}

	out, err := s.crawler.Crawl(r.Context(), req.URL, s.savePath(req.SavePath))
	if err != nil {
		s.log.Error("Ошибка загрузки страницы", zap.String("url", req.URL), zap.Error(err))
		jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if !s.requireRuns(w) {
		return
	}

	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	runs, err := s.runs.ListRuns(r.Context(), limit, offset)
	if err != nil {
		s.log.Error("db list runs", zap.Error(err))
		jsonError(w, "db error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if !s.requireRuns(w) {
		return
	}
	id, ok := runID(w, r)
	if !ok {
		return
	}

	run, err := s.runs.GetRunByID(r.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		jsonError(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("db get run", zap.Error(err))
		jsonError(w, "db error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleRunLogs(w http.ResponseWriter, r *http.Request) {
	if !s.requireRuns(w) {
		return
	}
	id, ok := runID(w, r)
	if !ok {
		return
	}

	logs, err := s.runs.GetLogsByRunID(r.Context(), id)
	if err != nil {
		s.log.Error("db get logs", zap.Error(err))
		jsonError(w, "db error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) requireRuns(w http.ResponseWriter) bool {
	if s.runs == nil {
		jsonError(w, "база данных не настроена", http.StatusServiceUnavailable)
		return false
	}
	return true
}

func (s *Server) savePath(requested string) string {
	if requested != "" {
		return requested
	}
	return s.opts.SavePath
}

func runID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id64, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		jsonError(w, "bad id", http.StatusBadRequest)
		return 0, false
	}
	return uint(id64), true
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 0 {
		return def
	}
	return v
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.New("некорректный json: " + err.Error())
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
