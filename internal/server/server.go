// Package server exposes the generation service as a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/TobiSchelling/repurposer/internal/backend"
	"github.com/TobiSchelling/repurposer/internal/content"
)

// Service is the backend surface served over HTTP.
type Service interface {
	FetchURL(ctx context.Context, url string) (*content.Fetched, error)
	RepurposeContent(ctx context.Context, req content.Request) (*content.Response, error)
	GetHistory(ctx context.Context, page, pageSize int) (*content.HistoryPage, error)
	GetHistoryDetail(ctx context.Context, id string) (*content.HistoryDetail, error)
	DeleteHistoryItem(ctx context.Context, id string) error
	ExportHistoryItem(ctx context.Context, id string) (string, error)
	GetBrandVoices(ctx context.Context) ([]content.VoiceProfile, error)
	AnalyzeBrandVoice(ctx context.Context, req content.AnalyzeVoiceRequest) (*content.VoiceProfile, error)
	DeleteBrandVoice(ctx context.Context, id string) error
	SetDefaultVoice(ctx context.Context, id string) error
	GetUsage(ctx context.Context) (*content.UsageInfo, error)
	GetAPIKey() (string, error)
	SetAPIKey(key string) error
}

// Server is the HTTP server for the generation API.
type Server struct {
	svc    Service
	logger *zap.Logger
	router chi.Router
}

// New creates a new Server. A nil logger disables request logging.
func New(svc Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{svc: svc, logger: logger, router: chi.NewRouter()}
	s.routes()
	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/fetch", s.handleFetch)
		r.Post("/repurpose", s.handleRepurpose)

		r.Route("/history", func(r chi.Router) {
			r.Get("/", s.handleHistory)
			r.Get("/{id}", s.handleHistoryDetail)
			r.Delete("/{id}", s.handleHistoryDelete)
			r.Post("/{id}/export", s.handleHistoryExport)
		})

		r.Route("/voices", func(r chi.Router) {
			r.Get("/", s.handleVoices)
			r.Post("/", s.handleVoiceCreate)
			r.Delete("/{id}", s.handleVoiceDelete)
			r.Put("/{id}/default", s.handleVoiceDefault)
		})

		r.Get("/usage", s.handleUsage)
		r.Get("/settings/api-key", s.handleGetAPIKey)
		r.Put("/settings/api-key", s.handleSetAPIKey)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
		)
	})
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URL string `json:"url"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	f, err := s.svc.FetchURL(r.Context(), body.URL)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleRepurpose(w http.ResponseWriter, r *http.Request) {
	var req content.Request
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.svc.RepurposeContent(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	page, size := 1, 0
	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, content.Invalid("page must be a number"))
			return
		}
		page = n
	}
	if v := r.URL.Query().Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, content.Invalid("page_size must be a number"))
			return
		}
		size = n
	}
	hp, err := s.svc.GetHistory(r.Context(), page, size)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hp)
}

func (s *Server) handleHistoryDetail(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.GetHistoryDetail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleHistoryDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteHistoryItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistoryExport(w http.ResponseWriter, r *http.Request) {
	path, err := s.svc.ExportHistoryItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": path})
}

func (s *Server) handleVoices(w http.ResponseWriter, r *http.Request) {
	voices, err := s.svc.GetBrandVoices(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, voices)
}

func (s *Server) handleVoiceCreate(w http.ResponseWriter, r *http.Request) {
	var req content.AnalyzeVoiceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	v, err := s.svc.AnalyzeBrandVoice(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) handleVoiceDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteBrandVoice(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleVoiceDefault(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.SetDefaultVoice(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	u, err := s.svc.GetUsage(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

type apiKeyBody struct {
	APIKey string `json:"api_key"`
}

func (s *Server) handleGetAPIKey(w http.ResponseWriter, _ *http.Request) {
	key, err := s.svc.GetAPIKey()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apiKeyBody{APIKey: key})
}

func (s *Server) handleSetAPIKey(w http.ResponseWriter, r *http.Request) {
	var body apiKeyBody
	if !decodeBody(w, r, &body) {
		return
	}
	if err := s.svc.SetAPIKey(body.APIKey); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var verr *content.ValidationError
	var lerr *backend.UsageLimitError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, backend.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &lerr):
		return http.StatusTooManyRequests
	case errors.Is(err, backend.ErrAPIKeyMissing):
		return http.StatusPreconditionFailed
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
