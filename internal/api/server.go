// Package api exposes the operator HTTP interface for the crawler service.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/freeman-jiang/resonant/internal/link"
	"github.com/freeman-jiang/resonant/internal/metrics"
	"github.com/freeman-jiang/resonant/internal/store"
)

// StatusReporter exposes queue progress.
type StatusReporter interface {
	StatusCounts(ctx context.Context) (map[store.TaskStatus]int64, error)
}

// PageReader looks up stored pages.
type PageReader interface {
	PageByURL(ctx context.Context, url string) (*store.Page, error)
}

// Enqueuer pushes operator-submitted root links onto the queue.
type Enqueuer interface {
	EnqueueBoosted(ctx context.Context, links []link.Link, boost int) (int64, error)
}

// Server wires HTTP handlers to the task queue and page corpus.
type Server struct {
	router chi.Router
	tasks  StatusReporter
	pages  PageReader
	queue  Enqueuer
	logger *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(tasks StatusReporter, pages PageReader, queue Enqueuer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		tasks:  tasks,
		pages:  pages,
		queue:  queue,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(timeoutMiddleware(60 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", s.getStatus)
		r.Get("/pages", s.getPage)
		r.Post("/seeds", s.postSeeds)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	// Readiness is the database answering a trivial query.
	if _, err := s.tasks.StatusCounts(r.Context()); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	counts, err := s.tasks.StatusCounts(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to count tasks")
		return
	}
	payload := make(map[string]int64, len(counts))
	for status, n := range counts {
		payload[string(status)] = n
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"tasks": payload})
}

func (s *Server) getPage(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		s.writeError(w, http.StatusBadRequest, "url query parameter required")
		return
	}
	page, err := s.pages.PageByURL(r.Context(), url)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to look up page")
		return
	}
	if page == nil {
		s.writeError(w, http.StatusNotFound, "page not found")
		return
	}
	s.writeJSON(w, http.StatusOK, pageResponse{
		ID:        page.ID,
		URL:       page.URL,
		Title:     page.Title,
		Author:    page.Author,
		Date:      page.Date,
		Depth:     page.Depth,
		PageRank:  page.PageRank,
		Outbound:  len(page.OutboundURLs),
		CreatedAt: page.CreatedAt,
	})
}

func (s *Server) postSeeds(w http.ResponseWriter, r *http.Request) {
	var req seedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.URLs) == 0 {
		s.writeError(w, http.StatusBadRequest, "at least one URL required")
		return
	}

	links := make([]link.Link, 0, len(req.URLs))
	for _, raw := range req.URLs {
		l, err := link.FromURL(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid url: "+raw)
			return
		}
		links = append(links, l)
	}

	inserted, err := s.queue.EnqueueBoosted(r.Context(), links, req.Boost)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to enqueue seeds")
		return
	}
	metrics.ObserveTasksEnqueued(inserted)
	s.writeJSON(w, http.StatusAccepted, map[string]int64{"enqueued": inserted})
}

type seedRequest struct {
	URLs  []string `json:"urls"`
	Boost int      `json:"boost"`
}

type pageResponse struct {
	ID        int64     `json:"id"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Author    string    `json:"author,omitempty"`
	Date      string    `json:"date,omitempty"`
	Depth     int       `json:"depth"`
	PageRank  float64   `json:"page_rank"`
	Outbound  int       `json:"outbound_links"`
	CreatedAt time.Time `json:"created_at"`
}

type requestIDKey struct{}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("error", rec))
				s.writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
