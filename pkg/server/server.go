// Package server exposes the gateway over HTTP: answering requests, a
// backend health probe, and cache/budget introspection.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jeeves-ai/jeeves/pkg/budget"
	cachepkg "github.com/jeeves-ai/jeeves/pkg/cache/sqlite"
	"github.com/jeeves-ai/jeeves/pkg/config"
	"github.com/jeeves-ai/jeeves/pkg/gateway"
	"github.com/jeeves-ai/jeeves/pkg/models"
)

// Answerer is the gateway surface the server depends on.
type Answerer interface {
	Answer(ctx context.Context, req models.Request) (models.Answer, error)
	IsBackendReachable(ctx context.Context) bool
}

// Server is the Jeeves HTTP front end.
type Server struct {
	cfg      *config.Config
	gw       Answerer
	cache    *cachepkg.Cache
	enforcer *budget.Enforcer
	mux      *http.ServeMux
}

// New creates a Server. cache and enforcer may be nil when disabled.
func New(cfg *config.Config, gw Answerer, cache *cachepkg.Cache, enforcer *budget.Enforcer) *Server {
	s := &Server{
		cfg:      cfg,
		gw:       gw,
		cache:    cache,
		enforcer: enforcer,
		mux:      http.NewServeMux(),
	}
	s.mux.HandleFunc("/v1/answer", s.handleAnswer)
	s.mux.HandleFunc("/v1/health", s.handleHealth)
	s.mux.HandleFunc("/v1/cache/stats", s.handleCacheStats)
	s.mux.HandleFunc("/v1/budget", s.handleBudget)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts the server with graceful shutdown support.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Listen,
		Handler: s,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("jeeves gateway listening on %s", s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req models.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ans, err := s.gw.Answer(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, gateway.ErrInvalidRequest):
			writeJSONError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, gateway.ErrBackendUnavailable):
			writeJSONError(w, http.StatusBadGateway, err.Error())
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			// Client went away; nothing useful to write.
			log.Printf("answer abandoned: %v", err)
		default:
			log.Printf("answer error: %v", err)
			writeJSONError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Jeeves-Source", string(ans.Source))
	if err := json.NewEncoder(w).Encode(ans); err != nil {
		log.Printf("encode answer: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	reachable := s.gw.IsBackendReachable(r.Context())
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"reachable": reachable})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.cache == nil {
		writeJSONError(w, http.StatusNotFound, "cache disabled")
		return
	}
	stats, err := s.cache.Stats()
	if err != nil {
		log.Printf("cache stats error: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stats)
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.enforcer == nil {
		writeJSONError(w, http.StatusNotFound, "budget disabled")
		return
	}
	status, err := s.enforcer.Status(r.Context())
	if err != nil {
		log.Printf("budget status error: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(status)
}

func writeJSONError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"error":{"message":%q,"type":"jeeves_error","code":%d}}`, message, code)
}
