// Package server provides the HTTP REST API for candidate discovery.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/jonathan/talent-scout/internal/db"
	"github.com/jonathan/talent-scout/internal/server/ratelimit"
	"github.com/jonathan/talent-scout/internal/tasks"
	"github.com/jonathan/talent-scout/internal/types"
)

// maxConcurrentDiscoveries bounds how many background discovery runs (each
// owning a Chrome process) may run at once.
const maxConcurrentDiscoveries = 2

// backgroundRunTimeout caps a single background discovery run.
const backgroundRunTimeout = 30 * time.Minute

// DiscoveryRunner executes a discovery run. Implemented by the discovery
// orchestrator.
type DiscoveryRunner interface {
	Run(ctx context.Context, query string) (*types.DiscoveryState, error)
	RunWithParams(ctx context.Context, params *types.SearchParameters) (*types.DiscoveryState, error)
}

// CandidateStore is the persistence surface the handlers need.
type CandidateStore interface {
	CreateCandidate(ctx context.Context, c *db.Candidate) (*db.Candidate, error)
	GetCandidate(ctx context.Context, id uuid.UUID) (*db.Candidate, error)
	UpdateCandidate(ctx context.Context, id uuid.UUID, update db.CandidateUpdate) (*db.Candidate, error)
	DeleteCandidate(ctx context.Context, id uuid.UUID) (bool, error)
	ListCandidates(ctx context.Context, filters db.CandidateFilters) ([]db.Candidate, error)
	SaveCandidates(ctx context.Context, profiles []types.CandidateProfile) (int, []error)
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	store       CandidateStore
	taskStore   *tasks.Store
	runner      DiscoveryRunner
	rateLimiter *ratelimit.Limiter
	sem         *semaphore.Weighted
}

// Config holds server configuration
type Config struct {
	Port int
}

// New creates a new server instance over its dependencies.
func New(cfg Config, store CandidateStore, taskStore *tasks.Store, runner DiscoveryRunner) *Server {
	s := &Server{
		store:     store,
		taskStore: taskStore,
		runner:    runner,
		sem:       semaphore.NewWeighted(maxConcurrentDiscoveries),
	}

	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // synchronous searches drive a browser
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/discovery/search", s.handleDiscoverySearch)
	mux.HandleFunc("GET /api/v1/discovery/status/{task_id}", s.handleDiscoveryStatus)

	mux.HandleFunc("GET /api/v1/candidates", s.handleListCandidates)
	mux.HandleFunc("POST /api/v1/candidates", s.handleCreateCandidate)
	mux.HandleFunc("GET /api/v1/candidates/{id}", s.handleGetCandidate)
	mux.HandleFunc("PUT /api/v1/candidates/{id}", s.handleUpdateCandidate)
	mux.HandleFunc("DELETE /api/v1/candidates/{id}", s.handleDeleteCandidate)

	mux.HandleFunc("GET /health", s.handleHealth)

	return mux
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds per-client rate limiting
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)

		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID identifies the client by IP address.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":    "rate_limit_exceeded",
		"message":  "Rate limit exceeded. Please try again later.",
		"limit":    info.Limit,
		"reset_at": info.ResetTime.Format(time.RFC3339),
	}
	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d", info.Limit, info.Remaining)
	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
