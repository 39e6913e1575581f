// Package api provides the HTTP server for stockdash.
//
// It serves the server-rendered dashboard, a JSON API over the same
// query/analyze/state lifecycle, and a WebSocket channel that pushes every
// state transition to open pages.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/stockdash/internal/config"
	"github.com/seenimoa/stockdash/internal/view"
	"github.com/seenimoa/stockdash/web"
)

// WSPath is where the state push channel is mounted.
const WSPath = "/api/v1/ws"

// Server is the HTTP server.
type Server struct {
	router chi.Router
	cfg    *config.Config
	ctrl   *view.Controller
	wsHub  *WSHub
	logger *slog.Logger

	// ctx bounds analysis requests started over HTTP. Requests outlive the
	// handler that started them, so they cannot use r.Context().
	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a server for ctrl with all routes and middleware. State
// transitions of ctrl's machine are pushed to WebSocket clients.
func NewServer(cfg *config.Config, ctrl *view.Controller, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		cfg:    cfg,
		ctrl:   ctrl,
		wsHub:  NewWSHub(func() WSMessage { return stateMessage(ctrl.Machine().Current()) }),
		logger: logger.With("component", "api"),
		ctx:    ctx,
		cancel: cancel,
	}
	ctrl.Machine().Subscribe(func(st view.State) {
		s.wsHub.Broadcast(stateMessage(st))
	})

	s.router = s.buildRouter()
	return s
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *WSHub {
	return s.wsHub
}

// ListenAndServe serves on addr until ctx is cancelled or the process
// receives SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.wsHub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		s.logger.Info("listening", "addr", addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		s.Close()
		return httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Close cancels in-flight analysis requests and waits for them to resolve.
func (s *Server) Close() {
	s.cancel()
	s.ctrl.Close()
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Dashboard
	r.Get("/", s.handleDashboard)
	r.Post("/analyze", s.handleDashboardAnalyze)
	r.Handle("/static/*", http.StripPrefix("/static/", staticHandler()))

	// Health check
	r.Get("/health", s.handleHealth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Query
		r.Get("/query", s.handleGetQuery)
		r.Put("/query", s.handlePutQuery)

		// Analysis lifecycle
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/state", s.handleState)
		r.Get("/report", s.handleReport)
		r.Get("/report/news.rss", s.handleNewsFeed)

		// Configuration
		r.Get("/config", s.handleGetConfig)
		r.Get("/config/keys", s.handleGetConfigKeys)

		// WebSocket
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

func staticHandler() http.Handler {
	fileServer := http.FileServer(http.FS(web.StaticFS()))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		fileServer.ServeHTTP(w, r)
	})
}

// ============================================================
// Response helpers
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
