// Package server is the HTTP front end: session API, event websocket, MJPEG
// preview, metrics and the static UI.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/ayusman/holoscan/internal/logging"
	"github.com/ayusman/holoscan/internal/metrics"
	"github.com/ayusman/holoscan/internal/server/api"
	"github.com/ayusman/holoscan/internal/store"
)

const shutdownTimeout = 10 * time.Second

// Config holds the server's collaborators. Nil fields disable their routes.
type Config struct {
	StaticDir string
	Session   api.Controller
	Store     *store.Store
	Hub       *Hub
	Feed      *FrameFeed
	Metrics   *metrics.Metrics
	RevealURL func() string
}

// Server routes HTTP requests.
type Server struct {
	config Config
	router chi.Router
	start  time.Time
}

// New creates a Server and its routes.
func New(config Config) *Server {
	s := &Server{
		config: config,
		router: chi.NewRouter(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router
	r.Use(logging.RequestLogger())
	if s.config.Metrics != nil {
		r.Use(metrics.RequestMiddleware(s.config.Metrics))
		r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
			s.config.Metrics.Handler(s.refreshGauges).ServeHTTP(w, req)
		})
	}

	r.Get("/api/health", s.handleHealth)

	if s.config.Session != nil {
		h := api.NewSessionHandler(s.config.Session, s.config.RevealURL)
		r.Route("/api/session", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Post("/reset", h.Reset)
			r.Post("/reveal/primed", h.Primed)
			r.Post("/reveal/play", h.Play)
		})
	}

	if s.config.Store != nil {
		history := api.NewHistoryHandler(s.config.Store)
		r.Route("/api/sessions", func(r chi.Router) {
			r.Get("/", history.List)
			r.Get("/{id}", history.Get)
			r.Delete("/{id}", history.Delete)
		})

		settings := api.NewSettingsHandler(s.config.Store)
		r.Get("/api/settings", settings.List)
		r.Put("/api/settings/{key}", settings.Put)
	}

	if s.config.Hub != nil {
		r.Get("/api/events", s.config.Hub.ServeHTTP)
	}
	if s.config.Feed != nil {
		r.Get("/api/stream", NewStreamHandler(s.config.Feed).ServeHTTP)
	}

	if s.config.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

func (s *Server) refreshGauges() {
	if s.config.Session != nil {
		s.config.Metrics.SetSnapshot(s.config.Session.Snapshot())
	}
	if s.config.Hub != nil {
		s.config.Metrics.SetClients(s.config.Hub.Clients())
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Session != nil {
		resp["phase"] = s.config.Session.Snapshot().Phase.String()
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. Request contexts derive from ctx so long-lived streams end too.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:        addr,
		Handler:     s,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	if s.config.Hub != nil {
		s.config.Hub.Close()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
