// Package server provides the HTTP server for the formcoach rep tracker.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/ayusman/formcoach/internal/metrics"
	"github.com/ayusman/formcoach/internal/server/api"
	"github.com/ayusman/formcoach/internal/session"
	"github.com/ayusman/formcoach/internal/store"
)

// shutdownTimeout bounds how long in-flight requests may take once the
// server is asked to stop. Open streams are cut off after it.
const shutdownTimeout = 5 * time.Second

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Sessions  *session.Manager
	Registry  *prometheus.Registry
	Metrics   *metrics.Manager
}

// Server represents the HTTP server for the formcoach application.
type Server struct {
	config   Config
	router   chi.Router
	start    time.Time
	sessions *api.SessionHandler
	frames   *frameHub
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		router: chi.NewRouter(),
		start:  time.Now(),
		frames: newFrameHub(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.config.Metrics))

	s.router.Get("/api/health", s.handleHealth)

	if s.config.Store != nil {
		exercises := api.NewExerciseHandler(s.config.Store)
		s.router.Get("/api/exercises", exercises.List)
		s.router.Get("/api/exercises/{type}", exercises.Get)
		s.router.Put("/api/exercises/{type}", exercises.Update)
	}

	if s.config.Sessions != nil {
		cfg := api.SessionConfig{
			Manager:  s.config.Sessions,
			OnCreate: s.frames.attach,
		}
		if s.config.Store != nil {
			cfg.Settings = s.config.Store.Settings()
		}
		s.sessions = api.NewSessionHandler(cfg)

		s.router.Route("/api/sessions", func(r chi.Router) {
			r.Post("/", s.sessions.Create)
			r.Get("/", s.sessions.List)
			r.Get("/{id}", s.sessions.Get)
			r.Delete("/{id}", s.sessions.Delete)
			r.Post("/{id}/reset", s.sessions.Reset)
			r.Get("/{id}/stream", s.handleStream)
			r.Get("/{id}/ws", s.handleResults)
		})
	}

	if s.config.Registry != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.config.Registry, promhttp.HandlerOpts{
			Registry: s.config.Registry,
		}))
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		s.router.Handle("/*", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// Attach makes a session started outside the API available on the stream
// endpoint. Sessions created through the API are attached automatically.
func (s *Server) Attach(sess *session.Session) {
	s.frames.attach(sess)
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}
	if s.config.Sessions != nil {
		response["sessions"] = len(s.config.Sessions.List())
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warnf("http shutdown: %v", err)
			srv.Close()
		}
	}()

	log.Infof("listening on http://%s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
