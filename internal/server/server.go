// Package server exposes the registered language plugins to a host over a
// small JSON API.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/me/smkplugin/internal/config"
	"github.com/me/smkplugin/internal/language"
	"github.com/me/smkplugin/pkg/model"
)

// Server is the plugin's HTTP adapter.
type Server struct {
	router    chi.Router
	logger    *slog.Logger
	config    config.ServerConfig
	startTime time.Time
	registry  *language.Registry
	reader    language.FileReader
}

// New creates a new Server with all routes registered. reader fetches root
// descriptors when a request carries no contents, and backs indexing.
func New(cfg config.ServerConfig, reg *language.Registry, reader language.FileReader, logger *slog.Logger) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger.With("component", "server"),
		config:    cfg,
		startTime: time.Now(),
		registry:  reg,
		reader:    reader,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.config.Addr
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	r.Use(middleware.RealIP)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))
	r.Use(recoverMiddleware(s.logger))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", s.handleDiscovery)
		r.Get("/health", s.handleHealth)
		r.Get("/languages", s.handleLanguages)

		r.Post("/match", s.handleMatch)
		r.Post("/index", s.handleIndex)
		r.Post("/metadata", s.handleMetadata)
		r.Post("/validate", s.handleValidate)
		r.Post("/tools", s.handleTools)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, RequestIDFromContext(r.Context()), http.StatusNotFound, model.NewNotFoundError("Route", r.URL.Path))
	})
}
