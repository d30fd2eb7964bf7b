// Package server provides the HTTP API and search page for picsearch.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/picsearch/internal/config"
	"github.com/hyperjump/picsearch/internal/photos"
	"github.com/hyperjump/picsearch/internal/search"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Server is the HTTP server for the picsearch API.
type Server struct {
	handler *search.Handler
	photos  *photos.Library
	config  *config.Config
	limiter *rate.Limiter
	logger  *zap.Logger
	server  *http.Server
}

// NewServer creates a server with the given dependencies. A positive
// cfg.Server.RateLimit enables token-bucket limiting of search requests.
func NewServer(
	handler *search.Handler,
	lib *photos.Library,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		handler: handler,
		photos:  lib,
		config:  cfg,
		logger:  logger,
	}
	if cfg.Server.RateLimit > 0 {
		burst := cfg.Server.RateBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.Server.RateLimit), burst)
	}
	return s
}

// Router builds the chi router with middleware and all routes.
func (s *Server) Router() http.Handler {
	timeout := time.Duration(s.config.Server.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Use(middleware.Compress(5))

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Get("/photos/*", s.handlePhoto)
	r.Route("/api/v1", func(r chi.Router) {
		r.With(s.rateLimit).Post("/search", s.handleSearch)
		r.With(s.rateLimit).Get("/search", s.handleSearchGet)
		r.Get("/status", s.handleStatus)
	})
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			s.logger.Debug("search rate limited", zap.String("request_id", middleware.GetReqID(r.Context())))
			s.respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
