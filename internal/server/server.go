// Package server provides the HTTP API for Kotae.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/kotae/internal/answer"
	"github.com/hyperjump/kotae/internal/cache"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/faq"
	"github.com/hyperjump/kotae/internal/search"
	"github.com/hyperjump/kotae/internal/storage"
	"go.uber.org/zap"
)

// Server is the HTTP server for the Kotae API.
type Server struct {
	retrieval *search.Service
	manager   *faq.Manager
	engine    *cache.Engine
	composer  *answer.Composer
	storage   storage.Storage
	config    *config.Config
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given dependencies. composer may be nil;
// the ask endpoint then reports unavailable.
func NewServer(
	retrieval *search.Service,
	manager *faq.Manager,
	engine *cache.Engine,
	composer *answer.Composer,
	store storage.Storage,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		retrieval: retrieval,
		manager:   manager,
		engine:    engine,
		composer:  composer,
		storage:   store,
		config:    cfg,
		logger:    logger,
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/search", s.handleSearch)
	r.Post("/api/v1/ask", s.handleAsk)

	r.Route("/api/v1/faqs", func(r chi.Router) {
		r.Get("/", s.handleListFAQs)
		r.Post("/", s.handleCreateFAQ)
		r.Get("/search", s.handleKeywordSearch)
		r.Get("/tags", s.handleTags)
		r.Get("/categories", s.handleCategories)
		r.Get("/pending", s.handlePending)
		r.Delete("/pending", s.handleClearPending)
		r.Get("/stats", s.handleStats)
		r.Get("/{id}", s.handleGetFAQ)
		r.Put("/{id}", s.handleUpdateFAQ)
		r.Delete("/{id}", s.handleDeleteFAQ)
	})

	r.Get("/api/v1/cache", s.handleCacheInfo)
	r.Post("/api/v1/cache/rebuild", s.handleRebuild)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
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
