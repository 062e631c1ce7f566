// Package server provides the dashboard HTTP API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/pmo-intel/insight-hub/internal/config"
	"github.com/pmo-intel/insight-hub/internal/loader"
	"github.com/pmo-intel/insight-hub/internal/ranking"
	"github.com/pmo-intel/insight-hub/internal/search"
	"github.com/pmo-intel/insight-hub/internal/session"
)

// Server is the HTTP server for the dashboard API.
type Server struct {
	store     *loader.Store
	bookmarks *session.Bookmarks
	alerts    *session.AlertCenter
	ranker    *ranking.Ranker
	index     *search.Index // nil when search.index_enabled is off
	config    *config.Config
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given dependencies. index may be
// nil; the search endpoint then answers 404.
func NewServer(
	store *loader.Store,
	bookmarks *session.Bookmarks,
	alerts *session.AlertCenter,
	ranker *ranking.Ranker,
	index *search.Index,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		store:     store,
		bookmarks: bookmarks,
		alerts:    alerts,
		ranker:    ranker,
		index:     index,
		config:    cfg,
		logger:    logger,
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/stats", s.handleStats)
		r.Get("/articles", s.handleArticles)
		r.Get("/kpis", s.handleKPIs)
		r.Get("/kpis/{id}/articles", s.handleKPIArticles)
		r.Get("/trends", s.handleTrends)
		r.Get("/insights", s.handleInsights)
		r.Get("/alerts", s.handleAlerts)
		r.Post("/alerts/{id}/acknowledge", s.handleAcknowledgeAlert)
		r.Delete("/alerts/{id}", s.handleDismissAlert)
		r.Get("/bookmarks", s.handleBookmarks)
		r.Post("/bookmarks/{id}", s.handleToggleBookmark)
		r.Post("/refresh", s.handleRefresh)
		r.Get("/search", s.handleSearch)
	})
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

// RefreshSnapshot reloads the artifacts, reseeds the alert working set,
// and rebuilds the search index when one is configured. Also invoked by
// the output-directory watcher.
func (s *Server) RefreshSnapshot(ctx context.Context) *loader.Snapshot {
	snap := s.store.Refresh(ctx)
	s.alerts.SetSnapshot(snap.Alerts)
	if s.index != nil {
		if err := s.index.Rebuild(ctx, snap.Articles); err != nil {
			s.logger.Warn("search index rebuild failed", zap.Error(err))
		}
	}
	return snap
}
