// Package server exposes nesting, comparison, estimates, exports and
// workspace sessions over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/piwi3910/marcenapp/internal/cache"
	"github.com/piwi3910/marcenapp/internal/engine"
	"github.com/piwi3910/marcenapp/internal/model"
	"github.com/piwi3910/marcenapp/internal/session"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 4 << 20

// Server wires the HTTP routes to the engine. Nesting requests are stateless
// and answered from the cache when one is configured.
type Server struct {
	cfg      model.AppConfig
	log      *zap.Logger
	cache    *cache.Cache
	sessions *session.Store
	router   *gin.Engine
}

// New builds the router. c may be nil to disable result caching.
func New(cfg model.AppConfig, logger *zap.Logger, c *cache.Cache) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:      cfg,
		log:      logger,
		cache:    c,
		sessions: session.NewStore(cfg.MaxSessions, time.Duration(cfg.SessionIdleMinutes)*time.Minute),
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))
	s.routes(r)
	s.router = r
	return s
}

func (s *Server) routes(r *gin.Engine) {
	r.GET("/health", s.handleHealth)

	api := r.Group("/api")
	api.POST("/nesting", s.handleNesting)
	api.POST("/nesting/compare", s.handleCompare)
	api.POST("/nesting/export/:format", s.handleExport)
	api.POST("/estimate", s.handleEstimate)

	sessions := api.Group("/sessions")
	sessions.POST("", s.handleCreateSession)
	sessions.GET("/:id", s.handleGetSession)
	sessions.DELETE("/:id", s.handleDeleteSession)
	sessions.PUT("/:id/settings", s.handleSetSettings)
	sessions.GET("/:id/project", s.handleSessionProject)
	sessions.POST("/:id/parts", s.handleAddPart)
	sessions.PUT("/:id/parts", s.handleReplaceParts)
	sessions.PUT("/:id/parts/:partID", s.handleUpdatePart)
	sessions.DELETE("/:id/parts/:partID", s.handleRemovePart)
	sessions.POST("/:id/undo", s.handleUndo)
	sessions.POST("/:id/redo", s.handleRedo)
	sessions.GET("/:id/nesting", s.handleSessionNesting)
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// nest returns the result for parts and settings, consulting the cache first.
func (s *Server) nest(parts []model.Part, settings model.NestingSettings) (model.NestingResult, error) {
	var key string
	if s.cache != nil {
		k, err := cache.Key(parts, settings)
		if err != nil {
			return model.NestingResult{}, err
		}
		key = k
		if result, ok, err := s.cache.Get(key); err != nil {
			s.log.Warn("cache read failed", zap.Error(err))
		} else if ok {
			s.log.Debug("nesting cache hit", zap.String("key", key[:12]))
			return result, nil
		}
	}

	result, err := engine.New(settings).Compute(parts)
	if err != nil {
		return model.NestingResult{}, err
	}
	s.log.Info("nested",
		zap.Int("parts", len(parts)),
		zap.Int("items", result.ItemCount()),
		zap.Int("sheets", len(result.Sheets)),
		zap.Float64("efficiency", result.Efficiency),
	)

	if s.cache != nil {
		if err := s.cache.Put(key, result); err != nil {
			s.log.Warn("cache write failed", zap.Error(err))
		}
	}
	return result, nil
}
