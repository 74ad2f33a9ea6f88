// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes femcite sessions over HTTP: create a session, ask
// it questions, read its state, and download its transcript and BibTeX
// artifacts.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pdiddy/femcite/internal/pipeline"
	"github.com/pdiddy/femcite/internal/session"
	"github.com/pdiddy/femcite/pkg/types"
)

// Submitter runs one question for a session. *pipeline.Orchestrator
// implements it.
type Submitter interface {
	Submit(ctx context.Context, state *session.State, question string, style types.Style) (pipeline.Result, error)
}

// ArtifactLocator resolves where a session's artifact files live.
// *export.Writer implements it.
type ArtifactLocator interface {
	Path(sessionID, name string) (string, error)
}

// Server wires the HTTP routes to the session manager and pipeline.
type Server struct {
	sessions  *session.Manager
	submitter Submitter
	artifacts ArtifactLocator
	logger    *zap.Logger
	engine    *gin.Engine
}

// New builds a Server and its router.
func New(sessions *session.Manager, submitter Submitter, artifacts ArtifactLocator, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		sessions:  sessions,
		submitter: submitter,
		artifacts: artifacts,
		logger:    logger,
	}
	s.engine = s.router()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.RegisterRoutes(r.Group("/api"))
	return r
}

// RegisterRoutes registers the session routes on g.
func (s *Server) RegisterRoutes(g *gin.RouterGroup) {
	g.POST("/sessions", s.CreateSession)
	g.GET("/sessions/:id", s.GetSession)
	g.POST("/sessions/:id/query", s.Query)
	g.GET("/sessions/:id/transcript", s.Transcript)
	g.GET("/sessions/:id/bibliography", s.Bibliography)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting femcite server", zap.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// requestLogger logs one line per request.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
