// Package preview serves the generated site locally before it is published.
package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

// Server wraps http.Server with a Gin engine rooted at the generator output.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	dir        string
	logger     *slog.Logger
}

// New creates a preview server for dir listening on addr.
func New(dir, addr string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger))

	s := &Server{
		engine: engine,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		dir:    dir,
		logger: logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/healthz", s.health)
	// A root catch-all would collide with /healthz in the router tree.
	s.engine.NoRoute(gin.WrapH(http.FileServer(http.Dir(s.dir))))
}

func (s *Server) health(c *gin.Context) {
	if _, err := os.Stat(s.dir); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "dir": s.dir, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "dir": s.dir})
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.httpServer.Addr }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if fi, err := os.Stat(s.dir); err != nil || !fi.IsDir() {
		return fmt.Errorf("output directory %s not found; run `blogctl generate` first", s.dir)
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting preview server", slog.String("addr", s.httpServer.Addr), slog.String("dir", s.dir))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("preview server: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("preview server shutdown: %w", err)
	}
	s.logger.Info("preview server stopped")
	return nil
}

// requestLogger logs each request at a level chosen by its status.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelDebug
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		} else if status >= http.StatusBadRequest {
			level = slog.LevelWarn
		}
		logger.Log(c.Request.Context(), level, "request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
		)
	}
}
