// Package server exposes the extractor over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"fjacquet/fatura-extractor/internal/batch"
	"fjacquet/fatura-extractor/internal/config"
	"fjacquet/fatura-extractor/internal/container"
	"fjacquet/fatura-extractor/internal/fileutils"
	"fjacquet/fatura-extractor/internal/logging"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"
)

const (
	apiPrefix       = "/api/v1"
	cleanupSchedule = "@every 10m"
	shutdownTimeout = 15 * time.Second
)

// Server serves the extraction API. One Server shares a single container,
// and therefore a single engine, between all requests.
type Server struct {
	c         *container.Container
	cfg       config.ServerConfig
	version   string
	logger    logging.Logger
	metrics   *metrics
	processor *batch.Processor
	handler   http.Handler
}

// New builds a Server around c.
func New(c *container.Container, version string) *Server {
	cfg := c.GetConfig().Server
	s := &Server{
		c:         c,
		cfg:       cfg,
		version:   version,
		logger:    c.GetLogger(),
		metrics:   newMetrics(),
		processor: batch.NewProcessor(0, c.GetLogger()),
	}
	s.handler = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	limiter := rate.NewLimiter(rate.Limit(s.cfg.RequestsPerSecond), s.cfg.Burst)
	mux := http.NewServeMux()

	handle := func(pattern, route string, h http.HandlerFunc, limited bool) {
		var handler http.Handler = h
		if limited {
			handler = s.throttle(limiter, handler)
		}
		mux.Handle(pattern, s.metrics.instrument(route, handler))
	}

	handle("POST "+apiPrefix+"/upload-invoice", "upload-invoice", s.handleUpload, true)
	handle("POST "+apiPrefix+"/batch-process", "batch-process", s.handleBatch, true)
	handle("GET "+apiPrefix+"/health", "health", s.handleHealth, false)
	handle("GET "+apiPrefix+"/banks", "banks", s.handleBanks, false)
	handle("GET "+apiPrefix+"/patterns/{bank}", "patterns", s.handlePatterns, false)
	mux.Handle("GET /metrics", s.metrics.handler())

	return s.withCORS(s.accessLog(mux))
}

// CleanupTempFiles removes stale uploads.
func (s *Server) CleanupTempFiles() {
	maxAge := time.Duration(s.cfg.TempMaxAgeMinutes) * time.Minute
	if _, err := fileutils.CleanupTempFiles(s.cfg.UploadDir, maxAge, s.logger); err != nil {
		s.logger.WithError(err).Warn("Temporary file cleanup failed")
	}
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully. Stale uploads are removed at start and periodically.
func (s *Server) Run(ctx context.Context) error {
	if err := fileutils.EnsureDirectoryExists(s.cfg.UploadDir); err != nil {
		return err
	}
	s.CleanupTempFiles()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cleanupSchedule, s.CleanupTempFiles); err != nil {
		return fmt.Errorf("failed to schedule temp file cleanup: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening",
			logging.F("addr", s.cfg.Addr),
			logging.F("version", s.version))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
