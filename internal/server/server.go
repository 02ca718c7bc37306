// Package server exposes the drawer service over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/cors"

	"drawer-go/internal/config"
	"drawer-go/internal/drawer"
)

// Server routes HTTP requests to a drawer.Service.
type Server struct {
	svc           *drawer.Service
	logger        drawer.Logger
	maxUploadSize int64
	handler       http.Handler
}

// New builds the route table, CORS policy and request logging.
// An empty cfg.CORSOrigins allows every origin.
func New(svc *drawer.Service, logger drawer.Logger, cfg config.ServerConfig) *Server {
	s := &Server{
		svc:           svc,
		logger:        logger,
		maxUploadSize: cfg.MaxUploadSize,
	}
	if s.maxUploadSize <= 0 {
		s.maxUploadSize = config.DefaultMaxUploadSize
	}

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "Range"},
		ExposedHeaders: []string{"Content-Range", "Content-Disposition", "Content-Length", "Accept-Ranges"},
	})
	s.handler = logRequests(logger, c.Handler(s.routes()))
	return s
}

// Handler returns the complete HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving on %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.logger.Info("server shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down server: %w", err)
		}
		return nil
	}
}
