// Package rest exposes the session and item services as a JSON HTTP API.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/itemkeeper/internal/logging"
	"github.com/dmitrijs2005/itemkeeper/internal/server/config"
	"github.com/dmitrijs2005/itemkeeper/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

type HTTPServer struct {
	address  string
	logger   logging.Logger
	sessions *services.SessionService
	items    *services.ItemService
	cookies  cookiePolicy
	origins  map[string]struct{}
}

func NewHTTPServer(cfg *config.Config, l logging.Logger, ss *services.SessionService, is *services.ItemService) *HTTPServer {
	origins := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		origins[o] = struct{}{}
	}

	return &HTTPServer{
		address:  cfg.HTTPAddr,
		logger:   l.With("module", "http_server"),
		sessions: ss,
		items:    is,
		cookies:  cookiePolicy{production: cfg.IsProduction(), maxAge: cfg.RefreshTokenValidityDuration},
		origins:  origins,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve is Run on an existing listener.
func (s *HTTPServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
