// Package server exposes the gateway's HTTP surface: the registry
// pass-through proxy with link rewriting, and the rollup endpoints.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sonsoflibertyy/lda/internal/app"
	"github.com/sonsoflibertyy/lda/internal/common"
)

// Server wraps the HTTP server and application reference.
type Server struct {
	app         *app.App
	server      *http.Server
	logger      *common.Logger
	proxyClient *http.Client
}

// NewServer creates a new HTTP gateway server.
func NewServer(a *app.App) *Server {
	s := &Server{
		app:    a,
		logger: a.Logger,
		proxyClient: &http.Client{
			Timeout: a.Config.Upstream.GetTimeout(),
		},
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	handler := applyMiddleware(mux, a.Logger, a.Config)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", a.Config.Server.Host, a.Config.Server.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server (blocking).
func (s *Server) Start() error {
	s.logger.Info().
		Str("addr", s.server.Addr).
		Msg("Starting LDA gateway server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
