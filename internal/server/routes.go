package server

import (
	"net/http"
	"time"

	"github.com/sonsoflibertyy/lda/internal/common"
)

// registerRoutes sets up all gateway routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/config", s.handleConfig)

	// Rollups
	mux.HandleFunc("/lda/summary", s.handleSummary)
	mux.HandleFunc("/lda/contributions/rollup", s.handleContributionRollup)

	// Registry pass-through proxy; /api/lda is a legacy alias.
	mux.HandleFunc("/lda", s.handleProxy)
	mux.HandleFunc("/lda/", s.handleProxy)
	mux.HandleFunc("/api/lda", s.handleProxy)
	mux.HandleFunc("/api/lda/", s.handleProxy)
}

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ok":     true,
		"uptime": time.Since(s.app.StartupTime).Round(time.Second).String(),
	})
}

// handleVersion handles GET /api/version.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"full":    common.GetFullVersion(),
	})
}

// handleConfig handles GET /api/config. Secrets are not echoed.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	cfg := s.app.Config
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"environment": cfg.Environment,
		"upstream": map[string]interface{}{
			"base_url":   cfg.Upstream.BaseURL,
			"rate_limit": cfg.Upstream.RateLimit,
			"timeout":    cfg.Upstream.Timeout,
			"retries":    cfg.Upstream.Retries,
			"has_key":    cfg.Upstream.APIKey != "",
		},
		"rollup": cfg.Rollup,
	})
}
