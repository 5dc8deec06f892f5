// Package server hosts a registry over HTTP, speaking the same wire protocol
// the remote adapter consumes. It serves whichever adapter it is given, so a
// local in-memory or SQLite registry can stand in for the hosted service.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/openhive-oss/openhive/internal/registry"
	"github.com/openhive-oss/openhive/internal/telemetry"
)

// Server is the registry HTTP server.
type Server struct {
	reg    *registry.Registry
	cred   registry.Credential
	logger *telemetry.Logger
}

// New creates a server over the given registry. When cred is non-empty,
// every request must carry a matching credential.
func New(reg *registry.Registry, cred registry.Credential, logger *telemetry.Logger) *Server {
	if logger == nil {
		logger = telemetry.NewVerboseLogger(false)
	}
	return &Server{reg: reg, cred: cred, logger: logger}
}

// Start starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting registry server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down registry server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}

// Handler returns the route table, usable directly in tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /agents", s.handleListAgents)
	mux.HandleFunc("POST /agents", s.handleAddAgent)
	mux.HandleFunc("DELETE /agents", s.handleClearAgents)
	mux.HandleFunc("GET /agents/{id}", s.handleGetAgent)
	mux.HandleFunc("PUT /agents/{id}", s.handleUpdateAgent)
	mux.HandleFunc("DELETE /agents/{id}", s.handleDeleteAgent)

	return s.authMiddleware(mux)
}

// authMiddleware rejects requests without the configured credential. With no
// credential configured the registry is open.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.cred.Empty() && !s.authorized(r) {
			jsonError(w, http.StatusUnauthorized, "missing or invalid credential")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authorized(r *http.Request) bool {
	switch {
	case s.cred.BearerToken != "":
		return r.Header.Get("Authorization") == "Bearer "+s.cred.BearerToken
	case s.cred.APIKey != "":
		return r.Header.Get("X-API-Key") == s.cred.APIKey
	case s.cred.AccessToken != "":
		return r.Header.Get("X-Access-Token") == s.cred.AccessToken
	}
	return true
}
