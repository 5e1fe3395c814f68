// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CloudPrep Contributors

// Package web serves the HTML surface: public pages, registration and login
// forms, the session-gated member area, and the two-step password reset.
package web

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/samber/oops"

	"github.com/cloudprep/cloudprep/internal/auth"
	"github.com/cloudprep/cloudprep/internal/observability"
	"github.com/cloudprep/cloudprep/internal/session"
)

// DefaultCookieName is the session cookie name used when Config leaves it
// empty.
const DefaultCookieName = "cloudprep_session"

// Config carries the web server's dependencies.
type Config struct {
	Addr       string
	CookieName string

	Auth     *auth.Service
	Resets   *auth.ResetService
	Sessions session.Store
	Metrics  *observability.Metrics
	Logger   *slog.Logger
}

// Server is the user-facing HTTP server.
type Server struct {
	addr       string
	cookieName string

	auth     *auth.Service
	resets   *auth.ResetService
	sessions session.Store
	renderer *Renderer
	metrics  *observability.Metrics
	logger   *slog.Logger

	listener   net.Listener
	httpServer *http.Server
}

// NewServer creates a Server. All dependencies are required.
func NewServer(cfg Config) (*Server, error) {
	errCtx := oops.Code("WEB_NIL_DEPENDENCY").With("addr", cfg.Addr)
	switch {
	case cfg.Auth == nil:
		return nil, errCtx.Errorf("auth service is required")
	case cfg.Resets == nil:
		return nil, errCtx.Errorf("reset service is required")
	case cfg.Sessions == nil:
		return nil, errCtx.Errorf("session store is required")
	case cfg.Metrics == nil:
		return nil, errCtx.Errorf("metrics are required")
	}

	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cookieName := cfg.CookieName
	if cookieName == "" {
		cookieName = DefaultCookieName
	}

	return &Server{
		addr:       cfg.Addr,
		cookieName: cookieName,
		auth:       cfg.Auth,
		resets:     cfg.Resets,
		sessions:   cfg.Sessions,
		renderer:   renderer,
		metrics:    cfg.Metrics,
		logger:     logger,
	}, nil
}

// Handler builds the route table wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleLanding)
	mux.HandleFunc("GET /", s.handleNotFound)

	mux.HandleFunc("GET /register", s.handleRegisterForm)
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("GET /login", s.handleLoginForm)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /logout", s.handleLogout)

	mux.Handle("GET /welcome", s.requireUser(http.HandlerFunc(s.handleWelcome)))
	mux.Handle("GET /dashboard", s.requireUser(http.HandlerFunc(s.handleDashboard)))
	mux.Handle("GET /tutorials/{topic}", s.requireUser(http.HandlerFunc(s.handleTutorialTopic)))

	mux.HandleFunc("GET /forgot", s.handleForgotForm)
	mux.HandleFunc("POST /forgot", s.handleForgot)
	mux.Handle("GET /reset", s.requireResetIntent(http.HandlerFunc(s.handleResetForm)))
	mux.Handle("POST /reset", s.requireResetIntent(http.HandlerFunc(s.handleReset)))

	mux.HandleFunc("GET /tutorials", s.handleTutorials)
	mux.HandleFunc("GET /news", s.handleNews)
	mux.HandleFunc("GET /contact", s.handleContact)
	mux.HandleFunc("GET /about", s.handleAbout)

	return s.withRequestID(s.withLogging(s.withSession(mux)))
}

// Start begins serving. The returned channel reports a serve failure; it is
// closed on clean shutdown.
func (s *Server) Start() (<-chan error, error) {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return nil, oops.Code("WEB_LISTEN_FAILED").
			With("addr", s.addr).
			Wrap(err)
	}
	s.listener = listener

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- oops.Code("WEB_SERVE_FAILED").
				With("addr", s.Addr()).
				Wrap(err)
		}
	}()

	s.logger.Info("web server listening", "addr", s.Addr())
	return errCh, nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return oops.Code("WEB_SHUTDOWN_FAILED").Wrap(err)
	}
	return nil
}

// Addr returns the bound address, useful when the configured port is 0.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}
