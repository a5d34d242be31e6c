// Package httpserver wires the two HTTP surfaces: the public docs server
// serving the download index and artifact downloads, and the admin server
// carrying the generation API and metrics.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"git.home.luguber.info/inful/contractforge/internal/config"
	founderrors "git.home.luguber.info/inful/contractforge/internal/foundation/errors"
	"git.home.luguber.info/inful/contractforge/internal/generator"
	"git.home.luguber.info/inful/contractforge/internal/history"
	"git.home.luguber.info/inful/contractforge/internal/registry"
	smw "git.home.luguber.info/inful/contractforge/internal/server/middleware"
	"git.home.luguber.info/inful/contractforge/internal/templates"
)

// Deps are the collaborators the HTTP handlers operate on.
type Deps struct {
	Generator *generator.Generator
	Registry  *registry.Registry
	Library   *templates.Library
	History   history.Store

	// PrometheusHandler serves /metrics on the admin server when set.
	PrometheusHandler http.Handler
}

// Server manages the docs and admin HTTP endpoints.
type Server struct {
	docsServer  *http.Server
	adminServer *http.Server

	cfg          *config.Config
	deps         Deps
	errorAdapter *founderrors.HTTPErrorAdapter
	mchain       func(http.Handler) http.Handler
}

// New constructs the HTTP server wiring.
func New(cfg *config.Config, deps Deps) *Server {
	if deps.History == nil {
		deps.History = history.NopStore{}
	}
	return &Server{
		cfg:          cfg,
		deps:         deps,
		errorAdapter: founderrors.NewHTTPErrorAdapter(slog.Default()),
		mchain:       smw.Chain(slog.Default(), founderrors.NewHTTPErrorAdapter(slog.Default())),
	}
}

// Start binds both listeners and launches the servers. Ports are pre-bound
// so startup fails fast with one aggregate error instead of partial
// initialization.
func (s *Server) Start(ctx context.Context) error {
	type preBind struct {
		name string
		addr string
		ln   net.Listener
	}
	binds := []preBind{
		{name: "docs", addr: s.cfg.Server.DocsAddr},
		{name: "admin", addr: s.cfg.Server.AdminAddr},
	}

	var bindErrs []error
	lc := net.ListenConfig{}
	for i := range binds {
		ln, err := lc.Listen(ctx, "tcp", binds[i].addr)
		if err != nil {
			bindErrs = append(bindErrs, fmt.Errorf("%s listener %s: %w", binds[i].name, binds[i].addr, err))
			continue
		}
		binds[i].ln = ln
	}
	if len(bindErrs) > 0 {
		for _, b := range binds {
			if b.ln != nil {
				_ = b.ln.Close()
			}
		}
		return fmt.Errorf("http startup failed: %w", errors.Join(bindErrs...))
	}

	s.docsServer = s.newHTTPServer(s.docsMux())
	s.startServerWithListener("docs", s.docsServer, binds[0].ln)

	s.adminServer = s.newHTTPServer(s.adminMux())
	s.startServerWithListener("admin", s.adminServer, binds[1].ln)

	slog.Info("HTTP servers started",
		slog.String("docs_addr", s.cfg.Server.DocsAddr),
		slog.String("admin_addr", s.cfg.Server.AdminAddr))
	return nil
}

// Stop gracefully shuts down both servers, admin first.
func (s *Server) Stop(ctx context.Context) error {
	var errs []error

	if s.adminServer != nil {
		if err := s.adminServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("admin server shutdown: %w", err))
		}
	}
	if s.docsServer != nil {
		if err := s.docsServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("docs server shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	slog.Info("HTTP servers stopped")
	return nil
}

func (s *Server) newHTTPServer(mux http.Handler) *http.Server {
	return &http.Server{
		Handler:      s.mchain(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

// startServerWithListener launches an http.Server on a pre-bound listener.
func (s *Server) startServerWithListener(kind string, srv *http.Server, ln net.Listener) {
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error(fmt.Sprintf("%s server error", kind), "error", err)
		}
	}()
}
