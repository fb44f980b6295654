// Package server provides the MCP server factory and its transports.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	bqadapter "github.com/PaddyAlton/bigquery-mcp/pkg/warehouse/bigquery"

	"github.com/PaddyAlton/bigquery-mcp/pkg/health"
	"github.com/PaddyAlton/bigquery-mcp/pkg/middleware"
	"github.com/PaddyAlton/bigquery-mcp/pkg/toolbox"
	"github.com/PaddyAlton/bigquery-mcp/pkg/tools"
	"github.com/PaddyAlton/bigquery-mcp/pkg/warehouse"
)

// Version is set at build time.
var Version = "dev"

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Server wires the warehouse catalog, toolbox, and MCP tool surface to a
// transport.
type Server struct {
	log     *slog.Logger
	cfg     *Config
	mcp     *mcp.Server
	catalog warehouse.Catalog
	checker *health.Checker
}

// New creates a Server backed by a real BigQuery catalog.
func New(ctx context.Context, cfg *Config, log *slog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	catalog, err := bqadapter.New(ctx, bqadapter.Config{
		ProjectID: cfg.BigQuery.Project,
		Location:  cfg.BigQuery.Region,
	})
	if err != nil {
		return nil, err
	}

	return NewWithCatalog(cfg, log, catalog)
}

// NewWithCatalog creates a Server over an existing catalog. Used directly in
// tests.
func NewWithCatalog(cfg *Config, log *slog.Logger, catalog warehouse.Catalog) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}

	tb, err := toolbox.New(catalog, cfg.BigQuery.Region)
	if err != nil {
		return nil, err
	}

	toolkit, err := tools.New(tb, tools.Config{HistoryLimit: cfg.BigQuery.HistoryLimit})
	if err != nil {
		return nil, err
	}

	version := cfg.Server.Version
	if version == "" {
		version = Version
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    cfg.Server.Name,
		Version: version,
	}, nil)
	mcpServer.AddReceivingMiddleware(middleware.ToolCallLogging(log))

	if err := toolkit.RegisterTools(mcpServer); err != nil {
		return nil, fmt.Errorf("registering tools: %w", err)
	}

	return &Server{
		log:     log,
		cfg:     cfg,
		mcp:     mcpServer,
		catalog: catalog,
		checker: health.NewChecker(),
	}, nil
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// Run serves MCP traffic on the configured transport until ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	switch s.cfg.Server.Transport {
	case TransportHTTP:
		return s.runHTTP(ctx)
	default:
		return s.runStdio(ctx)
	}
}

// runStdio serves a single MCP session over stdin/stdout.
func (s *Server) runStdio(ctx context.Context) error {
	s.checker.SetReady()
	s.log.Info("server: mcp stdio listening",
		"name", s.cfg.Server.Name,
		"region", s.cfg.BigQuery.Region,
	)
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// runHTTP serves MCP over streamable HTTP with health, readiness, and
// metrics endpoints.
func (s *Server) runHTTP(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Server.Address,
		Handler:           s.httpHandler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErrCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErrCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	s.checker.SetReady()
	s.log.Info("server: mcp streamable http listening",
		"address", s.cfg.Server.Address,
		"region", s.cfg.BigQuery.Region,
	)

	select {
	case <-ctx.Done():
		s.checker.SetDraining()
		s.log.Info("server: stopping", "reason", ctx.Err())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}
		return nil
	case err := <-serveErrCh:
		s.checker.SetDraining()
		return err
	}
}

// Close releases the warehouse catalog.
func (s *Server) Close() error {
	if s.catalog != nil {
		return s.catalog.Close()
	}
	return nil
}
