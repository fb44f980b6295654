// Package main provides the entry point for the bigquery-mcp server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmittmann/tint"
	flag "github.com/spf13/pflag"

	"github.com/PaddyAlton/bigquery-mcp/internal/server"
	"github.com/PaddyAlton/bigquery-mcp/pkg/metrics"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPathFlag := flag.String("config", "", "path to YAML configuration file")
	transportFlag := flag.String("transport", "", "transport type: stdio, http")
	addressFlag := flag.String("address", "", "listen address for the http transport")
	projectFlag := flag.String("project", "", "GCP project ID (or set GOOGLE_CLOUD_PROJECT)")
	regionFlag := flag.String("region", "", "BigQuery region (or set BIGQUERY_MCP_REGION)")
	verboseFlag := flag.Bool("verbose", false, "enable verbose (debug) logging")
	versionFlag := flag.Bool("version", false, "show version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("bigquery-mcp version %s\n", server.Version)
		return nil
	}

	cfg, err := loadConfig(*configPathFlag)
	if err != nil {
		return err
	}
	applyOverrides(cfg, *transportFlag, *addressFlag, *projectFlag, *regionFlag)

	log := newLogger(cfg.Logging.Level, *verboseFlag)
	metrics.BuildInfo.WithLabelValues(server.Version).Set(1)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv, err := server.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer func() {
		if err := srv.Close(); err != nil {
			log.Error("failed to close server", "error", err)
		}
	}()

	return srv.Run(ctx)
}

// loadConfig reads the config file when given, otherwise starts from
// defaults.
func loadConfig(path string) (*server.Config, error) {
	if path == "" {
		return server.DefaultConfig(), nil
	}
	return server.LoadConfig(path)
}

// applyOverrides layers flag and environment values over the file config.
func applyOverrides(cfg *server.Config, transport, address, project, region string) {
	if env := os.Getenv("GOOGLE_CLOUD_PROJECT"); env != "" && cfg.BigQuery.Project == "" {
		cfg.BigQuery.Project = env
	}
	if env := os.Getenv("BIGQUERY_MCP_REGION"); env != "" && cfg.BigQuery.Region == "" {
		cfg.BigQuery.Region = env
	}
	if transport != "" {
		cfg.Server.Transport = transport
	}
	if address != "" {
		cfg.Server.Address = address
	}
	if project != "" {
		cfg.BigQuery.Project = project
	}
	if region != "" {
		cfg.BigQuery.Region = region
	}
}

// newLogger builds the slog logger. Logs go to stderr: stdout carries the
// MCP protocol on the stdio transport.
func newLogger(level string, verbose bool) *slog.Logger {
	logLevel := parseLevel(level)
	if verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: logLevel,
	}))
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
