package server

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Transport names accepted in configuration.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

const (
	defaultServerName   = "bigquery-mcp"
	defaultAddress      = ":8080"
	defaultHistoryLimit = 20
)

// Config holds the complete server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	BigQuery BigQueryConfig `yaml:"bigquery"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig configures the MCP server and its transport.
type ServerConfig struct {
	Name      string   `yaml:"name"`
	Version   string   `yaml:"version"`
	Transport string   `yaml:"transport"` // "stdio", "http"
	Address   string   `yaml:"address"`
	Tokens    []string `yaml:"tokens"` // bearer tokens accepted on the HTTP transport
}

// BigQueryConfig configures warehouse access.
type BigQueryConfig struct {
	Project      string `yaml:"project"`
	Region       string `yaml:"region"`
	HistoryLimit int    `yaml:"history_limit"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // "debug", "info", "warn", "error"
}

// DefaultConfig returns a configuration with defaults applied.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig reads a YAML configuration file and applies defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults fills unset fields with default values.
func (c *Config) applyDefaults() {
	if c.Server.Name == "" {
		c.Server.Name = defaultServerName
	}
	if c.Server.Transport == "" {
		c.Server.Transport = TransportStdio
	}
	if c.Server.Address == "" {
		c.Server.Address = defaultAddress
	}
	if c.BigQuery.HistoryLimit == 0 {
		c.BigQuery.HistoryLimit = defaultHistoryLimit
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks the configuration for required fields. Region membership
// in the fixed enumeration is checked later by the toolbox, before any
// templated query string is built.
func (c *Config) Validate() error {
	if c.BigQuery.Project == "" {
		return fmt.Errorf("bigquery project is required")
	}
	if c.BigQuery.Region == "" {
		return fmt.Errorf("bigquery region is required")
	}
	switch c.Server.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("unknown transport %q: must be %q or %q",
			c.Server.Transport, TransportStdio, TransportHTTP)
	}
	return nil
}
