package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/ekaya-inc/ekaya-db2/pkg/adapters/datasource"
)

// DefaultPath is the config file read when no path is given.
const DefaultPath = "config.yaml"

// Config holds all configuration for ekaya-db2.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"3443"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:""`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Connection to the relational engine
	Connection ConnectionConfig `yaml:"connection"`

	// MCP surface configuration
	MCP MCPConfig `yaml:"mcp"`
}

// ConnectionConfig describes the single engine connection owned by the connector.
type ConnectionConfig struct {
	// ID is reported as connId on every result record. Generated when empty.
	ID string `yaml:"id" env:"DB_CONNECTION_ID" env-default:""`

	// Type selects the registered dialect (db2, postgres, sqlserver, sqlite).
	Type string `yaml:"type" env:"DB_TYPE" env-default:"db2"`

	// DriverName overrides the database/sql driver name registered by the dialect.
	DriverName string `yaml:"driver_name" env:"DB_DRIVER_NAME" env-default:""`

	Host            string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port            int    `yaml:"port" env:"DB_PORT" env-default:"50000"`
	Database        string `yaml:"database" env:"DB_NAME" env-default:""`
	User            string `yaml:"user" env:"DB_USER" env-default:""`
	Password        string `yaml:"-" env:"DB_PASSWORD"` // Secret - not in YAML
	CertificateFile string `yaml:"certificate_file" env:"DB_CERTIFICATE_FILE" env-default:""`
	SSLMode         string `yaml:"ssl_mode" env:"DB_SSL_MODE" env-default:""`

	// QueriesFile optionally overrides individual catalog query templates.
	QueriesFile string `yaml:"queries_file" env:"DB_QUERIES_FILE" env-default:""`

	// OpenRetries is how many times a transient open failure is retried.
	OpenRetries int `yaml:"open_retries" env:"DB_OPEN_RETRIES" env-default:"0"`

	// SearchLimit caps rows returned by search queries.
	SearchLimit int `yaml:"search_limit" env:"DB_SEARCH_LIMIT" env-default:"50"`
}

// MCPConfig holds MCP transport settings.
type MCPConfig struct {
	// Transport is "stdio" or "http".
	Transport string `yaml:"transport" env:"MCP_TRANSPORT" env-default:"stdio"`
}

// Load reads configuration from path with environment variable overrides.
// A missing file is not an error: only the environment is read.
// The version parameter is injected at build time and set on the returned Config.
func Load(path, version string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if err := c.Connection.Validate(); err != nil {
		return err
	}

	switch strings.ToLower(c.MCP.Transport) {
	case "stdio", "http":
	default:
		return fmt.Errorf("unknown mcp transport %q (want stdio or http)", c.MCP.Transport)
	}

	return nil
}

// Validate checks the connection section.
func (c *ConnectionConfig) Validate() error {
	if c.Type == "" {
		return fmt.Errorf("connection type is required")
	}
	if c.Database == "" {
		return fmt.Errorf("connection database is required")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("connection port %d out of range", c.Port)
	}
	if c.OpenRetries < 0 {
		return fmt.Errorf("open_retries must not be negative")
	}
	if c.SearchLimit < 0 {
		return fmt.Errorf("search_limit must not be negative")
	}
	return nil
}

// Credentials returns the input of the dialect's connection string builder.
// Network dialects other than db2 get localhost rewritten when running in Docker;
// the db2 descriptor is passed through unchanged.
func (c *ConnectionConfig) Credentials() datasource.Credentials {
	host := c.Host
	if c.Type != "db2" {
		host = ResolveHostForDocker(host)
	}
	return datasource.Credentials{
		Host:            host,
		Port:            c.Port,
		Database:        c.Database,
		User:            c.User,
		Password:        c.Password,
		CertificateFile: c.CertificateFile,
		SSLMode:         c.SSLMode,
	}
}
