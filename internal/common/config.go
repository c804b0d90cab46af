package common

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for the gateway.
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Upstream    LDAConfig     `toml:"upstream"`
	Rollup      RollupConfig  `toml:"rollup"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// LDAConfig holds upstream registry API configuration.
type LDAConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
	Retries   int    `toml:"retries"`
}

// GetTimeout parses and returns the per-call timeout duration.
func (c *LDAConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// RollupConfig bounds pagination traversal and link lists for rollup requests.
type RollupConfig struct {
	MaxRows  int `toml:"max_rows"`
	MaxPages int `toml:"max_pages"`
	MaxLinks int `toml:"max_links"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			AllowedOrigins: []string{"*"},
		},
		Upstream: LDAConfig{
			BaseURL:   "https://lda.senate.gov/api/v1",
			RateLimit: 10,
			Timeout:   "30s",
			Retries:   4,
		},
		Rollup: RollupConfig{
			MaxRows:  20000,
			MaxPages: 200,
			MaxLinks: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// Later files override earlier ones; missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	return config, nil
}

// applyEnvOverrides applies LDA_* environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("LDA_ENV"); env != "" {
		config.Environment = env
	}
	if host := os.Getenv("LDA_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("LDA_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if level := os.Getenv("LDA_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if base := os.Getenv("LDA_BASE_URL"); base != "" {
		config.Upstream.BaseURL = strings.TrimRight(base, "/")
	} else if base := os.Getenv("LDA_BASE"); base != "" {
		config.Upstream.BaseURL = strings.TrimRight(base, "/")
	}
	if key := resolveEnvAPIKey(); key != "" {
		config.Upstream.APIKey = key
	}
	if origins := os.Getenv("LDA_ALLOWED_ORIGINS"); origins != "" {
		parts := strings.Split(origins, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			config.Server.AllowedOrigins = out
		}
	}
}

func resolveEnvAPIKey() string {
	for _, name := range []string{"LDA_API_KEY", "LDA_KEY"} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// ResolveAPIKey resolves the upstream API key for a request.
// Priority: X-LDA-Key request header, then environment, then config.
func (c *Config) ResolveAPIKey(h http.Header) string {
	if h != nil {
		if v := h.Get("X-LDA-Key"); v != "" {
			return v
		}
	}
	if v := resolveEnvAPIKey(); v != "" {
		return v
	}
	return c.Upstream.APIKey
}

// ResolveAllowedOrigin picks the CORS origin to echo for a request origin.
// "*" allows everything; otherwise the request origin must be in the list,
// with the first configured entry as fallback.
func (c *Config) ResolveAllowedOrigin(requestOrigin string) string {
	list := c.Server.AllowedOrigins
	if len(list) == 0 {
		return "*"
	}
	if len(list) == 1 && list[0] == "*" {
		return "*"
	}
	for _, o := range list {
		if o == requestOrigin && requestOrigin != "" {
			return requestOrigin
		}
	}
	return list[0]
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
