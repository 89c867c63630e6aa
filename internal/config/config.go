package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Parser    ParserConfig    `yaml:"parser"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// CORSOrigins lists origins allowed to call the API from a browser.
	CORSOrigins []string `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int    `yaml:"max_conns"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type ParserConfig struct {
	MaxErrors int `yaml:"max_errors"`
	// Timeout is a Go duration string such as "2s".
	Timeout string `yaml:"timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

const (
	defaultMaxErrors    = 20
	defaultParseTimeout = 2 * time.Second
)

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// TimeoutDuration returns the parse timeout, defaulting to 2s.
func (p ParserConfig) TimeoutDuration() time.Duration {
	if p.Timeout == "" {
		return defaultParseTimeout
	}
	d, err := time.ParseDuration(p.Timeout)
	if err != nil {
		return defaultParseTimeout
	}
	return d
}

// SlogLevel maps the configured level name to a slog.Level. Unknown names
// select Info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix WODCOACH_ and underscore-separated paths:
//
//	WODCOACH_SERVER_HOST, WODCOACH_SERVER_PORT,
//	WODCOACH_DB_HOST, WODCOACH_DB_PORT, WODCOACH_DB_NAME,
//	WODCOACH_DB_USER, WODCOACH_DB_PASSWORD, WODCOACH_DB_SSLMODE,
//	WODCOACH_AUTH_API_KEY, WODCOACH_TAILSCALE_ENABLED,
//	WODCOACH_TAILSCALE_HOSTNAME, WODCOACH_PARSER_TIMEOUT,
//	WODCOACH_PARSER_MAX_ERRORS, WODCOACH_LOG_LEVEL
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WODCOACH_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("WODCOACH_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("WODCOACH_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("WODCOACH_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("WODCOACH_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("WODCOACH_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("WODCOACH_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("WODCOACH_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("WODCOACH_DB_MAX_CONNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Database.MaxConns = n
		}
	}
	if v := os.Getenv("WODCOACH_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("WODCOACH_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
	if v := os.Getenv("WODCOACH_TAILSCALE_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("WODCOACH_PARSER_TIMEOUT"); v != "" {
		cfg.Parser.Timeout = v
	}
	if v := os.Getenv("WODCOACH_PARSER_MAX_ERRORS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Parser.MaxErrors = n
		}
	}
	if v := os.Getenv("WODCOACH_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Parser.MaxErrors == 0 {
		cfg.Parser.MaxErrors = defaultMaxErrors
	}
	if cfg.Tailscale.Enabled && cfg.Tailscale.Hostname == "" {
		cfg.Tailscale.Hostname = "wodcoach"
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Database.MaxConns < 0 {
		return fmt.Errorf("database.max_conns must not be negative")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Parser.MaxErrors < 0 {
		return fmt.Errorf("parser.max_errors must not be negative")
	}
	if c.Parser.Timeout != "" {
		d, err := time.ParseDuration(c.Parser.Timeout)
		if err != nil {
			return fmt.Errorf("parser.timeout: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("parser.timeout must be positive")
		}
	}
	return nil
}
