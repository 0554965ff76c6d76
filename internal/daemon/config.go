// Package daemon holds the stockroom runtime configuration.
// Values come from DefaultConfig, overlaid by ~/.stockroom/config.toml (or
// the file named by --config), overlaid by STOCKROOM_* environment variables.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the full runtime configuration.
type Config struct {
	API      APIConfig      `toml:"api"`
	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
	Log      LogConfig      `toml:"log"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

// APIConfig controls the HTTP listener.
type APIConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
	RequestTimeout string   `toml:"request_timeout"`
}

// Addr returns host:port.
func (c APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Timeout parses RequestTimeout, defaulting to 30s.
func (c APIConfig) Timeout() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// DatabaseConfig locates the SQLite ledger.
type DatabaseConfig struct {
	Dir string `toml:"dir"` // empty means <home>/data
}

// AuthConfig controls bearer-token authentication.
type AuthConfig struct {
	Enabled       bool   `toml:"enabled"`
	TokenSecret   string `toml:"token_secret"`
	TokenTTL      string `toml:"token_ttl"`
	AdminUsername string `toml:"admin_username"`
	AdminPassword string `toml:"admin_password"`
}

// TTL parses TokenTTL, defaulting to 30m.
func (c AuthConfig) TTL() time.Duration {
	d, err := time.ParseDuration(c.TokenTTL)
	if err != nil || d <= 0 {
		return 30 * time.Minute
	}
	return d
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Mode       string `toml:"mode"`  // "development" or "production"
	Level      string `toml:"level"` // debug, info, warn, error
	FileEnable bool   `toml:"file_enable"`
	Filename   string `toml:"filename"`
}

// MetricsConfig controls the Prometheus endpoint and gauge refresh job.
type MetricsConfig struct {
	Enabled         bool   `toml:"enabled"`
	RefreshSchedule string `toml:"refresh_schedule"` // cron spec
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:           "127.0.0.1",
			Port:           8000,
			AllowedOrigins: []string{"*"},
			RequestTimeout: "30s",
		},
		Auth: AuthConfig{
			Enabled:       false,
			TokenTTL:      "30m",
			AdminUsername: "admin",
		},
		Log: LogConfig{
			Mode:     "development",
			Level:    "info",
			Filename: "stockroom.log",
		},
		Metrics: MetricsConfig{
			Enabled:         true,
			RefreshSchedule: "@every 1m",
		},
	}
}

// Home returns the stockroom home directory.
func Home() string {
	if env := os.Getenv("STOCKROOM_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".stockroom")
}

// Load reads path over the defaults. A missing file is not an error; an
// empty path means <home>/config.toml.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = filepath.Join(Home(), "config.toml")
	}
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("stat %s: %w", path, err)
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("STOCKROOM_TOKEN_SECRET"); v != "" {
		c.Auth.TokenSecret = v
	}
	if v := os.Getenv("STOCKROOM_ADMIN_PASSWORD"); v != "" {
		c.Auth.AdminPassword = v
	}
	if v := os.Getenv("STOCKROOM_DB_DIR"); v != "" {
		c.Database.Dir = v
	}
}

// DataDir resolves the ledger directory.
func (c Config) DataDir() string {
	if c.Database.Dir != "" {
		return c.Database.Dir
	}
	return filepath.Join(Home(), "data")
}

// Validate rejects configurations the server cannot run with.
func (c Config) Validate() error {
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port %d out of range", c.API.Port)
	}
	if c.Auth.Enabled && len(c.Auth.TokenSecret) < 16 {
		return fmt.Errorf("auth.token_secret must be at least 16 bytes when auth is enabled")
	}
	return nil
}
