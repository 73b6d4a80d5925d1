// Package config loads blog-desk settings from an optional YAML file and
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultPath is read when BLOG_DESK_CONFIG is unset.
	DefaultPath = "blog-desk.yaml"

	DefaultAPIBaseURL      = "http://localhost:8080"
	DefaultRequestTimeout  = 10 * time.Second
	DefaultTokenDB         = "blog-desk.db"
	DefaultListenAddr      = "127.0.0.1:3000"
	DefaultNotificationTTL = 6 * time.Second
	DefaultLogLevel        = "info"
)

// APIConfig describes the remote blog server.
type APIConfig struct {
	BaseURL        string        `yaml:"base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// StorageConfig locates the durable client state.
type StorageConfig struct {
	TokenDB string `yaml:"token_db"`
}

// UIConfig configures the local browser front-end.
type UIConfig struct {
	ListenAddr      string        `yaml:"listen_addr"`
	NotificationTTL time.Duration `yaml:"notification_ttl"`
}

// LogConfig configures slog.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Config holds the runtime configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	UI      UIConfig      `yaml:"ui"`
	Log     LogConfig     `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API:     APIConfig{BaseURL: DefaultAPIBaseURL, RequestTimeout: DefaultRequestTimeout},
		Storage: StorageConfig{TokenDB: DefaultTokenDB},
		UI:      UIConfig{ListenAddr: DefaultListenAddr, NotificationTTL: DefaultNotificationTTL},
		Log:     LogConfig{Level: DefaultLogLevel},
	}
}

// Load reads the file named by BLOG_DESK_CONFIG (or DefaultPath), applies
// environment overrides and validates the result. A missing file is not an
// error.
func Load() (*Config, error) {
	path := os.Getenv("BLOG_DESK_CONFIG")
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	cfg, err := LoadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			cfg = Default()
		} else {
			return nil, err
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile parses a YAML file over the defaults. Keys absent from the file
// keep their default values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = d
		return nil
	}

	str("BLOG_API_URL", &c.API.BaseURL)
	str("BLOG_TOKEN_DB", &c.Storage.TokenDB)
	str("BLOG_LISTEN_ADDR", &c.UI.ListenAddr)
	str("LOG_LEVEL", &c.Log.Level)
	if err := dur("BLOG_REQUEST_TIMEOUT", &c.API.RequestTimeout); err != nil {
		return err
	}
	return dur("BLOG_NOTIFICATION_TTL", &c.UI.NotificationTTL)
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL)
	}
	if c.API.RequestTimeout <= 0 {
		return fmt.Errorf("api.request_timeout must be positive, got %s", c.API.RequestTimeout)
	}
	if c.UI.NotificationTTL <= 0 {
		return fmt.Errorf("ui.notification_ttl must be positive, got %s", c.UI.NotificationTTL)
	}
	if strings.TrimSpace(c.Storage.TokenDB) == "" {
		return errors.New("storage.token_db is required")
	}
	if strings.TrimSpace(c.UI.ListenAddr) == "" {
		return errors.New("ui.listen_addr is required")
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// SlogLevel returns the configured log level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log.level must be debug, info, warn or error, got %q", s)
}
