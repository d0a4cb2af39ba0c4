package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds the CLI settings. Values come from built-in defaults, then the
// TOML file, then DASHKA_* environment variables.
type Config struct {
	DBPath           string `toml:"db_path"`            // DASHKA_DB_PATH (default ~/.local/state/dashka/dashka.db)
	NATSURL          string `toml:"nats_url"`           // DASHKA_NATS_URL (optional, empty = no events)
	AnalyticsBaseURL string `toml:"analytics_base_url"` // DASHKA_ANALYTICS_BASE_URL (optional, fallback for the stored setting)
	LogLevel         string `toml:"log_level"`          // DASHKA_LOG_LEVEL (default "warn")
}

// Path returns the config file location: DASHKA_CONFIG, or
// ~/.config/dashka/config.toml.
func Path() (string, error) {
	if p := os.Getenv("DASHKA_CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "dashka", "config.toml"), nil
}

// DefaultDBPath returns ~/.local/state/dashka/dashka.db.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", "dashka", "dashka.db"), nil
}

func Load() (*Config, error) {
	c := &Config{LogLevel: "warn"}
	if p, err := DefaultDBPath(); err == nil {
		c.DBPath = p
	}

	path, err := Path()
	if err != nil {
		return nil, err
	}
	if err := c.decodeFile(path); err != nil {
		return nil, err
	}

	c.DBPath = envOrDefault("DASHKA_DB_PATH", c.DBPath)
	c.NATSURL = envOrDefault("DASHKA_NATS_URL", c.NATSURL)
	c.AnalyticsBaseURL = envOrDefault("DASHKA_ANALYTICS_BASE_URL", c.AnalyticsBaseURL)
	c.LogLevel = envOrDefault("DASHKA_LOG_LEVEL", c.LogLevel)

	if c.DBPath == "" {
		return nil, fmt.Errorf("DASHKA_DB_PATH is required when the home directory is unknown")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return nil, fmt.Errorf("DASHKA_LOG_LEVEL: %w", err)
	}
	return c, nil
}

// decodeFile overlays the TOML file at path onto c. A missing file is not an error.
func (c *Config) decodeFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}
	return nil
}

// Level returns the parsed log level, defaulting to warn.
func (c *Config) Level() slog.Level {
	lvl, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}
	return lvl
}

// ParseLevel accepts debug, info, warn, or error, case-insensitively.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return lvl, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
