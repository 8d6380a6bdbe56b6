// Package config loads the terminal client configuration from an optional
// YAML file with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ServerURL      string        `yaml:"server_url"`
	Token          string        `yaml:"token"`
	UserID         string        `yaml:"user_id"`
	DisplayName    string        `yaml:"display_name"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	SearchDebounce time.Duration `yaml:"search_debounce"`
	Telemetry      bool          `yaml:"telemetry"`
	LogLevel       string        `yaml:"log_level"`
}

// DefaultPath is where Load looks when no --config flag is given.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".commons", "config.yaml")
}

// Load reads the YAML file at path (skipped if absent), then applies
// environment overrides. Env always wins over file values.
func Load(path string) (Config, error) {
	cfg := Config{
		ServerURL:      "http://localhost:8787/api",
		RequestTimeout: 15 * time.Second,
		SearchDebounce: 250 * time.Millisecond,
		Telemetry:      true,
		LogLevel:       "info",
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// no file is fine; env and defaults apply
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.ServerURL = getenv("COMMONS_SERVER_URL", cfg.ServerURL)
	cfg.Token = getenv("COMMONS_TOKEN", cfg.Token)
	cfg.UserID = getenv("COMMONS_USER_ID", cfg.UserID)
	cfg.DisplayName = getenv("COMMONS_DISPLAY_NAME", cfg.DisplayName)
	cfg.LogLevel = getenv("COMMONS_LOG_LEVEL", cfg.LogLevel)
	cfg.Telemetry = getenvBool("COMMONS_TELEMETRY", cfg.Telemetry)
	if seconds := getenvInt("COMMONS_REQUEST_TIMEOUT_SECONDS", 0); seconds > 0 {
		cfg.RequestTimeout = time.Duration(seconds) * time.Second
	}
	if ms := getenvInt("COMMONS_SEARCH_DEBOUNCE_MS", 0); ms > 0 {
		cfg.SearchDebounce = time.Duration(ms) * time.Millisecond
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
