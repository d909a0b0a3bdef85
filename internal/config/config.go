package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// CurrentVersion is written into new config files.
const CurrentVersion = "1"

// Config represents the docroute configuration stored in ~/.docroute/config.json.
type Config struct {
	Version   string  `json:"version"`
	DBPath    string  `json:"db_path"`
	HTTPAddr  string  `json:"http_addr"`
	JWTSecret string  `json:"jwt_secret,omitempty"`
	LogLevel  string  `json:"log_level"`           // debug, info, warn, error
	RateRPS   float64 `json:"rate_rps,omitempty"`  // per-actor request rate on the HTTP API
	RateBurst int     `json:"rate_burst,omitempty"`
}

// HomeDir returns the docroute state directory. DOCROUTE_HOME overrides the
// default of ~/.docroute.
func HomeDir() (string, error) {
	if dir := os.Getenv("DOCROUTE_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".docroute"), nil
}

// Default returns the configuration used when no config file exists.
func Default(dir string) *Config {
	return &Config{
		Version:   CurrentVersion,
		DBPath:    filepath.Join(dir, "docroute.db"),
		HTTPAddr:  ":8080",
		LogLevel:  "info",
		RateRPS:   5,
		RateBurst: 10,
	}
}

// LoadConfig reads config.json from the specified directory.
// Returns error if no config found - caller should handle accordingly.
func LoadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default(dir)
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes config.json to directory
func SaveConfig(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Load resolves the effective configuration: config.json in HomeDir if
// present, defaults otherwise, then environment overrides.
func Load() (*Config, error) {
	dir, err := HomeDir()
	if err != nil {
		return nil, err
	}

	cfg, err := LoadConfig(dir)
	if errors.Is(err, os.ErrNotExist) {
		cfg = Default(dir)
	} else if err != nil {
		return nil, err
	}

	cfg.ApplyEnv(os.Getenv)
	return cfg, nil
}

// ApplyEnv overrides fields from DOCROUTE_* environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("DOCROUTE_DB"); v != "" {
		c.DBPath = v
	}
	if v := getenv("DOCROUTE_HTTP_ADDR"); v != "" {
		c.HTTPAddr = v
	}
	if v := getenv("DOCROUTE_JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := getenv("DOCROUTE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("DOCROUTE_RATE_RPS"); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil {
			c.RateRPS = rps
		}
	}
	if v := getenv("DOCROUTE_RATE_BURST"); v != "" {
		if burst, err := strconv.Atoi(v); err == nil {
			c.RateBurst = burst
		}
	}
}
