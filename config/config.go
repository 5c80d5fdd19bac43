package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	ListenAddr     string `yaml:"listen_addr"`
	DBPath         string `yaml:"db_path"`
	PageSize       int    `yaml:"page_size"`
	MaxPageSize    int    `yaml:"max_page_size"`
	ListingTTLDays int    `yaml:"listing_ttl_days"`
	SweepTime      string `yaml:"sweep_time"`
	Timezone       string `yaml:"timezone"`
	LogLevel       string `yaml:"log_level"`
}

// sweepTimeRegex validates HH:MM format with proper ranges.
var sweepTimeRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)

// Load reads configuration from a YAML file and applies defaults. A missing
// file is not an error: the defaults alone are a working configuration.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	case os.IsNotExist(err):
		// Fall through to defaults.
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	applyDefaults(cfg)
	applyEnvironmentOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// GetConfigPath returns the config file path from environment or default.
func GetConfigPath() string {
	if path := os.Getenv("MARKET_CONFIG"); path != "" {
		return path
	}
	return "./config.yaml"
}

func applyDefaults(cfg *Config) {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./campusmarket.db"
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = 20
	}
	if cfg.MaxPageSize == 0 {
		cfg.MaxPageSize = 100
	}
	if cfg.ListingTTLDays == 0 {
		cfg.ListingTTLDays = 30
	}
	if cfg.SweepTime == "" {
		cfg.SweepTime = "03:00"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

func applyEnvironmentOverrides(cfg *Config) {
	if dbPath := os.Getenv("MARKET_DB"); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if addr := os.Getenv("MARKET_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
}

func validate(cfg *Config) error {
	if cfg.PageSize < 1 {
		return fmt.Errorf("page_size must be positive, got %d", cfg.PageSize)
	}
	if cfg.MaxPageSize < cfg.PageSize {
		return fmt.Errorf("max_page_size (%d) must be >= page_size (%d)", cfg.MaxPageSize, cfg.PageSize)
	}
	if cfg.ListingTTLDays < 1 {
		return fmt.Errorf("listing_ttl_days must be positive, got %d", cfg.ListingTTLDays)
	}
	if !sweepTimeRegex.MatchString(cfg.SweepTime) {
		return fmt.Errorf("sweep_time must be in HH:MM format (00:00-23:59), got %q", cfg.SweepTime)
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	return nil
}
