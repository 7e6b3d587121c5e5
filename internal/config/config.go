// Package config loads the Runalyze connection settings from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "RUNALYZE"

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/110.0.0.0 Safari/537.36"

// Config holds the settings needed to download data browser reports.
type Config struct {
	BaseURL    string        `envconfig:"BASE_URL" default:"https://runalyze.com" validate:"required,url"`
	Cookie     string        `envconfig:"COOKIE" validate:"required"`
	CookieFile string        `envconfig:"COOKIE_FILE" default:"cookie"`
	UserAgent  string        `envconfig:"USER_AGENT" validate:"required"`
	Timeout    time.Duration `envconfig:"TIMEOUT" default:"60s" validate:"gt=0"`
	// Minimum delay between two report requests.
	RequestInterval time.Duration `envconfig:"REQUEST_INTERVAL" default:"1s" validate:"gte=0"`
}

// Load reads .env files (missing ones are skipped), then RUNALYZE_* variables.
// When no cookie is set in the environment it is read from CookieFile.
func Load(envFiles ...string) (*Config, error) {
	for _, path := range envFiles {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	if cfg.Cookie == "" && cfg.CookieFile != "" {
		data, err := os.ReadFile(cfg.CookieFile)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read cookie file: %w", err)
		}
		cfg.Cookie = strings.TrimSpace(string(data))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
