package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/n0madic/go-feedclient/internal/auth"
)

const (
	BaseURLDefault = "http://localhost:8080"
	TimeoutDefault = 10 * time.Second
	configFilename = "config.yaml"
)

// Config holds all client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Verbose bool
	Debug   bool
	// Token overrides the stored session token when set.
	Token string
}

// fileConfig is the on-disk YAML format.
type fileConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
	Verbose bool   `yaml:"verbose"`
	Debug   bool   `yaml:"debug"`
}

// LoadDotEnv loads .env from the working directory into the process
// environment. Variables already set are left alone.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("unable to load .env", "error", err)
	}
}

// Load builds the configuration from defaults, the YAML config file in the
// client home directory and FEEDCLIENT_* environment variables, in that order.
func Load() (*Config, error) {
	cfg := &Config{
		BaseURL: BaseURLDefault,
		Timeout: TimeoutDefault,
	}
	if err := cfg.applyFile(filepath.Join(auth.HomeDir(), configFilename)); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("unable to read %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("unable to parse %s: %w", path, err)
	}
	if fc.BaseURL != "" {
		c.BaseURL = fc.BaseURL
	}
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout in %s: %w", path, err)
		}
		c.Timeout = d
	}
	c.Verbose = c.Verbose || fc.Verbose
	c.Debug = c.Debug || fc.Debug
	return nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv("FEEDCLIENT_BASE_URL")); v != "" {
		c.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("FEEDCLIENT_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid FEEDCLIENT_TIMEOUT %q: %w", v, err)
		}
		c.Timeout = d
	}
	if _, ok := os.LookupEnv("FEEDCLIENT_VERBOSE"); ok {
		c.Verbose = envBool("FEEDCLIENT_VERBOSE")
	}
	if _, ok := os.LookupEnv("FEEDCLIENT_DEBUG"); ok {
		c.Debug = envBool("FEEDCLIENT_DEBUG")
	}
	c.Token = strings.TrimSpace(os.Getenv("FEEDCLIENT_TOKEN"))
	return nil
}

// Endpoint joins the base URL and an API path.
func (c *Config) Endpoint(path string) string {
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

func envBool(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}
