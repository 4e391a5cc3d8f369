// Package config loads tuya-pip configuration. Core packages never read
// the environment themselves: the resolved values are built here once and
// passed into constructors.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFirewallURL is used when no flag, env var, or config file sets one.
const DefaultFirewallURL = "http://127.0.0.1:8000"

// EnvFirewallURL is the environment override for the firewall base URL.
const EnvFirewallURL = "TUYA_FIREWALL_URL"

// Config is the tuya-pip.yaml configuration.
type Config struct {
	FirewallURL         string   `yaml:"firewall_url,omitempty"`
	TimeoutSeconds      int      `yaml:"timeout_seconds,omitempty"`
	ProbeTimeoutSeconds int      `yaml:"probe_timeout_seconds,omitempty"`
	PipCommand          []string `yaml:"pip_command,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		FirewallURL:         DefaultFirewallURL,
		TimeoutSeconds:      30,
		ProbeTimeoutSeconds: 5,
		PipCommand:          []string{"pip"},
	}
}

// Load reads a tuya-pip.yaml from path. A missing file is not an error:
// the defaults apply.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses raw YAML bytes, filling unset fields with defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FirewallURL == "" {
		cfg.FirewallURL = DefaultFirewallURL
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 30
	}
	if cfg.ProbeTimeoutSeconds <= 0 {
		cfg.ProbeTimeoutSeconds = 5
	}
	if len(cfg.PipCommand) == 0 {
		cfg.PipCommand = []string{"pip"}
	}
	return cfg, nil
}

// Timeout is the validation request timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ProbeTimeout is the connectivity probe timeout.
func (c Config) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutSeconds) * time.Second
}

// ResolveFirewallURL applies precedence: flag > TUYA_FIREWALL_URL > config
// file > default. A .env file in the working directory is honored for the
// env lookup, best effort.
func ResolveFirewallURL(flagValue string, cfg Config) string {
	if flagValue != "" {
		return flagValue
	}
	_ = godotenv.Load()
	if env := os.Getenv(EnvFirewallURL); env != "" {
		return env
	}
	if cfg.FirewallURL != "" {
		return cfg.FirewallURL
	}
	return DefaultFirewallURL
}
