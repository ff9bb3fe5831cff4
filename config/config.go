// Package config loads the board configuration shared by the server and boardctl.
package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// Default backend settings
	defaultBackendURL     = "http://localhost:8000"
	defaultBackendTimeout = 10 * time.Second
	defaultUserAgent      = "activityboard"

	// Default board behaviour
	defaultFadeDelay  = 300 * time.Millisecond
	defaultMessageTTL = 5 * time.Second

	// Default monitoring settings
	defaultMetricsPrefix = "activityboard"
	defaultJobName       = "activityboard"

	// Default logging settings
	defaultLogLevel  = "info"
	defaultLogFormat = "json"
	defaultLogOutput = "stdout"

	// EnvBackendURL overrides backend.url when set.
	EnvBackendURL = "ACTIVITYBOARD_BACKEND_URL"
)

// Config represents the complete board configuration
type Config struct {
	Backend    BackendConfig    `yaml:"backend"`
	Board      BoardConfig      `yaml:"board"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// BackendConfig holds the activities API connection settings
type BackendConfig struct {
	// URL is the base URL the /activities paths are resolved against
	URL string `yaml:"url"`

	// Timeout bounds every request to the backend
	Timeout time.Duration `yaml:"timeout"`

	UserAgent string `yaml:"user_agent"`
}

// BoardConfig holds the board's UI timings
type BoardConfig struct {
	// FadeDelay is how long a removed badge fades before the request is sent
	FadeDelay time.Duration `yaml:"fade_delay"`
	// MessageTTL is how long a status message stays visible
	MessageTTL time.Duration `yaml:"message_ttl"`
}

// MonitoringConfig holds metrics and monitoring settings
type MonitoringConfig struct {
	VictoriaMetricsURL string `yaml:"victoriametrics_url"`
	MetricsPrefix      string `yaml:"metrics_prefix"`
	JobName            string `yaml:"jobname"`
}

// LoggingConfig defines logging behavior settings
type LoggingConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	Output    string `yaml:"output"`
	AddSource bool   `yaml:"add_source"`
}

// Validate performs basic validation on the configuration
func (c *Config) Validate() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("backend url is required")
	}
	u, err := url.Parse(c.Backend.URL)
	if err != nil {
		return fmt.Errorf("invalid backend url %q: %w", c.Backend.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend url %q must use http or https", c.Backend.URL)
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend timeout must be positive")
	}
	if c.Board.FadeDelay < 0 {
		return fmt.Errorf("fade delay must not be negative")
	}
	if c.Board.MessageTTL <= 0 {
		return fmt.Errorf("message ttl must be positive")
	}
	if c.Monitoring.VictoriaMetricsURL != "" {
		if _, err := url.Parse(c.Monitoring.VictoriaMetricsURL); err != nil {
			return fmt.Errorf("invalid VictoriaMetrics URL: %w", err)
		}
	}
	return nil
}

// SetDefaults sets reasonable default values for optional fields. The fade
// delay is left alone since zero disables the fade; Default carries its
// default instead.
func (c *Config) SetDefaults() {
	if c.Backend.URL == "" {
		c.Backend.URL = defaultBackendURL
	}
	if c.Backend.Timeout == 0 {
		c.Backend.Timeout = defaultBackendTimeout
	}
	if c.Backend.UserAgent == "" {
		c.Backend.UserAgent = defaultUserAgent
	}
	if c.Board.MessageTTL == 0 {
		c.Board.MessageTTL = defaultMessageTTL
	}
	if c.Monitoring.MetricsPrefix == "" {
		c.Monitoring.MetricsPrefix = defaultMetricsPrefix
	}
	if c.Monitoring.JobName == "" {
		c.Monitoring.JobName = defaultJobName
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if c.Logging.Output == "" {
		c.Logging.Output = defaultLogOutput
	}
}

// ApplyEnv overrides settings from the environment. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvBackendURL); ok && v != "" {
		c.Backend.URL = v
	}
}

// Default returns a Config with every default applied.
func Default() Config {
	cfg := Config{Board: BoardConfig{FadeDelay: defaultFadeDelay}}
	cfg.SetDefaults()
	return cfg
}

// LoadConfig reads the YAML config file at the given path and layers it
// over the defaults. Keys missing from the file keep their default; an
// explicit fade_delay of 0 turns the fade off.
func LoadConfig(path string) (Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to decode YAML config: %w", err)
	}
	cfg.ApplyEnv(os.LookupEnv)
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
