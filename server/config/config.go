// Package config loads the server runtime configuration.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	defaultAddr          = ":8080"
	defaultIdleTimeout   = 30 * time.Minute
	defaultMaxSessions   = 1000
	defaultPruneSchedule = "*/5 * * * *"
	defaultLogLevel      = "info"

	// EnvListenAddr overrides listener.addr when set.
	EnvListenAddr = "ACTIVITYBOARD_LISTEN_ADDR"
)

// ServerConfig represents the server runtime configuration.
type ServerConfig struct {
	Listener ListenerConfig `yaml:"listener"`
	Sessions SessionsConfig `yaml:"sessions"`
	LogLevel string         `yaml:"log_level"`
	// The path to the board config file
	BoardConfig string     `yaml:"board_config"`
	CSRF        CSRFConfig `yaml:"csrf"`
}

// ListenerConfig holds HTTP server listener settings.
type ListenerConfig struct {
	// The listen address, defaults to :8080
	Addr string `yaml:"addr"`
	// TLSCert and TLSKey enable HTTPS. Both or neither must be set; the
	// files are re-read when they change.
	TLSCert string `yaml:"tls_cert"`
	TLSKey  string `yaml:"tls_key"`
}

// SessionsConfig controls the per-browser boards.
type SessionsConfig struct {
	// Sessions not seen for this long are pruned
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	// Upper bound on live sessions; the least recently seen is evicted
	MaxSessions int `yaml:"max_sessions"`
	// The cron spec the prune job runs at
	PruneSchedule string `yaml:"prune_schedule"`
}

// CSRFConfig configures form CSRF protection.
type CSRFConfig struct {
	// Key is a hex encoded 32 byte authentication key. A random key is
	// generated at startup when empty, which invalidates open forms on restart.
	Key string `yaml:"key"`
	// Secure marks the CSRF cookie as HTTPS only
	Secure bool `yaml:"secure"`
}

// LoadConfig reads the YAML config file at the given path and returns a ServerConfig struct.
func LoadConfig(path string) (*ServerConfig, error) {
	var cfg ServerConfig
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open server config file %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode YAML server config: %w", err)
	}

	cfg.ApplyEnv(os.LookupEnv)
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults sets reasonable default values for optional fields.
func (c *ServerConfig) SetDefaults() {
	if c.Listener.Addr == "" {
		c.Listener.Addr = defaultAddr
	}
	if c.Sessions.IdleTimeout == 0 {
		c.Sessions.IdleTimeout = defaultIdleTimeout
	}
	if c.Sessions.MaxSessions == 0 {
		c.Sessions.MaxSessions = defaultMaxSessions
	}
	if c.Sessions.PruneSchedule == "" {
		c.Sessions.PruneSchedule = defaultPruneSchedule
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
}

// Validate checks the configuration after defaults are applied.
func (c *ServerConfig) Validate() error {
	if (c.Listener.TLSCert == "") != (c.Listener.TLSKey == "") {
		return fmt.Errorf("listener tls_cert and tls_key must be set together")
	}
	if c.Sessions.IdleTimeout < 0 {
		return fmt.Errorf("sessions idle_timeout must not be negative")
	}
	if c.Sessions.MaxSessions < 0 {
		return fmt.Errorf("sessions max_sessions must not be negative")
	}
	if _, err := cron.ParseStandard(c.Sessions.PruneSchedule); err != nil {
		return fmt.Errorf("invalid prune_schedule %q: %w", c.Sessions.PruneSchedule, err)
	}
	if _, err := c.CSRFKey(); err != nil {
		return err
	}
	return nil
}

// ApplyEnv overrides settings from the environment. lookup is usually
// os.LookupEnv.
func (c *ServerConfig) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvListenAddr); ok && v != "" {
		c.Listener.Addr = v
	}
}

// CSRFKey decodes the configured key. It returns nil when no key is set.
func (c *ServerConfig) CSRFKey() ([]byte, error) {
	if c.CSRF.Key == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(c.CSRF.Key)
	if err != nil {
		return nil, fmt.Errorf("csrf key must be hex encoded: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("csrf key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}
