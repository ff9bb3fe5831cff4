package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/nomis52/activityboard/board"
	"github.com/nomis52/activityboard/clients/activityclient"
	"github.com/nomis52/activityboard/config"
	"github.com/nomis52/activityboard/logging"
	"github.com/nomis52/activityboard/metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "BOARDCTL"

// app holds what the subcommands share: the merged configuration and, once
// a command needs it, a board talking to the backend.
type app struct {
	v       *viper.Viper
	cfgFile string

	logger   *logging.Logger
	registry *metrics.PushRegistry
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "boardctl",
		Short:         "Sign students up for Mergington High School activities",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.boardctl.yaml)")
	flags.String("backend", "", "activities API base URL")
	flags.Duration("timeout", 0, "backend request timeout")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	_ = a.v.BindPFlag("backend.url", flags.Lookup("backend"))
	_ = a.v.BindPFlag("backend.timeout", flags.Lookup("timeout"))
	_ = a.v.BindPFlag("logging.level", flags.Lookup("log-level"))

	root.AddCommand(
		newListCmd(a),
		newSignupCmd(a),
		newRemoveCmd(a),
		newVersionCmd(),
	)
	return root
}

// loadConfig merges flags, BOARDCTL_* environment variables and the config
// file, in that order of precedence, over the board defaults.
func (a *app) loadConfig() (config.Config, error) {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return config.Config{}, fmt.Errorf("finding home directory: %w", err)
		}
		a.v.AddConfigPath(home)
		a.v.SetConfigName(".boardctl")
		a.v.SetConfigType("yaml")
	}

	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()
	// The server's variable works here too.
	_ = a.v.BindEnv("backend.url", envPrefix+"_BACKEND_URL", config.EnvBackendURL)

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config.Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	// Built from scratch rather than config.Default: there is no badge to
	// fade in a terminal, so an unset fade_delay stays zero.
	cfg := config.Config{
		Backend: config.BackendConfig{
			URL:       a.v.GetString("backend.url"),
			Timeout:   a.v.GetDuration("backend.timeout"),
			UserAgent: a.v.GetString("backend.user_agent"),
		},
		Board: config.BoardConfig{
			FadeDelay:  a.v.GetDuration("board.fade_delay"),
			MessageTTL: a.v.GetDuration("board.message_ttl"),
		},
		Monitoring: config.MonitoringConfig{
			VictoriaMetricsURL: a.v.GetString("monitoring.victoriametrics_url"),
			MetricsPrefix:      a.v.GetString("monitoring.metrics_prefix"),
			JobName:            a.v.GetString("monitoring.jobname"),
		},
		Logging: config.LoggingConfig{
			Level:     a.v.GetString("logging.level"),
			Format:    a.v.GetString("logging.format"),
			Output:    a.v.GetString("logging.output"),
			AddSource: a.v.GetBool("logging.add_source"),
		},
	}
	// Terminal output stays readable unless the file asks otherwise.
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "warn"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newBoard builds a board from the merged configuration. Log lines go to
// stderr unless logging.output names a file.
func (a *app) newBoard(cmd *cobra.Command) (*board.Board, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}

	logCfg := logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Output:    cfg.Logging.Output,
		AddSource: cfg.Logging.AddSource,
	}
	if !a.v.IsSet("logging.output") {
		logCfg.Writer = cmd.ErrOrStderr()
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger

	client, err := activityclient.New(cfg.Backend.URL,
		activityclient.WithTimeout(cfg.Backend.Timeout),
		activityclient.WithUserAgent(cfg.Backend.UserAgent),
		activityclient.WithLogger(logger.Logger),
	)
	if err != nil {
		return nil, err
	}

	var boardMetrics *board.Metrics
	if cfg.Monitoring.VictoriaMetricsURL != "" {
		hostname, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("failed to get hostname: %w", err)
		}
		a.registry = metrics.NewPushRegistry(metrics.PushConfig{
			URL:      cfg.Monitoring.VictoriaMetricsURL,
			Prefix:   cfg.Monitoring.MetricsPrefix,
			Job:      cfg.Monitoring.JobName,
			Instance: hostname,
		})
		boardMetrics, err = board.NewMetrics(a.registry)
		if err != nil {
			return nil, err
		}
	}

	return board.New(client,
		board.WithLogger(logger.Logger),
		board.WithMetrics(boardMetrics),
		board.WithFadeDelay(cfg.Board.FadeDelay),
		board.WithMessageTTL(cfg.Board.MessageTTL),
	), nil
}

// withBoard runs fn against a fresh board and pushes the recorded metrics
// afterwards, whether or not fn failed.
func (a *app) withBoard(cmd *cobra.Command, fn func(ctx context.Context, b *board.Board) error) error {
	b, err := a.newBoard(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	runErr := fn(ctx, b)

	if a.registry != nil {
		if err := a.registry.Flush(ctx); err != nil {
			a.logger.Warn("failed to push metrics", "error", err)
		}
	}
	return runErr
}
