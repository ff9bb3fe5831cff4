package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/nomis52/activityboard/buildinfo"
	"github.com/nomis52/activityboard/server"
	serverconfig "github.com/nomis52/activityboard/server/config"
)

type Args struct {
	ConfigPath string
	EnvFile    string
	Validate   bool
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	args := parseArgs()

	if args.ConfigPath == "" {
		return fmt.Errorf("config flag (-c or --config) is required")
	}

	// Environment overrides are read before either config file.
	if err := loadEnvFile(args.EnvFile); err != nil {
		return err
	}

	srvCfg, err := serverconfig.LoadConfig(args.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load server config: %w", err)
	}

	srv, err := server.New(srvCfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	if args.Validate {
		fmt.Printf("Configuration validation successful: %s\n", args.ConfigPath)
		return nil
	}

	srv.Logger().Info("activityboard server started",
		"build", buildinfo.Get().String(),
		"config_path", args.ConfigPath,
	)

	// Set up signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		srv.Logger().Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	return srv.Run(ctx)
}

// loadEnvFile reads KEY=value pairs into the environment. A missing file is
// not an error; variables already set win over the file.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func parseArgs() Args {
	configPath := flag.String("config", "", "Path to server config file")
	configPathShort := flag.String("c", "", "Path to server config file (shorthand)")
	envFile := flag.String("env-file", ".env", "Optional file of environment overrides")
	validate := flag.Bool("validate", false, "Validate the configuration and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nActivity Board Server - sign students up for extracurricular activities\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment:\n")
		fmt.Fprintf(os.Stderr, "  %s overrides the backend URL\n", "ACTIVITYBOARD_BACKEND_URL")
		fmt.Fprintf(os.Stderr, "  %s overrides the listen address\n", serverconfig.EnvListenAddr)
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --config /etc/activityboard/server.yaml\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -c server.yaml -env-file prod.env\n", os.Args[0])
	}

	flag.Parse()

	path := *configPath
	if path == "" && *configPathShort != "" {
		path = *configPathShort
	}

	return Args{
		ConfigPath: path,
		EnvFile:    *envFile,
		Validate:   *validate,
	}
}
