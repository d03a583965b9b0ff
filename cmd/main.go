package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/qaren/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	if err := shared.LoadDotEnv(); err != nil {
		logger.Warn("failed to load .env", "error", err)
	}

	configPath := os.Getenv(shared.EnvConfigPath)
	if configPath == "" {
		configPath = "config.toml"
	}
	config, err := shared.ResolveConfig(configPath)
	if err != nil {
		logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		config = shared.DefaultConfig()
		config.ApplyEnv()
	}
	shared.SetLogLevel(logger, shared.ParseLogLevel(config.Server.LogLevel))

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "qaren",
		Usage:    "Flight-offer search proxy with a cached client-credentials token",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrMissingCredentials) {
			logger.Fatal("missing credentials", "hint", "set "+shared.EnvClientID+" and "+shared.EnvClientSecret+" or add them to "+configPath)
		}
		logger.Fatalf("application error: %v", err)
	}
}
