package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/yt2text/internal/services"
	"github.com/desertthunder/yt2text/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	service := services.NewTranscriberService(config.Backend.BaseURL, nil)

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Service: service,
		Logger:  logger,
	})
	runner.applySession()

	app := &cli.Command{
		Name:     "yt2text",
		Usage:    "Submit YouTube videos for transcription and collect the results",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
