package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/yt2text/internal/services"
	"github.com/desertthunder/yt2text/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup initializes the configuration file and the local job store, running
// any pending migrations. With --rollback it undoes the most recent
// migration instead.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := "config.toml"

	if _, err := os.Stat(configPath); err == nil {
		config, err := shared.LoadConfig(configPath)
		if err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
		} else {
			r.config = config
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else if config, err := shared.LoadConfig(configPath); err == nil {
			r.config = config
		}
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if cmd.Bool("rollback") {
		r.logger.Info("rolling back most recent migration")
		if err := shared.RollbackMigration(db); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
		return r.writePlain("✓ Rolled back most recent migration\n")
	}

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if cookieFile := cmd.String("cookies"); cookieFile != "" {
		if err := r.verifyCookies(cookieFile); err != nil {
			return err
		}
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return nil
}

// verifyCookies parses a curl export and reports what the backend would
// receive, so a bad paste surfaces here instead of on first submission.
func (r *Runner) verifyCookies(path string) error {
	headers, err := shared.ParseCurlFile(path)
	if err != nil {
		return fmt.Errorf("failed to parse cURL file: %w", err)
	}

	cookies := services.CookiesFromCurl(headers, "")
	if len(cookies) == 0 {
		return fmt.Errorf("%w: no cookies found in %s", shared.ErrInvalidArgument, path)
	}

	r.writePlain("✓ Parsed %d cookies from %s\n", len(cookies), path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Update config.toml with: cookies.curl_file = \"%s\"\n", path)
	r.writePlain("2. Run 'yt2text process <url>' on a members-only video to test\n")

	return nil
}
