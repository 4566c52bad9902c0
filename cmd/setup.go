package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/spotstats/internal/repositories"
	"github.com/desertthunder/spotstats/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file from the embedded template if missing and prepares the configured token store.
//
// For the sqlite backend this creates the database and runs migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	path := shared.ExpandPath(r.configPath)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		r.logger.Info("config file not found, creating from template", "path", path)
		if err := shared.CreateConfigFile(path); err != nil {
			return err
		}
		r.writePlain("✓ Config file created at %s\n", path)
	} else {
		r.writePlain("✓ Using existing config at %s\n", path)
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return err
	}
	r.config = config

	r.logger.Info("initializing token store", "backend", config.Storage.Backend, "database", config.Database.Path)
	_, closer, err := repositories.Open(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to initialize token store: %w", err)
	}
	if err := closer.Close(); err != nil {
		r.logger.Warn("failed to close token store", "error", err)
	}
	r.writePlain("✓ Token store ready (%s)\n", config.Storage.Backend)

	r.writePlainln("Next steps:")
	r.writePlain("1. Create an app at https://developer.spotify.com/dashboard with redirect URI %s\n",
		config.Credentials.Spotify.RedirectURI)
	r.writePlain("2. Put its client_id and client_secret in %s\n", path)
	r.writePlain("3. Run 'spotstats auth login'\n")

	return nil
}
