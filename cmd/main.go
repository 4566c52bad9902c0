package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/spotstats/internal/services"
	"github.com/desertthunder/spotstats/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{ConfigPath: defaultConfigPath, Logger: logger})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newApp(runner).Run(ctx, os.Args)
	stop()

	if closeErr := runner.Close(); closeErr != nil {
		logger.Warn("failed to close token store", "error", closeErr)
	}

	if err != nil {
		logger.Debug("command failed", "error", err)
		fmt.Fprintln(os.Stderr, errorMessage(err))
		os.Exit(1)
	}
}

// errorMessage turns a failure into the message the user should act on.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, shared.ErrMissingConfig), errors.Is(err, shared.ErrInvalidConfig):
		return fmt.Sprintf("Configuration error: %v\nRun `spotstats setup` and fill in your Spotify credentials.", err)
	case services.NeedsLogin(err):
		return fmt.Sprintf("%v\nRun `spotstats auth login` to sign in.", err)
	case errors.Is(err, shared.ErrRateLimited), errors.Is(err, shared.ErrTransient):
		return fmt.Sprintf("Spotify is unavailable right now (%v). Try again in a moment.", err)
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
