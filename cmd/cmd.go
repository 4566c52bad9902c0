// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/desertthunder/spotstats/internal/ui"
	"github.com/urfave/cli/v3"
)

const (
	defaultConfigPath   = "~/.spotstats/config.toml"
	defaultLoginTimeout = 2 * time.Minute
)

// newApp builds the root command around r.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:     "spotstats",
		Usage:    "Your Spotify listening statistics in the terminal and the browser",
		Version:  "0.1.0",
		Flags:    globalFlags(),
		Before:   r.Before,
		Commands: r.register(),
	}
}

// globalFlags are accepted by every command.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   defaultConfigPath,
			Sources: cli.EnvVars("SPOTSTATS_CONFIG"),
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable debug logging",
		},
	}
}

// rangeFlag selects the statistics window.
func rangeFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "range",
		Aliases: []string{"r"},
		Usage:   "Time range: short (4 weeks), medium (6 months) or long (all time)",
		Value:   "medium",
	}
}

func themeFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "theme",
		Usage: "Color theme (spotify, midnight or mono); defaults to ui.theme from the config",
	}
}

// topFlags are shared by the top subcommands.
func topFlags(limit int) []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"n"},
			Usage:   "Number of items to show",
			Value:   limit,
		},
		rangeFlag(),
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: table, json, csv or markdown",
			Value:   "table",
		},
	}
}

// setupCommand writes the config file and prepares the token database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create the config file and initialize the token database",
		Action: r.Setup,
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the Spotify session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authorize with Spotify through a local callback server",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the authorization URL instead of opening a browser",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the callback",
						Value: defaultLoginTimeout,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "paste",
				Usage: "Authorize by pasting the redirect URL (or the bare code) from the browser",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "url"},
				},
				Action: r.AuthPaste,
			},
			{
				Name:  "status",
				Usage: "Show the session state and token expiry",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored token",
				Action: r.AuthLogout,
			},
		},
	}
}

// topCommand prints listening statistics
func topCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "top",
		Usage: "Show your top tracks, artists or genres",
		Commands: []*cli.Command{
			{
				Name:    "tracks",
				Aliases: []string{"t"},
				Usage:   "Top tracks",
				Flags:   topFlags(10),
				Action:  r.TopTracks,
			},
			{
				Name:    "artists",
				Aliases: []string{"a"},
				Usage:   "Top artists with their genres",
				Flags:   topFlags(10),
				Action:  r.TopArtists,
			},
			{
				Name:    "genres",
				Aliases: []string{"g"},
				Usage:   "Most common genres among your top 50 artists",
				Flags:   topFlags(10),
				Action:  r.TopGenres,
			},
		},
	}
}

// serveCommand runs the web dashboard.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web dashboard",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address; defaults to server.host:server.port from the config",
			},
			themeFlag(),
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for the interactive dashboard.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive dashboard",
		Flags:   []cli.Flag{rangeFlag(), themeFlag()},
		Action:  r.TUI,
	}
}

// themeName picks the flag value over the configured theme.
func (r *Runner) themeName(flag string) string {
	if flag != "" {
		return flag
	}
	if r.config != nil && r.config.UI.Theme != "" {
		return r.config.UI.Theme
	}
	return ui.DefaultTheme
}
