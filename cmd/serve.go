package main

import (
	"context"

	"github.com/desertthunder/spotstats/internal/server"
	"github.com/desertthunder/spotstats/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the web dashboard until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}

	_, callbackPath, err := callbackAddr(r.config)
	if err != nil {
		return err
	}

	logger := shared.WithLogger(r.logger, "component", "server")
	dashboard, err := server.NewDashboard(server.DashboardOptions{
		Auth:         r.session,
		Stats:        r.stats,
		Theme:        r.themeName(cmd.String("theme")),
		Logger:       logger,
		CallbackPath: callbackPath,
	})
	if err != nil {
		return err
	}

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	srv, err := server.Listen(addr, server.NewHandler(dashboard, logger, r.config.Server.AllowedOrigins), logger)
	if err != nil {
		return err
	}

	r.writePlain("→ Dashboard running at http://%s (Ctrl+C to stop)\n", srv.Addr())
	return srv.Run(ctx)
}
