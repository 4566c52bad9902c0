package main

import (
	"context"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotstats/internal/models"
	"github.com/desertthunder/spotstats/internal/shared"
	"github.com/desertthunder/spotstats/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal dashboard.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	timeRange, err := models.ParseTimeRange(cmd.String("range"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	logPath := filepath.Join(filepath.Dir(shared.ExpandPath(r.configPath)), "tui.log")
	fileLogger, err := shared.NewFileLogger(logPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	if err := r.connect(ctx); err != nil {
		return err
	}

	theme, ok := ui.ThemeByName(r.themeName(cmd.String("theme")))
	if !ok {
		r.logger.Warn("unknown theme, using default", "theme", cmd.String("theme"), "default", theme.Name)
	}

	model := ui.NewModel(ctx, r.stats, timeRange, theme)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
