package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/playster/internal/shared"
	"github.com/desertthunder/playster/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI.
//
// The stored account is restored in the background while the loading screen is up.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.UI.LogPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	prompts := make(ui.PromptChannel, 1)
	ctrl, err := r.controller(prompts)
	if err != nil {
		return err
	}

	go func() {
		if r.session.RestoreFrom(ctx, r.prefs.Watch(ctx)) {
			r.logger.Debug("stored account offered to session")
		}
	}()

	model := ui.NewModel(ctx, ui.Options{
		Session:    r.session,
		Auth:       ctrl,
		Playlists:  r.playlistService(ctrl),
		Prompts:    prompts,
		MinLoading: r.config.UI.MinLoading,
		Logger:     r.logger,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
