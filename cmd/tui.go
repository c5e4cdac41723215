package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/hymnal/internal/shared"
	"github.com/desertthunder/hymnal/internal/tasks"
	"github.com/desertthunder/hymnal/internal/ui"
)

// TUI launches the interactive terminal hymnal.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.catalog == nil {
		return fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}

	lang, err := r.languageFlag(cmd)
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/hymnal-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cmd.Bool("warm") {
		opts, err := r.warmOpts(cmd)
		if err != nil {
			return err
		}
		engine := tasks.NewWarmEngine(r.catalog, r.resolver, shared.WithLogger(fileLogger, "task", "warm"))
		go func() {
			if _, err := engine.Run(ctx, nil, opts); err != nil {
				fileLogger.Warn("background warm stopped", "error", err)
			}
		}()
	}

	model := ui.NewModel(ctx, ui.Options{
		Store:     r.catalog,
		Generator: r.generator,
		Resolver:  r.resolver,
		Likes:     r.likes,
		Auth:      r.auth,
		Language:  lang,
		Logger:    fileLogger,
	})
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
