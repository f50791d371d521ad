package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/yt2text/internal/shared"
	"github.com/desertthunder/yt2text/internal/subject"
	"github.com/desertthunder/yt2text/internal/tasks"
	"github.com/desertthunder/yt2text/internal/ui"
	"github.com/urfave/cli/v3"
)

// Watch launches the interactive terminal UI for one video. The caller sees
// live job status; submission, copy, and open-in-browser are bound to keys.
func (r *Runner) Watch(ctx context.Context, cmd *cli.Command) error {
	rawURL := cmd.Args().First()
	if rawURL == "" {
		return fmt.Errorf("%w: url", shared.ErrMissingArgument)
	}

	sub, err := subject.Detect(rawURL, "")
	if err != nil {
		return fmt.Errorf("failed to detect video: %w", err)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/yt2text-watch.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	engine := tasks.NewSyncEngine(r.client, r.ledger(db), r.config.Backend.PollInterval(), fileLogger)
	defer engine.Close()

	if err := engine.SetSubject(ctx, sub); err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}

	// Placeholder labels refine in the background once yt-dlp resolves the
	// real title.
	lister := subject.NewYtDlpLister("", r.config.Batch.RateLimit)
	tracker := subject.NewTracker(lister, engine.RefineLabel)
	tracker.Refine(ctx, sub.ID, sub.Label)
	defer tracker.Cancel(sub.ID)

	model := ui.NewModel(ctx, engine)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
