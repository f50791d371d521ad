package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/yt2text/internal/formatter"
	"github.com/desertthunder/yt2text/internal/shared"
	"github.com/desertthunder/yt2text/internal/subject"
	"github.com/desertthunder/yt2text/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Process submits a single video for transcription, follows the job until it
// settles, and writes the transcript to the output directory. If the store
// already maps the video to a live job, that job is resumed instead of
// submitting a duplicate.
func (r *Runner) Process(ctx context.Context, cmd *cli.Command) error {
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

	engine := tasks.NewSyncEngine(r.client, r.ledger(db), r.config.Backend.PollInterval(), r.logger)
	defer engine.Close()

	if err := engine.SetSubject(ctx, sub); err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}

	switch engine.State() {
	case tasks.StateIdle:
		r.logger.Info("submitting video", "id", sub.ID)
		if err := engine.Submit(ctx); err != nil {
			return fmt.Errorf("submission failed: %w", err)
		}
	case tasks.StateCompleted:
		r.logger.Info("job already finished", "id", sub.ID)
	default:
		r.logger.Info("resuming recorded job", "id", sub.ID)
	}

	view, err := r.followJob(ctx, engine)
	if err != nil {
		return err
	}

	if cmd.Bool("no-save") {
		return r.writePlain("%s\n", view.Content)
	}

	outDir := cmd.String("output")
	if outDir == "" {
		outDir = r.config.Output.Dir
	}

	path, err := formatter.WriteTranscript(outDir, engine.Subject(), view.Content)
	if err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}

	r.writePlain("✓ Transcript saved to %s\n", path)
	return nil
}

// followJob drains engine updates until the job settles, logging status
// transitions along the way. The periodic fallback re-checks engine state so
// a dropped update can never strand the loop.
func (r *Runner) followJob(ctx context.Context, engine *tasks.SyncEngine) (tasks.TaskView, error) {
	lastStatus := ""
	for {
		var view tasks.TaskView
		select {
		case <-ctx.Done():
			return engine.View(), ctx.Err()
		case view = <-engine.Updates():
		case <-time.After(time.Second):
			view = engine.View()
		}

		if view.StatusLine != lastStatus && view.StatusLine != "" {
			lastStatus = view.StatusLine
			if view.Elapsed > 0 {
				r.logger.Info(view.StatusLine, "elapsed", shared.FormatElapsed(view.Elapsed))
			} else {
				r.logger.Info(view.StatusLine)
			}
		}
		if view.Warning != "" {
			r.logger.Warn(view.Warning)
		}

		switch engine.State() {
		case tasks.StateCompleted:
			return engine.View(), nil
		case tasks.StateFailed:
			view = engine.View()
			return view, fmt.Errorf("%w: %s", shared.ErrAPIRequest, view.StatusLine)
		}
	}
}
