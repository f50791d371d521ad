package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/yt2text/internal/formatter"
	"github.com/desertthunder/yt2text/internal/models"
	"github.com/desertthunder/yt2text/internal/repositories"
	"github.com/desertthunder/yt2text/internal/shared"
	"github.com/desertthunder/yt2text/internal/subject"
	"github.com/desertthunder/yt2text/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Batch extracts every video from a channel or playlist page, submits them
// as one batch, and follows the whole set until the last job settles.
// Transcripts for successful jobs are written to the output directory.
func (r *Runner) Batch(ctx context.Context, cmd *cli.Command) error {
	pageURL := cmd.Args().First()
	if pageURL == "" {
		return fmt.Errorf("%w: page url", shared.ErrMissingArgument)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	lists := repositories.NewSubjectListRepository(db)
	engine := tasks.NewBatchEngine(r.client, r.ledger(db), lists, tasks.BatchOpts{
		RateLimit:     r.config.Batch.RateLimit,
		PollInterval:  r.config.Backend.BatchPollInterval(),
		LedgerEntries: r.config.Batch.LedgerMaxEntries,
	}, r.logger)
	defer engine.Stop()

	var subjects []models.Subject
	if cmd.Bool("resume") {
		if err := engine.Restore(ctx, pageURL); err != nil {
			if errors.Is(err, shared.ErrLedgerMiss) {
				return fmt.Errorf("no recorded batch for %s: %w", pageURL, err)
			}
			return fmt.Errorf("failed to resume batch: %w", err)
		}
		if subjects, err = lists.Get(pageURL); err != nil {
			return fmt.Errorf("failed to load recorded batch: %w", err)
		}
		r.logger.Info("resumed batch", "videos", len(subjects))
	} else {
		limit := int(cmd.Int("limit"))
		if limit == 0 {
			limit = r.config.Batch.Limit
		}

		lister := subject.NewYtDlpLister("", r.config.Batch.RateLimit)
		r.logger.Info("extracting videos", "page", pageURL)
		subjects, err = lister.ListVideos(ctx, pageURL, limit)
		if err != nil {
			return fmt.Errorf("failed to extract videos: %w", err)
		}
		if !cmd.Bool("no-probe") {
			subjects = lister.ProbeTitles(ctx, subjects)
		}

		r.logger.Info("submitting batch", "videos", len(subjects))
		if err := engine.SubmitAll(ctx, pageURL, subjects); err != nil {
			return fmt.Errorf("batch submission failed: %w", err)
		}
	}

	r.followBatch(ctx, engine)

	return r.reportBatch(subjects, engine.Views(), cmd.String("output"))
}

// followBatch logs status transitions per video until the engine stops
// polling. A periodic fallback covers dropped updates.
func (r *Runner) followBatch(ctx context.Context, engine *tasks.BatchEngine) {
	seen := map[string]string{}
	for engine.Running() {
		select {
		case <-ctx.Done():
			engine.Stop()
			return
		case view := <-engine.Updates():
			if view.StatusLine != "" && seen[view.SubjectID] != view.StatusLine {
				seen[view.SubjectID] = view.StatusLine
				r.logger.Info(view.StatusLine, "video", view.SubjectID)
			}
		case <-time.After(time.Second):
		}
	}
}

// reportBatch writes transcripts for settled jobs and prints a summary.
func (r *Runner) reportBatch(subjects []models.Subject, views []tasks.TaskView, outDir string) error {
	if outDir == "" {
		outDir = r.config.Output.Dir
	}

	byID := map[string]*models.Subject{}
	for i := range subjects {
		byID[subjects[i].ID] = &subjects[i]
	}

	saved, failed := 0, 0
	for _, view := range views {
		if view.Failed || view.Fatal {
			failed++
			r.writePlain("✗ %s: %s\n", view.Label, view.StatusLine)
			continue
		}
		if view.Content == "" {
			continue
		}

		sub, ok := byID[view.SubjectID]
		if !ok {
			continue
		}
		path, err := formatter.WriteTranscript(outDir, sub, view.Content)
		if err != nil {
			r.logger.Warn("failed to write transcript", "video", view.SubjectID, "error", err)
			continue
		}
		saved++
		r.writePlain("✓ %s\n", path)
	}

	r.writePlainln("%d transcripts saved, %d jobs failed", saved, failed)
	if failed > 0 {
		return fmt.Errorf("%w: %d jobs failed", shared.ErrAPIRequest, failed)
	}
	return nil
}
