package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/yt2text/internal/models"
	"github.com/desertthunder/yt2text/internal/shared"
	"github.com/urfave/cli/v3"
)

// taskRow pairs a stored ledger entry with the job's live remote status.
type taskRow struct {
	SubjectID string  `json:"subject_id"`
	JobID     string  `json:"job_id"`
	Label     string  `json:"label"`
	Status    string  `json:"status"`
	Elapsed   float64 `json:"elapsed,omitempty"`
}

// TasksList prints every recorded job joined with its current status on the
// backend. Jobs the backend no longer remembers show as "expired".
func (r *Runner) TasksList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := r.ledger(db).List()
	if err != nil {
		return fmt.Errorf("failed to list jobs: %w", err)
	}

	if len(records) == 0 {
		return r.writePlain("No recorded jobs\n")
	}

	snapshots, err := r.client.FetchAll(ctx)
	if err != nil {
		r.logger.Warn("backend unreachable, showing stored entries only", "error", err)
	}

	byJob := map[string]*models.JobSnapshot{}
	for i := range snapshots {
		byJob[snapshots[i].JobID] = &snapshots[i]
	}

	rows := make([]taskRow, 0, len(records))
	for _, rec := range records {
		row := taskRow{
			SubjectID: rec.SubjectID,
			JobID:     rec.JobID,
			Label:     rec.Label,
			Status:    "expired",
		}
		if snap, ok := byJob[rec.JobID]; ok {
			row.Status = string(snap.Status)
			row.Elapsed = snap.Elapsed
		}
		rows = append(rows, row)
	}

	if cmd.Bool("json") {
		return r.writeJSON(rows, true)
	}

	for _, row := range rows {
		label := row.Label
		if label == "" {
			label = row.SubjectID
		}
		if row.Elapsed > 0 {
			r.writePlain("%-14s %-12s %s (%s)\n", row.Status, row.SubjectID, label, shared.FormatElapsed(row.Elapsed))
		} else {
			r.writePlain("%-14s %-12s %s\n", row.Status, row.SubjectID, label)
		}
	}

	return nil
}

// TasksShow fetches a single job by its remote id and prints the snapshot.
func (r *Runner) TasksShow(ctx context.Context, cmd *cli.Command) error {
	jobID := cmd.Args().First()
	if jobID == "" {
		return fmt.Errorf("%w: job id", shared.ErrMissingArgument)
	}

	snap, err := r.client.FetchTask(ctx, jobID)
	if err != nil {
		if errors.Is(err, shared.ErrJobNotFound) {
			return fmt.Errorf("backend no longer knows job %s: %w", jobID, err)
		}
		return fmt.Errorf("failed to fetch job: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(snap, true)
	}

	r.writePlain("job:     %s\n", snap.JobID)
	r.writePlain("status:  %s\n", snap.Status)
	if snap.Elapsed > 0 {
		r.writePlain("elapsed: %s\n", shared.FormatElapsed(snap.Elapsed))
	}
	if snap.Error != "" {
		r.writePlain("error:   %s\n", snap.Error)
	}
	if snap.Content != "" {
		r.writePlainln("%s", snap.Content)
	}

	return nil
}
