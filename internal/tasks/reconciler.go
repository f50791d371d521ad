package tasks

import (
	"fmt"

	"github.com/desertthunder/yt2text/internal/formatter"
	"github.com/desertthunder/yt2text/internal/models"
)

// Reconcile folds one backend snapshot into the previous view and reports
// whether the job still needs polling. It is a pure function: no I/O, no
// errors, no panics. A snapshot whose status the wire layer could not parse
// leaves the prior view standing and keeps the job active, so a newer
// backend never strands a poller.
func Reconcile(prev TaskView, snap *models.JobSnapshot) (TaskView, Liveness) {
	if snap == nil {
		return prev, LivenessActive
	}

	next := prev
	next.JobID = snap.JobID
	next.Elapsed = snap.Elapsed
	if snap.Timing != nil {
		next.Timing = snap.Timing
	}
	next.Warning = ""
	next.Failed = false
	next.Fatal = false
	next.Action = ActionNone

	switch snap.Status {
	case models.StatusQueued:
		next.StatusLine = "queued"
		next.Busy = true
		return next, LivenessActive

	case models.StatusDownloading:
		next.StatusLine = "downloading audio"
		next.Busy = true
		return next, LivenessActive

	case models.StatusTranscribing:
		next.StatusLine = "transcribing"
		next.Busy = true
		// Partial text streams in as the backend produces it.
		if snap.Content != "" {
			next.Content = snap.Content
		}
		return next, LivenessActive

	case models.StatusDone:
		if snap.Content != "" {
			next.Content = snap.Content
		}
		if !snap.Formatting.Settled() {
			next.StatusLine = refiningStatusLine(snap.FormattingProgress)
			next.Busy = true
			return next, LivenessActive
		}

		next.StatusLine = "done"
		next.Busy = false
		next.Action = ActionCopy
		next.Content = formatter.ResultBody(next.Content)
		if snap.Formatting == models.FormattingFailed {
			// Raw transcript is still usable; surface the miss without
			// failing the task.
			next.Warning = "formatting failed, showing raw transcript"
		}
		return next, LivenessTerminal

	case models.StatusFailed:
		next.StatusLine = failedStatusLine(snap.Error)
		next.Busy = false
		next.Failed = true
		next.Action = ActionRetry
		return next, LivenessTerminal

	default:
		// StatusUnknown or anything else: hold position.
		return prev, LivenessActive
	}
}

func refiningStatusLine(progress string) string {
	if progress == "" {
		return "done, refining formatting"
	}
	return fmt.Sprintf("done, refining formatting (%s)", progress)
}

func failedStatusLine(errText string) string {
	if errText == "" {
		errText = "unknown error"
	}
	return fmt.Sprintf("failed: %s", errText)
}
