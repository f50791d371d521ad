package tasks

import (
	"strings"
	"testing"

	"github.com/desertthunder/yt2text/internal/models"
)

func TestReconcile(t *testing.T) {
	t.Run("Queued", func(t *testing.T) {
		view, liveness := Reconcile(TaskView{SubjectID: "vid"}, &models.JobSnapshot{JobID: "j1", Status: models.StatusQueued})
		if view.StatusLine != "queued" || !view.Busy {
			t.Errorf("unexpected view: %+v", view)
		}
		if liveness != LivenessActive {
			t.Errorf("expected active, got %s", liveness)
		}
	})

	t.Run("Downloading", func(t *testing.T) {
		view, liveness := Reconcile(TaskView{}, &models.JobSnapshot{Status: models.StatusDownloading})
		if view.StatusLine != "downloading audio" || !view.Busy || liveness != LivenessActive {
			t.Errorf("unexpected result: %+v %s", view, liveness)
		}
	})

	t.Run("Transcribing Streams Partial Content", func(t *testing.T) {
		view, liveness := Reconcile(TaskView{}, &models.JobSnapshot{
			Status:  models.StatusTranscribing,
			Content: "partial text so far",
		})
		if view.StatusLine != "transcribing" || !view.Busy {
			t.Errorf("unexpected view: %+v", view)
		}
		if view.Content != "partial text so far" {
			t.Errorf("expected partial content exposed, got %q", view.Content)
		}
		if liveness != LivenessActive {
			t.Errorf("expected active, got %s", liveness)
		}
	})

	t.Run("Transcribing Without Content Keeps Previous", func(t *testing.T) {
		prev := TaskView{Content: "earlier partial"}
		view, _ := Reconcile(prev, &models.JobSnapshot{Status: models.StatusTranscribing})
		if view.Content != "earlier partial" {
			t.Errorf("expected previous content kept, got %q", view.Content)
		}
	})

	t.Run("Done With Settled Formatting", func(t *testing.T) {
		cases := []struct {
			name       string
			formatting models.FormattingStatus
		}{
			{"Absent", models.FormattingNone},
			{"Done", models.FormattingDone},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				view, liveness := Reconcile(TaskView{}, &models.JobSnapshot{
					Status:     models.StatusDone,
					Formatting: tc.formatting,
					Content:    "# The Title\n\nThe transcript body.",
				})
				if liveness != LivenessTerminal {
					t.Errorf("expected terminal, got %s", liveness)
				}
				if view.StatusLine != "done" || view.Busy {
					t.Errorf("unexpected view: %+v", view)
				}
				if view.Content != "The transcript body." {
					t.Errorf("expected heading stripped, got %q", view.Content)
				}
				if view.Action != ActionCopy {
					t.Errorf("expected copy action, got %s", view.Action)
				}
				if view.Warning != "" {
					t.Errorf("expected no warning, got %q", view.Warning)
				}
			})
		}
	})

	t.Run("Done With Failed Formatting Warns", func(t *testing.T) {
		view, liveness := Reconcile(TaskView{}, &models.JobSnapshot{
			Status:     models.StatusDone,
			Formatting: models.FormattingFailed,
			Content:    "raw transcript",
		})
		if liveness != LivenessTerminal {
			t.Errorf("expected terminal, got %s", liveness)
		}
		if view.Failed {
			t.Error("formatting failure must not fail the task")
		}
		if view.Warning == "" {
			t.Error("expected a warning overlay")
		}
		if view.Content != "raw transcript" {
			t.Errorf("expected raw content exposed, got %q", view.Content)
		}
	})

	t.Run("Done With Active Formatting Stays Busy", func(t *testing.T) {
		cases := []models.FormattingStatus{models.FormattingPending, models.FormattingInProgress}
		for _, formatting := range cases {
			view, liveness := Reconcile(TaskView{}, &models.JobSnapshot{
				Status:             models.StatusDone,
				Formatting:         formatting,
				FormattingProgress: "3/10",
				Content:            "raw transcript",
			})
			if liveness != LivenessActive {
				t.Errorf("%s: expected active, got %s", formatting, liveness)
			}
			if !view.Busy {
				t.Errorf("%s: expected busy", formatting)
			}
			if !strings.Contains(view.StatusLine, "refining") || !strings.Contains(view.StatusLine, "3/10") {
				t.Errorf("%s: unexpected status line %q", formatting, view.StatusLine)
			}
			if view.Content != "raw transcript" {
				t.Errorf("%s: content must be visible while refining, got %q", formatting, view.Content)
			}
		}
	})

	t.Run("Failed", func(t *testing.T) {
		view, liveness := Reconcile(TaskView{}, &models.JobSnapshot{
			Status: models.StatusFailed,
			Error:  "download blocked",
		})
		if liveness != LivenessTerminal {
			t.Errorf("expected terminal, got %s", liveness)
		}
		if view.StatusLine != "failed: download blocked" || !view.Failed || view.Busy {
			t.Errorf("unexpected view: %+v", view)
		}
		if view.Action != ActionRetry {
			t.Errorf("expected retry action, got %s", view.Action)
		}
	})

	t.Run("Failed Without Error Text", func(t *testing.T) {
		view, _ := Reconcile(TaskView{}, &models.JobSnapshot{Status: models.StatusFailed})
		if view.StatusLine != "failed: unknown error" {
			t.Errorf("unexpected status line %q", view.StatusLine)
		}
	})

	t.Run("Unknown Status Holds Position", func(t *testing.T) {
		prev := TaskView{StatusLine: "transcribing", Busy: true, Content: "partial"}
		view, liveness := Reconcile(prev, &models.JobSnapshot{Status: models.StatusUnknown})
		if view != prev {
			t.Errorf("expected previous view unchanged, got %+v", view)
		}
		if liveness != LivenessActive {
			t.Errorf("unknown status must keep polling, got %s", liveness)
		}
	})

	t.Run("Nil Snapshot Holds Position", func(t *testing.T) {
		prev := TaskView{StatusLine: "queued"}
		view, liveness := Reconcile(prev, nil)
		if view != prev || liveness != LivenessActive {
			t.Errorf("unexpected result: %+v %s", view, liveness)
		}
	})

	t.Run("Carries Elapsed And Timing", func(t *testing.T) {
		timing := &models.Timing{Download: 1.5, Whisper: 20.0, Total: 25.0}
		view, _ := Reconcile(TaskView{}, &models.JobSnapshot{
			Status:  models.StatusTranscribing,
			Elapsed: 12.3,
			Timing:  timing,
		})
		if view.Elapsed != 12.3 || view.Timing != timing {
			t.Errorf("expected timing carried, got %+v", view)
		}
	})

	t.Run("Terminal Clears Transient Flags", func(t *testing.T) {
		prev := TaskView{Warning: "old warning", Failed: true, Action: ActionRetry}
		view, _ := Reconcile(prev, &models.JobSnapshot{Status: models.StatusDone, Content: "body"})
		if view.Warning != "" || view.Failed || view.Action != ActionCopy {
			t.Errorf("expected stale flags cleared, got %+v", view)
		}
	})
}
