package tasks

import (
	"github.com/desertthunder/yt2text/internal/models"
)

func idleView(subject *models.Subject) TaskView {
	return TaskView{
		SubjectID:  subject.ID,
		Label:      subject.Label,
		StatusLine: "ready",
	}
}

func submittingView(subject *models.Subject) TaskView {
	return TaskView{
		SubjectID:  subject.ID,
		Label:      subject.Label,
		StatusLine: "submitting",
		Busy:       true,
	}
}

func restoringView(subject *models.Subject, jobID string) TaskView {
	return TaskView{
		SubjectID:  subject.ID,
		JobID:      jobID,
		Label:      subject.Label,
		StatusLine: "restoring session",
		Busy:       true,
	}
}

// lostJobView marks a job the backend no longer knows about. Fatal per job:
// the only way forward is a fresh submission, but the ledger entry stays
// for diagnostics.
func lostJobView(subject *models.Subject, jobID string) TaskView {
	return TaskView{
		SubjectID:  subject.ID,
		JobID:      jobID,
		Label:      subject.Label,
		StatusLine: "failed: server no longer knows this job",
		Failed:     true,
		Fatal:      true,
		Action:     ActionRetry,
	}
}

func batchPendingView(subject models.Subject, jobID string) TaskView {
	return TaskView{
		SubjectID:  subject.ID,
		JobID:      jobID,
		Label:      subject.Label,
		StatusLine: "queued",
		Busy:       true,
	}
}

// sendView publishes a view without blocking. A surface that is slow to
// drain the channel loses intermediate frames, never ticks.
func sendView(updates chan<- TaskView, view TaskView) {
	if updates == nil {
		return
	}
	select {
	case updates <- view:
	default:
	}
}
