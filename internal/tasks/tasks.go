package tasks

import (
	"github.com/desertthunder/yt2text/internal/models"
)

// Liveness is the reconciler's verdict on whether a job still needs polling.
type Liveness int

const (
	// LivenessActive means the job may still change; keep polling.
	LivenessActive Liveness = iota
	// LivenessTerminal means no further snapshot can change the outcome.
	LivenessTerminal
)

func (l Liveness) String() string {
	switch l {
	case LivenessActive:
		return "active"
	case LivenessTerminal:
		return "terminal"
	default:
		return ""
	}
}

// Action is the affordance a view offers the user.
type Action int

const (
	ActionNone Action = iota
	// ActionCopy : the finished transcript can be copied out.
	ActionCopy
	// ActionRetry : the job failed and may be resubmitted.
	ActionRetry
)

func (a Action) String() string {
	switch a {
	case ActionCopy:
		return "copy"
	case ActionRetry:
		return "retry"
	default:
		return ""
	}
}

// TaskView is everything a surface needs to render one tracked job.
// Views are value types; engines hand out copies, never shared pointers.
type TaskView struct {
	SubjectID  string         // Video id the view is about
	JobID      string         // Backend job id, empty before submission
	Label      string         // Display title, provisional until refined
	StatusLine string         // Human-readable one-liner
	Content    string         // Transcript text visible so far
	Busy       bool           // Whether a spinner should run
	Failed     bool           // Terminal failure (retryable or fatal)
	Fatal      bool           // Set when the backend lost the job entirely
	Warning    string         // Non-fatal overlay, e.g. formatting failed
	Action     Action         // Affordance to offer
	Elapsed    float64        // Seconds the backend has spent so far
	Timing     *models.Timing // Per-phase timing once the backend reports it
}

// Ledger is the durable subject -> job mapping engines record submissions in.
// Implemented by repositories.JobLedgerRepository.
type Ledger interface {
	Get(subjectID string) (*models.JobRecord, error)
	Put(subjectID, jobID, label string) error
	PutAll(records []models.JobRecord) error
	GetAll() (map[string]string, error)
	Prune(max int) (int, error)
}

// SubjectLists persists the last extracted subject list per source URL.
// Implemented by repositories.SubjectListRepository.
type SubjectLists interface {
	Replace(sourceURL string, subjects []models.Subject) error
	Get(sourceURL string) ([]models.Subject, error)
}
