package models

import "time"

// Status is the primary lifecycle state reported by the backend for a job.
//
// The progression is linear with one branch:
// queued → downloading → transcribing → done | failed.
type Status string

const (
	StatusQueued       Status = "queued"
	StatusDownloading  Status = "downloading"
	StatusTranscribing Status = "transcribing"
	StatusDone         Status = "done"
	StatusFailed       Status = "failed"

	// StatusUnknown covers wire values this client does not recognize.
	// Treated as "still working, keep polling".
	StatusUnknown Status = "unknown"
)

// ParseStatus maps a wire string to a Status, downgrading anything
// unrecognized to [StatusUnknown].
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusQueued, StatusDownloading, StatusTranscribing, StatusDone, StatusFailed:
		return Status(s)
	default:
		return StatusUnknown
	}
}

// Terminal reports whether the primary status can no longer change.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// FormattingStatus tracks the secondary AI-refinement stage layered on top
// of the raw transcript. It only appears once the transcript exists
// (partially or fully); [FormattingNone] means the backend never reported
// the stage at all.
type FormattingStatus string

const (
	FormattingNone       FormattingStatus = ""
	FormattingPending    FormattingStatus = "pending"
	FormattingInProgress FormattingStatus = "in_progress"
	FormattingDone       FormattingStatus = "done"
	FormattingFailed     FormattingStatus = "failed"
	FormattingUnknown    FormattingStatus = "unknown"
)

// ParseFormatting maps a wire string to a FormattingStatus. The empty
// string means the stage is absent; unrecognized values downgrade to
// [FormattingUnknown] and keep the engine polling.
func ParseFormatting(s string) FormattingStatus {
	switch FormattingStatus(s) {
	case FormattingNone, FormattingPending, FormattingInProgress, FormattingDone, FormattingFailed:
		return FormattingStatus(s)
	default:
		return FormattingUnknown
	}
}

// Settled reports whether the formatting stage requires no further polling.
// An absent stage counts as settled.
func (f FormattingStatus) Settled() bool {
	return f == FormattingNone || f == FormattingDone || f == FormattingFailed
}

// Timing holds the per-stage duration breakdown the backend reports once a
// job completes. All values are seconds.
type Timing struct {
	Download  float64 `json:"download,omitempty"`
	ModelLoad float64 `json:"model_load,omitempty"`
	Whisper   float64 `json:"whisper,omitempty"`
	AIFormat  float64 `json:"ai_format,omitempty"`
	Retry     float64 `json:"retry,omitempty"`
	Structure float64 `json:"structure,omitempty"`
	Total     float64 `json:"total,omitempty"`
}

// JobSnapshot is the backend's reported state for one job at the moment of
// a poll. It is the reconciler's only view of remote truth.
type JobSnapshot struct {
	JobID              string
	Status             Status
	Content            string // partial or final transcript markdown
	Error              string
	Formatting         FormattingStatus
	FormattingProgress string // "k/n" paragraphs refined
	Elapsed            float64
	Timing             *Timing
}

// Terminal reports the liveness verdict for the whole job: the primary
// status must be terminal, and for done jobs the formatting overlay must be
// settled too. A failed job is terminal regardless of formatting.
func (s JobSnapshot) Terminal() bool {
	switch s.Status {
	case StatusFailed:
		return true
	case StatusDone:
		return s.Formatting.Settled()
	default:
		return false
	}
}

// Subject identifies the video the user is looking at. The ID is derived
// deterministically from the canonical watch URL, so the same video always
// maps to the same ledger key.
type Subject struct {
	ID           string
	CanonicalURL string
	Label        string
}

// JobRecord is one durable ledger entry mapping a subject to the backend
// job submitted for it. Records are overwritten on resubmission and never
// auto-deleted; stale entries are detected lazily at poll time.
type JobRecord struct {
	SubjectID string
	JobID     string
	Label     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
