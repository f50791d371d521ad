package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/yt2text/internal/models"
	"github.com/desertthunder/yt2text/internal/services"
	"github.com/desertthunder/yt2text/internal/shared"
)

// EngineState names where a SyncEngine is in its lifecycle.
type EngineState int

const (
	StateIdle EngineState = iota
	StateRestoring
	StateSubmitting
	StatePolling
	StateCompleted
	StateFailed
)

func (s EngineState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRestoring:
		return "restoring"
	case StateSubmitting:
		return "submitting"
	case StatePolling:
		return "polling"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return ""
	}
}

// SyncEngine tracks a single subject against the backend: it submits jobs,
// restores prior sessions from the ledger, and drives the poll loop that
// folds snapshots into the current view.
//
// All state lives on the instance; two engines over the same ledger do not
// interfere beyond last-write-wins on shared rows.
type SyncEngine struct {
	client services.Client
	ledger Ledger
	poller *Poller
	logger *log.Logger

	updates chan TaskView

	mu      sync.Mutex
	subject *models.Subject
	view    TaskView
	state   EngineState

	// gen counts tracking sessions. Every subject switch and every armed
	// poll loop bumps it; a fetch result carrying an older generation is
	// dropped, so an in-flight tick finishing after a switch cannot touch
	// the new subject's state.
	gen uint64
}

// NewSyncEngine creates an engine polling at interval. A nil logger falls
// back to the shared default.
func NewSyncEngine(client services.Client, ledger Ledger, interval time.Duration, logger *log.Logger) *SyncEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SyncEngine{
		client:  client,
		ledger:  ledger,
		poller:  NewPoller(interval),
		logger:  logger,
		updates: make(chan TaskView, 16),
		state:   StateIdle,
	}
}

// Updates returns the channel the engine publishes view snapshots on.
// Sends never block; slow consumers miss frames, not ticks.
func (e *SyncEngine) Updates() <-chan TaskView {
	return e.updates
}

// State returns the current lifecycle state.
func (e *SyncEngine) State() EngineState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// View returns a copy of the current view.
func (e *SyncEngine) View() TaskView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view
}

// Subject returns the subject the engine is tracking, nil when idle.
func (e *SyncEngine) Subject() *models.Subject {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.subject
}

// SetSubject points the engine at a subject. The same subject id is a
// no-op, so repeated change signals for one video are harmless. A new id
// stops the timer, drops transient view state, and restores from the
// ledger: a recorded job is fetched once synchronously to decide whether
// to resume polling, show the finished result, or report the job lost.
func (e *SyncEngine) SetSubject(ctx context.Context, subject *models.Subject) error {
	if subject == nil || subject.ID == "" {
		return fmt.Errorf("%w: subject is required", shared.ErrNoSubject)
	}

	e.mu.Lock()
	if e.subject != nil && e.subject.ID == subject.ID {
		e.mu.Unlock()
		return nil
	}
	e.subject = subject
	e.gen++
	gen := e.gen
	e.state = StateRestoring
	e.view = restoringView(subject, "")
	e.mu.Unlock()

	e.poller.Stop()
	e.publish()

	record, err := e.ledger.Get(subject.ID)
	if err != nil {
		if !errors.Is(err, shared.ErrLedgerMiss) {
			e.logger.Error("ledger lookup failed", "subject", subject.ID, "error", err)
		}
		e.setIdle(subject)
		return nil
	}

	// Label adoption shares e.mu with RefineLabel, which writes the same
	// field from the probe goroutine.
	e.mu.Lock()
	if record.Label != "" && subject.Label == subject.CanonicalURL {
		subject.Label = record.Label
	}
	e.mu.Unlock()

	e.logger.Debug("restoring session", "subject", subject.ID, "job", record.JobID)

	snap, err := e.client.FetchTask(ctx, record.JobID)
	if err != nil {
		if errors.Is(err, shared.ErrJobNotFound) {
			// The backend forgot the job, likely a restart. The ledger
			// entry stays; only a fresh submission moves forward.
			e.setIdle(subject)
			return nil
		}
		// Transport trouble: resume polling and let ticks sort it out.
		e.logger.Warn("restore fetch failed, polling anyway", "job", record.JobID, "error", err)
		e.beginPolling(ctx, subject, record.JobID)
		return nil
	}

	if e.applySnapshot(gen, subject, record.JobID, snap) {
		e.beginPolling(ctx, subject, record.JobID)
	}
	return nil
}

// Submit sends the current subject to the backend and begins polling.
// Allowed from Idle, Completed, and Failed; a submission for a subject that
// already has a ledger entry replaces it, which is how retry works.
func (e *SyncEngine) Submit(ctx context.Context) error {
	e.mu.Lock()
	subject := e.subject
	state := e.state
	e.mu.Unlock()

	if subject == nil {
		return fmt.Errorf("%w: no subject selected", shared.ErrNoSubject)
	}
	switch state {
	case StateIdle, StateCompleted, StateFailed:
	default:
		return fmt.Errorf("%w: submission not allowed while %s", shared.ErrInvalidInput, state)
	}

	if err := e.client.Health(ctx); err != nil {
		return fmt.Errorf("backend not ready: %w", err)
	}

	e.mu.Lock()
	e.state = StateSubmitting
	e.view = submittingView(subject)
	label := subject.Label
	e.mu.Unlock()
	e.publish()

	jobID, err := e.client.Submit(ctx, services.SubmitRequest{URL: subject.CanonicalURL, Title: label})
	if err != nil {
		e.mu.Lock()
		e.state = StateFailed
		e.view.StatusLine = failedStatusLine(err.Error())
		e.view.Busy = false
		e.view.Failed = true
		e.view.Action = ActionRetry
		e.mu.Unlock()
		e.publish()
		return fmt.Errorf("submission failed: %w", err)
	}

	if err := e.ledger.Put(subject.ID, jobID, label); err != nil {
		// The job is running either way; a ledger miss only costs restore.
		e.logger.Error("failed to record submission", "subject", subject.ID, "job", jobID, "error", err)
	}

	e.logger.Info("job submitted", "subject", subject.ID, "job", jobID)
	e.beginPolling(ctx, subject, jobID)
	return nil
}

// RefineLabel updates the display label without touching engine state.
// Deliberately does not re-trigger restore; a better title is cosmetic.
func (e *SyncEngine) RefineLabel(videoID, label string) {
	e.mu.Lock()
	if e.subject == nil || e.subject.ID != videoID || label == "" {
		e.mu.Unlock()
		return
	}
	e.subject.Label = label
	e.view.Label = label
	e.mu.Unlock()
	e.publish()
}

// Close stops the poll timer. The updates channel stays open; consumers
// drop it with the engine.
func (e *SyncEngine) Close() {
	e.poller.Stop()
}

func (e *SyncEngine) setIdle(subject *models.Subject) {
	e.mu.Lock()
	if e.subject == nil || e.subject.ID != subject.ID {
		e.mu.Unlock()
		return
	}
	e.state = StateIdle
	e.view = idleView(subject)
	e.mu.Unlock()
	e.publish()
}

// beginPolling opens a fresh tracking session and arms the timer. A no-op
// when the engine has already moved to a different subject.
func (e *SyncEngine) beginPolling(ctx context.Context, subject *models.Subject, jobID string) {
	e.mu.Lock()
	if e.subject == nil || e.subject.ID != subject.ID {
		e.mu.Unlock()
		return
	}
	e.gen++
	gen := e.gen
	e.state = StatePolling
	e.view.SubjectID = subject.ID
	e.view.JobID = jobID
	e.view.Label = subject.Label
	if e.view.StatusLine == "" {
		e.view.StatusLine = "queued"
	}
	e.view.Busy = true
	e.mu.Unlock()
	e.publish()

	e.poller.Start(ctx, func(tickCtx context.Context) {
		e.tick(tickCtx, gen, subject, jobID)
	})
}

// tick is one poll cycle: fetch outside the lock, reconcile, publish.
func (e *SyncEngine) tick(ctx context.Context, gen uint64, subject *models.Subject, jobID string) {
	snap, err := e.client.FetchTask(ctx, jobID)
	if err != nil {
		if errors.Is(err, shared.ErrJobNotFound) {
			e.mu.Lock()
			if gen != e.gen {
				e.mu.Unlock()
				return
			}
			e.state = StateFailed
			e.view = lostJobView(subject, jobID)
			e.poller.Stop()
			e.mu.Unlock()
			e.publish()
			e.logger.Warn("backend lost the job", "subject", subject.ID, "job", jobID)
			return
		}
		// Transient transport failure. The next tick retries.
		e.logger.Debug("poll failed", "job", jobID, "error", err)
		return
	}

	e.applySnapshot(gen, subject, jobID, snap)
}

// applySnapshot reconciles a snapshot into the view and settles the state,
// releasing the timer on a terminal verdict. A snapshot from a superseded
// session is dropped outright. Reports whether the job is still live, so
// the restore path knows to arm the timer; ticks run with the timer
// already armed and ignore the result.
func (e *SyncEngine) applySnapshot(gen uint64, subject *models.Subject, jobID string, snap *models.JobSnapshot) bool {
	e.mu.Lock()
	if gen != e.gen {
		e.mu.Unlock()
		return false
	}
	prev := e.view
	prev.SubjectID = subject.ID
	prev.Label = subject.Label
	next, liveness := Reconcile(prev, snap)
	e.view = next

	if liveness == LivenessTerminal {
		if next.Failed {
			e.state = StateFailed
		} else {
			e.state = StateCompleted
		}
		state := e.state
		e.poller.Stop()
		e.mu.Unlock()
		e.publish()
		e.logger.Info("job settled", "subject", subject.ID, "job", jobID, "state", state)
		return false
	}

	e.state = StatePolling
	e.mu.Unlock()
	e.publish()
	return true
}

func (e *SyncEngine) publish() {
	e.mu.Lock()
	view := e.view
	e.mu.Unlock()
	sendView(e.updates, view)
}
