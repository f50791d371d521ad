package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/yt2text/internal/models"
	"github.com/desertthunder/yt2text/internal/services"
	"github.com/desertthunder/yt2text/internal/shared"
	"golang.org/x/time/rate"
)

// BatchOpts configures a batch run.
type BatchOpts struct {
	RateLimit     float64 // Submissions per second toward the backend (default: 5)
	PollInterval  time.Duration
	LedgerEntries int // Prune bound applied after batch writes (default: 500)
}

// BatchEngine tracks a set of subjects from one listing page against the
// backend. Submission is a single batch call; polling is a single FetchAll
// per tick demultiplexed across tracked jobs, so cost stays flat no matter
// how many videos the page had.
type BatchEngine struct {
	client  services.Client
	ledger  Ledger
	lists   SubjectLists
	poller  *Poller
	limiter *rate.Limiter
	logger  *log.Logger
	opts    BatchOpts

	updates chan TaskView

	mu        sync.Mutex
	sourceURL string
	subjects  []models.Subject
	jobs      map[string]string // subjectID -> jobID
	views     map[string]TaskView
	settled   map[string]bool
}

// NewBatchEngine creates a batch engine. Zero-valued opts fields fall back
// to defaults.
func NewBatchEngine(client services.Client, ledger Ledger, lists SubjectLists, opts BatchOpts, logger *log.Logger) *BatchEngine {
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	if opts.LedgerEntries <= 0 {
		opts.LedgerEntries = 500
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &BatchEngine{
		client:  client,
		ledger:  ledger,
		lists:   lists,
		poller:  NewPoller(opts.PollInterval),
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		logger:  logger,
		opts:    opts,
		updates: make(chan TaskView, 64),
		jobs:    make(map[string]string),
		views:   make(map[string]TaskView),
		settled: make(map[string]bool),
	}
}

// Updates returns the per-job view stream. Same non-blocking contract as
// the single-subject engine.
func (b *BatchEngine) Updates() <-chan TaskView {
	return b.updates
}

// Views returns a copy of every tracked view in subject order.
func (b *BatchEngine) Views() []TaskView {
	b.mu.Lock()
	defer b.mu.Unlock()

	views := make([]TaskView, 0, len(b.subjects))
	for _, subj := range b.subjects {
		if view, ok := b.views[subj.ID]; ok {
			views = append(views, view)
		}
	}
	return views
}

// Running reports whether the batch timer is live.
func (b *BatchEngine) Running() bool {
	return b.poller.Running()
}

// SubmitAll sends every subject to the backend in one batch call, records
// the positional subject -> job pairs in the ledger, persists the subject
// list for later restore, and starts polling.
func (b *BatchEngine) SubmitAll(ctx context.Context, sourceURL string, subjects []models.Subject) error {
	if len(subjects) == 0 {
		return fmt.Errorf("%w: nothing to submit", shared.ErrInvalidInput)
	}

	if err := b.client.Health(ctx); err != nil {
		return fmt.Errorf("backend not ready: %w", err)
	}

	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}

	requests := make([]services.SubmitRequest, len(subjects))
	for i, subj := range subjects {
		requests[i] = services.SubmitRequest{URL: subj.CanonicalURL, Title: subj.Label}
	}

	jobIDs, err := b.client.SubmitBatch(ctx, requests)
	if err != nil {
		return fmt.Errorf("batch submission failed: %w", err)
	}

	records := make([]models.JobRecord, len(subjects))
	for i, subj := range subjects {
		records[i] = models.JobRecord{SubjectID: subj.ID, JobID: jobIDs[i], Label: subj.Label}
	}
	if err := b.ledger.PutAll(records); err != nil {
		b.logger.Error("failed to record batch submissions", "error", err)
	} else if removed, err := b.ledger.Prune(b.opts.LedgerEntries); err != nil {
		b.logger.Error("ledger prune failed", "error", err)
	} else if removed > 0 {
		b.logger.Debug("pruned ledger", "removed", removed)
	}

	if b.lists != nil {
		if err := b.lists.Replace(sourceURL, subjects); err != nil {
			b.logger.Error("failed to persist subject list", "source", sourceURL, "error", err)
		}
	}

	b.mu.Lock()
	b.sourceURL = sourceURL
	b.subjects = subjects
	b.jobs = make(map[string]string, len(subjects))
	b.views = make(map[string]TaskView, len(subjects))
	b.settled = make(map[string]bool, len(subjects))
	for i, subj := range subjects {
		b.jobs[subj.ID] = jobIDs[i]
		b.views[subj.ID] = batchPendingView(subj, jobIDs[i])
	}
	b.mu.Unlock()

	b.logger.Info("batch submitted", "source", sourceURL, "jobs", len(jobIDs))
	b.poller.Start(ctx, b.tick)
	return nil
}

// Restore reloads a previous batch session: subject list from storage,
// job ids from the ledger, one FetchAll to seed the views. Polling resumes
// only if at least one job is still live.
func (b *BatchEngine) Restore(ctx context.Context, sourceURL string) error {
	if b.lists == nil {
		return fmt.Errorf("%w: no subject list storage", shared.ErrInvalidConfig)
	}

	subjects, err := b.lists.Get(sourceURL)
	if err != nil {
		return fmt.Errorf("failed to load subject list: %w", err)
	}
	if len(subjects) == 0 {
		return fmt.Errorf("%w: no stored session for %s", shared.ErrLedgerMiss, sourceURL)
	}

	mapping, err := b.ledger.GetAll()
	if err != nil {
		return fmt.Errorf("failed to load ledger: %w", err)
	}

	b.mu.Lock()
	b.sourceURL = sourceURL
	b.subjects = subjects
	b.jobs = make(map[string]string, len(subjects))
	b.views = make(map[string]TaskView, len(subjects))
	b.settled = make(map[string]bool, len(subjects))
	for _, subj := range subjects {
		jobID, ok := mapping[subj.ID]
		if !ok {
			// Never submitted, or pruned. Shown as idle, not polled.
			b.views[subj.ID] = idleView(&subj)
			b.settled[subj.ID] = true
			continue
		}
		b.jobs[subj.ID] = jobID
		b.views[subj.ID] = restoringView(&subj, jobID)
	}
	b.mu.Unlock()

	b.logger.Debug("restoring batch session", "source", sourceURL, "subjects", len(subjects))

	// Seed views before arming the timer so a finished batch never
	// flashes a poll cycle.
	b.tick(ctx)

	b.mu.Lock()
	live := b.liveCountLocked()
	b.mu.Unlock()
	if live > 0 {
		b.poller.Start(ctx, b.tick)
	}
	return nil
}

// Stop halts polling without discarding views.
func (b *BatchEngine) Stop() {
	b.poller.Stop()
}

// tick performs one poll cycle. A single FetchAll covers every tracked job;
// snapshots for jobs we never submitted are ignored, and tracked jobs the
// response omits keep their previous view rather than being declared dead.
func (b *BatchEngine) tick(ctx context.Context) {
	snaps, err := b.client.FetchAll(ctx)
	if err != nil {
		b.logger.Debug("batch poll failed", "error", err)
		return
	}

	byJob := make(map[string]*models.JobSnapshot, len(snaps))
	for i := range snaps {
		byJob[snaps[i].JobID] = &snaps[i]
	}

	b.mu.Lock()
	var changed []TaskView
	for _, subj := range b.subjects {
		jobID, tracked := b.jobs[subj.ID]
		if !tracked || b.settled[subj.ID] {
			continue
		}
		snap, present := byJob[jobID]
		if !present {
			continue
		}

		prev := b.views[subj.ID]
		prev.SubjectID = subj.ID
		prev.Label = subj.Label
		next, liveness := Reconcile(prev, snap)
		b.views[subj.ID] = next
		changed = append(changed, next)

		if liveness == LivenessTerminal {
			b.settled[subj.ID] = true
		}
	}
	live := b.liveCountLocked()
	source := b.sourceURL
	b.mu.Unlock()

	for _, view := range changed {
		sendView(b.updates, view)
	}

	if live == 0 {
		b.poller.Stop()
		b.logger.Info("batch settled", "source", source)
	}
}

// liveCountLocked counts tracked jobs that still need polling. Caller holds
// the mutex.
func (b *BatchEngine) liveCountLocked() int {
	live := 0
	for subjID := range b.jobs {
		if !b.settled[subjID] {
			live++
		}
	}
	return live
}
