package subject

import (
	"context"
	"sync"
	"time"
)

// refineDelay is how long the tracker waits before re-probing for a real
// title. Listing pages often hand us a bare URL first and only know the
// title a moment later.
const refineDelay = 800 * time.Millisecond

// TitleProber looks up the human title for a video id. Implementations may
// shell out (yt-dlp) or hit an API; an empty string means no better title.
type TitleProber interface {
	ProbeTitle(ctx context.Context, videoID string) (string, error)
}

// SubjectSource emits the subject the user is currently looking at. The CLI
// and TUI provide adapters; engines only consume the channel.
type SubjectSource interface {
	Subjects() <-chan string
}

// Tracker schedules a single deferred label refinement per subject. The
// refined label is delivered through the callback only; it never re-emits a
// subject change, so consumers update their display without restarting
// anything.
type Tracker struct {
	prober  TitleProber
	onLabel func(videoID, label string)

	mu      sync.Mutex
	pending map[string]*probe
}

type probe struct {
	cancel context.CancelFunc
}

// NewTracker creates a Tracker that reports refined labels through onLabel.
func NewTracker(prober TitleProber, onLabel func(videoID, label string)) *Tracker {
	return &Tracker{
		prober:  prober,
		onLabel: onLabel,
		pending: make(map[string]*probe),
	}
}

// Refine schedules a one-shot title probe for the video after the refinement
// delay. Scheduling again for the same video cancels the earlier probe.
// Probe failures are silent; the provisional label simply stands.
func (t *Tracker) Refine(ctx context.Context, videoID, currentLabel string) {
	if t.prober == nil || t.onLabel == nil {
		return
	}

	probeCtx, cancel := context.WithCancel(ctx)
	p := &probe{cancel: cancel}

	t.mu.Lock()
	if prev, ok := t.pending[videoID]; ok {
		prev.cancel()
	}
	t.pending[videoID] = p
	t.mu.Unlock()

	go func() {
		defer func() {
			t.mu.Lock()
			if t.pending[videoID] == p {
				delete(t.pending, videoID)
			}
			t.mu.Unlock()
			cancel()
		}()

		select {
		case <-probeCtx.Done():
			return
		case <-time.After(refineDelay):
		}

		title, err := t.prober.ProbeTitle(probeCtx, videoID)
		if err != nil || title == "" || title == currentLabel {
			return
		}
		t.onLabel(videoID, title)
	}()
}

// Follow consumes subject changes from a source, scheduling a refinement
// for each emitted video until the source closes or the context ends.
// Blocks; run it in its own goroutine.
func (t *Tracker) Follow(ctx context.Context, src SubjectSource) {
	for {
		select {
		case <-ctx.Done():
			return
		case videoID, ok := <-src.Subjects():
			if !ok {
				return
			}
			t.Refine(ctx, videoID, "")
		}
	}
}

// Cancel drops any pending refinement for the video.
func (t *Tracker) Cancel(videoID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p, ok := t.pending[videoID]; ok {
		p.cancel()
		delete(t.pending, videoID)
	}
}
