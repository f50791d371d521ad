package tasks

import (
	"context"
	"sync"
	"time"
)

// DefaultPollInterval is used when a Poller is constructed without one.
const DefaultPollInterval = 2 * time.Second

// Poller owns the single recurring timer behind an engine. Ticks run at a
// fixed interval with no backoff; the backend is local and cheap to ask.
type Poller struct {
	interval time.Duration

	mu  sync.Mutex
	run *pollRun
}

// pollRun identifies one Start-to-exit span of the loop, so a loop that
// dies on its own (parent context cancelled) can clear itself without
// clobbering a newer run.
type pollRun struct {
	cancel context.CancelFunc
}

// NewPoller creates a Poller with the given tick interval.
func NewPoller(interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{interval: interval}
}

// Start begins the tick loop, firing once immediately and then at the fixed
// interval. Returns false without side effects when already running, so two
// surfaces racing to start polling cannot double the request rate.
func (p *Poller) Start(ctx context.Context, tick func(context.Context)) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.run != nil {
		return false
	}

	loopCtx, cancel := context.WithCancel(ctx)
	run := &pollRun{cancel: cancel}
	p.run = run

	go func() {
		defer func() {
			cancel()
			p.mu.Lock()
			if p.run == run {
				p.run = nil
			}
			p.mu.Unlock()
		}()

		tick(loopCtx)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				tick(loopCtx)
			}
		}
	}()

	return true
}

// Stop cancels the loop. An in-flight tick runs to completion but the loop
// does not re-arm. Safe to call when not running, safe to call from inside
// a tick, and safe from more than one goroutine.
func (p *Poller) Stop() {
	p.mu.Lock()
	run := p.run
	p.run = nil
	p.mu.Unlock()

	if run != nil {
		run.cancel()
	}
}

// Running reports whether the tick loop is live.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.run != nil
}
