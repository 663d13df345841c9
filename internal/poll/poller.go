// Package poll provides a cancellable fixed-interval poller for
// asynchronous backend jobs.
//
// Polling is modeled as an explicit state machine rather than a chain of
// scheduled callbacks: a Poller moves through pending, polling and exactly
// one of done, failed or cancelled, and abandoning it deterministically
// stops the timer.
package poll

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State is the lifecycle state of a Poller.
type State int

// Poller states.
const (
	StatePending State = iota
	StatePolling
	StateDone
	StateFailed
	StateCancelled
)

// String returns a readable state name.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StatePolling:
		return "polling"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ErrCancelled is returned by Run when the poll was cancelled before the
// remote job reached a terminal state.
var ErrCancelled = errors.New("polling cancelled")

// Func checks the remote status once. It returns done=true when the job
// has left its in-progress states and polling should stop.
type Func func(ctx context.Context) (done bool, err error)

// DefaultInterval matches the reference client's fixed 2-second poll.
const DefaultInterval = 2 * time.Second

// Poller repeatedly invokes a Func at a fixed interval until it reports
// done, fails, or is cancelled. A Poller is single-use.
type Poller struct {
	cancel   context.CancelFunc
	interval time.Duration
	mu       sync.Mutex
	state    State
}

// New creates a poller with the given interval. A non-positive interval
// falls back to DefaultInterval.
func New(interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{interval: interval, state: StatePending}
}

// State returns the poller's current state.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Cancel stops an in-flight Run. Late results from a cancelled poll are
// never applied; Run returns ErrCancelled.
func (p *Poller) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StatePolling || p.state == StatePending {
		p.state = StateCancelled
		if p.cancel != nil {
			p.cancel()
		}
	}
}

// Run polls fn until it reports done, returns an error, or the poll is
// cancelled via Cancel or ctx. The first check happens immediately; each
// subsequent check waits one interval.
func (p *Poller) Run(ctx context.Context, fn Func) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p.mu.Lock()
	if p.state == StateCancelled {
		p.mu.Unlock()
		return ErrCancelled
	}
	p.state = StatePolling
	p.cancel = cancel
	p.mu.Unlock()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		done, err := fn(runCtx)

		if p.State() == StateCancelled {
			return ErrCancelled
		}
		if err != nil {
			p.setState(StateFailed)
			return err
		}
		if done {
			p.setState(StateDone)
			return nil
		}

		select {
		case <-runCtx.Done():
			if p.State() == StateCancelled {
				return ErrCancelled
			}
			p.setState(StateCancelled)
			return runCtx.Err()
		case <-ticker.C:
		}
	}
}

func (p *Poller) setState(s State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateCancelled {
		p.state = s
	}
}
