package turn

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Outcome is the result of a granted or refused turn request.
type Outcome int

const (
	// Granted means the action ran and the counter advanced.
	Granted Outcome = iota

	// Exhausted means the gate is exhausted; the action did not run.
	Exhausted
)

func (o Outcome) String() string {
	switch o {
	case Granted:
		return "granted"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Action is the guarded operation run while the gate's lock is held.
// It receives the protected resource and the turn number being granted.
// Returning last=true exhausts the gate before the lock is released.
type Action[R any] func(resource R, turn uint64) (last bool, err error)

// Gate is an ordered critical section over a resource of type R.
//
// Turn t is admitted for slot t mod N, where N is the number of slots given to
// NewGate. A Gate is safe for concurrent use by any number of goroutines.
type Gate[R any] struct {
	name         string
	slots        int
	wait         WaitStrategy
	pollInterval time.Duration

	mu        sync.Mutex
	ready     []*sync.Cond // indexed by slot, all bound to mu
	turn      uint64
	exhausted bool
	closed    bool
	cause     error
	resource  R
}

// NewGate creates a gate over resource shared by slots callers.
func NewGate[R any](resource R, slots int, opts ...Option) (*Gate[R], error) {
	if slots < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrNoSlots, slots)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.wait != WaitCond && o.wait != WaitPoll {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWaitStrategy, o.wait)
	}

	g := &Gate[R]{
		name:         o.name,
		slots:        slots,
		wait:         o.wait,
		pollInterval: o.pollInterval,
		turn:         o.firstTurn,
		resource:     resource,
	}
	g.ready = make([]*sync.Cond, slots)
	for i := range g.ready {
		g.ready[i] = sync.NewCond(&g.mu)
	}
	return g, nil
}

// Request blocks until slot owns the current turn, then runs action with the
// protected resource inside the critical section and advances the counter.
//
// If the gate is exhausted, Request returns Exhausted without running action.
// An error from action is returned wrapped with the turn number and aborts the
// gate, so no peer waits for a turn that can no longer be granted. The Outcome
// is only meaningful when the error is nil.
func (g *Gate[R]) Request(slot int, action Action[R]) (Outcome, error) {
	if slot < 0 || slot >= g.slots {
		return Exhausted, fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidSlot, slot, g.slots)
	}

	var poll backoff.BackOff

	g.mu.Lock()
	for {
		if err := g.unusableLocked(); err != nil {
			g.mu.Unlock()
			return Exhausted, err
		}
		if g.exhausted {
			g.mu.Unlock()
			return Exhausted, nil
		}
		if g.admitsLocked(slot) {
			break
		}

		if g.wait == WaitPoll {
			if poll == nil {
				poll = backoff.NewConstantBackOff(g.pollInterval)
			}
			g.mu.Unlock()
			time.Sleep(poll.NextBackOff())
			g.mu.Lock()
			continue
		}
		g.ready[slot].Wait()
	}
	defer g.mu.Unlock()

	t := g.turn
	if t == math.MaxUint64 {
		err := fmt.Errorf("%w: %s gate at turn %d", ErrTurnOverflow, g.name, t)
		g.abortLocked(err)
		return Exhausted, err
	}

	last, err := action(g.resource, t)
	if err != nil {
		err = fmt.Errorf("%s turn %d (slot %d): %w", g.name, t, slot, err)
		g.abortLocked(err)
		return Exhausted, err
	}

	g.turn++
	if last {
		g.exhaustLocked()
	} else {
		g.ready[g.turn%uint64(g.slots)].Broadcast()
	}
	return Granted, nil
}

// Exhaust permanently marks the gate exhausted and wakes all waiters.
// Calling it more than once has no further effect. Callers that learn of the
// end inside an action report last=true instead; Exhaust is for owners that
// end the sequence without running a final turn.
func (g *Gate[R]) Exhaust() {
	g.mu.Lock()
	g.exhaustLocked()
	g.mu.Unlock()
}

// Abort poisons the gate: every pending and future Request fails with an
// error wrapping ErrAborted and cause. Only the first cause is kept.
func (g *Gate[R]) Abort(cause error) {
	if cause == nil {
		cause = errors.New("aborted without cause")
	}
	g.mu.Lock()
	g.abortLocked(cause)
	g.mu.Unlock()
}

// Close reclaims the protected resource. Requests made after Close fail with
// ErrClosed. Close is meant for the owner once every caller has returned.
func (g *Gate[R]) Close() R {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	g.broadcastLocked()
	return g.resource
}

// Turn returns the turn number that will be granted next.
func (g *Gate[R]) Turn() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.turn
}

// IsExhausted reports whether the gate has been exhausted.
func (g *Gate[R]) IsExhausted() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.exhausted
}

// Cause returns the error the gate was aborted with, or nil.
func (g *Gate[R]) Cause() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cause
}

// Slots returns the number of slots taking turns on the gate.
func (g *Gate[R]) Slots() int {
	return g.slots
}

// Name returns the gate's name.
func (g *Gate[R]) Name() string {
	return g.name
}

func (g *Gate[R]) admitsLocked(slot int) bool {
	return g.turn%uint64(g.slots) == uint64(slot)
}

func (g *Gate[R]) unusableLocked() error {
	if g.cause != nil {
		return fmt.Errorf("%w: %s gate: %w", ErrAborted, g.name, g.cause)
	}
	if g.closed {
		return fmt.Errorf("%w: %s gate", ErrClosed, g.name)
	}
	return nil
}

func (g *Gate[R]) exhaustLocked() {
	if g.exhausted {
		return
	}
	g.exhausted = true
	g.broadcastLocked()
}

func (g *Gate[R]) abortLocked(cause error) {
	if g.cause == nil {
		g.cause = cause
	}
	g.broadcastLocked()
}

func (g *Gate[R]) broadcastLocked() {
	for _, c := range g.ready {
		c.Broadcast()
	}
}
