package turn

import (
	"fmt"
	"strings"
	"time"
)

// WaitStrategy selects how a slot waits for its turn.
type WaitStrategy string

const (
	// WaitCond parks the caller on a per-slot condition variable that is
	// signalled by whoever advances the counter to that slot's turn.
	WaitCond WaitStrategy = "cond"

	// WaitPoll releases the lock and sleeps for a constant interval
	// between admission checks.
	WaitPoll WaitStrategy = "poll"
)

// DefaultPollInterval is the sleep between admission checks for WaitPoll.
const DefaultPollInterval = 5 * time.Millisecond

// ParseWaitStrategy parses "cond" or "poll" (case-insensitive).
func ParseWaitStrategy(s string) (WaitStrategy, error) {
	switch WaitStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case WaitCond, "":
		return WaitCond, nil
	case WaitPoll:
		return WaitPoll, nil
	default:
		return "", fmt.Errorf("%w: %q (valid: cond, poll)", ErrUnknownWaitStrategy, s)
	}
}

type options struct {
	name         string
	wait         WaitStrategy
	pollInterval time.Duration
	firstTurn    uint64
}

func defaultOptions() options {
	return options{
		name:         "gate",
		wait:         WaitCond,
		pollInterval: DefaultPollInterval,
		firstTurn:    1,
	}
}

// Option configures a Gate.
type Option func(*options)

// WithName sets the name used in error messages (e.g. "read", "write").
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithWaitStrategy selects how callers wait for their turn.
func WithWaitStrategy(w WaitStrategy) Option {
	return func(o *options) {
		o.wait = w
	}
}

// WithPollInterval sets the sleep between checks when using WaitPoll. The
// interval is constant: a waiter sleeps exactly d between every check and
// never backs off further. Non-positive values keep DefaultPollInterval.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

// WithFirstTurn starts the counter at t instead of 1.
// Intended for tests that exercise counter limits.
func WithFirstTurn(t uint64) Option {
	return func(o *options) {
		o.firstTurn = t
	}
}
