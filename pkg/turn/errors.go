package turn

import "errors"

var (
	// ErrInvalidSlot is returned when a slot outside [0, slots) requests a turn.
	ErrInvalidSlot = errors.New("turn: invalid slot")

	// ErrTurnOverflow is returned when granting another turn would wrap the counter.
	ErrTurnOverflow = errors.New("turn: counter overflow")

	// ErrAborted is returned to every caller once the gate has been aborted.
	// The abort cause is wrapped alongside it.
	ErrAborted = errors.New("turn: gate aborted")

	// ErrClosed is returned when a turn is requested after Close.
	ErrClosed = errors.New("turn: gate closed")
)

var (
	// ErrNoSlots is returned by NewGate when asked for fewer than one slot.
	ErrNoSlots = errors.New("turn: gate needs at least one slot")

	// ErrUnknownWaitStrategy is returned by NewGate for an unrecognized WaitStrategy.
	ErrUnknownWaitStrategy = errors.New("turn: unknown wait strategy")
)
