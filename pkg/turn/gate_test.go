package turn

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Test Helpers
// ============================================================================

type grant struct {
	turn uint64
	slot int
}

// ledger records every granted turn. It is only mutated inside gate actions,
// so the gate's own lock is what keeps it consistent.
type ledger struct {
	grants []grant
	inside atomic.Int32
	maxIn  atomic.Int32
}

func (l *ledger) record(slot int) Action[*ledger] {
	return func(res *ledger, t uint64) (bool, error) {
		n := res.inside.Add(1)
		if n > res.maxIn.Load() {
			res.maxIn.Store(n)
		}
		res.grants = append(res.grants, grant{turn: t, slot: slot})
		res.inside.Add(-1)
		return false, nil
	}
}

func strategies() []struct {
	name string
	opts []Option
} {
	return []struct {
		name string
		opts []Option
	}{
		{"cond", []Option{WithWaitStrategy(WaitCond)}},
		{"poll", []Option{WithWaitStrategy(WaitPoll), WithPollInterval(100 * time.Microsecond)}},
	}
}

// ============================================================================
// Construction
// ============================================================================

func TestNewGate(t *testing.T) {
	t.Run("RejectsZeroSlots", func(t *testing.T) {
		_, err := NewGate(struct{}{}, 0)
		assert.ErrorIs(t, err, ErrNoSlots)
	})

	t.Run("RejectsUnknownWaitStrategy", func(t *testing.T) {
		_, err := NewGate(struct{}{}, 2, WithWaitStrategy("spin"))
		assert.ErrorIs(t, err, ErrUnknownWaitStrategy)
	})

	t.Run("StartsAtTurnOne", func(t *testing.T) {
		g, err := NewGate(struct{}{}, 3, WithName("read"))
		require.NoError(t, err)
		assert.Equal(t, uint64(1), g.Turn())
		assert.False(t, g.IsExhausted())
		assert.Equal(t, 3, g.Slots())
		assert.Equal(t, "read", g.Name())
		assert.NoError(t, g.Cause())
	})
}

func TestParseWaitStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    WaitStrategy
		wantErr bool
	}{
		{"", WaitCond, false},
		{"cond", WaitCond, false},
		{"POLL", WaitPoll, false},
		{" poll ", WaitPoll, false},
		{"spin", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWaitStrategy(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownWaitStrategy)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWithPollInterval(t *testing.T) {
	tests := []struct {
		name string
		in   time.Duration
		want time.Duration
	}{
		{"Explicit", 750 * time.Microsecond, 750 * time.Microsecond},
		{"Zero", 0, DefaultPollInterval},
		{"Negative", -time.Second, DefaultPollInterval},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGate(0, 2, WithWaitStrategy(WaitPoll), WithPollInterval(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, g.pollInterval)
		})
	}
}

// ============================================================================
// Ordering
// ============================================================================

func TestRequest_RoundRobinOrder(t *testing.T) {
	for _, st := range strategies() {
		for _, slots := range []int{1, 2, 3, 8} {
			t.Run(fmt.Sprintf("%s/slots=%d", st.name, slots), func(t *testing.T) {
				const rounds = 25
				l := &ledger{}
				g, err := NewGate(l, slots, st.opts...)
				require.NoError(t, err)

				var wg sync.WaitGroup
				errs := make(chan error, slots)
				for slot := 0; slot < slots; slot++ {
					wg.Add(1)
					go func(slot int) {
						defer wg.Done()
						for i := 0; i < rounds; i++ {
							outcome, err := g.Request(slot, l.record(slot))
							if err != nil {
								errs <- err
								return
							}
							if outcome != Granted {
								errs <- errors.New("unexpected outcome " + outcome.String())
								return
							}
						}
					}(slot)
				}
				wg.Wait()
				close(errs)
				for err := range errs {
					require.NoError(t, err)
				}

				total := slots * rounds
				require.Len(t, l.grants, total)
				for i, gr := range l.grants {
					assert.Equal(t, uint64(i+1), gr.turn, "turns must be 1..K without gaps")
					assert.Equal(t, int(gr.turn%uint64(slots)), gr.slot, "turn %d went to the wrong slot", gr.turn)
				}
				assert.Equal(t, int32(1), l.maxIn.Load(), "more than one slot held the resource")
				assert.Equal(t, uint64(total+1), g.Turn())
			})
		}
	}
}

func TestRequest_InvalidSlot(t *testing.T) {
	g, err := NewGate(struct{}{}, 2)
	require.NoError(t, err)

	ran := false
	action := func(struct{}, uint64) (bool, error) {
		ran = true
		return false, nil
	}

	_, err = g.Request(-1, action)
	assert.ErrorIs(t, err, ErrInvalidSlot)
	_, err = g.Request(2, action)
	assert.ErrorIs(t, err, ErrInvalidSlot)
	assert.False(t, ran)
	assert.Equal(t, uint64(1), g.Turn())
}

// ============================================================================
// Exhaustion
// ============================================================================

func TestRequest_Exhaustion(t *testing.T) {
	for _, st := range strategies() {
		t.Run(st.name, func(t *testing.T) {
			const slots = 4
			const lastTurn = 6

			var runs atomic.Int32
			g, err := NewGate(struct{}{}, slots, st.opts...)
			require.NoError(t, err)

			outcomes := make([][]Outcome, slots)
			var wg sync.WaitGroup
			for slot := 0; slot < slots; slot++ {
				wg.Add(1)
				go func(slot int) {
					defer wg.Done()
					for {
						outcome, err := g.Request(slot, func(_ struct{}, turn uint64) (bool, error) {
							runs.Add(1)
							return turn == lastTurn, nil
						})
						if err != nil {
							t.Errorf("slot %d: %v", slot, err)
							return
						}
						outcomes[slot] = append(outcomes[slot], outcome)
						if outcome == Exhausted {
							return
						}
					}
				}(slot)
			}
			wg.Wait()

			assert.Equal(t, int32(lastTurn), runs.Load(), "no action may run after exhaustion")
			assert.True(t, g.IsExhausted())
			assert.Equal(t, uint64(lastTurn+1), g.Turn())
			for slot, got := range outcomes {
				require.NotEmpty(t, got, "slot %d never returned", slot)
				assert.Equal(t, Exhausted, got[len(got)-1])
			}

			// Exhaustion is permanent and single-shot.
			g.Exhaust()
			outcome, err := g.Request(int(g.Turn()%slots), func(struct{}, uint64) (bool, error) {
				t.Fatal("action ran on an exhausted gate")
				return false, nil
			})
			require.NoError(t, err)
			assert.Equal(t, Exhausted, outcome)
			assert.True(t, g.IsExhausted())
		})
	}
}

func TestExhaust_WakesWaiters(t *testing.T) {
	g, err := NewGate(struct{}{}, 3)
	require.NoError(t, err)

	// Turn 1 belongs to slot 1; slots 0 and 2 must wait.
	done := make(chan Outcome, 2)
	for _, slot := range []int{0, 2} {
		go func(slot int) {
			outcome, _ := g.Request(slot, func(struct{}, uint64) (bool, error) {
				return false, nil
			})
			done <- outcome
		}(slot)
	}

	time.Sleep(20 * time.Millisecond)
	g.Exhaust()

	for i := 0; i < 2; i++ {
		select {
		case outcome := <-done:
			assert.Equal(t, Exhausted, outcome)
		case <-time.After(2 * time.Second):
			t.Fatal("waiter was not woken by Exhaust")
		}
	}
}

// ============================================================================
// Failure
// ============================================================================

func TestRequest_ActionErrorAbortsGate(t *testing.T) {
	ioErr := errors.New("disk on fire")
	g, err := NewGate(struct{}{}, 2, WithName("write"))
	require.NoError(t, err)

	waiter := make(chan error, 1)
	go func() {
		// Slot 0 owns turn 2 and waits behind slot 1.
		_, err := g.Request(0, func(struct{}, uint64) (bool, error) {
			return false, nil
		})
		waiter <- err
	}()

	_, err = g.Request(1, func(struct{}, uint64) (bool, error) {
		return false, ioErr
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ioErr)
	assert.Contains(t, err.Error(), "write turn 1")

	select {
	case err := <-waiter:
		assert.ErrorIs(t, err, ErrAborted)
		assert.ErrorIs(t, err, ioErr)
	case <-time.After(2 * time.Second):
		t.Fatal("peer was left waiting after a failed turn")
	}

	assert.ErrorIs(t, g.Cause(), ioErr)
	assert.Equal(t, uint64(1), g.Turn(), "a failed turn must not advance the counter")
}

func TestAbort(t *testing.T) {
	for _, st := range strategies() {
		t.Run(st.name, func(t *testing.T) {
			cause := errors.New("interrupted")
			g, err := NewGate(struct{}{}, 2, st.opts...)
			require.NoError(t, err)

			waiter := make(chan error, 1)
			go func() {
				_, err := g.Request(0, func(struct{}, uint64) (bool, error) {
					return false, nil
				})
				waiter <- err
			}()

			time.Sleep(10 * time.Millisecond)
			g.Abort(cause)
			g.Abort(errors.New("second cause is ignored"))

			select {
			case err := <-waiter:
				assert.ErrorIs(t, err, ErrAborted)
				assert.ErrorIs(t, err, cause)
			case <-time.After(2 * time.Second):
				t.Fatal("waiter was not woken by Abort")
			}
			assert.Equal(t, cause, g.Cause())
		})
	}
}

func TestAbort_NilCause(t *testing.T) {
	g, err := NewGate(struct{}{}, 1)
	require.NoError(t, err)

	g.Abort(nil)
	_, err = g.Request(0, func(struct{}, uint64) (bool, error) {
		return false, nil
	})
	assert.ErrorIs(t, err, ErrAborted)
	assert.Error(t, g.Cause())
}

func TestRequest_TurnOverflow(t *testing.T) {
	g, err := NewGate(struct{}{}, 1, WithFirstTurn(math.MaxUint64-1))
	require.NoError(t, err)

	action := func(struct{}, uint64) (bool, error) { return false, nil }

	outcome, err := g.Request(0, action)
	require.NoError(t, err)
	assert.Equal(t, Granted, outcome)

	_, err = g.Request(0, action)
	assert.ErrorIs(t, err, ErrTurnOverflow)
	assert.Equal(t, uint64(math.MaxUint64), g.Turn())
}

// ============================================================================
// Ownership
// ============================================================================

func TestClose(t *testing.T) {
	type resource struct{ appended int }
	res := &resource{}

	g, err := NewGate(res, 1)
	require.NoError(t, err)

	_, err = g.Request(0, func(r *resource, _ uint64) (bool, error) {
		r.appended++
		return false, nil
	})
	require.NoError(t, err)

	reclaimed := g.Close()
	assert.Same(t, res, reclaimed)
	assert.Equal(t, 1, reclaimed.appended)

	_, err = g.Request(0, func(*resource, uint64) (bool, error) {
		t.Fatal("action ran on a closed gate")
		return false, nil
	})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "granted", Granted.String())
	assert.Equal(t, "exhausted", Exhausted.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}
