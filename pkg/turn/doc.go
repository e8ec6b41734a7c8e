// Package turn provides Gate, an ordered critical section that hands a single
// shared resource to a fixed set of slots in strict round-robin order.
//
// A gate owns a turn counter (starting at 1), an exhaustion flag and the
// protected resource. Turn t belongs to slot t mod N. The slot that owns the
// current turn runs its action while holding the gate's lock, then the counter
// advances by exactly one. Every other slot waits.
//
// # Guarantees
//
//   - At most one slot holds the resource at any time.
//   - Turns are granted in strictly increasing order with no gaps or repeats.
//   - Every slot eventually gets its turn as long as the gate is not exhausted.
//
// Once exhausted, a gate answers every further request with Exhausted without
// running the action. Exhaustion is permanent.
//
// # Usage
//
//	g, err := turn.NewGate(src, workers, turn.WithName("read"))
//	...
//	outcome, err := g.Request(slot, func(src *Source, t uint64) (bool, error) {
//		n, last, err := src.ReadChunk(buf)
//		return last, err
//	})
package turn
