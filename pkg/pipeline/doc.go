// Package pipeline compresses a byte stream with a fixed pool of workers
// while producing exactly the bytes a single-threaded compressor would.
//
// Each worker loops over three states. It takes a turn on the read gate to
// pull the next chunk from the shared source, compresses that chunk on its
// own, then takes the turn with the same number on the write gate to append
// the compressed frame to the shared sink. Both gates hand out turns in strict
// round-robin order (turn t belongs to slot t mod N), so frame k is always
// appended k-th no matter how long each compression takes.
//
// A short read marks the end of input: it exhausts the read gate, and the
// matching write exhausts the write gate. Every worker then stops.
package pipeline
