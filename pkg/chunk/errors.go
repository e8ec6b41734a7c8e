package chunk

import "errors"

var (
	// ErrZeroChunk is returned when ReadChunk is given an empty buffer.
	ErrZeroChunk = errors.New("chunk: buffer has zero capacity")

	// ErrFinished is returned when the sink is used after Finish.
	ErrFinished = errors.New("chunk: sink already finished")
)
