package chunk

import (
	"errors"
	"fmt"
	"io"
)

// Source hands out consecutive chunks of an input stream.
type Source struct {
	r      io.Reader
	chunks uint64
	bytes  int64
	done   bool
}

// NewSource wraps r.
func NewSource(r io.Reader) *Source {
	return &Source{r: r}
}

// ReadChunk fills buf with the next chunk and returns the number of bytes
// read. last is true when the input ended before buf was full; that chunk is
// the final one and every later call returns (0, true, nil).
//
// A reader that delivers fewer bytes than asked before the end of the stream
// (a pipe, a socket) is read again until buf is full, so a short chunk always
// means end of input.
func (s *Source) ReadChunk(buf []byte) (n int, last bool, err error) {
	if len(buf) == 0 {
		return 0, false, ErrZeroChunk
	}
	if s.done {
		return 0, true, nil
	}

	n, err = io.ReadFull(s.r, buf)
	switch {
	case err == nil:
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		last, err = true, nil
	default:
		return n, false, fmt.Errorf("read chunk %d: %w", s.chunks+1, err)
	}

	s.chunks++
	s.bytes += int64(n)
	s.done = last
	return n, last, nil
}

// Chunks returns the number of chunks handed out, including a final short or
// empty one.
func (s *Source) Chunks() uint64 {
	return s.chunks
}

// Bytes returns the total number of input bytes read.
func (s *Source) Bytes() int64 {
	return s.bytes
}

// Done reports whether the end of input has been reached.
func (s *Source) Done() bool {
	return s.done
}
