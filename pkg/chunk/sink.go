package chunk

import (
	"bytes"
	"fmt"

	"github.com/marmos91/pzip/pkg/codec"
)

// Sink is the output encoder state: an in-memory stream of compressed units
// appended in turn order, finalized once when every worker is done.
type Sink struct {
	codec    codec.Codec
	buf      bytes.Buffer
	units    uint64
	finished bool
}

// NewSink creates an empty sink for units produced by c.
func NewSink(c codec.Codec) *Sink {
	return &Sink{codec: c}
}

// Append adds one compressed unit to the stream. An empty unit is accepted
// and ignored.
func (s *Sink) Append(unit []byte) error {
	if s.finished {
		return ErrFinished
	}
	if len(unit) == 0 {
		return nil
	}
	s.buf.Write(unit)
	s.units++
	return nil
}

// Finish finalizes the stream and returns its bytes. A stream that received no
// unit is given the codec's empty unit so that it still decodes. The returned
// slice aliases the sink's buffer.
func (s *Sink) Finish() ([]byte, error) {
	if s.finished {
		return nil, ErrFinished
	}
	if s.units == 0 {
		empty, err := s.codec.Compress(nil, nil)
		if err != nil {
			return nil, fmt.Errorf("finish empty stream: %w", err)
		}
		s.buf.Write(empty)
	}
	s.finished = true
	return s.buf.Bytes(), nil
}

// Units returns the number of non-empty units appended.
func (s *Sink) Units() uint64 {
	return s.units
}

// Len returns the current size of the encoded stream.
func (s *Sink) Len() int {
	return s.buf.Len()
}
