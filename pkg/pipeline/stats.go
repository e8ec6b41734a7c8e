package pipeline

import "time"

// SlotStats describes what one worker did during a run.
type SlotStats struct {
	Slot       int
	ReadTurns  uint64
	WriteTurns uint64
	BytesIn    int64
	BytesOut   int64

	// ReadWait and WriteWait are the total time spent waiting to be
	// admitted by each gate.
	ReadWait  time.Duration
	WriteWait time.Duration

	// Compress is the total time spent compressing outside the gates.
	Compress time.Duration
}

// Stats summarizes a finished run.
type Stats struct {
	RunID     string
	Codec     string
	Level     int
	Workers   int
	ChunkSize int
	Wait      string

	// Chunks is the number of read turns granted, including the final
	// short (possibly empty) chunk.
	Chunks uint64

	// Frames is the number of compressed units in the output.
	Frames uint64

	BytesIn  int64
	BytesOut int64
	Duration time.Duration
	Slots    []SlotStats
}

// Ratio returns BytesOut / BytesIn, or 0 for empty input.
func (s *Stats) Ratio() float64 {
	if s == nil || s.BytesIn == 0 {
		return 0
	}
	return float64(s.BytesOut) / float64(s.BytesIn)
}

// Throughput returns uncompressed bytes per second.
func (s *Stats) Throughput() float64 {
	if s == nil || s.Duration <= 0 {
		return 0
	}
	return float64(s.BytesIn) / s.Duration.Seconds()
}

// TotalWait returns the summed read and write gate wait over all slots.
func (s *Stats) TotalWait() (read, write time.Duration) {
	if s == nil {
		return 0, 0
	}
	for _, sl := range s.Slots {
		read += sl.ReadWait
		write += sl.WriteWait
	}
	return read, write
}
