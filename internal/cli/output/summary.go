package output

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/marmos91/pzip/pkg/pipeline"
)

// Summary is the printable report of one compression run.
type Summary struct {
	RunID      string        `json:"run_id" yaml:"run_id"`
	Input      string        `json:"input" yaml:"input"`
	Output     string        `json:"output" yaml:"output"`
	Codec      string        `json:"codec" yaml:"codec"`
	Level      int           `json:"level" yaml:"level"`
	Workers    int           `json:"workers" yaml:"workers"`
	ChunkSize  int           `json:"chunk_size" yaml:"chunk_size"`
	Wait       string        `json:"wait" yaml:"wait"`
	Chunks     uint64        `json:"chunks" yaml:"chunks"`
	Frames     uint64        `json:"frames" yaml:"frames"`
	BytesIn    int64         `json:"bytes_in" yaml:"bytes_in"`
	BytesOut   int64         `json:"bytes_out" yaml:"bytes_out"`
	Ratio      float64       `json:"ratio" yaml:"ratio"`
	DurationMs float64       `json:"duration_ms" yaml:"duration_ms"`
	Slots      []SlotSummary `json:"slots" yaml:"slots"`
}

// SlotSummary is the per-worker part of a Summary.
type SlotSummary struct {
	Slot        int     `json:"slot" yaml:"slot"`
	Turns       uint64  `json:"turns" yaml:"turns"`
	BytesIn     int64   `json:"bytes_in" yaml:"bytes_in"`
	BytesOut    int64   `json:"bytes_out" yaml:"bytes_out"`
	ReadWaitMs  float64 `json:"read_wait_ms" yaml:"read_wait_ms"`
	WriteWaitMs float64 `json:"write_wait_ms" yaml:"write_wait_ms"`
	CompressMs  float64 `json:"compress_ms" yaml:"compress_ms"`
}

// NewSummary builds a Summary from a finished run.
func NewSummary(res *pipeline.Result) *Summary {
	st := res.Stats
	s := &Summary{
		RunID:      st.RunID,
		Input:      res.Input,
		Output:     res.Output,
		Codec:      st.Codec,
		Level:      st.Level,
		Workers:    st.Workers,
		ChunkSize:  st.ChunkSize,
		Wait:       st.Wait,
		Chunks:     st.Chunks,
		Frames:     st.Frames,
		BytesIn:    st.BytesIn,
		BytesOut:   st.BytesOut,
		Ratio:      st.Ratio(),
		DurationMs: ms(st.Duration),
		Slots:      make([]SlotSummary, 0, len(st.Slots)),
	}
	for _, sl := range st.Slots {
		s.Slots = append(s.Slots, SlotSummary{
			Slot:        sl.Slot,
			Turns:       sl.ReadTurns,
			BytesIn:     sl.BytesIn,
			BytesOut:    sl.BytesOut,
			ReadWaitMs:  ms(sl.ReadWait),
			WriteWaitMs: ms(sl.WriteWait),
			CompressMs:  ms(sl.Compress),
		})
	}
	return s
}

// Pairs implements Sectioned.
func (s *Summary) Pairs() [][2]string {
	throughput := "-"
	if s.DurationMs > 0 {
		throughput = humanize.IBytes(uint64(float64(s.BytesIn)/(s.DurationMs/1000))) + "/s"
	}
	return [][2]string{
		{"Input", s.Input},
		{"Output", s.Output},
		{"Codec", fmt.Sprintf("%s (level %d)", s.Codec, s.Level)},
		{"Workers", strconv.Itoa(s.Workers)},
		{"Chunk size", humanize.IBytes(uint64(s.ChunkSize))},
		{"Wait", s.Wait},
		{"Chunks", humanize.Comma(int64(s.Chunks))},
		{"Size", fmt.Sprintf("%s -> %s", humanize.IBytes(uint64(s.BytesIn)), humanize.IBytes(uint64(s.BytesOut)))},
		{"Ratio", fmt.Sprintf("%.1f%%", s.Ratio*100)},
		{"Duration", fmt.Sprintf("%.1fms", s.DurationMs)},
		{"Throughput", throughput},
	}
}

// Headers implements TableRenderer.
func (s *Summary) Headers() []string {
	return []string{"Slot", "Turns", "In", "Out", "Read wait", "Write wait", "Compress"}
}

// Rows implements TableRenderer.
func (s *Summary) Rows() [][]string {
	rows := make([][]string, 0, len(s.Slots))
	for _, sl := range s.Slots {
		rows = append(rows, []string{
			strconv.Itoa(sl.Slot),
			strconv.FormatUint(sl.Turns, 10),
			humanize.IBytes(uint64(sl.BytesIn)),
			humanize.IBytes(uint64(sl.BytesOut)),
			fmt.Sprintf("%.1fms", sl.ReadWaitMs),
			fmt.Sprintf("%.1fms", sl.WriteWaitMs),
			fmt.Sprintf("%.1fms", sl.CompressMs),
		})
	}
	return rows
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}
