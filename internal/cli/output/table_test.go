package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTable struct {
	headers []string
	rows    [][]string
}

func (f fakeTable) Headers() []string { return f.headers }
func (f fakeTable) Rows() [][]string  { return f.rows }

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	err := PrintTable(&buf, fakeTable{
		headers: []string{"Slot", "Turns"},
		rows:    [][]string{{"0", "12"}, {"1", "11"}},
	})
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "SLOT")
	assert.Contains(t, output, "TURNS")
	assert.Contains(t, output, "12")
	assert.Contains(t, output, "11")
}

func TestPrintPairs(t *testing.T) {
	var buf bytes.Buffer
	err := PrintPairs(&buf, [][2]string{
		{"Codec", "gzip"},
		{"Workers", "8"},
	})
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Codec")
	assert.Contains(t, output, "gzip")
	assert.Contains(t, output, "Workers")
	assert.Contains(t, output, "8")
}
