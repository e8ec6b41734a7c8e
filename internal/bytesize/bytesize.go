// Package bytesize is a byte count that config files and flags can spell in
// human units ("256KiB", "1Mi", "4MB", "65536").
package bytesize

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// ByteSize is a size in bytes. Binary suffixes (Ki, KiB, Mi, ...) multiply by
// 1024, decimal suffixes (K, KB, M, ...) by 1000; a bare number is bytes.
type ByteSize uint64

// Common byte size constants
const (
	B  ByteSize = 1
	KB ByteSize = 1000
	MB ByteSize = 1000 * KB
	GB ByteSize = 1000 * MB

	KiB ByteSize = 1024
	MiB ByteSize = 1024 * KiB
	GiB ByteSize = 1024 * MiB
)

// ParseByteSize parses a human-readable byte size.
func ParseByteSize(s string) (ByteSize, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size string")
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q: %w", s, err)
	}
	return ByteSize(n), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, so ByteSize can be
// decoded by mapstructure and yaml.
func (b *ByteSize) UnmarshalText(text []byte) error {
	size, err := ParseByteSize(string(text))
	if err != nil {
		return err
	}
	*b = size
	return nil
}

// MarshalText renders the size in its shortest exact binary form, so a saved
// config reads back to the same value.
func (b ByteSize) MarshalText() ([]byte, error) {
	return []byte(b.Exact()), nil
}

// String returns an approximate human-readable size such as "293 KiB".
func (b ByteSize) String() string {
	return humanize.IBytes(uint64(b))
}

// Exact returns the size with the largest binary unit that divides it
// evenly, e.g. "256KiB", "3MiB" or "1000".
func (b ByteSize) Exact() string {
	switch {
	case b == 0:
		return "0"
	case b%GiB == 0:
		return fmt.Sprintf("%dGiB", b/GiB)
	case b%MiB == 0:
		return fmt.Sprintf("%dMiB", b/MiB)
	case b%KiB == 0:
		return fmt.Sprintf("%dKiB", b/KiB)
	default:
		return fmt.Sprintf("%d", uint64(b))
	}
}

// Int returns the size as an int.
func (b ByteSize) Int() int {
	return int(b)
}

// Int64 returns the size as an int64.
func (b ByteSize) Int64() int64 {
	return int64(b)
}
