// Package codec provides the chunk transforms used by the compression
// pipeline.
//
// A Codec compresses one chunk into one self-contained unit (a gzip member or
// a zstd frame). Units produced by the same codec can be concatenated in any
// number, and the standard decoder for the format yields the concatenation of
// the original chunks. That property is what lets chunks be compressed out of
// order by independent workers while the output stays a single valid stream.
package codec

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnknownCodec is returned for a codec name or extension that is not registered.
var ErrUnknownCodec = errors.New("codec: unknown codec")

// ErrInvalidLevel is returned when a compression level is out of range for a codec.
var ErrInvalidLevel = errors.New("codec: invalid compression level")

// Codec compresses independent chunks and decodes the concatenated result.
//
// Compress must be safe for concurrent use.
type Codec interface {
	// Name returns the registry name ("gzip", "zstd").
	Name() string

	// Extension returns the file suffix including the dot (".gz").
	Extension() string

	// Level returns the compression level in use.
	Level() int

	// Compress appends one compressed unit holding src to dst and returns
	// the extended slice. An empty src yields a valid empty unit.
	Compress(dst, src []byte) ([]byte, error)

	// NewReader returns a reader that decodes a stream of concatenated units.
	NewReader(r io.Reader) (io.ReadCloser, error)
}

// DefaultLevel asks a codec for its own default level.
const DefaultLevel = 0

type constructor func(level int) (Codec, error)

type registration struct {
	ext string
	new constructor
}

var registry = map[string]registration{
	"gzip": {ext: ".gz", new: newGzip},
	"zstd": {ext: ".zst", new: newZstd},
}

// New returns the codec registered under name, configured with level.
// DefaultLevel selects the codec's default.
func New(name string, level int) (Codec, error) {
	reg, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (valid: %s)", ErrUnknownCodec, name, strings.Join(Names(), ", "))
	}
	return reg.new(level)
}

// Names returns the registered codec names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ForPath picks a codec (at its default level) from a compressed file's extension.
func ForPath(path string) (Codec, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for name, reg := range registry {
		if reg.ext == ext {
			return New(name, DefaultLevel)
		}
	}
	return nil, fmt.Errorf("%w: no codec for extension %q", ErrUnknownCodec, ext)
}

// TrimExtension strips c's extension from path. ok is false when path does
// not carry that extension.
func TrimExtension(c Codec, path string) (string, bool) {
	ext := c.Extension()
	if len(path) <= len(ext) || !strings.EqualFold(path[len(path)-len(ext):], ext) {
		return path, false
	}
	return path[:len(path)-len(ext)], true
}
