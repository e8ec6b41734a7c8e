// Package bufpool recycles the chunk and frame buffers used by pipeline workers.
//
// Buffers are grouped in power-of-two size classes between MinSize and
// MaxSize. A request is served from the smallest class that fits it, so a
// worker asking for a 300000-byte chunk buffer receives a 512KiB backing
// array sliced down to 300000 bytes. Requests above MaxSize are allocated
// directly and never pooled.
//
// Usage:
//
//	buf := bufpool.Get(size)
//	defer bufpool.Put(buf)
package bufpool

import (
	"math/bits"
	"sync"
)

const (
	// MinSize is the smallest pooled class (4KiB).
	MinSize = 4 << 10

	// MaxSize is the largest pooled class (16MiB).
	MaxSize = 16 << 20
)

var (
	minShift = bits.Len(uint(MinSize)) - 1
	maxShift = bits.Len(uint(MaxSize)) - 1
)

// Pool hands out byte slices from power-of-two size classes.
// It is safe for concurrent use.
type Pool struct {
	classes []sync.Pool
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	p := &Pool{classes: make([]sync.Pool, maxShift-minShift+1)}
	for i := range p.classes {
		size := MinSize << i
		p.classes[i].New = func() any {
			buf := make([]byte, size)
			return &buf
		}
	}
	return p
}

// Get returns a slice of length size. Its capacity is the size class
// serving the request, or exactly size for requests above MaxSize.
func (p *Pool) Get(size int) []byte {
	if size < 0 {
		size = 0
	}
	idx, ok := classOf(size)
	if !ok {
		return make([]byte, size)
	}
	bufPtr := p.classes[idx].Get().(*[]byte)
	return (*bufPtr)[:size]
}

// Put returns buf to its size class. Slices whose capacity is not exactly a
// class size (including everything obtained from append growth) are dropped.
func (p *Pool) Put(buf []byte) {
	c := cap(buf)
	if c < MinSize || c > MaxSize || c&(c-1) != 0 {
		return
	}
	full := buf[:c]
	p.classes[bits.Len(uint(c))-1-minShift].Put(&full)
}

// ClassSize reports the capacity Get would return for size.
func ClassSize(size int) int {
	idx, ok := classOf(size)
	if !ok {
		return size
	}
	return MinSize << idx
}

func classOf(size int) (int, bool) {
	if size > MaxSize {
		return 0, false
	}
	if size <= MinSize {
		return 0, true
	}
	return bits.Len(uint(size-1)) - minShift, true
}

var globalPool = NewPool()

// Get returns a slice of length size from the package-level pool.
func Get(size int) []byte {
	return globalPool.Get(size)
}

// Put returns buf to the package-level pool.
func Put(buf []byte) {
	globalPool.Put(buf)
}
