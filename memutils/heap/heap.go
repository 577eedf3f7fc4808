// Package heap provides the memory that a boundary-tag allocator manages: a single linear
// region that can only grow at its high end, in the manner of sbrk(2).
//
// Memory is addressed by offset from the start of the region. Offsets handed out by Grow
// remain valid for the life of the heap (until Reset), even for implementations that
// move the region's backing storage while growing. Slices returned by Bytes do not share
// that guarantee and should be re-fetched after every Grow.
package heap

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/brkalloc/memutils"
)

// DefaultMaxHeap is the default limit, in bytes, for heaps created without an explicit one
const DefaultMaxHeap int = 20 * (1 << 20)

//go:generate mockgen -source heap.go -destination ./mocks/heap.go -package mock_heap

// Heap is a linear region of memory that grows contiguously at its high end.
type Heap interface {
	// Grow extends the heap by exactly n bytes and returns the offset of the first new byte,
	// which is always the size of the heap before the call. When the heap cannot supply n more
	// bytes it returns an error wrapping memutils.ErrOutOfMemory and is left unchanged.
	Grow(n int) (int, error)
	// Bytes returns the current contents of the heap. The length of the slice is Size().
	Bytes() []byte
	// Size returns the number of bytes obtained with Grow since creation or the last Reset
	Size() int
	// Reset discards the contents of the heap, returning its size to 0.
	Reset()
}

func checkGrow(size, n, max int) error {
	if n < 0 {
		return errors.Wrapf(memutils.ErrInvalidSize, "cannot grow heap by %d bytes", n)
	}
	if n > max-size {
		return errors.Wrapf(memutils.ErrOutOfMemory, "cannot grow heap of %d bytes by %d bytes, limit is %d", size, n, max)
	}

	return nil
}
