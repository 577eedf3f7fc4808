package heap

import (
	"github.com/bytedance/gopkg/lang/mcache"
)

const minGrowableCapacity = 4096

// GrowableArena is a Heap that reserves nothing up front. When Grow outruns its backing
// storage, the contents are copied to a buffer of at least double the capacity and the old
// buffer is returned to the shared byte pool. Offsets remain valid across a move; slices
// previously returned by Bytes do not.
type GrowableArena struct {
	mem []byte
	max int
}

var _ Heap = &GrowableArena{}

// NewGrowableArena creates an empty heap that will refuse to grow past max bytes. A max of 0
// or less uses DefaultMaxHeap.
func NewGrowableArena(max int) *GrowableArena {
	if max <= 0 {
		max = DefaultMaxHeap
	}

	return &GrowableArena{max: max}
}

func (a *GrowableArena) Grow(n int) (int, error) {
	offset := len(a.mem)
	if err := checkGrow(offset, n, a.max); err != nil {
		return 0, err
	}

	size := offset + n
	if size <= cap(a.mem) {
		a.mem = a.mem[:size]
		return offset, nil
	}

	capacity := 2 * cap(a.mem)
	if capacity < minGrowableCapacity {
		capacity = minGrowableCapacity
	}
	if capacity < size {
		capacity = size
	}
	if capacity > a.max {
		capacity = a.max
	}

	mem := mcache.Malloc(size, capacity)
	copy(mem, a.mem)
	if a.mem != nil {
		mcache.Free(a.mem)
	}
	a.mem = mem

	return offset, nil
}

func (a *GrowableArena) Bytes() []byte { return a.mem }

func (a *GrowableArena) Size() int { return len(a.mem) }

// Capacity returns the number of bytes the heap can grow to before its storage moves
func (a *GrowableArena) Capacity() int { return cap(a.mem) }

func (a *GrowableArena) Reset() {
	a.mem = a.mem[:0]
}
