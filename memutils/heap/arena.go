package heap

import (
	"github.com/bytedance/gopkg/lang/dirtmake"
)

// Arena is a Heap that reserves its full capacity up front and hands it out in order. Memory
// obtained from Grow is not zeroed.
type Arena struct {
	mem []byte
	max int
}

var _ Heap = &Arena{}

// NewArena reserves max bytes. A max of 0 or less reserves DefaultMaxHeap bytes.
func NewArena(max int) *Arena {
	if max <= 0 {
		max = DefaultMaxHeap
	}

	return &Arena{
		mem: dirtmake.Bytes(0, max),
		max: max,
	}
}

func (a *Arena) Grow(n int) (int, error) {
	offset := len(a.mem)
	if err := checkGrow(offset, n, a.max); err != nil {
		return 0, err
	}

	a.mem = a.mem[:offset+n]
	return offset, nil
}

func (a *Arena) Bytes() []byte { return a.mem }

func (a *Arena) Size() int { return len(a.mem) }

// Max returns the number of bytes reserved by this arena
func (a *Arena) Max() int { return a.max }

func (a *Arena) Reset() {
	a.mem = a.mem[:0]
}
