//go:build unix

package heap

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// MmapArena is a Heap backed by an anonymous private mapping of its full capacity. Pages are
// committed by the operating system as they are first touched, so a large reservation costs
// address space rather than memory. Close must be called to release the mapping.
type MmapArena struct {
	mem []byte
	brk int
}

var _ Heap = &MmapArena{}

// NewMmapArena maps max bytes. A max of 0 or less maps DefaultMaxHeap bytes.
func NewMmapArena(max int) (*MmapArena, error) {
	if max <= 0 {
		max = DefaultMaxHeap
	}

	mem, err := unix.Mmap(-1, 0, max, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to map %d bytes for heap", max)
	}

	return &MmapArena{mem: mem}, nil
}

func (a *MmapArena) Grow(n int) (int, error) {
	if a.mem == nil {
		return 0, errors.New("heap has been closed")
	}

	offset := a.brk
	if err := checkGrow(offset, n, len(a.mem)); err != nil {
		return 0, err
	}

	a.brk += n
	return offset, nil
}

func (a *MmapArena) Bytes() []byte { return a.mem[:a.brk] }

func (a *MmapArena) Size() int { return a.brk }

func (a *MmapArena) Reset() {
	a.brk = 0
}

// Close unmaps the heap. The heap cannot be used afterward.
func (a *MmapArena) Close() error {
	if a.mem == nil {
		return nil
	}

	err := unix.Munmap(a.mem)
	a.mem = nil
	a.brk = 0
	return err
}
