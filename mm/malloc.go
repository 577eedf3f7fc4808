package mm

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/brkalloc/memutils"
	"github.com/vkngwrapper/brkalloc/memutils/metadata"
)

// Malloc allocates a block with room for at least size payload bytes and returns the offset
// of its payload. The payload is not zeroed.
//
// A size of 0 returns Nil and a nil error without changing any state. A negative size returns
// an error wrapping memutils.ErrInvalidSize. If no free block fits and the heap cannot grow,
// Malloc returns an error wrapping memutils.ErrOutOfMemory and the allocator is unchanged.
func (a *Allocator) Malloc(size int) (Ptr, error) {
	if size == 0 {
		return Nil, nil
	}

	err := a.checkInitialized()
	if err != nil {
		return Nil, err
	}

	blockSize, err := requestSize(size)
	if err != nil {
		return Nil, err
	}

	block, err := a.place(blockSize)
	if err != nil {
		return Nil, err
	}

	memutils.DebugValidate(a)
	return Ptr(block.Payload()), nil
}

// Calloc allocates room for count elements of size bytes each and zeroes the payload
func (a *Allocator) Calloc(count, size int) (Ptr, error) {
	if count < 0 || size < 0 {
		return Nil, errors.Wrapf(memutils.ErrInvalidSize, "cannot allocate %d elements of %d bytes", count, size)
	}
	if count == 0 || size == 0 {
		return Nil, nil
	}
	if count > math.MaxInt/size {
		return Nil, errors.Wrapf(memutils.ErrInvalidSize, "%d elements of %d bytes overflows", count, size)
	}

	p, err := a.Malloc(count * size)
	if err != nil {
		return Nil, err
	}

	payload := a.Bytes(p)
	for i := range payload {
		payload[i] = 0
	}

	return p, nil
}

// place returns an allocated block of at least blockSize bytes, taken from the free list if
// one fits and from new heap memory otherwise
func (a *Allocator) place(blockSize int) (metadata.Block, error) {
	block := a.findFit(blockSize)
	if block == metadata.NoBlock {
		return a.grow(blockSize)
	}

	a.take(block, blockSize)
	return block, nil
}

func (a *Allocator) findFit(blockSize int) metadata.Block {
	if a.freeList.Empty() {
		return metadata.NoBlock
	}

	if a.strategy == metadata.AllocationStrategyBestFit {
		return a.findBestFit(blockSize)
	}

	// Returning to the anchor means every member has been examined
	first := a.freeList.First()
	block := first
	for {
		if a.tags.Size(block) >= blockSize {
			return block
		}

		block = a.freeList.Next(block)
		if block == first {
			return metadata.NoBlock
		}
	}
}

func (a *Allocator) findBestFit(blockSize int) metadata.Block {
	best := metadata.NoBlock
	bestSize := 0

	first := a.freeList.First()
	block := first
	for {
		size := a.tags.Size(block)
		if size >= blockSize && (best == metadata.NoBlock || size < bestSize) {
			best = block
			bestSize = size

			if size == blockSize {
				break
			}
		}

		block = a.freeList.Next(block)
		if block == first {
			break
		}
	}

	return best
}

// take removes a free block from the free list and allocates its first needed bytes. The
// rest is split off as a new free block when it is large enough to stand alone; otherwise
// the whole block is allocated.
func (a *Allocator) take(block metadata.Block, needed int) {
	blockSize := a.tags.Size(block)
	a.freeList.Pull(block)

	if blockSize-needed >= metadata.MinBlockSize {
		a.tags.SetSizeAndAllocated(block, needed, true)
		a.split(block, blockSize, needed)
		return
	}

	a.tags.SetAllocated(block, true)
}

// split turns the bytes of a block past needed into a free block. block must already have
// been resized to needed, and blockSize-needed must be at least metadata.MinBlockSize.
func (a *Allocator) split(block metadata.Block, blockSize, needed int) {
	remainder := a.tags.Next(block)
	a.tags.SetSizeAndAllocated(remainder, blockSize-needed, false)
	a.freeList.Insert(remainder)
	a.splitCount++
}
