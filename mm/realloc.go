package mm

import (
	"github.com/vkngwrapper/brkalloc/memutils"
	"github.com/vkngwrapper/brkalloc/memutils/metadata"
)

// Realloc resizes an allocation to hold at least size payload bytes and returns its new
// payload offset. The first min(old, new) bytes of the payload are preserved.
//
//   - Realloc(Nil, size) behaves like Malloc(size).
//   - Realloc(p, 0) behaves like Free(p) and returns Nil.
//   - If the current block is already large enough, p is returned and the block keeps its size.
//   - If the block physically following p is free and the two together are large enough, the
//     allocation is extended in place and p is returned.
//   - Otherwise a new block is allocated, the payload is copied and p is freed.
//
// If a new block is needed and cannot be obtained, Realloc returns an error wrapping
// memutils.ErrOutOfMemory and p remains allocated and unchanged. The same preconditions on p
// apply as for Free.
func (a *Allocator) Realloc(p Ptr, size int) (Ptr, error) {
	if p == Nil {
		return a.Malloc(size)
	}

	if size == 0 {
		a.Free(p)
		return Nil, nil
	}

	needed, err := requestSize(size)
	if err != nil {
		return Nil, err
	}

	block := metadata.BlockFromPayload(int(p))
	blockSize := a.tags.Size(block)
	if needed <= blockSize {
		return p, nil
	}

	if a.extend(block, blockSize, needed) {
		memutils.DebugValidate(a)
		return p, nil
	}

	newP, err := a.Malloc(size)
	if err != nil {
		return Nil, err
	}

	mem := a.heap.Bytes()
	oldPayload := blockSize - metadata.TagsSize
	copy(mem[int(newP):int(newP)+oldPayload], mem[int(p):int(p)+oldPayload])
	a.Free(p)

	return newP, nil
}

// extend grows an allocated block in place by absorbing its free physical successor, if that
// yields at least needed bytes. Any remainder large enough to stand alone is split back off.
func (a *Allocator) extend(block metadata.Block, blockSize, needed int) bool {
	if a.tags.NextAllocated(block) {
		return false
	}

	next := a.tags.Next(block)
	combined := blockSize + a.tags.Size(next)
	if combined < needed {
		return false
	}

	a.freeList.Pull(next)

	if combined-needed >= metadata.MinBlockSize {
		a.tags.SetSizeAndAllocated(block, needed, true)
		a.split(block, combined, needed)
		return true
	}

	a.tags.SetSizeAndAllocated(block, combined, true)
	return true
}
