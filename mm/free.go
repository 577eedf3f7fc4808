package mm

import (
	"github.com/vkngwrapper/brkalloc/memutils"
	"github.com/vkngwrapper/brkalloc/memutils/metadata"
)

// Free returns an allocation to the allocator. Freeing Nil does nothing.
//
// p must have been returned by this allocator since its last Init and not freed since.
// Freeing any other value, including freeing the same Ptr twice, corrupts the heap; it is
// not detected except in builds with the debug_mem_utils tag, where the heap is validated
// after every operation.
func (a *Allocator) Free(p Ptr) {
	if p == Nil {
		return
	}

	block := metadata.BlockFromPayload(int(p))
	a.tags.SetAllocated(block, false)
	a.freeList.Insert(block)
	a.coalesce(block)

	memutils.DebugValidate(a)
}

// coalesce merges a newly freed block with whichever of its physical neighbors are free, so
// that no two free blocks are ever adjacent. The merged block stays in the free list exactly
// once. The sentinels are always allocated, which stops coalescing at the ends of the heap.
func (a *Allocator) coalesce(block metadata.Block) {
	if !a.tags.NextAllocated(block) {
		next := a.tags.Next(block)
		a.freeList.Pull(next)
		a.tags.SetSizeAndAllocated(block, a.tags.Size(block)+a.tags.Size(next), false)
		a.coalesceCount++
	}

	if !a.tags.PrevAllocated(block) {
		prev := a.tags.Prev(block)
		a.freeList.Pull(block)
		a.tags.SetSizeAndAllocated(prev, a.tags.Size(prev)+a.tags.Size(block), false)
		a.coalesceCount++
	}
}
