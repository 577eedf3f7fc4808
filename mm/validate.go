package mm

import (
	"github.com/dolthub/swiss"
	"github.com/pkg/errors"
	"github.com/vkngwrapper/brkalloc/memutils/metadata"
)

// Validate walks the heap and the free list and returns an error describing the first
// inconsistency found. A heap that has only been used through this allocator's methods
// always validates.
func (a *Allocator) Validate() error {
	if a.epilogue == metadata.NoBlock {
		return errors.New("allocator is not initialized")
	}

	heapEnd := int(a.epilogue) + metadata.TagsSize
	if a.heap.Size() != heapEnd {
		return errors.Errorf("the heap is %d bytes, but the epilogue ends at offset %d", a.heap.Size(), heapEnd)
	}

	err := a.validateSentinel(a.prologue, "prologue")
	if err != nil {
		return err
	}

	err = a.validateSentinel(a.epilogue, "epilogue")
	if err != nil {
		return err
	}

	listed, err := a.validateFreeList()
	if err != nil {
		return err
	}

	var freeCount int
	prevFree := false
	firstBlock := a.tags.Next(a.prologue)

	for block := firstBlock; block != a.epilogue; block = a.tags.Next(block) {
		size := a.tags.Size(block)
		if size < metadata.MinBlockSize {
			return errors.Errorf("block at offset %d has size %d, which is below the minimum block size %d", block, size, metadata.MinBlockSize)
		}

		if size%metadata.WordSize != 0 {
			return errors.Errorf("block at offset %d has size %d, which is not a multiple of %d", block, size, metadata.WordSize)
		}

		if int(block)+size > int(a.epilogue) {
			return errors.Errorf("block at offset %d has size %d, which runs past the epilogue at offset %d", block, size, a.epilogue)
		}

		if a.tags.HeadTag(block) != a.tags.TailTag(block) {
			return errors.Errorf("block at offset %d has a head tag of %#x but a tail tag of %#x", block, a.tags.HeadTag(block), a.tags.TailTag(block))
		}

		free := !a.tags.Allocated(block)
		if free {
			freeCount++

			if prevFree {
				return errors.Errorf("block at offset %d is free, but so is the block before it", block)
			}

			if !listed.Has(block) {
				return errors.Errorf("block at offset %d is free but is not in the free list", block)
			}
		}

		prevFree = free
	}

	if freeCount != listed.Count() {
		return errors.Errorf("the free list holds %d blocks, but only %d free blocks were found in the heap", listed.Count(), freeCount)
	}

	return nil
}

func (a *Allocator) validateSentinel(block metadata.Block, name string) error {
	expected := uint64(metadata.TagsSize) | 1
	if a.tags.HeadTag(block) != expected || a.tags.TailTag(block) != expected {
		return errors.Errorf("the %s at offset %d has been overwritten: head tag %#x, tail tag %#x", name, block, a.tags.HeadTag(block), a.tags.TailTag(block))
	}

	return nil
}

// validateFreeList follows the free list's next links once around from the anchor and
// returns the set of blocks it visited
func (a *Allocator) validateFreeList() (*swiss.Map[metadata.Block, struct{}], error) {
	listed := swiss.NewMap[metadata.Block, struct{}](uint32(a.freeList.Len()))
	if a.freeList.Empty() {
		if a.freeList.Len() != 0 {
			return nil, errors.Errorf("the free list has no anchor, but claims to hold %d blocks", a.freeList.Len())
		}

		return listed, nil
	}

	first := a.freeList.First()
	err := a.validateListMember(first)
	if err != nil {
		return nil, err
	}

	block := first
	for {
		listed.Put(block, struct{}{})

		next := a.tags.FLink(block)
		err = a.validateListMember(next)
		if err != nil {
			return nil, err
		}

		if a.tags.BLink(next) != block {
			return nil, errors.Errorf("block at offset %d lists the block at offset %d as its next block, but the reverse reference is broken", block, next)
		}

		if next == first {
			break
		}

		if listed.Has(next) {
			return nil, errors.Errorf("block at offset %d appears in the free list more than once", next)
		}

		block = next
	}

	if listed.Count() != a.freeList.Len() {
		return nil, errors.Errorf("the free list claims to hold %d blocks, but %d were found by following its links", a.freeList.Len(), listed.Count())
	}

	return listed, nil
}

func (a *Allocator) validateListMember(block metadata.Block) error {
	if int(block) < int(a.prologue)+metadata.TagsSize || block >= a.epilogue || int(block)%metadata.WordSize != 0 {
		return errors.Errorf("the free list refers to offset %d, which is not a block inside the heap", block)
	}

	if a.tags.Allocated(block) {
		return errors.Errorf("block at offset %d is in the free list but is not free", block)
	}

	return nil
}
