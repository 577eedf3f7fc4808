// Package metadata encodes the in-place bookkeeping of a boundary-tag heap: the size and
// allocation tags at both ends of every block, and the circular free list threaded through
// the payloads of free blocks. Every offset computation the allocator performs goes through
// this package.
//
// A block occupies [offset, offset+size) in the heap:
//
//	offset+0            head tag: size | allocated bit
//	offset+8            payload (allocated) or next free block (free)
//	offset+16           payload (allocated) or previous free block (free)
//	offset+size-8       tail tag: identical to the head tag
package metadata

import (
	"encoding/binary"
	"fmt"

	"github.com/vkngwrapper/brkalloc/memutils/heap"
)

const (
	// WordSize is the alignment unit of every block size and payload offset
	WordSize = 8
	// TagsSize is the per-block overhead of the head and tail tags
	TagsSize = 2 * WordSize
	// MinBlockSize is the smallest block that can hold both tags and both free-list links
	MinBlockSize = TagsSize + 2*WordSize

	allocatedBit uint64 = 1
)

// Block identifies a block by the offset of its head tag within the heap
type Block int

// NoBlock marks the absence of a block, such as the anchor of an empty free list
const NoBlock Block = -1

// Payload returns the offset of the first byte of the block's payload
func (b Block) Payload() int { return int(b) + WordSize }

// BlockFromPayload maps a payload offset back to its owning block
func BlockFromPayload(payload int) Block { return Block(payload - WordSize) }

// Tags reads and writes block metadata in a heap's memory. The heap is consulted on each
// call, so Tags remains valid when the heap's backing storage moves.
type Tags struct {
	heap heap.Heap
}

func NewTags(h heap.Heap) Tags {
	return Tags{heap: h}
}

func (t Tags) word(offset int) uint64 {
	return binary.LittleEndian.Uint64(t.heap.Bytes()[offset : offset+WordSize])
}

func (t Tags) putWord(offset int, value uint64) {
	binary.LittleEndian.PutUint64(t.heap.Bytes()[offset:offset+WordSize], value)
}

// HeadTag returns the raw head tag of the block
func (t Tags) HeadTag(b Block) uint64 {
	return t.word(int(b))
}

// TailTag returns the raw tail tag of the block, located using the size in its head tag
func (t Tags) TailTag(b Block) uint64 {
	return t.word(int(b) + t.Size(b) - WordSize)
}

func (t Tags) Size(b Block) int {
	return int(t.HeadTag(b) &^ allocatedBit)
}

func (t Tags) Allocated(b Block) bool {
	return t.HeadTag(b)&allocatedBit != 0
}

// SetSizeAndAllocated rewrites both tags of the block. The tail tag is written at the
// position implied by the new size.
func (t Tags) SetSizeAndAllocated(b Block, size int, allocated bool) {
	tag := uint64(size)
	if allocated {
		tag |= allocatedBit
	}

	t.putWord(int(b), tag)
	t.putWord(int(b)+size-WordSize, tag)
}

func (t Tags) SetSize(b Block, size int) {
	t.SetSizeAndAllocated(b, size, t.Allocated(b))
}

func (t Tags) SetAllocated(b Block, allocated bool) {
	t.SetSizeAndAllocated(b, t.Size(b), allocated)
}

// Next returns the block physically following b
func (t Tags) Next(b Block) Block {
	return b + Block(t.Size(b))
}

// Prev returns the block physically preceding b, found through its tail tag
func (t Tags) Prev(b Block) Block {
	prevSize := int(t.word(int(b)-WordSize) &^ allocatedBit)
	return b - Block(prevSize)
}

func (t Tags) NextSize(b Block) int {
	return t.Size(t.Next(b))
}

func (t Tags) NextAllocated(b Block) bool {
	return t.Allocated(t.Next(b))
}

func (t Tags) PrevAllocated(b Block) bool {
	return t.word(int(b)-WordSize)&allocatedBit != 0
}

func (t Tags) mustBeFree(b Block) {
	if t.Allocated(b) {
		panic(fmt.Sprintf("block at offset %d is allocated and has no free list links", b))
	}
}

// FLink returns the next member of the free list. b must be free.
func (t Tags) FLink(b Block) Block {
	t.mustBeFree(b)
	return Block(t.word(b.Payload()))
}

// BLink returns the previous member of the free list. b must be free.
func (t Tags) BLink(b Block) Block {
	t.mustBeFree(b)
	return Block(t.word(b.Payload() + WordSize))
}

func (t Tags) SetFLink(b Block, next Block) {
	t.mustBeFree(b)
	t.putWord(b.Payload(), uint64(next))
}

func (t Tags) SetBLink(b Block, prev Block) {
	t.mustBeFree(b)
	t.putWord(b.Payload()+WordSize, uint64(prev))
}

// View decodes the block into the variant selected by its allocation bit
func (t Tags) View(b Block) BlockView {
	size := t.Size(b)
	if t.Allocated(b) {
		return AllocatedView{Block: b, BlockSize: size}
	}

	return FreeView{
		Block:     b,
		BlockSize: size,
		Next:      t.FLink(b),
		Prev:      t.BLink(b),
	}
}
