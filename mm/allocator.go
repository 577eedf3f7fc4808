// Package mm is a boundary-tag heap allocator. It carves a heap.Heap, which only grows at its
// high end, into blocks that are handed out and returned one at a time, in the manner of
// malloc, free and realloc.
//
// Every block carries its size and allocation state in a tag at each end, so the allocator
// can reach either physical neighbor of any block. Free blocks are additionally threaded onto
// a single circular free list through their own payloads. Two permanently allocated sentinel
// blocks, the prologue and the epilogue, bound the heap so that coalescing never runs off
// either end.
//
// An Allocator is not safe for concurrent use. Callers that share one between goroutines must
// serialize every call.
package mm

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/brkalloc/memutils"
	"github.com/vkngwrapper/brkalloc/memutils/heap"
	"github.com/vkngwrapper/brkalloc/memutils/metadata"
	"golang.org/x/exp/slog"
)

// Ptr is the heap offset of an allocation's payload
type Ptr int

// Nil is the Ptr returned when no allocation was made. It never addresses a payload.
const Nil Ptr = 0

type Allocator struct {
	logger   *slog.Logger
	heap     heap.Heap
	tags     metadata.Tags
	freeList metadata.FreeList
	strategy metadata.AllocationStrategy

	prologue metadata.Block
	epilogue metadata.Block

	growCount     int
	growBytes     int
	splitCount    int
	coalesceCount int
}

var _ memutils.Validatable = &Allocator{}

// Init discards the contents of the heap and lays down the prologue and epilogue with an
// empty free list between them. Every Ptr previously returned by the allocator becomes
// invalid. It returns an error wrapping memutils.ErrOutOfMemory if the heap cannot supply
// the sentinels, in which case the allocator cannot be used until Init succeeds.
func (a *Allocator) Init() error {
	a.heap.Reset()
	a.freeList.Clear()
	a.prologue = metadata.NoBlock
	a.epilogue = metadata.NoBlock
	a.growCount = 0
	a.growBytes = 0
	a.splitCount = 0
	a.coalesceCount = 0

	offset, err := a.heap.Grow(2 * metadata.TagsSize)
	if err != nil {
		a.logger.LogAttrs(context.Background(), slog.LevelError, "unable to obtain heap memory for sentinel blocks",
			slog.Any("error", err))
		return errors.Wrap(err, "failed to initialize heap")
	}

	a.prologue = metadata.Block(offset)
	a.tags.SetSizeAndAllocated(a.prologue, metadata.TagsSize, true)
	a.epilogue = a.tags.Next(a.prologue)
	a.tags.SetSizeAndAllocated(a.epilogue, metadata.TagsSize, true)

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "initialized heap",
		slog.Int("prologue", int(a.prologue)),
		slog.Int("epilogue", int(a.epilogue)),
		slog.String("strategy", a.strategy.String()))

	return nil
}

// requestSize converts a payload size into the size of the block that holds it
func requestSize(size int) (int, error) {
	blockSize, err := memutils.CheckedAlignUp(size, metadata.WordSize, metadata.TagsSize)
	if err != nil {
		return 0, err
	}

	if blockSize < metadata.MinBlockSize {
		blockSize = metadata.MinBlockSize
	}

	return blockSize, nil
}

func (a *Allocator) checkInitialized() error {
	if a.epilogue == metadata.NoBlock {
		return errors.New("allocator is not initialized")
	}

	return nil
}

// grow extends the heap by blockSize bytes. The old epilogue becomes an allocated block of
// that size and the epilogue moves to the new end of the heap.
func (a *Allocator) grow(blockSize int) (metadata.Block, error) {
	offset, err := a.heap.Grow(blockSize)
	if err != nil {
		a.logger.LogAttrs(context.Background(), slog.LevelError, "unable to grow heap",
			slog.Int("size", blockSize),
			slog.Int("heapSize", a.heap.Size()),
			slog.Any("error", err))
		return metadata.NoBlock, errors.Wrapf(err, "failed to grow heap by %d bytes", blockSize)
	}

	if offset != int(a.epilogue)+metadata.TagsSize {
		return metadata.NoBlock, errors.AssertionFailedf("heap grew at offset %d, but its previous end was at offset %d", offset, int(a.epilogue)+metadata.TagsSize)
	}

	block := a.epilogue
	a.tags.SetSizeAndAllocated(block, blockSize, true)
	a.epilogue = a.tags.Next(block)
	a.tags.SetSizeAndAllocated(a.epilogue, metadata.TagsSize, true)

	a.growCount++
	a.growBytes += blockSize
	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "grew heap",
		slog.Int("block", int(block)),
		slog.Int("size", blockSize))

	return block, nil
}

// Bytes returns the payload of an allocation. The slice aliases the heap: it is only valid
// until the next call that may grow the heap (Malloc, Calloc, Realloc or Init).
func (a *Allocator) Bytes(p Ptr) []byte {
	if p == Nil {
		return nil
	}

	block := metadata.BlockFromPayload(int(p))
	end := int(block) + a.tags.Size(block) - metadata.WordSize
	return a.heap.Bytes()[int(p):end:end]
}

// UsableSize returns the number of payload bytes available to an allocation, which may be
// more than were requested
func (a *Allocator) UsableSize(p Ptr) int {
	if p == Nil {
		return 0
	}

	return a.tags.Size(metadata.BlockFromPayload(int(p))) - metadata.TagsSize
}

// HeapSize returns the number of bytes the allocator has obtained from its heap
func (a *Allocator) HeapSize() int {
	return a.heap.Size()
}

// FreeBlockCount returns the number of blocks in the free list
func (a *Allocator) FreeBlockCount() int {
	return a.freeList.Len()
}

func (a *Allocator) Strategy() metadata.AllocationStrategy {
	return a.strategy
}
