package mm

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/brkalloc/memutils/heap"
	"github.com/vkngwrapper/brkalloc/memutils/metadata"
	"golang.org/x/exp/slog"
)

// CreateOptions contains optional settings when creating an allocator
type CreateOptions struct {
	// Strategy selects how a free block is chosen to satisfy a request. The zero value is
	// metadata.AllocationStrategyFirstFit.
	Strategy metadata.AllocationStrategy
}

// New creates an Allocator over the provided heap and initializes it. Any existing contents
// of the heap are discarded.
//
// logger - Receives heap growth diagnostics. If nil, slog.Default() is used
//
// h - The heap that the allocator will grow and carve into blocks
//
// options - Optional parameters: it is valid to leave all the fields blank
func New(logger *slog.Logger, h heap.Heap, options CreateOptions) (*Allocator, error) {
	if h == nil {
		return nil, errors.New("mm.New requires a heap")
	}
	if options.Strategy > metadata.AllocationStrategyBestFit {
		return nil, errors.Newf("unknown allocation strategy: %d", options.Strategy)
	}

	if logger == nil {
		logger = slog.Default()
	}

	tags := metadata.NewTags(h)
	allocator := &Allocator{
		logger:   logger,
		heap:     h,
		tags:     tags,
		freeList: metadata.NewFreeList(tags),
		strategy: options.Strategy,
		prologue: metadata.NoBlock,
		epilogue: metadata.NoBlock,
	}

	err := allocator.Init()
	if err != nil {
		return nil, err
	}

	return allocator, nil
}
