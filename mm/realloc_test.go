package mm_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/brkalloc/memutils"
	"github.com/vkngwrapper/brkalloc/memutils/heap"
	"github.com/vkngwrapper/brkalloc/memutils/metadata"
	"github.com/vkngwrapper/brkalloc/mm"
)

func mustRealloc(t *testing.T, allocator *mm.Allocator, p mm.Ptr, size int) mm.Ptr {
	p, err := allocator.Realloc(p, size)
	require.NoError(t, err)
	require.NoError(t, allocator.Validate())

	return p
}

func TestReallocNilAllocates(t *testing.T) {
	allocator := readyAllocator(t, heap.NewArena(heap.DefaultMaxHeap), mm.CreateOptions{})

	p := mustRealloc(t, allocator, mm.Nil, 16)
	require.Equal(t, mm.Ptr(24), p)
	require.Equal(t, 16, allocator.UsableSize(p))
}

func TestReallocZeroFrees(t *testing.T) {
	allocator := readyAllocator(t, heap.NewArena(heap.DefaultMaxHeap), mm.CreateOptions{})

	p := mustMalloc(t, allocator, 16)
	q := mustRealloc(t, allocator, p, 0)
	require.Equal(t, mm.Nil, q)
	require.Equal(t, 1, allocator.FreeBlockCount())
}

func TestReallocShrinkKeepsBlock(t *testing.T) {
	allocator := readyAllocator(t, heap.NewArena(heap.DefaultMaxHeap), mm.CreateOptions{})

	p := mustMalloc(t, allocator, 100)
	fillPattern(allocator.Bytes(p), 7)
	heapSize := allocator.HeapSize()

	q := mustRealloc(t, allocator, p, 10)
	require.Equal(t, p, q)
	require.Equal(t, 104, allocator.UsableSize(q))
	requirePattern(t, allocator.Bytes(q), 7)
	require.Equal(t, heapSize, allocator.HeapSize())
	require.Equal(t, 0, allocator.FreeBlockCount())
}

func TestReallocExtendsIntoFreeSuccessor(t *testing.T) {
	allocator := readyAllocator(t, heap.NewArena(heap.DefaultMaxHeap), mm.CreateOptions{})

	a := mustMalloc(t, allocator, 32)
	b := mustMalloc(t, allocator, 32)
	fillPattern(allocator.Bytes(a), 11)
	mustFree(t, allocator, b)
	heapSize := allocator.HeapSize()

	// The leftover is exactly one minimum block, so it is split back off
	q := mustRealloc(t, allocator, a, 48)
	require.Equal(t, a, q)
	require.Equal(t, 48, allocator.UsableSize(q))
	requirePattern(t, allocator.Bytes(q)[:32], 11)
	require.Equal(t, heapSize, allocator.HeapSize())
	require.Equal(t, []metadata.BlockView{
		metadata.AllocatedView{Block: 16, BlockSize: 64},
		metadata.FreeView{Block: 80, BlockSize: 32, Next: 80, Prev: 80},
	}, blockViews(t, allocator))
}

func TestReallocAbsorbsWholeSuccessor(t *testing.T) {
	allocator := readyAllocator(t, heap.NewArena(heap.DefaultMaxHeap), mm.CreateOptions{})

	a := mustMalloc(t, allocator, 32)
	b := mustMalloc(t, allocator, 32)
	fillPattern(allocator.Bytes(a), 13)
	mustFree(t, allocator, b)

	q := mustRealloc(t, allocator, a, 64)
	require.Equal(t, a, q)
	require.Equal(t, 80, allocator.UsableSize(q))
	requirePattern(t, allocator.Bytes(q)[:32], 13)
	require.Equal(t, 0, allocator.FreeBlockCount())
}

func TestReallocMoves(t *testing.T) {
	allocator := readyAllocator(t, heap.NewArena(heap.DefaultMaxHeap), mm.CreateOptions{})

	a := mustMalloc(t, allocator, 16)
	mustMalloc(t, allocator, 16)
	fillPattern(allocator.Bytes(a), 17)

	q := mustRealloc(t, allocator, a, 100)
	require.Equal(t, mm.Ptr(88), q)
	require.Equal(t, 104, allocator.UsableSize(q))
	requirePattern(t, allocator.Bytes(q)[:16], 17)

	// The old block was freed
	require.Equal(t, 1, allocator.FreeBlockCount())
	require.Equal(t, a, mustMalloc(t, allocator, 16))
}

func TestReallocMovesWhenSuccessorIsTooSmall(t *testing.T) {
	allocator := readyAllocator(t, heap.NewArena(heap.DefaultMaxHeap), mm.CreateOptions{})

	a := mustMalloc(t, allocator, 16)
	b := mustMalloc(t, allocator, 16)
	mustMalloc(t, allocator, 16)
	fillPattern(allocator.Bytes(a), 19)
	mustFree(t, allocator, b)

	q := mustRealloc(t, allocator, a, 64)
	require.Equal(t, mm.Ptr(120), q)
	requirePattern(t, allocator.Bytes(q)[:16], 19)

	// The old block merged with its free successor when it was released
	require.Equal(t, 1, allocator.FreeBlockCount())
	require.Equal(t, metadata.FreeView{Block: 16, BlockSize: 64, Next: 16, Prev: 16}, blockViews(t, allocator)[0])
}

func TestReallocFailureKeepsAllocation(t *testing.T) {
	allocator := readyAllocator(t, heap.NewArena(128), mm.CreateOptions{})

	a := mustMalloc(t, allocator, 16)
	mustMalloc(t, allocator, 16)
	fillPattern(allocator.Bytes(a), 23)

	q, err := allocator.Realloc(a, 100)
	require.Error(t, err)
	require.True(t, errors.Is(err, memutils.ErrOutOfMemory))
	require.Equal(t, mm.Nil, q)

	require.NoError(t, allocator.Validate())
	require.Equal(t, 16, allocator.UsableSize(a))
	requirePattern(t, allocator.Bytes(a), 23)
	require.Equal(t, 0, allocator.FreeBlockCount())

	_, err = allocator.Realloc(a, -1)
	require.True(t, errors.Is(err, memutils.ErrInvalidSize))
	requirePattern(t, allocator.Bytes(a), 23)
}
