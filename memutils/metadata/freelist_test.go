package metadata_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/brkalloc/memutils/metadata"
)

func readyFreeBlocks(t *testing.T, tags metadata.Tags, offsets ...metadata.Block) {
	for _, offset := range offsets {
		tags.SetSizeAndAllocated(offset, metadata.MinBlockSize, false)
	}
}

func requireCircular(t *testing.T, list *metadata.FreeList, expected ...metadata.Block) {
	require.Equal(t, len(expected), list.Len())
	if len(expected) == 0 {
		require.True(t, list.Empty())
		require.Equal(t, metadata.NoBlock, list.First())
		return
	}

	block := list.First()
	for i, member := range expected {
		require.Equal(t, member, block, "member %d", i)
		next := list.Next(block)
		require.Equal(t, block, list.Prev(next))
		block = next
	}
	require.Equal(t, list.First(), block)
}

func TestFreeListInsertMakesNewAnchor(t *testing.T) {
	tags := readyTags(t, 256)
	readyFreeBlocks(t, tags, 0, 32, 64)
	list := metadata.NewFreeList(tags)
	requireCircular(t, &list)

	list.Insert(0)
	requireCircular(t, &list, 0)

	list.Insert(32)
	requireCircular(t, &list, 32, 0)

	list.Insert(64)
	requireCircular(t, &list, 64, 32, 0)
}

func TestFreeListPull(t *testing.T) {
	tags := readyTags(t, 256)
	readyFreeBlocks(t, tags, 0, 32, 64, 96)
	list := metadata.NewFreeList(tags)

	list.Insert(0)
	list.Insert(32)
	list.Insert(64)
	list.Insert(96)
	requireCircular(t, &list, 96, 64, 32, 0)

	list.Pull(32)
	requireCircular(t, &list, 96, 64, 0)

	list.Pull(96)
	requireCircular(t, &list, 64, 0)

	list.Pull(0)
	requireCircular(t, &list, 64)

	list.Pull(64)
	requireCircular(t, &list)
}

func TestFreeListRejectsMisuse(t *testing.T) {
	tags := readyTags(t, 256)
	readyFreeBlocks(t, tags, 0, 32)
	tags.SetSizeAndAllocated(64, metadata.MinBlockSize, true)
	list := metadata.NewFreeList(tags)

	require.Panics(t, func() { list.Pull(0) })
	require.Panics(t, func() { list.Insert(64) })

	list.Insert(0)
	require.Panics(t, func() { list.Pull(32) })

	list.Clear()
	requireCircular(t, &list)
}

func TestAllocationStrategyString(t *testing.T) {
	require.Equal(t, "FirstFit", metadata.AllocationStrategyFirstFit.String())
	require.Equal(t, "BestFit", metadata.AllocationStrategyBestFit.String())
}
