package metadata_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/brkalloc/memutils/heap"
	"github.com/vkngwrapper/brkalloc/memutils/metadata"
)

func readyTags(t *testing.T, size int) metadata.Tags {
	arena := heap.NewArena(4096)
	_, err := arena.Grow(size)
	require.NoError(t, err)

	return metadata.NewTags(arena)
}

func TestBlockPayloadRoundTrip(t *testing.T) {
	b := metadata.Block(48)
	require.Equal(t, 56, b.Payload())
	require.Equal(t, b, metadata.BlockFromPayload(b.Payload()))
}

func TestTagsAgreeAtBothEnds(t *testing.T) {
	tags := readyTags(t, 256)

	tags.SetSizeAndAllocated(0, 64, true)
	require.Equal(t, 64, tags.Size(0))
	require.True(t, tags.Allocated(0))
	require.Equal(t, tags.HeadTag(0), tags.TailTag(0))
	require.Equal(t, uint64(65), tags.HeadTag(0))

	tags.SetAllocated(0, false)
	require.False(t, tags.Allocated(0))
	require.Equal(t, 64, tags.Size(0))
	require.Equal(t, tags.HeadTag(0), tags.TailTag(0))

	tags.SetSize(0, 96)
	require.Equal(t, 96, tags.Size(0))
	require.False(t, tags.Allocated(0))
	require.Equal(t, tags.HeadTag(0), tags.TailTag(0))
}

func TestPhysicalNeighbors(t *testing.T) {
	tags := readyTags(t, 256)

	tags.SetSizeAndAllocated(0, 32, true)
	tags.SetSizeAndAllocated(32, 64, false)
	tags.SetSizeAndAllocated(96, 48, true)

	require.Equal(t, metadata.Block(32), tags.Next(0))
	require.Equal(t, metadata.Block(96), tags.Next(32))
	require.Equal(t, metadata.Block(32), tags.Prev(96))
	require.Equal(t, metadata.Block(0), tags.Prev(32))

	require.False(t, tags.NextAllocated(0))
	require.True(t, tags.NextAllocated(32))
	require.False(t, tags.PrevAllocated(96))
	require.True(t, tags.PrevAllocated(32))
	require.Equal(t, 64, tags.NextSize(0))
}

func TestLinksRequireFreeBlock(t *testing.T) {
	tags := readyTags(t, 256)

	tags.SetSizeAndAllocated(0, 32, true)
	require.Panics(t, func() { tags.FLink(0) })
	require.Panics(t, func() { tags.SetBLink(0, 0) })

	tags.SetAllocated(0, false)
	tags.SetFLink(0, 64)
	tags.SetBLink(0, 128)
	require.Equal(t, metadata.Block(64), tags.FLink(0))
	require.Equal(t, metadata.Block(128), tags.BLink(0))
}

func TestView(t *testing.T) {
	tags := readyTags(t, 256)

	tags.SetSizeAndAllocated(0, 48, true)
	tags.SetSizeAndAllocated(48, 32, false)
	tags.SetFLink(48, 48)
	tags.SetBLink(48, 48)

	allocated := tags.View(0)
	require.False(t, allocated.IsFree())
	require.Equal(t, metadata.AllocatedView{Block: 0, BlockSize: 48}, allocated)
	require.Equal(t, 32, allocated.(metadata.AllocatedView).PayloadSize())

	free := tags.View(48)
	require.True(t, free.IsFree())
	require.Equal(t, metadata.FreeView{Block: 48, BlockSize: 32, Next: 48, Prev: 48}, free)
	require.Equal(t, metadata.Block(48), free.Offset())
	require.Equal(t, 32, free.Size())
}
