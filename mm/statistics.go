package mm

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/brkalloc/memutils"
	"github.com/vkngwrapper/brkalloc/memutils/metadata"
)

// VisitAllBlocks calls handleBlock for every block between the prologue and the epilogue, in
// address order. If handleBlock returns an error, the walk stops and that error is returned.
// handleBlock must not call methods that modify the allocator.
func (a *Allocator) VisitAllBlocks(handleBlock func(view metadata.BlockView) error) error {
	for block := a.tags.Next(a.prologue); block != a.epilogue; block = a.tags.Next(block) {
		err := handleBlock(a.tags.View(block))
		if err != nil {
			return err
		}
	}

	return nil
}

// AddStatistics adds this allocator's block counts to stats
func (a *Allocator) AddStatistics(stats *memutils.Statistics) {
	stats.HeapBytes += a.heap.Size()

	_ = a.VisitAllBlocks(func(view metadata.BlockView) error {
		stats.BlockCount++
		if view.IsFree() {
			stats.FreeBlockCount++
			stats.FreeBytes += view.Size()
		} else {
			stats.AllocationCount++
			stats.AllocationBytes += view.Size()
		}
		return nil
	})
}

// AddDetailedStatistics adds this allocator's block counts, size extremes and lifetime
// counters to stats. stats should have been cleared with DetailedStatistics.Clear before it
// was first used.
func (a *Allocator) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	stats.HeapBytes += a.heap.Size()
	stats.GrowCount += a.growCount
	stats.GrowBytes += a.growBytes
	stats.SplitCount += a.splitCount
	stats.CoalesceCount += a.coalesceCount

	_ = a.VisitAllBlocks(func(view metadata.BlockView) error {
		if view.IsFree() {
			stats.AddFreeBlock(view.Size())
		} else {
			stats.AddAllocation(view.Size())
		}
		return nil
	})
}

// BuildStatsString returns a JSON summary of the heap. When detailedMap is true, the summary
// includes every block in address order.
func (a *Allocator) BuildStatsString(detailedMap bool) string {
	var stats memutils.DetailedStatistics
	stats.Clear()
	a.AddDetailedStatistics(&stats)

	writer := jwriter.NewWriter()
	objState := writer.Object()

	objState.Name("Strategy").String(a.strategy.String())
	objState.Name("HeapBytes").Int(stats.HeapBytes)
	objState.Name("Blocks").Int(stats.BlockCount)
	objState.Name("Allocations").Int(stats.AllocationCount)
	objState.Name("AllocationBytes").Int(stats.AllocationBytes)
	objState.Name("FreeBlocks").Int(stats.FreeBlockCount)
	objState.Name("FreeBytes").Int(stats.FreeBytes)

	if stats.AllocationCount > 0 {
		objState.Name("AllocationSizeMin").Int(stats.AllocationSizeMin)
		objState.Name("AllocationSizeMax").Int(stats.AllocationSizeMax)
	}

	if stats.FreeBlockCount > 0 {
		objState.Name("FreeBlockSizeMin").Int(stats.FreeBlockSizeMin)
		objState.Name("FreeBlockSizeMax").Int(stats.FreeBlockSizeMax)
	}

	objState.Name("GrowCount").Int(stats.GrowCount)
	objState.Name("GrowBytes").Int(stats.GrowBytes)
	objState.Name("SplitCount").Int(stats.SplitCount)
	objState.Name("CoalesceCount").Int(stats.CoalesceCount)

	if detailedMap {
		a.printDetailedMap(objState.Name("Map"))
	}

	objState.End()

	return string(writer.Bytes())
}

func (a *Allocator) printDetailedMap(writer *jwriter.Writer) {
	arrayState := writer.Array()
	defer arrayState.End()

	_ = a.VisitAllBlocks(func(view metadata.BlockView) error {
		blockState := arrayState.Object()
		defer blockState.End()

		blockState.Name("Offset").Int(int(view.Offset()))
		blockState.Name("Size").Int(view.Size())

		switch v := view.(type) {
		case metadata.FreeView:
			blockState.Name("Type").String("Free")
			blockState.Name("Next").Int(int(v.Next))
			blockState.Name("Prev").Int(int(v.Prev))
		case metadata.AllocatedView:
			blockState.Name("Type").String("Allocated")
			blockState.Name("PayloadSize").Int(v.PayloadSize())
		}

		return nil
	})
}
