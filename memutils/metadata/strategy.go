package metadata

// AllocationStrategy selects how a free block is chosen to satisfy a request
type AllocationStrategy uint32

const (
	// AllocationStrategyFirstFit walks the free list from its anchor and takes the first block
	// that is large enough. It is the default.
	AllocationStrategyFirstFit AllocationStrategy = iota
	// AllocationStrategyBestFit walks the entire free list and takes the smallest block that is
	// large enough, trading search time for less fragmentation.
	AllocationStrategyBestFit
)

var allocationStrategyMapping = map[AllocationStrategy]string{
	AllocationStrategyFirstFit: "FirstFit",
	AllocationStrategyBestFit:  "BestFit",
}

func (s AllocationStrategy) String() string {
	return allocationStrategyMapping[s]
}
