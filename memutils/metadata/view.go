package metadata

// BlockView is a decoded block. It is either a FreeView, which carries the free list links
// stored in the block's payload, or an AllocatedView, whose payload belongs to the client.
type BlockView interface {
	Offset() Block
	Size() int
	IsFree() bool

	blockView()
}

type FreeView struct {
	Block     Block
	BlockSize int
	Next      Block
	Prev      Block
}

func (v FreeView) Offset() Block { return v.Block }
func (v FreeView) Size() int     { return v.BlockSize }
func (v FreeView) IsFree() bool  { return true }
func (v FreeView) blockView()    {}

type AllocatedView struct {
	Block     Block
	BlockSize int
}

func (v AllocatedView) Offset() Block { return v.Block }
func (v AllocatedView) Size() int     { return v.BlockSize }
func (v AllocatedView) IsFree() bool  { return false }

// PayloadSize returns the number of payload bytes the block can hold
func (v AllocatedView) PayloadSize() int { return v.BlockSize - TagsSize }
func (v AllocatedView) blockView()       {}
