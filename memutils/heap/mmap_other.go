//go:build !unix

package heap

// MmapArena falls back to an Arena on platforms without mmap
type MmapArena struct {
	Arena
}

var _ Heap = &MmapArena{}

func NewMmapArena(max int) (*MmapArena, error) {
	return &MmapArena{Arena: *NewArena(max)}, nil
}

func (a *MmapArena) Close() error {
	return nil
}
