package metadata

import "fmt"

// FreeList is a circular, doubly linked, unordered list of free blocks. Its links are stored
// in the payloads of its members, so a block must be marked free before it is inserted and
// must still be marked free when it is pulled.
type FreeList struct {
	tags  Tags
	first Block
	count int
}

func NewFreeList(tags Tags) FreeList {
	return FreeList{
		tags:  tags,
		first: NoBlock,
	}
}

// First returns the list's anchor, or NoBlock if the list is empty
func (l *FreeList) First() Block { return l.first }

func (l *FreeList) Empty() bool { return l.first == NoBlock }

func (l *FreeList) Len() int { return l.count }

func (l *FreeList) Next(b Block) Block { return l.tags.FLink(b) }

func (l *FreeList) Prev(b Block) Block { return l.tags.BLink(b) }

// Clear empties the list without touching any block
func (l *FreeList) Clear() {
	l.first = NoBlock
	l.count = 0
}

// Insert links a free block into the list and makes it the new anchor
func (l *FreeList) Insert(b Block) {
	if l.tags.Allocated(b) {
		panic(fmt.Sprintf("cannot insert allocated block at offset %d into the free list", b))
	}

	if l.first == NoBlock {
		l.tags.SetFLink(b, b)
		l.tags.SetBLink(b, b)
	} else {
		last := l.tags.BLink(l.first)
		l.tags.SetFLink(b, l.first)
		l.tags.SetBLink(b, last)
		l.tags.SetFLink(last, b)
		l.tags.SetBLink(l.first, b)
	}

	l.first = b
	l.count++
}

// Pull unlinks a block from the list. If the block was the anchor, its successor becomes
// the anchor.
func (l *FreeList) Pull(b Block) {
	if l.first == NoBlock {
		panic(fmt.Sprintf("cannot pull block at offset %d from an empty free list", b))
	}

	if l.count == 1 {
		if b != l.first {
			panic(fmt.Sprintf("block at offset %d is not in the free list", b))
		}
		l.first = NoBlock
		l.count = 0
		return
	}

	next := l.tags.FLink(b)
	prev := l.tags.BLink(b)
	l.tags.SetFLink(prev, next)
	l.tags.SetBLink(next, prev)

	if l.first == b {
		l.first = next
	}
	l.count--
}
