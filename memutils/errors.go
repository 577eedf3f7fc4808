package memutils

import "github.com/pkg/errors"

var (
	// PowerOfTwoError is the error returned from CheckPow2 or other methods if the number being tested is not a power of two
	PowerOfTwoError error = errors.New("number must be a power of two")
	// ErrOutOfMemory is returned, usually wrapped, when a heap cannot supply the bytes an operation needs.
	// The heap and every allocator built on top of it are left unchanged by the failed request.
	ErrOutOfMemory error = errors.New("out of memory")
	// ErrInvalidSize is returned when a requested size is negative or too large to be represented
	// as a block
	ErrInvalidSize error = errors.New("invalid allocation size")
)
