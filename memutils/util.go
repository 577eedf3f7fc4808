package memutils

import (
	"math"

	cerrors "github.com/cockroachdb/errors"
	"golang.org/x/exp/constraints"
)

type Number interface {
	constraints.Integer
}

func CheckPow2[T Number](number T, name string) error {
	if number <= 0 || number&(number-1) != 0 {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

// AlignUp rounds value up to the next multiple of alignment, which must be a power of two
func AlignUp(value int, alignment uint) int {
	return (value + int(alignment) - 1) & int(^(alignment - 1))
}

// CheckedAlignUp behaves like AlignUp but reports an ErrInvalidSize if value is negative or
// rounding it up, plus extra, would overflow an int.
func CheckedAlignUp(value int, alignment uint, extra int) (int, error) {
	DebugCheckPow2(alignment, "alignment")

	if value < 0 {
		return 0, cerrors.Wrapf(ErrInvalidSize, "size %d is negative", value)
	}
	if value > math.MaxInt-int(alignment)-extra {
		return 0, cerrors.Wrapf(ErrInvalidSize, "size %d is too large", value)
	}

	return AlignUp(value, alignment) + extra, nil
}
