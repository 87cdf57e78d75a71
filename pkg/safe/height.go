// Package safe provides checked integer conversions for values exposed over the API.
package safe

import "fmt"

// Uint64 converts a signed integer to uint64, rejecting negative values.
func Uint64[T ~int | ~int32 | ~int64](v T) (uint64, error) {
	if v < 0 {
		return 0, fmt.Errorf("value %d out of uint64 range", v)
	}
	return uint64(v), nil
}

// Height returns the chain height of the entry at position pos of a newest-first
// listing holding length entries.
func Height(length, pos int) (uint64, error) {
	if pos < 0 || pos >= length {
		return 0, fmt.Errorf("position %d out of listing of %d", pos, length)
	}
	return Uint64(length - 1 - pos)
}
