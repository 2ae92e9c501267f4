package ooze

import "errors"

var (
	ErrIndexOutOfBounds = errors.New("index out of bounds")
	ErrValueOutOfBounds = errors.New("value out of bounds")
)

// IntArray is a fixed-size array of non-negative integers packed at a fixed
// bit width. Both layouts reject out-of-range indices and values instead of
// truncating them.
type IntArray interface {
	// Get returns the value at index.
	Get(index int) (int, error)
	// Set stores value at index. The value must be within [0, MaxValue()].
	Set(index, value int) error
	// Size is the number of cells in the array.
	Size() int
	// MaxValue is the largest value any cell may hold.
	MaxValue() int
	// ForEach visits every (index, value) pair in index order.
	ForEach(action func(index, value int))

	// widen reallocates the array so values up to maxValue fit, preserving
	// all cells. Never shrinks.
	widen(maxValue int) error
}
