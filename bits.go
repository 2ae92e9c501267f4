package ooze

import "math/bits"

// bitsNeededToStore returns the minimum number of bits needed to represent
// value. Zero still occupies one bit.
func bitsNeededToStore(value int) int {
	if n := bits.Len(uint(value)); n > 1 {
		return n
	}
	return 1
}

// bitMask returns a mask with the width least significant bits set.
func bitMask(width int) uint64 {
	return 1<<width - 1
}
