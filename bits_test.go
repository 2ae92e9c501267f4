package ooze

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBitsNeededToStore(t *testing.T) {
	tests := []struct {
		name  string
		value int
		want  int
	}{
		{"zero still needs one bit", 0, 1},
		{"one", 1, 1},
		{"two", 2, 2},
		{"three", 3, 2},
		{"four", 4, 3},
		{"seven", 7, 3},
		{"eight", 8, 4},
		{"byte max", 255, 8},
		{"byte overflow", 256, 9},
		{"block state scale", 4095, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bitsNeededToStore(tt.value))
		})
	}
}

func TestBitMask(t *testing.T) {
	tests := []struct {
		name  string
		width int
		want  uint64
	}{
		{"single bit", 1, 0x1},
		{"nibble", 4, 0xF},
		{"byte", 8, 0xFF},
		{"twelve bits", 12, 0xFFF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bitMask(tt.width))
		})
	}
}
