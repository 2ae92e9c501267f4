package ooze

import (
	"fmt"
	"math/bits"
)

const bitsPerByte = 8

// UnpaddedIntArray packs fixed-width cells back to back, so a cell may
// straddle a byte boundary. Nothing is wasted on alignment, which makes this
// the serialized form and the target of palette merges.
type UnpaddedIntArray struct {
	data []byte

	// Number of cells in the array.
	size int

	// The highest value any cell may hold; Set checks against it.
	maxValue int

	bitsPerCell int
	cellMask    int
}

func NewUnpaddedIntArray(size, maxValue int) (*UnpaddedIntArray, error) {
	if size < 0 {
		return nil, fmt.Errorf("illegal array size: %d", size)
	}
	if maxValue < 0 {
		return nil, fmt.Errorf("cannot store signed values, got max %d", maxValue)
	}

	bitsPerCell := bitsNeededToStore(maxValue)
	return &UnpaddedIntArray{
		data:        make([]byte, (size*bitsPerCell+bitsPerByte-1)/bitsPerByte),
		size:        size,
		maxValue:    maxValue,
		bitsPerCell: bitsPerCell,
		cellMask:    int(bitMask(bitsPerCell)),
	}, nil
}

// UnpaddedIntArrayFromBytes wraps packed data read back from the serialized
// form.
func UnpaddedIntArrayFromBytes(data []byte, size, maxValue int) (*UnpaddedIntArray, error) {
	arr, err := NewUnpaddedIntArray(size, maxValue)
	if err != nil {
		return nil, err
	}
	if len(data) < len(arr.data) {
		return nil, fmt.Errorf("cannot store %d values in %d bytes", size, len(data))
	}
	copy(arr.data, data)
	return arr, nil
}

func (a *UnpaddedIntArray) Get(index int) (int, error) {
	if index < 0 || index >= a.size {
		return 0, fmt.Errorf("%w: %d (size %d)", ErrIndexOutOfBounds, index, a.size)
	}

	bitIndex := index * a.bitsPerCell
	byteIndex := bitIndex / bitsPerByte
	bitOffset := bitIndex % bitsPerByte

	value := 0
	valueMask := a.cellMask
	totalBitsRead := 0
	for valueMask != 0 {
		value |= (int(a.data[byteIndex]) >> bitOffset & valueMask) << totalBitsRead

		bitsRead := min(bits.OnesCount(uint(valueMask)), bitsPerByte-bitOffset)
		totalBitsRead += bitsRead
		valueMask >>= bitsRead
		byteIndex++
		bitOffset = 0
	}
	return value, nil
}

func (a *UnpaddedIntArray) Set(index, value int) error {
	if index < 0 || index >= a.size {
		return fmt.Errorf("%w: %d (size %d)", ErrIndexOutOfBounds, index, a.size)
	}
	if value < 0 || value > a.maxValue {
		return fmt.Errorf("%w: cannot store %d, max is %d", ErrValueOutOfBounds, value, a.maxValue)
	}

	bitIndex := index * a.bitsPerCell
	byteIndex := bitIndex / bitsPerByte
	bitOffset := bitIndex % bitsPerByte

	valueMask := a.cellMask
	for valueMask != 0 {
		a.data[byteIndex] &^= byte(valueMask << bitOffset)
		a.data[byteIndex] |= byte((value & valueMask) << bitOffset)

		bitsWritten := min(bits.OnesCount(uint(valueMask)), bitsPerByte-bitOffset)
		value >>= bitsWritten
		valueMask >>= bitsWritten
		byteIndex++
		bitOffset = 0
	}
	return nil
}

func (a *UnpaddedIntArray) Size() int {
	return a.size
}

func (a *UnpaddedIntArray) MaxValue() int {
	return a.maxValue
}

func (a *UnpaddedIntArray) ForEach(action func(index, value int)) {
	for index := 0; index < a.size; index++ {
		value, _ := a.Get(index)
		action(index, value)
	}
}

// Bytes exposes the raw packed buffer for encoding.
func (a *UnpaddedIntArray) Bytes() []byte {
	return a.data
}

// writeTo emits the serialized form: a varint maxValue followed by the packed
// bytes.
func (a *UnpaddedIntArray) writeTo(w *Writer) error {
	if err := w.WriteVarInt(a.maxValue); err != nil {
		return err
	}
	return w.WriteBytes(a.data)
}

func (a *UnpaddedIntArray) widen(maxValue int) error {
	if maxValue <= a.maxValue {
		return nil
	}
	if bitsNeededToStore(maxValue) == a.bitsPerCell {
		a.maxValue = maxValue
		return nil
	}

	replacement, err := NewUnpaddedIntArray(a.size, maxValue)
	if err != nil {
		return err
	}
	a.ForEach(func(index, value int) {
		_ = replacement.Set(index, value)
	})
	*a = *replacement
	return nil
}
