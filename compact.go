package ooze

import "fmt"

const bitsPerWord = 64

// CompactDataArray stores fixed-width cells inside 64-bit words. A cell never
// spans two words, so each word's leftover high bits go unused. This is the
// layout Minecraft writes block states in since 1.16.
type CompactDataArray struct {
	words []uint64

	// Size in cells, not words.
	size int

	// The highest value any cell may hold. Not a technical limit of the
	// layout, but Set checks against it so callers never narrow silently.
	maxValue int

	bitsPerCell  int
	cellsPerWord int
	cellMask     uint64
}

// wordsNeeded returns the number of words required to hold size cells whose
// values can be at most maxValue.
func wordsNeeded(size, maxValue int) int {
	cellsPerWord := bitsPerWord / bitsNeededToStore(maxValue)
	return (size + cellsPerWord - 1) / cellsPerWord
}

func NewCompactDataArray(size, maxValue int) (*CompactDataArray, error) {
	if size < 0 {
		return nil, fmt.Errorf("illegal array size: %d", size)
	}
	if maxValue < 0 {
		return nil, fmt.Errorf("cannot store signed values, got max %d", maxValue)
	}
	return newCompactDataArray(size, maxValue, make([]uint64, wordsNeeded(size, maxValue)))
}

func newCompactDataArray(size, maxValue int, words []uint64) (*CompactDataArray, error) {
	if size < 0 {
		return nil, fmt.Errorf("illegal array size: %d", size)
	}
	if maxValue < 0 {
		return nil, fmt.Errorf("cannot store signed values, got max %d", maxValue)
	}
	if len(words) < wordsNeeded(size, maxValue) {
		return nil, fmt.Errorf("cannot store %d values in %d words", size, len(words))
	}

	bitsPerCell := bitsNeededToStore(maxValue)
	return &CompactDataArray{
		words:        words,
		size:         size,
		maxValue:     maxValue,
		bitsPerCell:  bitsPerCell,
		cellsPerWord: bitsPerWord / bitsPerCell,
		cellMask:     bitMask(bitsPerCell),
	}, nil
}

// CompactDataArrayFromWords builds an array around packed data read from an
// existing world. When padded is true the source already uses the
// word-aligned layout and is copied as-is. Otherwise cells may span two
// adjacent words and every cell is replayed into the aligned layout.
func CompactDataArrayFromWords(source []uint64, size, maxValue int, padded bool) (*CompactDataArray, error) {
	if padded {
		words := make([]uint64, len(source))
		copy(words, source)
		return newCompactDataArray(size, maxValue, words)
	}

	arr, err := NewCompactDataArray(size, maxValue)
	if err != nil {
		return nil, err
	}
	if have := len(source) * bitsPerWord; have < size*arr.bitsPerCell {
		return nil, fmt.Errorf("cannot read %d values from %d words", size, len(source))
	}

	for cellIndex := 0; cellIndex < size; cellIndex++ {
		bitIndex := cellIndex * arr.bitsPerCell
		startWord := bitIndex / bitsPerWord
		endWord := (bitIndex + arr.bitsPerCell) / bitsPerWord
		startOffset := bitIndex % bitsPerWord

		value := source[startWord] >> startOffset
		if endWord != startWord && endWord < len(source) {
			value |= source[endWord] << (bitsPerWord - startOffset)
		}
		if err := arr.Set(cellIndex, int(value&arr.cellMask)); err != nil {
			return nil, err
		}
	}
	return arr, nil
}

func (a *CompactDataArray) wordIndex(cellIndex int) int {
	return cellIndex / a.cellsPerWord
}

// cellOffset is the bit offset of a cell inside its word, counted from the
// least significant bit.
func (a *CompactDataArray) cellOffset(cellIndex int) int {
	return a.bitsPerCell * (cellIndex % a.cellsPerWord)
}

func (a *CompactDataArray) Get(index int) (int, error) {
	if index < 0 || index >= a.size {
		return 0, fmt.Errorf("%w: %d (size %d)", ErrIndexOutOfBounds, index, a.size)
	}
	word := a.words[a.wordIndex(index)]
	return int(word >> a.cellOffset(index) & a.cellMask), nil
}

func (a *CompactDataArray) Set(index, value int) error {
	if index < 0 || index >= a.size {
		return fmt.Errorf("%w: %d (size %d)", ErrIndexOutOfBounds, index, a.size)
	}
	if value < 0 || value > a.maxValue {
		return fmt.Errorf("%w: cannot store %d, max is %d", ErrValueOutOfBounds, value, a.maxValue)
	}

	wordIndex := a.wordIndex(index)
	offset := a.cellOffset(index)
	word := a.words[wordIndex]
	word &^= a.cellMask << offset
	word |= uint64(value) << offset
	a.words[wordIndex] = word
	return nil
}

func (a *CompactDataArray) Size() int {
	return a.size
}

func (a *CompactDataArray) MaxValue() int {
	return a.maxValue
}

func (a *CompactDataArray) ForEach(action func(index, value int)) {
	cellIndex := 0
	for _, word := range a.words {
		for i := 0; i < a.cellsPerWord && cellIndex < a.size; i++ {
			action(cellIndex, int(word&a.cellMask))
			word >>= a.bitsPerCell
			cellIndex++
		}
	}
}

// Words exposes the raw backing words for encoding.
func (a *CompactDataArray) Words() []uint64 {
	return a.words
}

// ToUnpadded copies the contents into a byte-aligned array with the same size
// and maxValue. The two layouts are never byte-for-byte compatible, so every
// cell is replayed.
func (a *CompactDataArray) ToUnpadded() (*UnpaddedIntArray, error) {
	unpadded, err := NewUnpaddedIntArray(a.size, a.maxValue)
	if err != nil {
		return nil, err
	}
	a.ForEach(func(index, value int) {
		_ = unpadded.Set(index, value)
	})
	return unpadded, nil
}

func (a *CompactDataArray) widen(maxValue int) error {
	if maxValue <= a.maxValue {
		return nil
	}
	if bitsNeededToStore(maxValue) == a.bitsPerCell {
		a.maxValue = maxValue
		return nil
	}

	replacement, err := NewCompactDataArray(a.size, maxValue)
	if err != nil {
		return err
	}
	a.ForEach(func(index, value int) {
		_ = replacement.Set(index, value)
	})
	*a = *replacement
	return nil
}
