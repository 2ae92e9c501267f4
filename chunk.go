package ooze

import (
	"fmt"
	"io"
)

// Chunk dimensions. The format predates variable world height.
const (
	ChunkWidth       = 16
	ChunkDepth       = 16
	SectionHeight    = 16
	SectionsPerChunk = 16
	ChunkHeight      = SectionHeight * SectionsPerChunk

	sectionVolume = ChunkWidth * SectionHeight * ChunkDepth
)

// sectionBitmapLen is the number of bytes needed for one bit per section
// slot.
const sectionBitmapLen = (SectionsPerChunk + bitsPerByte - 1) / bitsPerByte

// Location2D is a chunk column's position in the world.
type Location2D struct {
	X, Z int32
}

// Chunk is a 16x256x16 block volume split vertically into 16 sections, each
// with its own palette and packed storage. Sections are created lazily on
// first write and never discarded, even if every block in them is later
// reset. None of this is safe for concurrent use; callers wanting
// parallelism must keep each chunk on its own goroutine.
type Chunk struct {
	location     Location2D
	dataVersion  int32
	defaultState BlockState
	sections     [SectionsPerChunk]*chunkSection
}

func NewChunk(location Location2D, dataVersion int32) *Chunk {
	return &Chunk{
		location:     location,
		dataVersion:  dataVersion,
		defaultState: DefaultBlockState,
	}
}

func (c *Chunk) Location() Location2D {
	return c.location
}

func (c *Chunk) DataVersion() int32 {
	return c.dataVersion
}

// HasSection reports whether the section slot is occupied. Absent sections
// read as all default state; a present section can still be empty.
func (c *Chunk) HasSection(index int) bool {
	return index >= 0 && index < SectionsPerChunk && c.sections[index] != nil
}

func (c *Chunk) inBounds(x, y, z int) bool {
	return x >= 0 && x < ChunkWidth &&
		y >= 0 && y < ChunkHeight &&
		z >= 0 && z < ChunkDepth
}

// BlockAt returns the state at the chunk-relative coordinates.
func (c *Chunk) BlockAt(x, y, z int) (BlockState, error) {
	if !c.inBounds(x, y, z) {
		return BlockState{}, fmt.Errorf("%w: chunk coordinates (%d, %d, %d)", ErrIndexOutOfBounds, x, y, z)
	}

	section := c.sections[y>>4]
	if section == nil {
		return c.defaultState, nil
	}
	return section.blockAt(x, y&15, z)
}

// SetBlockAt stores state at the chunk-relative coordinates, creating the
// target section if it did not exist, and returns the previous state there.
func (c *Chunk) SetBlockAt(x, y, z int, state BlockState) (BlockState, error) {
	if !c.inBounds(x, y, z) {
		return BlockState{}, fmt.Errorf("%w: chunk coordinates (%d, %d, %d)", ErrIndexOutOfBounds, x, y, z)
	}

	sectionIndex := y >> 4
	section := c.sections[sectionIndex]
	if section == nil {
		var err error
		if section, err = newChunkSection(c.defaultState); err != nil {
			return BlockState{}, err
		}
		c.sections[sectionIndex] = section
	}
	return section.setBlockAt(x, y&15, z, state)
}

// IsEmpty reports whether every present section holds nothing but the
// default state.
func (c *Chunk) IsEmpty() bool {
	for _, section := range c.sections {
		if section != nil && !section.isEmpty() {
			return false
		}
	}
	return true
}

// Serialize writes the chunk in the ooze binary layout. The chunk-wide
// palette and the upgraders built here live only for the duration of this
// call.
func (c *Chunk) Serialize(w io.Writer) error {
	out := NewWriter(w)
	if err := out.WriteVarInt(int(c.dataVersion)); err != nil {
		return err
	}

	bitmap := make([]byte, sectionBitmapLen)
	hasBlocks := false
	for i, section := range c.sections {
		if section != nil && !section.isEmpty() {
			bitmap[i/bitsPerByte] |= 1 << (i % bitsPerByte)
			hasBlocks = true
		}
	}
	if err := out.WriteBytes(bitmap); err != nil {
		return err
	}
	if !hasBlocks {
		return nil
	}

	// Merge every non-empty section's palette into one chunk-wide palette,
	// rewriting each section's storage before the next merge can reassign
	// IDs.
	chunkPalette := NewBlockPalette(c.defaultState)
	storage := make([]*UnpaddedIntArray, 0, SectionsPerChunk)
	for _, section := range c.sections {
		if section == nil || section.isEmpty() {
			continue
		}
		unpadded, err := section.blocks.ToUnpadded()
		if err != nil {
			return err
		}
		if err := chunkPalette.AddAll(section.palette).Upgrade(unpadded); err != nil {
			return err
		}
		storage = append(storage, unpadded)
	}

	if err := out.WriteVarInt(chunkPalette.Size()); err != nil {
		return err
	}
	for _, state := range chunkPalette.States() {
		// Low bit flags properties, the rest is the name length. The header
		// is one byte, so oversized names truncate; the wire format has
		// always worked that way.
		header := len(state.Name) << 1
		if state.HasProperties() {
			header |= 1
		}
		if err := out.WriteByte(byte(header)); err != nil {
			return err
		}
		if err := out.WriteBytes([]byte(state.Name)); err != nil {
			return err
		}
		if state.HasProperties() {
			if err := out.WriteNBT(state.Properties); err != nil {
				return err
			}
		}
	}

	for _, arr := range storage {
		if err := arr.writeTo(out); err != nil {
			return err
		}
	}
	return nil
}

// ReadChunk decodes a chunk previously written by Serialize.
func ReadChunk(r io.Reader, location Location2D) (*Chunk, error) {
	in := NewReader(r)

	version, err := in.ReadVarInt()
	if err != nil {
		return nil, err
	}
	chunk := NewChunk(location, int32(version))

	bitmap, err := in.ReadBytes(sectionBitmapLen)
	if err != nil {
		return nil, err
	}
	hasBlocks := false
	for _, b := range bitmap {
		if b != 0 {
			hasBlocks = true
		}
	}
	if !hasBlocks {
		return chunk, nil
	}

	paletteSize, err := in.ReadVarInt()
	if err != nil {
		return nil, err
	}
	if paletteSize <= 0 {
		return nil, fmt.Errorf("invalid chunk palette size: %d", paletteSize)
	}
	states := make([]BlockState, paletteSize)
	for i := range states {
		header, err := in.ReadByte()
		if err != nil {
			return nil, err
		}
		name, err := in.ReadBytes(int(header) >> 1)
		if err != nil {
			return nil, err
		}
		states[i] = BlockState{Name: string(name)}
		if header&1 != 0 {
			if err := in.ReadNBT(&states[i].Properties); err != nil {
				return nil, err
			}
		}
	}
	// Entry 0 of the serialized palette is always the default state.
	chunk.defaultState = states[0]

	for i := 0; i < SectionsPerChunk; i++ {
		if bitmap[i/bitsPerByte]&(1<<(i%bitsPerByte)) == 0 {
			continue
		}

		maxValue, err := in.ReadVarInt()
		if err != nil {
			return nil, err
		}
		if maxValue < 0 {
			return nil, fmt.Errorf("%w: section %d has max value %d", ErrValueOutOfBounds, i, maxValue)
		}
		bitsPerCell := bitsNeededToStore(maxValue)
		data, err := in.ReadBytes((sectionVolume*bitsPerCell + bitsPerByte - 1) / bitsPerByte)
		if err != nil {
			return nil, err
		}
		unpadded, err := UnpaddedIntArrayFromBytes(data, sectionVolume, maxValue)
		if err != nil {
			return nil, err
		}

		// Serialized storage uses chunk-wide IDs, which map 1:1 onto a fresh
		// local palette seeded with the same default.
		palette := NewBlockPalette(chunk.defaultState)
		for _, state := range states {
			palette.GetOrAddStateID(state)
		}

		section, err := sectionFromStorage(palette, unpadded)
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", i, err)
		}
		chunk.sections[i] = section
	}
	return chunk, nil
}

// chunkSection is one 16-block-tall slab of a chunk. It exclusively owns its
// palette and storage.
type chunkSection struct {
	palette *BlockPalette
	blocks  *CompactDataArray

	// Cells not holding the default state.
	blockCount int
}

func newChunkSection(defaultState BlockState) (*chunkSection, error) {
	blocks, err := NewCompactDataArray(sectionVolume, 0)
	if err != nil {
		return nil, err
	}
	return &chunkSection{
		palette: NewBlockPalette(defaultState),
		blocks:  blocks,
	}, nil
}

// sectionFromStorage builds a section around imported storage whose values
// are already IDs in palette.
func sectionFromStorage(palette *BlockPalette, storage IntArray) (*chunkSection, error) {
	blocks, err := NewCompactDataArray(storage.Size(), storage.MaxValue())
	if err != nil {
		return nil, err
	}
	storage.ForEach(func(index, value int) {
		_ = blocks.Set(index, value)
	})

	section := &chunkSection{palette: palette, blocks: blocks}
	section.countNonDefault()
	return section, nil
}

func blockIndex(x, y, z int) int {
	return (y*ChunkDepth+z)*ChunkWidth + x
}

func (s *chunkSection) blockAt(x, y, z int) (BlockState, error) {
	id, err := s.blocks.Get(blockIndex(x, y, z))
	if err != nil {
		return BlockState{}, err
	}
	return s.palette.State(id)
}

func (s *chunkSection) setBlockAt(x, y, z int, state BlockState) (BlockState, error) {
	index := blockIndex(x, y, z)
	oldID, err := s.blocks.Get(index)
	if err != nil {
		return BlockState{}, err
	}
	old, err := s.palette.State(oldID)
	if err != nil {
		return BlockState{}, err
	}

	id := s.palette.GetOrAddStateID(state)
	if id > s.blocks.MaxValue() {
		if err := s.blocks.widen(s.palette.Size() - 1); err != nil {
			return BlockState{}, err
		}
	}
	if err := s.blocks.Set(index, id); err != nil {
		return BlockState{}, err
	}

	if oldID != defaultStateID {
		s.blockCount--
	}
	if id != defaultStateID {
		s.blockCount++
	}
	return old, nil
}

// isEmpty reports whether every cell holds the default state. An empty
// section still exists; it just serializes to nothing.
func (s *chunkSection) isEmpty() bool {
	return s.blockCount == 0
}

// countNonDefault recounts blockCount from storage. Used after a section is
// built from imported data rather than block-by-block writes.
func (s *chunkSection) countNonDefault() {
	count := 0
	s.blocks.ForEach(func(_, value int) {
		if value != defaultStateID {
			count++
		}
	})
	s.blockCount = count
}
