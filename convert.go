package ooze

import (
	"fmt"

	"github.com/Tnze/go-mc/save"
)

// Data versions at or above this (20w17a) store block states word-aligned;
// older versions pack them back to back across longs.
const paddedStorageVersion = 2527

// ChunkFromSave converts a region-file chunk, as parsed by go-mc, into an
// ooze chunk. Sections with a Y index outside [0, 16) are skipped: the ooze
// format predates extended world height.
func ChunkFromSave(c *save.Chunk) (*Chunk, error) {
	chunk := NewChunk(Location2D{X: c.XPos, Z: c.ZPos}, c.DataVersion)
	for i := range c.Sections {
		sec := &c.Sections[i]
		y := int(sec.Y)
		if y < 0 || y >= SectionsPerChunk {
			continue
		}

		section, err := sectionFromSave(sec, c.DataVersion, chunk.defaultState)
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", y, err)
		}
		if section != nil {
			chunk.sections[y] = section
		}
	}
	return chunk, nil
}

// sectionFromSave builds a chunk section from a region-file section,
// remapping the section's palette indices into a local palette whose ID 0 is
// the default state. Returns nil for sections that are entirely default.
func sectionFromSave(sec *save.Section, dataVersion int32, defaultState BlockState) (*chunkSection, error) {
	rawPalette := sec.BlockStates.Palette
	if len(rawPalette) == 0 {
		return nil, nil
	}

	palette := NewBlockPalette(defaultState)
	remap := NewPaletteUpgrader()
	for i, entry := range rawPalette {
		state, err := stateFromSave(entry)
		if err != nil {
			return nil, err
		}
		if err := remap.RegisterChange(i, palette.GetOrAddStateID(state)); err != nil {
			return nil, err
		}
	}
	remap.Lock()

	data := sec.BlockStates.Data
	if len(data) == 0 {
		// A paletted section without data is uniform.
		if len(rawPalette) != 1 {
			return nil, fmt.Errorf("section has %d palette entries but no block data", len(rawPalette))
		}
		uniform, err := palette.State(1)
		if err != nil {
			// The single entry deduplicated onto the default state.
			return nil, nil
		}
		section, err := newChunkSection(defaultState)
		if err != nil {
			return nil, err
		}
		for x := 0; x < ChunkWidth; x++ {
			for y := 0; y < SectionHeight; y++ {
				for z := 0; z < ChunkDepth; z++ {
					if _, err := section.setBlockAt(x, y, z, uniform); err != nil {
						return nil, err
					}
				}
			}
		}
		return section, nil
	}

	// The width of each cell comes from the data length, not the palette:
	// vanilla never writes block states narrower than 4 bits, so a 2-entry
	// palette still arrives as 4-bit cells.
	padded := dataVersion >= paddedStorageVersion
	stored := storedBitsPerCell(len(data), padded)
	if stored < 1 {
		return nil, fmt.Errorf("cannot store %d block states in %d words", sectionVolume, len(data))
	}
	blocks, err := CompactDataArrayFromWords(data, sectionVolume, int(bitMask(stored)), padded)
	if err != nil {
		return nil, err
	}
	if err := remap.Upgrade(blocks); err != nil {
		return nil, err
	}

	section := &chunkSection{palette: palette, blocks: blocks}
	section.countNonDefault()
	return section, nil
}

// storedBitsPerCell recovers the bit width a region file packed section data
// at, given how many longs it used for a full section. Word-aligned data
// leaves slack in every long; legacy data packs cells back to back, so the
// width divides out exactly.
func storedBitsPerCell(longs int, padded bool) int {
	if longs <= 0 {
		return 0
	}
	if padded {
		cellsPerWord := (sectionVolume + longs - 1) / longs
		if cellsPerWord > bitsPerWord {
			return 0
		}
		return bitsPerWord / cellsPerWord
	}
	return longs * bitsPerWord / sectionVolume
}

// stateFromSave decodes one palette entry as stored in a region chunk.
func stateFromSave(entry save.BlockState) (BlockState, error) {
	state := BlockState{Name: entry.Name}
	if entry.Properties.Data != nil {
		if err := entry.Properties.Unmarshal(&state.Properties); err != nil {
			return BlockState{}, fmt.Errorf("unmarshal block properties: %w", err)
		}
		if len(state.Properties) == 0 {
			state.Properties = nil
		}
	}
	return state, nil
}
