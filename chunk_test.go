package ooze

import (
	"bytes"
	"strings"
	"testing"

	pk "github.com/Tnze/go-mc/net/packet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkBlockAtBounds(t *testing.T) {
	c := NewChunk(Location2D{}, 2230)
	tests := []struct {
		name    string
		x, y, z int
	}{
		{"negative x", -1, 0, 0},
		{"negative y", 0, -1, 0},
		{"negative z", 0, 0, -1},
		{"x too large", 16, 0, 0},
		{"y too large", 0, 256, 0},
		{"z too large", 0, 0, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.BlockAt(tt.x, tt.y, tt.z)
			assert.ErrorIs(t, err, ErrIndexOutOfBounds)
			_, err = c.SetBlockAt(tt.x, tt.y, tt.z, stone)
			assert.ErrorIs(t, err, ErrIndexOutOfBounds)
		})
	}
}

func TestChunkAbsentSectionsReadDefault(t *testing.T) {
	c := NewChunk(Location2D{}, 2230)

	got, err := c.BlockAt(4, 77, 9)
	require.NoError(t, err)
	assert.True(t, got.Equal(DefaultBlockState))
	assert.False(t, c.HasSection(77>>4))
}

func TestChunkSetBlockAt(t *testing.T) {
	c := NewChunk(Location2D{}, 2230)

	previous, err := c.SetBlockAt(3, 20, 5, stone)
	require.NoError(t, err)
	assert.True(t, previous.Equal(DefaultBlockState))
	assert.True(t, c.HasSection(1), "section 1 is created lazily")
	assert.False(t, c.HasSection(0))

	previous, err = c.SetBlockAt(3, 20, 5, dirt)
	require.NoError(t, err)
	assert.True(t, previous.Equal(stone))

	got, err := c.BlockAt(3, 20, 5)
	require.NoError(t, err)
	assert.True(t, got.Equal(dirt))

	// Neighbors stay default.
	got, err = c.BlockAt(2, 20, 5)
	require.NoError(t, err)
	assert.True(t, got.Equal(DefaultBlockState))
}

func TestChunkIsEmpty(t *testing.T) {
	c := NewChunk(Location2D{}, 2230)
	assert.True(t, c.IsEmpty())

	_, err := c.SetBlockAt(0, 0, 0, stone)
	require.NoError(t, err)
	assert.False(t, c.IsEmpty())

	// Resetting the block empties the chunk again, but the section stays.
	_, err = c.SetBlockAt(0, 0, 0, DefaultBlockState)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
	assert.True(t, c.HasSection(0))
}

func TestChunkSerializeEmpty(t *testing.T) {
	c := NewChunk(Location2D{X: 7, Z: -3}, 2230)

	var buf bytes.Buffer
	require.NoError(t, c.Serialize(&buf))

	// Version tag plus an all-zero section bitmap, nothing else.
	var want bytes.Buffer
	_, err := pk.VarInt(2230).WriteTo(&want)
	require.NoError(t, err)
	want.Write([]byte{0, 0})
	assert.Equal(t, want.Bytes(), buf.Bytes())
}

func TestChunkSerializeEmptiedSection(t *testing.T) {
	c := NewChunk(Location2D{}, 2230)
	_, err := c.SetBlockAt(0, 0, 0, stone)
	require.NoError(t, err)
	_, err = c.SetBlockAt(0, 0, 0, DefaultBlockState)
	require.NoError(t, err)

	// A present-but-empty section serializes exactly like an absent one.
	var buf bytes.Buffer
	require.NoError(t, c.Serialize(&buf))
	var empty bytes.Buffer
	require.NoError(t, NewChunk(Location2D{}, 2230).Serialize(&empty))
	assert.Equal(t, empty.Bytes(), buf.Bytes())
}

func TestChunkRoundTripSingleBlock(t *testing.T) {
	c := NewChunk(Location2D{X: 1, Z: 2}, 2230)
	_, err := c.SetBlockAt(3, 20, 5, stone)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, c.Serialize(&buf))

	loaded, err := ReadChunk(&buf, Location2D{X: 1, Z: 2})
	require.NoError(t, err)
	assert.Equal(t, int32(2230), loaded.DataVersion())

	got, err := loaded.BlockAt(3, 20, 5)
	require.NoError(t, err)
	assert.True(t, got.Equal(stone))

	got, err = loaded.BlockAt(3, 21, 5)
	require.NoError(t, err)
	assert.True(t, got.Equal(DefaultBlockState))
	assert.False(t, loaded.HasSection(0))
	assert.True(t, loaded.HasSection(1))
}

func TestChunkRoundTripMultipleSections(t *testing.T) {
	c := NewChunk(Location2D{}, 2230)

	// Different sections build their palettes in different orders, so the
	// serialized chunk exercises the palette merge and the per-section ID
	// rewrite.
	blocks := []struct {
		x, y, z int
		state   BlockState
	}{
		{0, 0, 0, stone},
		{1, 5, 2, dirt},
		{15, 15, 15, oakLog},
		{0, 80, 0, dirt},
		{1, 80, 1, oakLog},
		{2, 95, 3, stone},
		{8, 255, 8, oakLog},
	}
	for _, b := range blocks {
		_, err := c.SetBlockAt(b.x, b.y, b.z, b.state)
		require.NoError(t, err)
	}

	var buf bytes.Buffer
	require.NoError(t, c.Serialize(&buf))

	loaded, err := ReadChunk(&buf, Location2D{})
	require.NoError(t, err)
	for _, b := range blocks {
		got, err := loaded.BlockAt(b.x, b.y, b.z)
		require.NoError(t, err)
		assert.True(t, got.Equal(b.state), "block at (%d, %d, %d): got %v, want %v", b.x, b.y, b.z, got, b.state)
	}

	// Untouched spots resolve to the default state in both merged sections.
	for _, y := range []int{1, 81, 254} {
		got, err := loaded.BlockAt(7, y, 7)
		require.NoError(t, err)
		assert.True(t, got.Equal(DefaultBlockState))
	}
}

func TestChunkSerializePaletteSharedAcrossSections(t *testing.T) {
	c := NewChunk(Location2D{}, 2230)
	// The same two states in every section must appear once in the chunk
	// palette: default + stone + dirt.
	for _, y := range []int{0, 40, 200} {
		_, err := c.SetBlockAt(0, y, 0, stone)
		require.NoError(t, err)
		_, err = c.SetBlockAt(1, y, 1, dirt)
		require.NoError(t, err)
	}

	var buf bytes.Buffer
	require.NoError(t, c.Serialize(&buf))
	out := buf.Bytes()

	var version pk.VarInt
	header := bytes.NewReader(out)
	_, err := version.ReadFrom(header)
	require.NoError(t, err)
	require.Equal(t, pk.VarInt(2230), version)

	bitmap := make([]byte, 2)
	_, err = header.Read(bitmap)
	require.NoError(t, err)
	assert.Equal(t, byte(1<<0|1<<2), bitmap[0], "sections 0 and 2 are marked")
	assert.Equal(t, byte(1<<(12-8)), bitmap[1], "section 12 is marked")

	var paletteSize pk.VarInt
	_, err = paletteSize.ReadFrom(header)
	require.NoError(t, err)
	assert.Equal(t, pk.VarInt(3), paletteSize)
}

// The palette entry header is a single byte, so a name whose doubled length
// overflows it truncates on the wire. That is an inherited limitation of the
// format; this pins the exact behavior down.
func TestChunkSerializeHeaderByteTruncates(t *testing.T) {
	longName := "minecraft:" + strings.Repeat("a", 130)
	c := NewChunk(Location2D{}, 100)
	_, err := c.SetBlockAt(0, 0, 0, BlockState{Name: longName})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, c.Serialize(&buf))
	out := buf.Bytes()

	// varint(100) + bitmap + varint(2) + air entry = 18 bytes before the
	// long entry's header.
	headerAt := 1 + sectionBitmapLen + 1 + 1 + len(DefaultBlockState.Name)
	assert.Equal(t, byte(len(longName)<<1), out[headerAt])
	assert.NotEqual(t, len(longName)<<1, int(out[headerAt]), "the header really did overflow")
}
