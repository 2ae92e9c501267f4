package ooze

import "fmt"

// defaultStateID is the ID every palette reserves for its default state.
const defaultStateID = 0

// BlockPalette assigns small dense integer IDs to block states. A state's ID
// is its position in the palette, no state appears twice, and ID 0 is always
// the default state, which can never be removed. Paired with a packed
// IntArray this is what keeps large block volumes small.
type BlockPalette struct {
	states []BlockState
	ids    map[string]int
}

// NewBlockPalette creates a palette whose only entry is defaultState.
func NewBlockPalette(defaultState BlockState) *BlockPalette {
	p := &BlockPalette{
		states: make([]BlockState, 0, 1),
		ids:    make(map[string]int),
	}
	p.states = append(p.states, defaultState)
	p.ids[defaultState.key()] = defaultStateID
	return p
}

// DefaultState is the state volumes fall back to when a block is not
// explicitly stored.
func (p *BlockPalette) DefaultState() BlockState {
	return p.states[defaultStateID]
}

// State returns the block state registered under id.
func (p *BlockPalette) State(id int) (BlockState, error) {
	if id < 0 || id >= len(p.states) {
		return BlockState{}, fmt.Errorf("%w: no state with id %d (size %d)", ErrIndexOutOfBounds, id, len(p.states))
	}
	return p.states[id], nil
}

// StateID returns the ID of state, or -1 if the palette does not contain it.
func (p *BlockPalette) StateID(state BlockState) int {
	if id, ok := p.ids[state.key()]; ok {
		return id
	}
	return -1
}

// GetOrAddStateID returns the existing ID for state, appending the state
// under a new ID if the palette did not contain it yet.
func (p *BlockPalette) GetOrAddStateID(state BlockState) int {
	if id, ok := p.ids[state.key()]; ok {
		return id
	}
	id := len(p.states)
	p.states = append(p.states, state)
	p.ids[state.key()] = id
	return id
}

// Size is the number of unique states in the palette.
func (p *BlockPalette) Size() int {
	return len(p.states)
}

// States exposes the palette's entries in ID order.
func (p *BlockPalette) States() []BlockState {
	return p.states
}

// RemoveState removes state from the palette if present. See RemoveStateID.
func (p *BlockPalette) RemoveState(state BlockState) (*PaletteUpgrader, error) {
	id := p.StateID(state)
	if id < 0 {
		return identityUpgrader, nil
	}
	return p.RemoveStateID(id)
}

// RemoveStateID removes the state registered under id. Every ID above the
// removed one shifts down by one, so the returned upgrader must be applied to
// any data that uses this palette. The default state cannot be removed;
// removing an ID that does not exist is a no-op.
func (p *BlockPalette) RemoveStateID(id int) (*PaletteUpgrader, error) {
	if id == defaultStateID {
		return nil, fmt.Errorf("cannot remove the default state from a palette: %v", p.DefaultState())
	}
	if id < 0 || id >= len(p.states) {
		return identityUpgrader, nil
	}

	delete(p.ids, p.states[id].key())
	p.states = append(p.states[:id], p.states[id+1:]...)
	if id == len(p.states) {
		// The last entry was removed; nothing shifted.
		return identityUpgrader, nil
	}

	upgrader := NewPaletteUpgrader()
	for newID := id; newID < len(p.states); newID++ {
		p.ids[p.states[newID].key()] = newID
		_ = upgrader.RegisterChange(newID+1, newID)
	}
	upgrader.Lock()
	return upgrader, nil
}

// AddAll registers every state of other that this palette does not already
// contain, in other's ID order. The returned upgrader maps each of other's
// IDs to the ID the same state has here.
func (p *BlockPalette) AddAll(other *BlockPalette) *PaletteUpgrader {
	upgrader := NewPaletteUpgrader()
	for oldID, state := range other.states {
		_ = upgrader.RegisterChange(oldID, p.GetOrAddStateID(state))
	}
	upgrader.Lock()
	return upgrader
}
