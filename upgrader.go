package ooze

import (
	"errors"
	"fmt"
)

// PaletteUpgrader records the ID reassignments caused by a palette mutation
// so that storage depending on the palette can be rewritten to match. Changes
// are registered while the upgrader is unlocked; once locked it becomes
// immutable and can be applied. A non-identity upgrader may be applied at
// most once: a second pass would treat already-rewritten IDs as old ones.
type PaletteUpgrader struct {
	changes  map[int]int
	maxNewID int
	locked   bool
	applied  bool
}

// identityUpgrader is returned by palette operations that changed no IDs. Its
// Upgrade is a guaranteed no-op and may be reused freely.
var identityUpgrader = func() *PaletteUpgrader {
	u := NewPaletteUpgrader()
	u.Lock()
	return u
}()

func NewPaletteUpgrader() *PaletteUpgrader {
	return &PaletteUpgrader{changes: make(map[int]int)}
}

// RegisterChange records that values equal to oldID must become newID.
func (u *PaletteUpgrader) RegisterChange(oldID, newID int) error {
	if u.locked {
		return errors.New("cannot register changes on a locked upgrader")
	}
	if oldID < 0 || newID < 0 {
		return fmt.Errorf("%w: cannot map %d to %d", ErrValueOutOfBounds, oldID, newID)
	}
	u.changes[oldID] = newID
	if newID > u.maxNewID {
		u.maxNewID = newID
	}
	return nil
}

// Lock makes the upgrader immutable. Only a locked upgrader can be applied.
func (u *PaletteUpgrader) Lock() {
	u.locked = true
}

// Size is the number of registered ID changes.
func (u *PaletteUpgrader) Size() int {
	return len(u.changes)
}

// Upgrade rewrites every cell of arr whose value was registered as an old ID,
// widening the array first if the new ID space does not fit its current cell
// width. Values that were never registered pass through unchanged; whether
// those are still meaningful in the new ID space is the caller's contract.
func (u *PaletteUpgrader) Upgrade(arr IntArray) error {
	if !u.locked {
		return errors.New("cannot apply an unlocked upgrader")
	}
	if len(u.changes) == 0 {
		return nil
	}
	if u.applied {
		return errors.New("upgrader has already been applied")
	}
	u.applied = true

	if u.maxNewID > arr.MaxValue() {
		if err := arr.widen(u.maxNewID); err != nil {
			return err
		}
	}
	for index := 0; index < arr.Size(); index++ {
		oldID, err := arr.Get(index)
		if err != nil {
			return err
		}
		if newID, ok := u.changes[oldID]; ok && newID != oldID {
			if err := arr.Set(index, newID); err != nil {
				return err
			}
		}
	}
	return nil
}
