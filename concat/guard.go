package concat

import (
	"sync"
)

type guardState uint8

const (
	guardBorrowed guardState = iota // view over existing text, nothing to release
	guardOwning                     // holds a coerced copy
	guardReleased
	guardAdopted
)

// Guard scopes the text form of one dynamic value. If the value was not
// text when the guard was made, the guard owns a coerced copy and disposes
// it exactly once on Release.
type Guard struct {
	owned OwnedText
	view  TextView
	ref   Ref
	state guardState
}

// NewGuard resolves the text form of ref, coercing when needed.
func NewGuard(h Host, ref Ref) (Guard, error) {
	if h.Kind(ref) == KindText {
		view, err := h.TextView(ref)
		if err != nil {
			return Guard{}, err
		}
		return Guard{ref: ref, view: view, state: guardBorrowed}, nil
	}

	owned, err := h.CoerceToText(ref)
	if err != nil {
		return Guard{}, err
	}
	return Guard{
		ref:   ref,
		owned: owned,
		view:  TextView{Ptr: owned.Ptr, Len: owned.Len},
		state: guardOwning,
	}, nil
}

// View returns the text the guard exposes.
func (g *Guard) View() TextView {
	return g.view
}

// Owns reports whether the guard still holds a copy it must release.
func (g *Guard) Owns() bool {
	return g.state == guardOwning
}

// Release disposes the coerced copy if the guard owns one. Safe to call
// more than once.
func (g *Guard) Release(h Host) {
	if g.state != guardOwning {
		return
	}
	g.state = guardReleased
	h.Dispose(g.owned)
}

// Adopt hands the coerced copy to dst. After a successful Adopt the guard
// no longer owns anything. A guard over existing text has nothing to adopt.
func (g *Guard) Adopt(h Host, dst Ref) error {
	if g.state != guardOwning {
		return nil
	}
	if err := h.AdoptText(dst, g.owned); err != nil {
		return err
	}
	g.state = guardAdopted
	return nil
}

// GuardSet collects the guards of one call so they can be released
// together on every exit path.
type GuardSet struct {
	guards []Guard
}

var guardSetPool = sync.Pool{
	New: func() any {
		return &GuardSet{guards: make([]Guard, 0, MaxArity+1)}
	},
}

// NewGuardSet returns an empty set from the pool.
func NewGuardSet() *GuardSet {
	return guardSetPool.Get().(*GuardSet)
}

const maxPooledGuardCapacity = 64

// Recycle returns the set to the pool. Must call after ReleaseAll; the set
// is invalid afterwards.
func (gs *GuardSet) Recycle() {
	if cap(gs.guards) > maxPooledGuardCapacity {
		return
	}
	gs.guards = gs.guards[:0]
	guardSetPool.Put(gs)
}

// Acquire makes a guard for ref and returns its index in the set.
func (gs *GuardSet) Acquire(h Host, ref Ref) (int, error) {
	g, err := NewGuard(h, ref)
	if err != nil {
		return -1, err
	}
	gs.guards = append(gs.guards, g)
	return len(gs.guards) - 1, nil
}

// At returns the guard at index i. The pointer is invalidated by Acquire.
func (gs *GuardSet) At(i int) *Guard {
	return &gs.guards[i]
}

// ReleaseAll releases every guard in the set.
func (gs *GuardSet) ReleaseAll(h Host) {
	for i := range gs.guards {
		gs.guards[i].Release(h)
	}
}

// ReleaseAndRecycle releases every guard and returns the set to the pool.
func (gs *GuardSet) ReleaseAndRecycle(h Host) {
	gs.ReleaseAll(h)
	gs.Recycle()
}

// Owned returns how many guards still hold a copy.
func (gs *GuardSet) Owned() int {
	n := 0
	for i := range gs.guards {
		if gs.guards[i].Owns() {
			n++
		}
	}
	return n
}

// Len returns the number of guards in the set.
func (gs *GuardSet) Len() int {
	return len(gs.guards)
}
