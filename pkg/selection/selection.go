// Package selection keeps a region-level and a position-level selection over
// a normalized sequence model mutually consistent.
//
// The exposed position set is derived, not independently authoritative: it is
// the union of positions toggled manually by the user and the position ranges
// of all currently selected regions. The two sources are tracked as separate
// sets and the union is recomputed on every mutation, which sidesteps the
// asymmetric-toggle bug class entirely (deselecting a position that a
// selected region still covers leaves it visibly selected).
//
// All operations are synchronous, total, and idempotent under repeated
// identical toggles. The engine holds no I/O and is owned by a single logical
// thread of control.
package selection

import (
	"sort"

	"github.com/tmonheim/chainview/pkg/annot"
)

// State is the externally visible selection: the selected region IDs and the
// derived union of selected positions, both sorted for determinism.
type State struct {
	RegionIDs []string `json:"region_ids"`
	Positions []int    `json:"positions"`
}

// span is an inclusive 1-based position range.
type span struct {
	start, stop int
}

// Engine maintains selection state over a normalized model.
type Engine struct {
	spans   map[string]span     // region ID -> position range, from the backing model
	regions map[string]struct{} // selected region IDs
	manual  map[int]struct{}    // positions toggled individually by the user
	derived map[int]struct{}    // manual ∪ ranges of selected regions
}

// NewEngine creates an empty selection engine over the given models.
func NewEngine(models []annot.SequenceModel) *Engine {
	e := &Engine{}
	e.SetSequences(models)
	return e
}

// SetSequences replaces the backing models and clears the selection.
func (e *Engine) SetSequences(models []annot.SequenceModel) {
	e.spans = make(map[string]span)
	for _, m := range models {
		for _, c := range m.Chains {
			for _, r := range c.Annotations {
				e.spans[r.ID] = span{start: r.Start, stop: r.Stop}
			}
		}
	}
	e.ClearSelection()
}

// ClearSelection resets both selection sources and the derived set.
func (e *Engine) ClearSelection() {
	e.regions = make(map[string]struct{})
	e.manual = make(map[int]struct{})
	e.derived = make(map[int]struct{})
}

// SelectRegion toggles the region with the given ID. Unknown IDs are a no-op:
// selection operations never fail. The derived position set is recomputed
// after every toggle.
func (e *Engine) SelectRegion(regionID string) {
	if _, ok := e.spans[regionID]; !ok {
		return
	}
	if _, ok := e.regions[regionID]; ok {
		delete(e.regions, regionID)
	} else {
		e.regions[regionID] = struct{}{}
	}
	e.recompute()
}

// SelectPosition toggles an individually selected position. Toggling a
// position off does not remove it from the exposed set while a selected
// region still covers it; the region keeps contributing it to the union.
func (e *Engine) SelectPosition(pos int) {
	if _, ok := e.manual[pos]; ok {
		delete(e.manual, pos)
	} else {
		e.manual[pos] = struct{}{}
	}
	e.recompute()
}

// recompute rebuilds the derived set as manual ∪ selected region ranges.
func (e *Engine) recompute() {
	e.derived = make(map[int]struct{}, len(e.manual))
	for p := range e.manual {
		e.derived[p] = struct{}{}
	}
	for id := range e.regions {
		s := e.spans[id]
		for p := s.start; p <= s.stop; p++ {
			e.derived[p] = struct{}{}
		}
	}
}

// IsRegionSelected reports whether the region is currently selected.
func (e *Engine) IsRegionSelected(regionID string) bool {
	_, ok := e.regions[regionID]
	return ok
}

// IsPositionSelected reports whether the position is in the derived set.
func (e *Engine) IsPositionSelected(pos int) bool {
	_, ok := e.derived[pos]
	return ok
}

// Snapshot returns the externally visible selection state.
func (e *Engine) Snapshot() State {
	st := State{
		RegionIDs: make([]string, 0, len(e.regions)),
		Positions: make([]int, 0, len(e.derived)),
	}
	for id := range e.regions {
		st.RegionIDs = append(st.RegionIDs, id)
	}
	for p := range e.derived {
		st.Positions = append(st.Positions, p)
	}
	sort.Strings(st.RegionIDs)
	sort.Ints(st.Positions)
	return st
}
