package world

import (
	"sort"

	"tokenfield/internal/persistence/snapshot"
	"tokenfield/internal/sim/grid"
)

// override is at most one of Taken or Modified for a cell. Taken forces the
// cell empty regardless of its intrinsic value; Modified forces an explicit
// positive value. Absence means "use the intrinsic value".
type override struct {
	taken bool
	value int64
}

// OverrideStore is the sparse ledger of player-caused deviations from the
// procedural field. Keyed by true CellID, so it never aliases the way the
// field's wrapped backing array does.
type OverrideStore struct {
	entries map[grid.CellID]override
}

func NewOverrideStore() *OverrideStore {
	return &OverrideStore{entries: map[grid.CellID]override{}}
}

// RecordTaken marks the cell forced-empty, replacing any Modified entry.
func (s *OverrideStore) RecordTaken(c grid.CellID) {
	s.entries[c] = override{taken: true}
}

// RecordModified forces the cell to value, replacing any Taken entry.
// value must be positive; non-positive mutations go through RecordTaken.
func (s *OverrideStore) RecordModified(c grid.CellID, value int64) {
	if value <= 0 {
		return
	}
	s.entries[c] = override{value: value}
}

// Clear reverts the cell to its intrinsic value.
func (s *OverrideStore) Clear(c grid.CellID) {
	delete(s.entries, c)
}

// ClearAll drops every override. Used by world reset and snapshot restore.
func (s *OverrideStore) ClearAll() {
	s.entries = map[grid.CellID]override{}
}

// Resolve returns the effective value of the cell: 0 for Taken, the explicit
// value for Modified, otherwise whatever intrinsic reports.
func (s *OverrideStore) Resolve(c grid.CellID, intrinsic func(grid.CellID) int64) int64 {
	if e, ok := s.entries[c]; ok {
		if e.taken {
			return 0
		}
		return e.value
	}
	return intrinsic(c)
}

func (s *OverrideStore) Len() int { return len(s.entries) }

// SnapshotEntries exports every override in deterministic order.
func (s *OverrideStore) SnapshotEntries() []snapshot.OverrideV1 {
	out := make([]snapshot.OverrideV1, 0, len(s.entries))
	for c, e := range s.entries {
		out = append(out, snapshot.OverrideV1{I: c.I, J: c.J, Taken: e.taken, Value: e.value})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].I != out[j].I {
			return out[i].I < out[j].I
		}
		return out[i].J < out[j].J
	})
	return out
}

// RestoreEntries replaces all current entries with the given list. Entries
// that are neither Taken nor positive-valued are dropped rather than applied.
func (s *OverrideStore) RestoreEntries(list []snapshot.OverrideV1) {
	s.ClearAll()
	for _, e := range list {
		c := grid.CellID{I: e.I, J: e.J}
		if e.Taken {
			s.RecordTaken(c)
			continue
		}
		s.RecordModified(c, e.Value)
	}
}
