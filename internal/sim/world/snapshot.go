package world

import (
	"errors"

	"tokenfield/internal/persistence/snapshot"
	"tokenfield/internal/sim/grid"
)

// ExportSnapshot gathers the full durable state: overrides, player, mode.
// Must be called from the world loop goroutine.
func (w *World) ExportSnapshot() snapshot.SnapshotV1 {
	return snapshot.SnapshotV1{
		Overrides: w.overrides.SnapshotEntries(),
		Player: snapshot.PlayerV1{
			Lat:     w.player.Pos.Lat,
			Lng:     w.player.Pos.Lng,
			Holding: w.player.Holding,
		},
		Mode: w.mode,
	}
}

// ImportSnapshot replaces all mutable state with the snapshot's contents.
// The player position is re-snapped to its cell center in case the stored
// position predates a cell-size change.
func (w *World) ImportSnapshot(snap snapshot.SnapshotV1) {
	w.overrides.RestoreEntries(snap.Overrides)
	pos := grid.Position{Lat: snap.Player.Lat, Lng: snap.Player.Lng}
	w.player = Player{
		Pos:     grid.CellCenter(grid.ToCellID(pos, w.cfg.CellSize), w.cfg.CellSize),
		Holding: snap.Player.Holding,
	}
	w.setModeInternal(snap.Mode, false)
}

// Resume loads the latest snapshot, if any. Missing or malformed snapshots
// leave the world at its default initial state.
func (w *World) Resume() bool {
	if w.snaps == nil {
		return false
	}
	snap, err := w.snaps.Load()
	if err != nil {
		if !errors.Is(err, snapshot.ErrNoSnapshot) {
			w.log.Printf("load snapshot: %v", err)
		}
		return false
	}
	w.ImportSnapshot(snap)
	return true
}
