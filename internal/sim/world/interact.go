package world

import (
	persistlog "tokenfield/internal/persistence/log"
	"tokenfield/internal/protocol"
	"tokenfield/internal/sim/grid"
)

// Interact runs the pickup/place/merge state machine against cell c.
// Out-of-range requests and transitions that match nothing are deliberate
// no-ops, not errors. Transitions are evaluated in order, first match wins.
func (w *World) Interact(c grid.CellID) {
	if !w.IsNear(c) {
		return
	}

	holding := w.player.Holding
	cellValue := w.ValueAt(c)

	switch {
	case holding == 0 && cellValue > 0:
		// Pick up.
		w.player.Holding = cellValue
		w.SetValue(c, 0)
		w.pushEvent(protocol.GameEvent{Kind: protocol.EvPickup, Cell: [2]int{c.I, c.J}, Value: cellValue, Holding: cellValue})
		w.logGame(persistlog.GameEntry{Kind: protocol.EvPickup, CellI: c.I, CellJ: c.J, Value: cellValue, Holding: cellValue})
		w.checkWin(c, cellValue)
		w.saveSnapshot()

	case holding > 0 && cellValue == 0:
		// Place.
		w.SetValue(c, holding)
		w.player.Holding = 0
		w.pushEvent(protocol.GameEvent{Kind: protocol.EvPlace, Cell: [2]int{c.I, c.J}, Value: holding})
		w.logGame(persistlog.GameEntry{Kind: protocol.EvPlace, CellI: c.I, CellJ: c.J, Value: holding})
		w.saveSnapshot()

	case holding > 0 && cellValue == holding:
		// Merge.
		merged := holding * 2
		w.SetValue(c, merged)
		w.player.Holding = 0
		w.pushEvent(protocol.GameEvent{Kind: protocol.EvMerge, Cell: [2]int{c.I, c.J}, Value: merged})
		w.logGame(persistlog.GameEntry{Kind: protocol.EvMerge, CellI: c.I, CellJ: c.J, Value: merged})
		w.checkWin(c, merged)
		w.saveSnapshot()

	default:
		// Holding a value that neither matches nor finds an empty cell.
	}
}

// checkWin raises the win notification when a pickup or merge produces a
// value at or above the threshold. Informational only; play continues.
func (w *World) checkWin(c grid.CellID, value int64) {
	if value < w.cfg.WinThreshold {
		return
	}
	w.pushEvent(protocol.GameEvent{Kind: protocol.EvWin, Cell: [2]int{c.I, c.J}, Value: value})
	w.logGame(persistlog.GameEntry{Kind: protocol.EvWin, CellI: c.I, CellJ: c.J, Value: value})
}
