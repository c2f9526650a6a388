package world

import (
	"math"

	persistlog "tokenfield/internal/persistence/log"
	"tokenfield/internal/protocol"
	"tokenfield/internal/sim/grid"
)

// MovementSource normalizes heterogeneous input into discrete grid steps.
// Implementations must be inert before Attach and after Detach: events routed
// to a detached source are dropped. Detach is idempotent.
type MovementSource interface {
	Attach(w *World)
	Detach()

	// HandleMove consumes one discrete directional event.
	HandleMove(di, dj int)
	// HandleReading consumes one raw continuous position reading.
	HandleReading(p grid.Position)
}

// StepSource reacts synchronously to discrete input: exactly one single-axis
// step per event. No state beyond the attachment itself.
type StepSource struct {
	w *World
}

func (s *StepSource) Attach(w *World) { s.w = w }
func (s *StepSource) Detach()         { s.w = nil }

func (s *StepSource) HandleMove(di, dj int) {
	if s.w == nil {
		return
	}
	if !validStep(di, dj) {
		return
	}
	s.w.moveBy(di, dj)
}

func (s *StepSource) HandleReading(grid.Position) {}

func validStep(di, dj int) bool {
	return (di == 0) != (dj == 0) && di >= -1 && di <= 1 && dj >= -1 && dj <= 1
}

// TrackSource follows a stream of continuous position readings. The first
// reading snaps the player straight to that cell; each later reading moves
// the player by the rounded cell delta from the last accepted reading.
// Readings that round to a zero step on both axes are absorbed without
// updating the reference, so sub-cell jitter cannot accumulate into drift.
type TrackSource struct {
	w    *World
	last *grid.Position
}

func (s *TrackSource) Attach(w *World) { s.w = w }

func (s *TrackSource) Detach() {
	s.w = nil
	s.last = nil
}

func (s *TrackSource) HandleMove(int, int) {}

func (s *TrackSource) HandleReading(p grid.Position) {
	if s.w == nil {
		return
	}
	if s.last == nil {
		s.w.placeAt(grid.ToCellID(p, s.w.cfg.CellSize))
		s.last = &grid.Position{Lat: p.Lat, Lng: p.Lng}
		return
	}
	size := s.w.cfg.CellSize
	di := int(math.Round((p.Lat - s.last.Lat) / size))
	dj := int(math.Round((p.Lng - s.last.Lng) / size))
	if di == 0 && dj == 0 {
		return
	}
	s.w.moveBy(di, dj)
	s.last = &grid.Position{Lat: p.Lat, Lng: p.Lng}
}

// SetMode switches the active movement source. Unknown modes and switches to
// the already-active mode are no-ops.
func (w *World) SetMode(mode string) {
	if !protocol.KnownMode(mode) || mode == w.mode {
		return
	}
	w.setModeInternal(mode, true)
	w.pushEvent(protocol.GameEvent{Kind: protocol.EvMode, Mode: mode})
	w.logGame(persistlog.GameEntry{Kind: protocol.EvMode, Mode: mode})
}

func (w *World) setModeInternal(mode string, persist bool) {
	if w.source != nil {
		w.source.Detach()
	}
	switch mode {
	case protocol.ModeTrack:
		w.source = &TrackSource{}
	default:
		mode = protocol.ModeStep
		w.source = &StepSource{}
	}
	w.mode = mode
	w.source.Attach(w)
	if persist {
		w.saveSnapshot()
	}
}

// HandleMove routes a discrete directional event to the active source.
func (w *World) HandleMove(di, dj int) {
	w.source.HandleMove(di, dj)
}

// HandleReading routes a raw continuous position reading to the active
// source. readingErr carries an error notification from the external source;
// those are logged and otherwise ignored so movement never stalls.
func (w *World) HandleReading(p grid.Position, readingErr string) {
	if readingErr != "" {
		w.log.Printf("position reading error: %s", readingErr)
		return
	}
	w.source.HandleReading(p)
}
