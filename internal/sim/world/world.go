// Package world owns all mutable game state: the override ledger, the player,
// and the active movement source. Everything is mutated from a single loop
// goroutine (see Run); transport goroutines only pass envelopes in and frames
// out, so no locking is needed around state.
package world

import (
	"fmt"
	"log"
	"time"

	persistlog "tokenfield/internal/persistence/log"
	"tokenfield/internal/persistence/snapshot"
	"tokenfield/internal/protocol"
	"tokenfield/internal/sim/field"
	"tokenfield/internal/sim/grid"
)

// Player is the single-slot inventory holder. Pos is always a cell center.
type Player struct {
	Pos     grid.Position
	Holding int64 // 0 = empty-handed
}

type World struct {
	cfg WorldConfig
	log *log.Logger

	field     *field.Field
	overrides *OverrideStore
	player    Player
	mode      string
	source    MovementSource

	snaps   *snapshot.Store
	gameLog *persistlog.GameLogger

	seq    uint64
	events []protocol.GameEvent

	inbox chan ActionEnvelope
	join  chan JoinRequest
	leave chan string
	stop  chan struct{}

	sessions    map[string]chan []byte
	nextSession uint64
}

// New builds a fresh world at the default initial state. snaps and gameLog
// may be nil; persistence then degrades to in-memory play (spec'd best-effort
// behavior, also what the tests rely on).
func New(cfg WorldConfig, snaps *snapshot.Store, gameLog *persistlog.GameLogger, logger *log.Logger) (*World, error) {
	if err := cfg.tuningForField().Validate(); err != nil {
		return nil, fmt.Errorf("world config: %w", err)
	}
	w := &World{
		cfg:       cfg,
		log:       logger,
		field:     field.New(cfg.tuningForField()),
		overrides: NewOverrideStore(),
		snaps:     snaps,
		gameLog:   gameLog,
		inbox:     make(chan ActionEnvelope, 64),
		join:      make(chan JoinRequest, 4),
		leave:     make(chan string, 4),
		stop:      make(chan struct{}),
		sessions:  map[string]chan []byte{},
	}
	w.player = w.defaultPlayer()
	w.setModeInternal(protocol.ModeStep, false)
	return w, nil
}

func (w *World) defaultPlayer() Player {
	return Player{Pos: grid.CellCenter(grid.CellID{}, w.cfg.CellSize)}
}

func (w *World) Inbox() chan<- ActionEnvelope { return w.inbox }
func (w *World) Join() chan<- JoinRequest     { return w.join }
func (w *World) Leave() chan<- string         { return w.leave }

func (w *World) Stop() { close(w.stop) }

func (w *World) Params() protocol.WorldParams {
	return protocol.WorldParams{
		Seed:              w.cfg.Seed,
		CellSize:          w.cfg.CellSize,
		GridI:             w.cfg.GridI,
		GridJ:             w.cfg.GridJ,
		InteractionRadius: w.cfg.InteractionRadius,
		WinThreshold:      w.cfg.WinThreshold,
		ViewRadius:        w.cfg.ViewRadius,
	}
}

// ValueAt is the read side of the world accessor: override first, intrinsic
// otherwise.
func (w *World) ValueAt(c grid.CellID) int64 {
	return w.overrides.Resolve(c, w.field.Intrinsic)
}

// SetValue is the only mutation entry point gameplay logic uses. It upholds
// the Taken/Modified mutual exclusion: non-positive writes become Taken.
func (w *World) SetValue(c grid.CellID, value int64) {
	if value <= 0 {
		w.overrides.RecordTaken(c)
		return
	}
	w.overrides.RecordModified(c, value)
}

func (w *World) PlayerCell() grid.CellID {
	return grid.ToCellID(w.player.Pos, w.cfg.CellSize)
}

// IsNear gates interactions: Chebyshev distance from the player's cell within
// the configured radius.
func (w *World) IsNear(c grid.CellID) bool {
	return grid.Chebyshev(w.PlayerCell(), c) <= w.cfg.InteractionRadius
}

func (w *World) Mode() string { return w.mode }

// moveBy applies a discrete step to the player's cell and re-snaps to the
// new cell's center. Continuous positions are never retained across a move.
func (w *World) moveBy(di, dj int) {
	w.placeAt(w.PlayerCell().Step(di, dj))
}

// placeAt snaps the player to the center of the given cell.
func (w *World) placeAt(c grid.CellID) {
	w.player.Pos = grid.CellCenter(c, w.cfg.CellSize)
	w.saveSnapshot()
}

// Reset clears every override, restores the default player and movement
// mode, and deletes durable state.
func (w *World) Reset() {
	w.overrides.ClearAll()
	w.player = w.defaultPlayer()
	w.setModeInternal(protocol.ModeStep, false)
	if w.snaps != nil {
		if err := w.snaps.Reset(); err != nil {
			w.log.Printf("reset snapshot: %v", err)
		}
	}
	w.pushEvent(protocol.GameEvent{Kind: protocol.EvReset})
	w.logGame(persistlog.GameEntry{Kind: protocol.EvReset})
}

// saveSnapshot persists the full mutable state. Failures are logged and
// otherwise ignored; gameplay never stalls on the durable layer.
func (w *World) saveSnapshot() {
	if w.snaps == nil {
		return
	}
	if err := w.snaps.Save(w.ExportSnapshot()); err != nil {
		w.log.Printf("save snapshot: %v", err)
	}
}

func (w *World) pushEvent(ev protocol.GameEvent) {
	w.events = append(w.events, ev)
}

func (w *World) logGame(e persistlog.GameEntry) {
	if w.gameLog == nil {
		return
	}
	e.At = time.Now().UTC().Format(time.RFC3339Nano)
	if err := w.gameLog.WriteGame(e); err != nil {
		w.log.Printf("game log: %v", err)
	}
}
