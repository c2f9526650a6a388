package world

import (
	"io"
	"log"
	"testing"

	"tokenfield/internal/persistence/snapshot"
	"tokenfield/internal/sim/encoding"
	"tokenfield/internal/sim/grid"
	"tokenfield/internal/sim/tuning"
)

// emptyFieldConfig makes every intrinsic value 0, so tests control the board
// entirely through overrides.
func emptyFieldConfig() WorldConfig {
	return WorldConfig{
		Seed:              7,
		CellSize:          1.0,
		GridI:             64,
		GridJ:             64,
		InteractionRadius: 1,
		WinThreshold:      16,
		ViewRadius:        2,
		Distribution:      []tuning.Band{{UpTo: 1.0, Value: 0}},
	}
}

func newTestWorld(t *testing.T, cfg WorldConfig, snaps *snapshot.Store) *World {
	t.Helper()
	w, err := New(cfg, snaps, nil, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("new world: %v", err)
	}
	return w
}

func TestOverridePrecedence(t *testing.T) {
	w := newTestWorld(t, emptyFieldConfig(), nil)
	c := grid.CellID{I: 3, J: 4}

	w.overrides.RecordModified(c, 8)
	if got := w.ValueAt(c); got != 8 {
		t.Fatalf("modified cell = %d, want 8", got)
	}
	w.overrides.RecordTaken(c)
	if got := w.ValueAt(c); got != 0 {
		t.Fatalf("taken cell = %d, want 0", got)
	}
	w.overrides.Clear(c)
	if got := w.ValueAt(c); got != 0 {
		t.Fatalf("cleared cell = %d, want intrinsic 0", got)
	}
}

func TestOverrideMutualExclusion(t *testing.T) {
	s := NewOverrideStore()
	c := grid.CellID{I: 1, J: 1}

	s.RecordTaken(c)
	s.RecordModified(c, 4)
	if s.Len() != 1 {
		t.Fatalf("cell has %d entries, want 1", s.Len())
	}
	entries := s.SnapshotEntries()
	if entries[0].Taken || entries[0].Value != 4 {
		t.Fatalf("modified must replace taken: %+v", entries[0])
	}

	s.RecordTaken(c)
	entries = s.SnapshotEntries()
	if s.Len() != 1 || !entries[0].Taken {
		t.Fatalf("taken must replace modified: %+v", entries)
	}
}

func TestOverrideRestore_RoundTrip(t *testing.T) {
	w := newTestWorld(t, emptyFieldConfig(), nil)
	cells := []grid.CellID{{I: 1, J: 0}, {I: 2, J: 0}, {I: -5, J: 9}}
	w.overrides.RecordTaken(cells[0])
	w.overrides.RecordModified(cells[1], 4)
	w.overrides.RecordModified(cells[2], 16)

	want := map[grid.CellID]int64{}
	for _, c := range cells {
		want[c] = w.ValueAt(c)
	}

	exported := w.overrides.SnapshotEntries()

	// Dirty the store, then restore. Restore must not merge.
	w.overrides.RecordModified(grid.CellID{I: 9, J: 9}, 2)
	w.overrides.RestoreEntries(exported)

	if w.overrides.Len() != len(cells) {
		t.Fatalf("restore merged prior state: %d entries", w.overrides.Len())
	}
	for _, c := range cells {
		if got := w.ValueAt(c); got != want[c] {
			t.Fatalf("resolve(%v) = %d after restore, want %d", c, got, want[c])
		}
	}
}

func TestInteract_PickupThenMerge(t *testing.T) {
	w := newTestWorld(t, emptyFieldConfig(), nil)

	// Player at (0,0); (1,0) holds a 2 within radius.
	w.SetValue(grid.CellID{I: 1, J: 0}, 2)
	w.Interact(grid.CellID{I: 1, J: 0})
	if w.player.Holding != 2 {
		t.Fatalf("holding = %d after pickup, want 2", w.player.Holding)
	}
	if got := w.ValueAt(grid.CellID{I: 1, J: 0}); got != 0 {
		t.Fatalf("picked cell = %d, want 0", got)
	}

	// Walk next to (2,0), which also holds a 2, and merge.
	w.SetValue(grid.CellID{I: 2, J: 0}, 2)
	w.moveBy(1, 0)
	w.Interact(grid.CellID{I: 2, J: 0})
	if got := w.ValueAt(grid.CellID{I: 2, J: 0}); got != 4 {
		t.Fatalf("merged cell = %d, want 4", got)
	}
	if w.player.Holding != 0 {
		t.Fatalf("holding = %d after merge, want 0", w.player.Holding)
	}
}

func TestInteract_PlaceIntoEmpty(t *testing.T) {
	w := newTestWorld(t, emptyFieldConfig(), nil)
	w.SetValue(grid.CellID{I: 1, J: 0}, 4)
	w.Interact(grid.CellID{I: 1, J: 0}) // pick up 4
	w.Interact(grid.CellID{I: 0, J: 1}) // place into empty
	if got := w.ValueAt(grid.CellID{I: 0, J: 1}); got != 4 {
		t.Fatalf("placed cell = %d, want 4", got)
	}
	if w.player.Holding != 0 {
		t.Fatalf("holding = %d after place, want 0", w.player.Holding)
	}
}

func TestInteract_MismatchIsNoOp(t *testing.T) {
	w := newTestWorld(t, emptyFieldConfig(), nil)
	w.SetValue(grid.CellID{I: 1, J: 0}, 2)
	w.SetValue(grid.CellID{I: 0, J: 1}, 4)
	w.Interact(grid.CellID{I: 1, J: 0}) // holding 2

	w.Interact(grid.CellID{I: 0, J: 1}) // 2 vs 4: nothing happens
	if w.player.Holding != 2 {
		t.Fatalf("holding = %d, want 2", w.player.Holding)
	}
	if got := w.ValueAt(grid.CellID{I: 0, J: 1}); got != 4 {
		t.Fatalf("cell = %d, want 4", got)
	}
}

func TestInteract_OutOfRangeIgnored(t *testing.T) {
	w := newTestWorld(t, emptyFieldConfig(), nil)
	far := grid.CellID{I: 5, J: 0}
	w.SetValue(far, 2)
	w.Interact(far)
	if w.player.Holding != 0 {
		t.Fatalf("out-of-range interact changed holding to %d", w.player.Holding)
	}
	if got := w.ValueAt(far); got != 2 {
		t.Fatalf("out-of-range interact changed cell to %d", got)
	}
	if len(w.events) != 0 {
		t.Fatalf("out-of-range interact emitted events: %+v", w.events)
	}
}

func hasEvent(w *World, kind string) bool {
	for _, ev := range w.events {
		if ev.Kind == kind {
			return true
		}
	}
	return false
}

func TestWin_OnPickupAtThreshold(t *testing.T) {
	w := newTestWorld(t, emptyFieldConfig(), nil)
	w.SetValue(grid.CellID{I: 1, J: 0}, 16)
	w.Interact(grid.CellID{I: 1, J: 0})
	if !hasEvent(w, "WIN") {
		t.Fatalf("pickup of 16 must raise a win, events: %+v", w.events)
	}
}

func TestWin_OnMergeReachingThreshold(t *testing.T) {
	w := newTestWorld(t, emptyFieldConfig(), nil)
	w.SetValue(grid.CellID{I: 1, J: 0}, 8)
	w.SetValue(grid.CellID{I: 0, J: 1}, 8)
	w.Interact(grid.CellID{I: 1, J: 0})
	if hasEvent(w, "WIN") {
		t.Fatalf("picking up an 8 must not win")
	}
	w.Interact(grid.CellID{I: 0, J: 1}) // merge to 16
	if !hasEvent(w, "WIN") {
		t.Fatalf("merge producing 16 must raise a win, events: %+v", w.events)
	}
}

func TestWin_NeverFromMovement(t *testing.T) {
	w := newTestWorld(t, emptyFieldConfig(), nil)
	w.SetValue(grid.CellID{I: 1, J: 0}, 16)
	for i := 0; i < 10; i++ {
		w.moveBy(0, 1)
	}
	if hasEvent(w, "WIN") {
		t.Fatalf("movement alone raised a win")
	}
}

func TestSnapshot_ExportImport(t *testing.T) {
	cfg := emptyFieldConfig()
	w := newTestWorld(t, cfg, nil)
	w.SetValue(grid.CellID{I: 1, J: 0}, 2)
	w.Interact(grid.CellID{I: 1, J: 0})
	w.moveBy(1, 0)
	w.SetMode("TRACK")

	snap := w.ExportSnapshot()

	w2 := newTestWorld(t, cfg, nil)
	w2.ImportSnapshot(snap)

	if w2.player.Holding != 2 {
		t.Fatalf("holding = %d, want 2", w2.player.Holding)
	}
	if w2.PlayerCell() != (grid.CellID{I: 1, J: 0}) {
		t.Fatalf("player cell = %v", w2.PlayerCell())
	}
	if w2.Mode() != "TRACK" {
		t.Fatalf("mode = %s", w2.Mode())
	}
	if got := w2.ValueAt(grid.CellID{I: 1, J: 0}); got != 0 {
		t.Fatalf("taken cell = %d after import, want 0", got)
	}
}

type memKV struct{ m map[string][]byte }

func newMemKV() *memKV { return &memKV{m: map[string][]byte{}} }

func (k *memKV) Get(key string) ([]byte, bool, error) { v, ok := k.m[key]; return v, ok, nil }
func (k *memKV) Set(key string, value []byte) error   { k.m[key] = value; return nil }
func (k *memKV) Remove(key string) error              { delete(k.m, key); return nil }

func TestResume_FromDurableStore(t *testing.T) {
	cfg := emptyFieldConfig()
	kv := newMemKV()
	st := snapshot.NewStore(kv)

	w := newTestWorld(t, cfg, st)
	w.SetValue(grid.CellID{I: 1, J: 0}, 4)
	w.Interact(grid.CellID{I: 1, J: 0}) // pickup persists a snapshot

	w2 := newTestWorld(t, cfg, st)
	if !w2.Resume() {
		t.Fatalf("resume must find the saved snapshot")
	}
	if w2.player.Holding != 4 {
		t.Fatalf("holding = %d after resume, want 4", w2.player.Holding)
	}

	// A fresh store has nothing to resume.
	w3 := newTestWorld(t, cfg, snapshot.NewStore(newMemKV()))
	if w3.Resume() {
		t.Fatalf("resume on empty store must report no snapshot")
	}
}

func TestReset_ClearsEverything(t *testing.T) {
	cfg := emptyFieldConfig()
	kv := newMemKV()
	w := newTestWorld(t, cfg, snapshot.NewStore(kv))

	w.SetValue(grid.CellID{I: 1, J: 0}, 2)
	w.Interact(grid.CellID{I: 1, J: 0})
	w.moveBy(1, 0)
	w.SetMode("TRACK")

	w.Reset()

	if w.overrides.Len() != 0 {
		t.Fatalf("reset left %d overrides", w.overrides.Len())
	}
	if w.player.Holding != 0 || w.PlayerCell() != (grid.CellID{}) {
		t.Fatalf("reset left player %+v", w.player)
	}
	if w.Mode() != "STEP" {
		t.Fatalf("reset left mode %s", w.Mode())
	}
	if len(kv.m) != 0 {
		t.Fatalf("reset left durable state: %v", kv.m)
	}
}

func TestView_Window(t *testing.T) {
	w := newTestWorld(t, emptyFieldConfig(), nil)
	w.SetValue(grid.CellID{I: 0, J: 1}, 8)
	win := w.View(grid.CellID{}, 1)
	if win.W != 3 || win.H != 3 || win.Encoding != "RLE" {
		t.Fatalf("window shape: %+v", win)
	}
	if win.Origin != [2]int{-1, -1} {
		t.Fatalf("origin = %v", win.Origin)
	}
	values, err := encoding.DecodeRLE(win.Data)
	if err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if len(values) != 9 {
		t.Fatalf("window has %d values, want 9", len(values))
	}
	// Row-major, J fastest: (0,1) sits at row i=0 (index 1), column j=1 (index 2).
	if got := values[1*3+2]; got != 8 {
		t.Fatalf("window value = %d, want 8 (values %v)", got, values)
	}
}
