// Package field supplies the deterministic intrinsic value of every cell.
// Values are derived on first access from a seeded hash of the cell id and
// memoized in a flat backing array; nothing here is ever persisted. The array
// can be thrown away and rebuilt with no behavioral change, which is exactly
// why player mutations live in the override layer instead.
package field

import (
	"tokenfield/internal/sim/grid"
	"tokenfield/internal/sim/tuning"
)

const valueUnset = int64(-1)

type Field struct {
	seed  int64
	gridI int
	gridJ int
	bands []tuning.Band

	// One slot per wrapped storage index, valueUnset until first access.
	// Token values are non-negative so the sentinel cannot collide.
	values []int64
}

func New(t tuning.Tuning) *Field {
	f := &Field{
		seed:   t.Seed,
		gridI:  t.GridI,
		gridJ:  t.GridJ,
		bands:  t.Distribution,
		values: make([]int64, t.GridI*t.GridJ),
	}
	for i := range f.values {
		f.values[i] = valueUnset
	}
	return f
}

// Intrinsic returns the cell's unmodified token value. Total over all integer
// cell ids; cells past the grid extent alias into the wrapped storage slot.
// The hash is keyed by the wrapped coordinates so aliased cells agree on their
// value no matter which of them is materialized first.
func (f *Field) Intrinsic(c grid.CellID) int64 {
	wi := grid.WrapIndex(c.I, f.gridI)
	wj := grid.WrapIndex(c.J, f.gridJ)
	idx := wi*f.gridJ + wj
	if v := f.values[idx]; v != valueUnset {
		return v
	}
	v := f.classify(grid.Unit(grid.Hash2(f.seed, wi, wj)))
	f.values[idx] = v
	return v
}

func (f *Field) classify(roll float64) int64 {
	for _, b := range f.bands {
		if roll < b.UpTo {
			return b.Value
		}
	}
	// Validate() guarantees the bands cover [0,1); unreachable for valid tuning.
	return f.bands[len(f.bands)-1].Value
}
