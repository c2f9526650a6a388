// Package grid is the coordinate model: it bridges continuous positions to
// discrete wrapped grid cells. Everything here is pure integer/float math with
// no dependencies on the rest of the sim.
package grid

import "math"

// CellID addresses one cell of the world. Mathematically unbounded; the
// procedural field wraps it into a fixed extent via StorageIndex.
type CellID struct {
	I int
	J int
}

// Position is a continuous world coordinate.
type Position struct {
	Lat float64
	Lng float64
}

// ToCellID maps a continuous position to the cell containing it
// (floor division per axis).
func ToCellID(p Position, cellSize float64) CellID {
	return CellID{
		I: int(math.Floor(p.Lat / cellSize)),
		J: int(math.Floor(p.Lng / cellSize)),
	}
}

// CellCenter returns the canonical centroid position of a cell. Player
// positions are always cell centers; movement re-snaps after every step.
func CellCenter(c CellID, cellSize float64) Position {
	return Position{
		Lat: (float64(c.I) + 0.5) * cellSize,
		Lng: (float64(c.J) + 0.5) * cellSize,
	}
}

// WrapIndex maps k into [0,size). Plain % is negative for negative k, so the
// usual ((k%size)+size)%size dance is required.
func WrapIndex(k, size int) int {
	return ((k % size) + size) % size
}

// StorageIndex flattens a CellID into the field's backing array. Cells whose
// wrapped coordinates coincide alias to the same slot: StorageIndex(i+gridI, j)
// equals StorageIndex(i, j). That is an accepted bound on the practical play
// area, not a bug; overrides are keyed by true CellID and never alias.
func StorageIndex(c CellID, gridI, gridJ int) int {
	return WrapIndex(c.I, gridI)*gridJ + WrapIndex(c.J, gridJ)
}

// Chebyshev is the max of the per-axis absolute differences. Proximity
// checks use it so the interaction range is a square, diagonals included.
func Chebyshev(a, b CellID) int {
	di := absInt(a.I - b.I)
	dj := absInt(a.J - b.J)
	if di > dj {
		return di
	}
	return dj
}

// Step returns c offset by (di,dj).
func (c CellID) Step(di, dj int) CellID {
	return CellID{I: c.I + di, J: c.J + dj}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// FloorDiv divides rounding toward negative infinity. b > 0.
func FloorDiv(a, b int) int {
	q := a / b
	r := a % b
	if r < 0 {
		q--
	}
	return q
}

// Mod is the non-negative remainder. b > 0.
func Mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Hash2 derives a stable 64-bit value from a seed and a cell coordinate.
// Keyed only by (seed, i, j), never by call order.
func Hash2(seed int64, i, j int) uint64 {
	ui := uint64(uint32(int32(i)))
	uj := uint64(uint32(int32(j)))
	v := uint64(seed) ^ (ui * 0x9e3779b97f4a7c15) ^ (uj * 0xbf58476d1ce4e5b9)
	return mix64(v)
}

// Unit maps a hash to [0,1).
func Unit(h uint64) float64 {
	return float64(h>>11) / float64(1<<53)
}
