package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	Seed              int64   `yaml:"seed"`
	CellSize          float64 `yaml:"cell_size"`
	GridI             int     `yaml:"grid_i"`
	GridJ             int     `yaml:"grid_j"`
	InteractionRadius int     `yaml:"interaction_radius"`
	WinThreshold      int64   `yaml:"win_threshold"`
	ViewRadius        int     `yaml:"view_radius"`

	// Cumulative thresholds over [0,1) mapping a unit roll to a token value.
	// Must be disjoint, exhaustive and assigned to strictly increasing values.
	Distribution []Band `yaml:"distribution"`
}

// Band is one interval of the intrinsic value distribution: rolls at or above
// the previous band's UpTo and below this band's UpTo yield Value.
type Band struct {
	UpTo  float64 `yaml:"up_to"`
	Value int64   `yaml:"value"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion:   "1.0",
		Seed:              1337,
		CellSize:          0.0001,
		GridI:             1000,
		GridJ:             1000,
		InteractionRadius: 1,
		WinThreshold:      16,
		ViewRadius:        7,
		Distribution: []Band{
			{UpTo: 0.55, Value: 0},
			{UpTo: 0.80, Value: 2},
			{UpTo: 0.93, Value: 4},
			{UpTo: 0.985, Value: 8},
			{UpTo: 1.0, Value: 16},
		},
	}
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.CellSize <= 0 {
		return fmt.Errorf("cell_size must be positive")
	}
	if t.GridI <= 0 || t.GridJ <= 0 {
		return fmt.Errorf("grid extent must be positive")
	}
	if t.InteractionRadius < 0 {
		return fmt.Errorf("interaction_radius must be non-negative")
	}
	if t.WinThreshold <= 0 {
		return fmt.Errorf("win_threshold must be positive")
	}
	if t.ViewRadius < 0 {
		return fmt.Errorf("view_radius must be non-negative")
	}
	if len(t.Distribution) == 0 {
		return fmt.Errorf("distribution must not be empty")
	}
	prev := 0.0
	prevVal := int64(-1)
	for i, b := range t.Distribution {
		if b.UpTo <= prev {
			return fmt.Errorf("distribution band %d: up_to %v not above %v", i, b.UpTo, prev)
		}
		if b.Value <= prevVal {
			return fmt.Errorf("distribution band %d: value %d not above %d", i, b.Value, prevVal)
		}
		prev = b.UpTo
		prevVal = b.Value
	}
	if prev != 1.0 {
		return fmt.Errorf("distribution must cover [0,1), last up_to = %v", prev)
	}
	return nil
}
