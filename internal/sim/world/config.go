package world

import "tokenfield/internal/sim/tuning"

type WorldConfig struct {
	Seed              int64
	CellSize          float64
	GridI             int
	GridJ             int
	InteractionRadius int
	WinThreshold      int64
	ViewRadius        int

	Distribution []tuning.Band
}

func ConfigFromTuning(t tuning.Tuning) WorldConfig {
	return WorldConfig{
		Seed:              t.Seed,
		CellSize:          t.CellSize,
		GridI:             t.GridI,
		GridJ:             t.GridJ,
		InteractionRadius: t.InteractionRadius,
		WinThreshold:      t.WinThreshold,
		ViewRadius:        t.ViewRadius,
		Distribution:      t.Distribution,
	}
}

func (c WorldConfig) tuningForField() tuning.Tuning {
	return tuning.Tuning{
		Seed:              c.Seed,
		CellSize:          c.CellSize,
		GridI:             c.GridI,
		GridJ:             c.GridJ,
		InteractionRadius: c.InteractionRadius,
		WinThreshold:      c.WinThreshold,
		ViewRadius:        c.ViewRadius,
		Distribution:      c.Distribution,
	}
}
