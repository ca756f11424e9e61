package agent

import (
	"sort"

	"github.com/insitro-labs/cellsim/platedesign"
	"github.com/insitro-labs/cellsim/types"
)

// CollapseDesign groups a plate design's wells into distinct (cell_line,
// compound, dose, timepoint) cells, counting replicate wells per cell.
// Sentinel wells (vehicle/negative controls) are excluded from the biology
// candidate menu -- they feed calibration, not dose-response discrimination.
func CollapseDesign(d *platedesign.Design) DesignCells {
	type key struct {
		cellLine string
		compound string
		dose     float64
		timepoint float64
	}
	counts := make(map[key]int)
	order := make([]key, 0)
	for _, w := range d.Wells {
		if w.IsSentinel {
			continue
		}
		k := key{w.CellLine, w.Compound, w.DoseUM, w.TimepointH}
		if counts[k] == 0 {
			order = append(order, k)
		}
		counts[k]++
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.cellLine != b.cellLine {
			return a.cellLine < b.cellLine
		}
		if a.compound != b.compound {
			return a.compound < b.compound
		}
		return a.dose < b.dose
	})
	cells := make(DesignCells, 0, len(order))
	for _, k := range order {
		cells = append(cells, DesignCell{
			CellLine:       types.CellLineID(k.cellLine),
			Compound:       types.CompoundID(k.compound),
			DoseUM:         k.dose,
			TimepointH:     k.timepoint,
			ReplicateWells: counts[k],
		})
	}
	return cells
}

// SentinelCount returns how many sentinel wells the design declares, used
// to size calibration replicate groups against the design's own controls
// rather than a number pulled from nowhere.
func SentinelCount(d *platedesign.Design) int {
	n := 0
	for _, w := range d.Wells {
		if w.IsSentinel {
			n++
		}
	}
	return n
}
