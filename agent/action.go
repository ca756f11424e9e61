// Package agent implements the outer epistemic agent loop SPEC_FULL.md
// supplements spec.md with (spec.md 4.6, 9): a flat state machine that
// alternates physics, observation, belief update, governance decision, and
// action selection, bounded by max_cycles (spec.md 5) and gated by the
// epistemic controller's refusal contract (spec.md 4.5).
package agent

import "github.com/insitro-labs/cellsim/types"

// Action is one candidate next step the loop can take. Calibration actions
// are exempt from two of the epistemic controller's three refusal rules
// (spec.md 4.5); biology actions drive vessels through compound exposure
// and advance simulated time.
type Action struct {
	Label         string
	Intent        types.ActionIntent
	IsCalibration bool
	CostWells     float64

	// Biology fields, used only when !IsCalibration.
	CellLine   types.CellLineID
	Compound   types.CompoundID
	DoseUM     float64
	TimepointH float64

	// Calibration fields, used only when IsCalibration.
	ReplicateWells int
}

// Candidates returns the fixed menu of next actions the loop scores and
// chooses from each cycle: one calibration action sized to close the
// gate's current df gap (or a single replicate group once the gate is
// earned, so debt repayment always has a legal route -- spec.md 4.5's
// refusal contract assumes a baseline-replicates proposal is always
// proposable), and one biology action per distinct (cell_line, compound,
// dose) cell in the plate design not yet explored this run.
func Candidates(design DesignCells, dfNeeded int, replicatesPerGroup int, wellsNeededFn func(dfGain, perGroup int) int) []Action {
	actions := make([]Action, 0, len(design)+1)
	wells := replicatesPerGroup
	if dfNeeded > 0 {
		wells = wellsNeededFn(dfNeeded, replicatesPerGroup)
	}
	actions = append(actions, Action{
		Label:          "calibrate_replicates",
		Intent:         types.IntentReduceNuisance,
		IsCalibration:  true,
		CostWells:      float64(wells),
		ReplicateWells: wells,
	})
	for _, cell := range design {
		actions = append(actions, Action{
			Label:      "dose_response_" + string(cell.CellLine) + "_" + string(cell.Compound),
			Intent:     types.IntentDiscriminate,
			CostWells:  float64(cell.ReplicateWells),
			CellLine:   cell.CellLine,
			Compound:   cell.Compound,
			DoseUM:     cell.DoseUM,
			TimepointH: cell.TimepointH,
		})
	}
	return actions
}

// DesignCell is one distinct (cell_line, compound, dose) combination drawn
// from a plate design, collapsed across its replicate wells.
type DesignCell struct {
	CellLine       types.CellLineID
	Compound       types.CompoundID
	DoseUM         float64
	TimepointH     float64
	ReplicateWells int
}

// DesignCells is the deduplicated set of cells a plate design contains.
type DesignCells []DesignCell
