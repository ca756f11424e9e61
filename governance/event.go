package governance

import "github.com/insitro-labs/cellsim/types"

// CalibrationPlan describes a proposed calibration batch, present on a
// DecisionEvent only when SelectedCandidate names a calibration action.
type CalibrationPlan struct {
	Wells          int     `json:"wells"`
	DFGainExpected float64 `json:"df_gain_expected"`
}

// SelectedCandidate is the chosen next action plus why it was chosen
// (spec.md 4.6, "Decision provenance").
type SelectedCandidate struct {
	ActionLabel      string            `json:"action_label"`
	Forced           bool              `json:"forced"`
	Trigger          types.Trigger     `json:"trigger"`
	Regime           types.Regime      `json:"regime"`
	GateState        types.GateState   `json:"gate_state"`
	CalibrationPlan  *CalibrationPlan  `json:"calibration_plan,omitempty"`
}

// DecisionEvent is one append-only record in the decisions log (spec.md 6,
// "<run>_decisions.jsonl"). Cycle is strictly monotonic within a run
// (spec.md 5).
type DecisionEvent struct {
	Cycle             int               `json:"cycle"`
	SelectedTemplate  string            `json:"selected_template"`
	SelectedCandidate SelectedCandidate `json:"selected_candidate"`
	Reason            string            `json:"reason"`
}
