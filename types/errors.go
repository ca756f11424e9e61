package types

import "fmt"

// ConservationEpsilon is the tolerance epsilon used by every invariant check
// in the engine (spec.md I1-I5).
const ConservationEpsilon = 1e-9

// ConservationViolationError is raised when the death-ledger conservation
// invariant (I1/I5) is broken. It is never recovered from: the caller is
// expected to abort the process. It carries the full diagnostic receipt
// spec.md 4.1 requires, never a bare message.
type ConservationViolationError struct {
	VesselID  VesselID
	VBefore   float64
	VAfter    float64
	Lambda    float64
	DeltaH    float64
	Hazards   map[string]float64
	Ledger    DeathLedger
}

func (e *ConservationViolationError) Error() string {
	return fmt.Sprintf(
		"conservation violation on vessel %s: v_before=%.9f v_after=%.9f lambda=%.9f delta_h=%.4f credited_sum=%.9f allowed=%.9f ledger=%+v hazards=%v",
		e.VesselID, e.VBefore, e.VAfter, e.Lambda, e.DeltaH, e.Ledger.CreditedSum(), (1-e.VAfter)+ConservationEpsilon, e.Ledger, e.Hazards,
	)
}

// MissingParameterError is raised when a Parameter Store lookup misses. The
// core never substitutes a default in its place (spec.md 7).
type MissingParameterError struct {
	Kind string // "cell_line", "compound", "compound_ic50", "vessel_type", "seeding_density"
	Key  string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing parameter: no %s entry for key %q", e.Kind, e.Key)
}

// UnknownVesselError is raised when an operation references a vessel_id the
// engine has never seeded.
type UnknownVesselError struct {
	VesselID VesselID
}

func (e *UnknownVesselError) Error() string {
	return fmt.Sprintf("unknown vessel: %q", e.VesselID)
}

// HarvestedVesselError is raised when a physics operation targets a vessel
// that has already been harvested.
type HarvestedVesselError struct {
	VesselID VesselID
}

func (e *HarvestedVesselError) Error() string {
	return fmt.Sprintf("vessel %q already harvested", e.VesselID)
}

// IntegrityError is raised when an append-only log is asked to accept a
// non-monotonic cycle number, or a reader finds one already written.
type IntegrityError struct {
	Log        string
	Cycle      int
	PrevCycle  int
	Reason     string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity error in %s: cycle %d after %d: %s", e.Log, e.Cycle, e.PrevCycle, e.Reason)
}

// RefusalEvent is not an error: it is a typed record returned to the caller
// when the epistemic controller declines to run a proposed action. The agent
// cycle continues after a refusal (spec.md 7).
type RefusalEvent struct {
	Reason          RefusalReason `json:"reason"`
	ActionLabel     string        `json:"action_label"`
	EffectiveCost   float64       `json:"effective_cost"`
	BudgetRemaining float64       `json:"budget_remaining"`
	DebtBits        float64       `json:"debt_bits"`
}
