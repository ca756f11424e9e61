// Package types holds the identifiers, enumerations, and error records shared
// across every package in the vessel simulator. Nothing here depends on any
// other internal package, so it is always safe to import.
package types

// VesselID identifies a single logical well or flask.
type VesselID string

// CellLineID identifies a cultured cell-line parameter set in the Parameter Store.
type CellLineID string

// CompoundID identifies a compound parameter set in the Parameter Store.
type CompoundID string

// PlateID identifies a physical plate within a run.
type PlateID string

// Mechanism is the tagged variant of compound mechanism-of-action axes.
// Modelled as a closed enum with per-variant tables elsewhere, never as an
// open string or an interface hierarchy.
type Mechanism string

const (
	MechanismERStress      Mechanism = "ER_stress"
	MechanismMitochondrial Mechanism = "mitochondrial"
	MechanismMicrotubule   Mechanism = "microtubule"
	MechanismOxidative     Mechanism = "oxidative"
	MechanismProteasome    Mechanism = "proteasome"
	MechanismDNADamage     Mechanism = "DNA_damage"
)

// GateState is the three-valued capability flag on noise-sigma precision.
type GateState string

const (
	GateEarned  GateState = "earned"
	GateLost    GateState = "lost"
	GateUnknown GateState = "unknown"
)

// VerificationStatus is the enumerated verification state carried by every
// Parameter Store row.
type VerificationStatus string

const (
	VerificationVerified            VerificationStatus = "verified"
	VerificationLiteratureConsensus VerificationStatus = "literature_consensus"
	VerificationEstimated           VerificationStatus = "estimated"
	VerificationNeedsValidation     VerificationStatus = "needs_validation"
)

// Blocker is a machine-readable reason a governance decision landed on
// NO_COMMIT.
type Blocker string

const (
	BlockerLowPosteriorTop Blocker = "LOW_POSTERIOR_TOP"
	BlockerHighNuisance    Blocker = "HIGH_NUISANCE"
	BlockerBadInput        Blocker = "BAD_INPUT"
)

// GovernanceVerdict is the closed set of outcomes a governance decision can reach.
type GovernanceVerdict string

const (
	VerdictCommit      GovernanceVerdict = "COMMIT"
	VerdictNoCommit    GovernanceVerdict = "NO_COMMIT"
	VerdictNoDetection GovernanceVerdict = "NO_DETECTION"
	VerdictBadInput    GovernanceVerdict = "BAD_INPUT"
)

// ActionIntent classifies what a candidate next action is trying to accomplish.
type ActionIntent string

const (
	IntentDiscriminate   ActionIntent = "DISCRIMINATE"
	IntentReduceNuisance ActionIntent = "REDUCE_NUISANCE"
	IntentAmplifySignal  ActionIntent = "AMPLIFY_SIGNAL"
	IntentObserve        ActionIntent = "OBSERVE"
)

// Trigger names why a particular candidate action was selected.
type Trigger string

const (
	TriggerMustCalibrate Trigger = "must_calibrate"
	TriggerGateLock      Trigger = "gate_lock"
	TriggerScoring       Trigger = "scoring"
	TriggerAbort         Trigger = "abort"
)

// Regime names the epistemic phase the controller believes it is in when a
// decision was emitted.
type Regime string

const (
	RegimePreGate        Regime = "pre_gate"
	RegimeInGate         Regime = "in_gate"
	RegimeGateRevoked    Regime = "gate_revoked"
	RegimeIntegrityError Regime = "integrity_error"
	RegimeAborted        Regime = "aborted"
)

// RunStatus is the closed set of terminal states a run summary may report.
type RunStatus string

const (
	RunStatusGateEarned      RunStatus = "gate_earned"
	RunStatusAborted         RunStatus = "aborted"
	RunStatusIntegrityError  RunStatus = "integrity_error"
	RunStatusCompletedNoGate RunStatus = "completed_no_gate"
	RunStatusLegacy          RunStatus = "legacy"
)

// RefusalReason is the closed set of reason codes a RefusalEvent may carry.
type RefusalReason string

const (
	ReasonEpistemicDebtActionBlocked    RefusalReason = "epistemic_debt_action_blocked"
	ReasonInsufficientBudgetForRecovery RefusalReason = "insufficient_budget_for_epistemic_recovery"
	ReasonEpistemicDebtBudgetExceeded   RefusalReason = "epistemic_debt_budget_exceeded"
)
