package agent

import (
	"fmt"
	"math"

	"github.com/insitro-labs/cellsim/artifact"
	"github.com/insitro-labs/cellsim/calibration"
	"github.com/insitro-labs/cellsim/epistemic"
	"github.com/insitro-labs/cellsim/governance"
	"github.com/insitro-labs/cellsim/observation"
	"github.com/insitro-labs/cellsim/paramstore"
	"github.com/insitro-labs/cellsim/runcontext"
	"github.com/insitro-labs/cellsim/telemetry"
	"github.com/insitro-labs/cellsim/types"
	"github.com/insitro-labs/cellsim/vessel"
	"github.com/google/uuid"
)

// StepH is the sub-step size AdvanceTime integrates with (spec.md 5).
const StepH = 0.5

// ReplicatesPerGroup is how many wells one calibration replicate group
// contains, fixing df-per-group at ReplicatesPerGroup-1 (spec.md 4.4).
const ReplicatesPerGroup = 4

// Artifacts bundles the four append-only writers one run produces (spec.md
// 6). The loop owns their lifecycle; callers open and close them.
type Artifacts struct {
	Decisions   *artifact.Writer
	Evidence    *artifact.Writer
	Diagnostics *artifact.Writer
	Refusals    *artifact.Writer
}

// Loop is the flat outer state machine SPEC_FULL.md supplements spec.md
// with: it alternates physics, observation, belief update, governance
// decision, and action selection across the distinct (cell_line, compound,
// dose) cells a plate design names, bounded by MaxCycles and gated by the
// epistemic controller (spec.md 4.5, 4.6).
type Loop struct {
	Engine     *vessel.Engine
	Store      *paramstore.Store
	RC         *runcontext.RunContext
	Gate       *calibration.Gate
	Controller *epistemic.Controller
	Thresholds governance.Thresholds
	Logger     *telemetry.Logger
	Metrics    *telemetry.Metrics

	Artifacts Artifacts

	// InvocationID identifies this particular execution for log correlation.
	// It is freshly generated per Loop, never derived from the root seed --
	// it carries no weight in the bit-identical-reproduction property
	// (spec.md 8), which governs the decisions/evidence/diagnostics logs,
	// not this human-facing run summary field.
	InvocationID string

	BudgetRemaining float64
	Cycle           int
	MaxCycles       int
	SimTimeH        float64

	Belief   Belief
	explored map[string]bool

	cycleCounts map[types.Regime]int
}

// NewLoop wires a fresh outer loop around an already-constructed engine and
// its collaborating components.
func NewLoop(engine *vessel.Engine, store *paramstore.Store, rc *runcontext.RunContext, thresholds governance.Thresholds, budgetWells float64, maxCycles int, logger *telemetry.Logger, metrics *telemetry.Metrics, artifacts Artifacts) *Loop {
	return &Loop{
		Engine:          engine,
		Store:           store,
		RC:              rc,
		Gate:            calibration.New(),
		Controller:      epistemic.New(),
		Thresholds:      thresholds,
		Logger:          logger,
		Metrics:         metrics,
		Artifacts:       artifacts,
		InvocationID:    uuid.New().String(),
		BudgetRemaining: budgetWells,
		MaxCycles:       maxCycles,
		Belief:          NewBelief(),
		explored:        make(map[string]bool),
		cycleCounts:     make(map[types.Regime]int),
	}
}

func cellKey(c DesignCell) string {
	return fmt.Sprintf("%s|%s|%g|%g", c.CellLine, c.Compound, c.DoseUM, c.TimepointH)
}

// Done reports whether the loop has exhausted its cycle budget or its
// candidate menu.
func (l *Loop) Done(cells DesignCells) bool {
	if l.Cycle >= l.MaxCycles {
		return true
	}
	if l.Gate.DFNeededToEarn() > 0 {
		return false
	}
	for _, c := range cells {
		if !l.explored[cellKey(c)] {
			return false
		}
	}
	return true
}

// RunCycle executes exactly one cycle of the outer loop against the given
// plate-design cells and sentinel count, advancing l.Cycle by one. It
// returns the decision event written this cycle.
func (l *Loop) RunCycle(cells DesignCells, sentinelCount int) (governance.DecisionEvent, error) {
	l.Cycle++
	dfNeeded := l.Gate.DFNeededToEarn()
	candidates := Candidates(l.unexplored(cells), dfNeeded, ReplicatesPerGroup, calibration.WellsNeeded)

	action, ok := l.choose(candidates)
	if !ok {
		return governance.DecisionEvent{}, fmt.Errorf("agent: no candidate actions remain at cycle %d", l.Cycle)
	}

	refusal := l.Controller.ShouldRefuseAction(action.Label, action.CostWells, l.BudgetRemaining, action.IsCalibration)
	if refusal != nil {
		if l.Metrics != nil {
			l.Metrics.Refusals.WithLabelValues(string(refusal.Reason)).Inc()
		}
		if err := l.Artifacts.Refusals.Append(l.Cycle, refusal); err != nil {
			return governance.DecisionEvent{}, err
		}
		if l.Logger != nil {
			l.Logger.Warn("action refused", "reason", refusal.Reason, "action", action.Label, "cycle", l.Cycle)
		}
		event := governance.DecisionEvent{
			Cycle:            l.Cycle,
			SelectedTemplate: action.Label,
			SelectedCandidate: governance.SelectedCandidate{
				ActionLabel: action.Label,
				Forced:      false,
				Trigger:     types.TriggerAbort,
				Regime:      l.regimeFor(),
				GateState:   types.GateState(l.Gate.State()),
			},
			Reason: "refused: " + string(refusal.Reason),
		}
		l.recordRegime(event.SelectedCandidate.Regime)
		return event, l.Artifacts.Decisions.Append(l.Cycle, event)
	}

	l.BudgetRemaining -= l.Controller.EffectiveCost(action.CostWells)

	var trigger types.Trigger
	if action.IsCalibration {
		trigger = types.TriggerMustCalibrate
		if err := l.runCalibration(action, cells, sentinelCount); err != nil {
			return governance.DecisionEvent{}, err
		}
	} else {
		trigger = types.TriggerScoring
		if err := l.runBiology(action); err != nil {
			return governance.DecisionEvent{}, err
		}
		l.explored[cellActionKey(action)] = true
	}

	decision := governance.Decide(l.Belief.Posterior, NuisanceProbability(l.Gate.State()), l.Thresholds)
	regime := l.regimeFor()
	l.recordRegime(regime)

	evidence := artifact.EvidenceRecord{
		Cycle:         l.Cycle,
		EvidenceTimeH: l.SimTimeH,
		Posterior:     copyPosterior(l.Belief.Posterior),
		NuisanceProb:  NuisanceProbability(l.Gate.State()),
	}
	if err := l.Artifacts.Evidence.Append(l.Cycle, evidence); err != nil {
		return governance.DecisionEvent{}, err
	}

	diag := artifact.DiagnosticsRecord{
		Cycle:       l.Cycle,
		RelWidth:    l.Gate.RelWidth(),
		PooledSigma: l.Gate.PooledSigma(),
		DF:          l.Gate.DFCurrent(),
	}
	if err := l.Artifacts.Diagnostics.Append(l.Cycle, diag); err != nil {
		return governance.DecisionEvent{}, err
	}

	var calPlan *governance.CalibrationPlan
	if action.IsCalibration {
		calPlan = &governance.CalibrationPlan{Wells: action.ReplicateWells, DFGainExpected: float64(dfNeeded)}
	}
	event := governance.DecisionEvent{
		Cycle:            l.Cycle,
		SelectedTemplate: action.Label,
		SelectedCandidate: governance.SelectedCandidate{
			ActionLabel:     action.Label,
			Forced:          action.IsCalibration,
			Trigger:         trigger,
			Regime:          regime,
			GateState:       types.GateState(l.Gate.State()),
			CalibrationPlan: calPlan,
		},
		Reason: string(decision.Verdict),
	}
	if err := l.Artifacts.Decisions.Append(l.Cycle, event); err != nil {
		return governance.DecisionEvent{}, err
	}

	if l.Metrics != nil {
		l.Metrics.CyclesCompleted.Inc()
		l.Metrics.EpistemicDebt.Set(l.Controller.DebtBits)
		l.Metrics.SetGateState(l.Gate.State())
	}
	return event, nil
}

func cellActionKey(a Action) string {
	return fmt.Sprintf("%s|%s|%g|%g", a.CellLine, a.Compound, a.DoseUM, a.TimepointH)
}

func (l *Loop) unexplored(cells DesignCells) DesignCells {
	out := make(DesignCells, 0, len(cells))
	for _, c := range cells {
		if !l.explored[cellKey(c)] {
			out = append(out, c)
		}
	}
	return out
}

// choose picks the calibration action whenever the gate still needs it or
// outstanding debt exceeds the hard threshold (the only repayment route) --
// spec.md 4.6's bias table only ever nudges scoring among biology
// candidates, it never overrides must_calibrate -- otherwise the
// highest-scoring biology action under the current governance bias.
func (l *Loop) choose(candidates []Action) (Action, bool) {
	var cal *Action
	biology := make([]Action, 0, len(candidates))
	for i := range candidates {
		if candidates[i].IsCalibration {
			cal = &candidates[i]
		} else {
			biology = append(biology, candidates[i])
		}
	}
	if cal != nil && (l.Gate.DFNeededToEarn() > 0 || l.Controller.DebtBits > epistemic.HardDebtThreshold) {
		return *cal, true
	}
	if len(biology) == 0 {
		if cal != nil {
			return *cal, true
		}
		return Action{}, false
	}
	decision := governance.Decide(l.Belief.Posterior, NuisanceProbability(l.Gate.State()), l.Thresholds)
	biases := governance.BiasFor(decision.Blockers, l.Belief.MaxPosterior())
	best := biology[0]
	bestScore := biases.MultiplierFor(best.Intent)
	for _, c := range biology[1:] {
		score := biases.MultiplierFor(c.Intent)
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	return best, true
}

func (l *Loop) regimeFor() types.Regime {
	switch l.Gate.State() {
	case "earned":
		return types.RegimeInGate
	case "lost":
		return types.RegimeGateRevoked
	default:
		return types.RegimePreGate
	}
}

func (l *Loop) recordRegime(r types.Regime) {
	l.cycleCounts[r]++
}

func copyPosterior(p map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// runCalibration seeds a synthetic sentinel vessel, takes max(ReplicateWells,
// 2) vehicle-control ATP reads from it (capped at the design's sentinel count
// when that is positive), and hands the raw reads to the gate as one
// replicate group, which centers them (spec.md 4.4). Sentinel wells measure a vessel
// that never receives a compound, so any residual spread is attributed
// entirely to technical noise.
func (l *Loop) runCalibration(action Action, cells DesignCells, sentinelCount int) error {
	sentinelID := types.VesselID("sentinel")
	if _, err := l.Engine.Vessel(sentinelID); err != nil {
		cellLine := l.anyCellLine()
		if cellLine == "" && len(cells) > 0 {
			// Nothing seeded yet -- the first cycle of every run is a
			// calibration cycle, so the sentinel borrows the design's first
			// cell line.
			cellLine = cells[0].CellLine
		}
		if cellLine == "" {
			return fmt.Errorf("agent: no cell line available to seed sentinel vessel")
		}
		if err := l.Engine.SeedVessel(sentinelID, cellLine, 1e5, 1.0, l.SimTimeH); err != nil {
			return err
		}
	}

	before := l.Gate.RelWidth()
	v, err := l.Engine.Vessel(sentinelID)
	if err != nil {
		return err
	}
	cl, err := l.Store.CellLine(v.CellLineID)
	if err != nil {
		return err
	}

	n := action.ReplicateWells
	if n < 2 {
		n = 2
	}
	if sentinelCount > 0 && sentinelCount < n {
		n = sentinelCount
	}
	residuals := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		w := observation.WellContext{
			PlateID: "calibration-plate", WellPos: fmt.Sprintf("A%02d", i+1),
			Batch: "calibration", Day: "d0", Operator: "auto",
		}
		bundle := observation.AtpViabilityAssay(l.RC.RootSeed, v, cl, l.Store, l.RC, w)
		residuals = append(residuals, bundle.ATP)
	}
	l.Gate.AddReplicates(residuals)
	after := l.Gate.RelWidth()

	improvement := relWidthImprovement(before, after)
	l.Controller.RepayFromCalibration(improvement)
	return nil
}

// relWidthImprovement turns a relative-width reduction into the [0,1]
// improvement fraction epistemic.Controller.RepayFromCalibration expects.
// An infinite before-width (no data pooled yet) counts as full improvement
// once any finite width is achieved.
func relWidthImprovement(before, after float64) float64 {
	const inf = 1e300
	if before > inf {
		if after > inf {
			return 0
		}
		return 1
	}
	if before <= 0 {
		return 0
	}
	improvement := (before - after) / before
	if improvement < 0 {
		return 0
	}
	if improvement > 1 {
		return 1
	}
	return improvement
}

func (l *Loop) anyCellLine() types.CellLineID {
	for _, id := range l.Engine.VesselIDs() {
		v, err := l.Engine.Vessel(id)
		if err == nil {
			return v.CellLineID
		}
	}
	return ""
}

// runBiology seeds (if needed), treats, and advances one vessel per design
// cell, then takes scalar and imaging observations and folds the evidence
// into the belief posterior (spec.md 4.1-4.3).
func (l *Loop) runBiology(action Action) error {
	vesselID := types.VesselID(fmt.Sprintf("v-%s-%s-%g", action.CellLine, action.Compound, action.DoseUM))

	sd, err := l.Store.SeedingDensity(action.CellLine, "96-well")
	initialCells := 1e4
	if err == nil {
		initialCells = sd.InitialCells
	}

	if _, verr := l.Engine.Vessel(vesselID); verr != nil {
		if err := l.Engine.SeedVessel(vesselID, action.CellLine, initialCells, 1.0, l.SimTimeH); err != nil {
			return err
		}
	}
	if err := l.Engine.TreatWithCompound(vesselID, action.Compound, action.DoseUM, l.SimTimeH); err != nil {
		return err
	}
	if action.TimepointH > l.SimTimeH {
		if err := l.Engine.AdvanceTime(vesselID, action.TimepointH-l.SimTimeH, StepH); err != nil {
			return err
		}
		l.SimTimeH = action.TimepointH
	}

	v, err := l.Engine.Vessel(vesselID)
	if err != nil {
		return err
	}
	cl, err := l.Store.CellLine(action.CellLine)
	if err != nil {
		return err
	}
	compound, err := l.Store.Compound(action.Compound)
	if err != nil {
		return err
	}

	w := observation.WellContext{
		PlateID: "biology-plate", WellPos: "B02",
		Batch: "biology", Day: "d0", Operator: "auto",
		PlateFormat: 96, Rows: 8, Cols: 12,
	}
	scalar := observation.AtpViabilityAssay(l.RC.RootSeed, v, cl, l.Store, l.RC, w)
	morph := observation.CellPaintingAssay(l.RC.RootSeed, v, cl, l.Store, l.RC, w)

	atpSignal := clamp01(1 - scalar.ATP/maxF(initialCells, 1))
	morphSignal := clamp01(1 - morphChannelFor(compound.MechanismAxis, morph))
	evidenceStrength := atpSignal
	if morphSignal > evidenceStrength {
		evidenceStrength = morphSignal
	}
	claimed := evidenceStrength
	observed := l.Belief.Update(compound.MechanismAxis, evidenceStrength)
	l.Controller.AccrueDebt(claimed, observed)
	return nil
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// morphChannelFor reads the morphology-bundle channel this mechanism drives
// (spec.md 4.2's mechanism-to-channel mapping, stress.ChannelForMechanism),
// so the belief update has a second, independent line of evidence beyond
// the scalar ATP read. Mechanisms with no dedicated channel (none in the
// current catalogue) fall back to the nucleus channel as a weak generic
// stress proxy.
func morphChannelFor(mech types.Mechanism, m observation.MorphologyBundle) float64 {
	switch mech {
	case types.MechanismERStress, types.MechanismProteasome:
		return m.ER
	case types.MechanismMitochondrial, types.MechanismOxidative:
		return m.Mito
	case types.MechanismMicrotubule:
		return m.Actin
	case types.MechanismDNADamage:
		return m.Nucleus
	default:
		return m.Nucleus
	}
}

// Finalize writes the terminal run summary and closes every writer
// (spec.md 6).
func (l *Loop) Finalize(status types.RunStatus, summaryPath string) error {
	regimeSummary := make(map[string]int, len(l.cycleCounts))
	for r, n := range l.cycleCounts {
		regimeSummary[string(r)] = n
	}
	var contamination []string
	if l.Controller.Contaminated {
		contamination = append(contamination, l.Controller.ContaminationReason)
	}
	timeInGatePct := 0.0
	if l.Cycle > 0 {
		timeInGatePct = 100 * float64(l.cycleCounts[types.RegimeInGate]) / float64(l.Cycle)
	}
	// RelWidth is +Inf until the first replicate batch is pooled; a run that
	// never calibrated reports -1 rather than an unencodable infinity.
	gateSlack := l.Gate.RelWidth()
	if math.IsInf(gateSlack, 1) {
		gateSlack = -1
	}
	summary := artifact.RunSummary{
		InvocationID:       l.InvocationID,
		Status:             string(status),
		RegimeSummary:      regimeSummary,
		Budget:             l.BudgetRemaining,
		CyclesCompleted:    l.Cycle,
		GateSlack:          gateSlack,
		TimeInGatePercent:  timeInGatePct,
		ContaminationFlags: contamination,
	}
	if err := artifact.WriteSummary(summaryPath, summary); err != nil {
		return err
	}
	l.Artifacts.Decisions.Close()
	l.Artifacts.Evidence.Close()
	l.Artifacts.Diagnostics.Close()
	l.Artifacts.Refusals.Close()
	return nil
}
