package vessel

import (
	"github.com/insitro-labs/cellsim/types"
)

// TreatWithCompound records a dose exposure and computes its adjusted
// dose-response parameters (spec.md 4.1, "treat_with_compound"). The
// adjusted IC50 folds in the cell line's sensitivity multiplier for the
// compound's mechanism (multipliers < 1 lower the effective IC50, so a
// sensitive line dies at a lower dose -- the same threshold-shift direction
// spec.md 4.1 requires of latent thresholds, applied consistently here to
// dose-response thresholds), the run-context EC50 modifier, and the
// empirical (compound, cell_line) potency scalar. If the dose clears the
// compound's instant-kill threshold, an instant kill fires immediately,
// crediting death_compound.
func (e *Engine) TreatWithCompound(id types.VesselID, compoundID types.CompoundID, doseUM, nowH float64) error {
	v, err := e.mustVessel(id)
	if err != nil {
		return err
	}
	cl, err := e.store.CellLine(v.CellLineID)
	if err != nil {
		return err
	}
	compound, err := e.store.Compound(compoundID)
	if err != nil {
		return err
	}

	sensitivity := 1.0
	if cl.SensitivityMultiplier != nil {
		if s, ok := cl.SensitivityMultiplier[compound.MechanismAxis]; ok {
			sensitivity = s
		}
	}
	potency := e.store.PotencyScalar(compoundID, v.CellLineID)
	ic50Adjusted := compound.IC50UMBaseline * sensitivity * potency * e.rc.CompoundEC50Modifier(string(compoundID))

	v.Exposures[compoundID] = &types.CompoundExposure{
		CompoundID:     compoundID,
		DoseUM:         doseUM,
		StartTimeH:     nowH,
		IC50UMAdjusted: ic50Adjusted,
		HillSlope:      compound.HillSlope,
		PotencyScalar:  potency,
	}

	if doseUM <= 0 {
		return nil
	}
	if compound.InstantKillThresholdUM > 0 && doseUM >= compound.InstantKillThresholdUM {
		return e.applyInstantKill(v, compound.InstantKillFraction, bucketCompound)
	}
	return nil
}

type ledgerBucket int

const (
	bucketCompound ledgerBucket = iota
	bucketUnknown
)

// applyInstantKill applies an immediate, non-hazard-integrated kill of
// killFraction of the vessel's currently-viable cells (spec.md 4.1,
// "Instant kill semantics"). Two sequential instant kills within one
// operator action apply in the order they are called, each fully credited
// before the next runs. A zero fraction still runs the conservation check
// -- passage re-checks unconditionally (spec.md 4.1, "Passage operation"),
// including on a line catalogued with zero passage stress.
func (e *Engine) applyInstantKill(v *types.VesselState, killFraction float64, bucket ledgerBucket) error {
	if killFraction < 0 {
		killFraction = 0
	}
	if killFraction > 1 {
		killFraction = 1
	}
	vBefore := v.Viability
	vAfter := vBefore * (1 - killFraction)
	realizedKill := vBefore - vAfter
	switch bucket {
	case bucketCompound:
		v.Death.Compound += realizedKill
	case bucketUnknown:
		v.Death.Unknown += realizedKill
	}
	if vBefore > 0 {
		v.CellCount *= vAfter / vBefore
	}
	v.Viability = vAfter
	v.Death.Unattributed = maxFloat(0, (1-vAfter)-v.Death.CreditedSum())
	syncParticles(v)
	return checkConservation(v, vBefore, 0, 0, nil)
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// FeedVessel records a feeding event. It returns the operator time cost but
// does not advance simulated time; the caller must charge it (spec.md 4.1,
// 9).
func (e *Engine) FeedVessel(id types.VesselID, nowH float64) (float64, error) {
	v, err := e.mustVessel(id)
	if err != nil {
		return 0, err
	}
	v.LastFeedTimeH = nowH
	return TimeCostFeedH, nil
}

// WashoutCompound marks a compound exposure washed out, zeroing its hazard
// and morphology contribution from the next sub-step onward while leaving
// the vessel's accumulated latent axes untouched (spec.md 8, round-trip
// property).
func (e *Engine) WashoutCompound(id types.VesselID, compoundID types.CompoundID) (float64, error) {
	v, err := e.mustVessel(id)
	if err != nil {
		return 0, err
	}
	if exp, ok := v.Exposures[compoundID]; ok {
		exp.WashedOut = true
	}
	return TimeCostWashoutH, nil
}

// Harvest marks a vessel terminally sampled. Further physics operations on
// a harvested vessel return types.HarvestedVesselError.
func (e *Engine) Harvest(id types.VesselID) (float64, error) {
	v, err := e.mustVessel(id)
	if err != nil {
		return 0, err
	}
	v.Harvested = true
	return TimeCostHarvestH, nil
}

// PassageCells splits source into a newly created target vessel: a
// stateful transfer of every death bucket, latent axis, compound exposure,
// and particle, followed by one passage-stress instant kill credited to
// death_unknown (spec.md 4.1, "Passage operation"). The passage-stress
// fraction comes from the source cell line's PassageStress catalogue
// parameter, taken as given -- including zero, for a cell line the
// catalogue declares dissociation-hardy -- rather than silently
// substituted, per spec.md 7's "do not silently substitute defaults"; a
// catalogue that wants the typical default simply states PassageStressDefault
// for that cell line. Not a caller-supplied argument -- spec.md's public
// signature is `passage_cells(source, target, split_ratio)`. Target's cell
// count is source's divided by splitRatio; its seed/last-update/last-feed
// times reset to nowH and its plating context is resampled from a seed
// derived from the run seed and the target vessel id.
func (e *Engine) PassageCells(sourceID, targetID types.VesselID, splitRatio, nowH float64) (float64, error) {
	src, err := e.mustVessel(sourceID)
	if err != nil {
		return 0, err
	}
	if _, exists := e.vessels[targetID]; exists {
		return 0, &types.UnknownVesselError{VesselID: targetID}
	}
	cl, err := e.store.CellLine(src.CellLineID)
	if err != nil {
		return 0, err
	}
	if splitRatio <= 0 {
		splitRatio = 1
	}

	target := &types.VesselState{
		VesselID:        targetID,
		CellLineID:      src.CellLineID,
		SeedTimeH:       nowH,
		LastUpdateTimeH: nowH,
		LastFeedTimeH:   nowH,
		CellCount:       src.CellCount / splitRatio,
		Viability:       src.Viability,
		Confluence:      clamp01(src.Confluence / splitRatio),
		Death:           src.Death,
		Latent:          src.Latent,
		Exposures:       make(map[types.CompoundID]*types.CompoundExposure, len(src.Exposures)),
		Plating:         samplePlatingContext(e.rc, targetID),
	}
	for id, exp := range src.Exposures {
		e2 := *exp
		target.Exposures[id] = &e2
	}
	target.Particles = append([]types.Particle(nil), src.Particles...)

	e.vessels[targetID] = target

	if err := e.applyInstantKill(target, cl.PassageStress, bucketUnknown); err != nil {
		delete(e.vessels, targetID)
		return 0, err
	}
	return TimeCostPassageH, nil
}
