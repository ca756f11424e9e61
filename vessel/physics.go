package vessel

import (
	"math"

	"github.com/insitro-labs/cellsim/paramstore"
	"github.com/insitro-labs/cellsim/stress"
	"github.com/insitro-labs/cellsim/types"
)

// AdvanceTime integrates physics on vessel id forward by hours, in fixed
// sub-steps of stepH (spec.md 4.1, "advance_time"). Sub-steps within one
// call are strictly ordered (spec.md 5); the final sub-step is shortened to
// land exactly on hours if it does not divide evenly by stepH.
func (e *Engine) AdvanceTime(id types.VesselID, hours, stepH float64) error {
	if stepH <= 0 {
		stepH = 0.5
	}
	v, err := e.mustVessel(id)
	if err != nil {
		return err
	}
	cl, err := e.store.CellLine(v.CellLineID)
	if err != nil {
		return err
	}
	remaining := hours
	for remaining > 1e-12 {
		dt := stepH
		if dt > remaining {
			dt = remaining
		}
		if err := e.subStep(v, cl, dt); err != nil {
			return err
		}
		remaining -= dt
	}
	return nil
}

// subStep executes one hazard-composition cycle: propose, sum, single
// survival step, proportional allocation, commit, conservation check,
// growth, latent update (spec.md 4.1).
func (e *Engine) subStep(v *types.VesselState, cl paramstore.CellLineParams, dt float64) error {
	nowH := v.LastUpdateTimeH + dt
	proposal := e.stress.Propose(v, cl, e.store, nowH, dt)

	// Summed in canonical bucket order: map-iteration order would make the
	// floating point total (and so every downstream value) run-dependent,
	// breaking bit-identical reproduction.
	lambda := 0.0
	for _, b := range stress.AllBuckets {
		lambda += proposal.Hazards[b]
	}

	vBefore := v.Viability
	vAfter := vBefore
	if lambda > 0 {
		vAfter = vBefore * math.Exp(-lambda*dt)
	}
	realizedKill := vBefore - vAfter
	if realizedKill < 0 {
		realizedKill = 0
	}

	if lambda > 0 && realizedKill > 0 {
		for _, bucket := range stress.AllBuckets {
			h, ok := proposal.Hazards[bucket]
			if !ok {
				continue
			}
			credit := realizedKill * h / lambda
			creditBucket(&v.Death, bucket, credit)
		}
	}

	v.Death.Unattributed = math.Max(0, (1-vAfter)-v.Death.CreditedSum())

	if vBefore > 0 {
		scale := vAfter / vBefore
		v.CellCount *= scale
	}
	v.Viability = vAfter
	syncParticles(v)

	if err := checkConservation(v, vBefore, lambda, dt, proposal.Hazards); err != nil {
		return err
	}

	applyGrowth(v, cl, dt)

	v.Latent.ERStress = clamp01(v.Latent.ERStress + proposal.LatentDelta.ERStress)
	v.Latent.MitoDysfunction = clamp01(v.Latent.MitoDysfunction + proposal.LatentDelta.MitoDysfunction)
	v.Latent.TransportDysfunction = clamp01(v.Latent.TransportDysfunction + proposal.LatentDelta.TransportDysfunction)

	v.LastUpdateTimeH = nowH
	return nil
}

func creditBucket(d *types.DeathLedger, bucket stress.Bucket, credit float64) {
	switch bucket {
	case stress.BucketCompound:
		d.Compound += credit
	case stress.BucketStarvation:
		d.Starvation += credit
	case stress.BucketMitoticCatastrophe:
		d.MitoticCatastrophe += credit
	case stress.BucketERStress:
		d.ERStress += credit
	case stress.BucketMitoDysfunction:
		d.MitoDysfunction += credit
	case stress.BucketConfluence:
		d.Confluence += credit
	case stress.BucketUnknown:
		d.Unknown += credit
	}
}

func syncParticles(v *types.VesselState) {
	for i := range v.Particles {
		v.Particles[i].Viability = v.Viability
	}
}

// checkConservation enforces I1-I5: the credited death buckets (excluding
// the derived Unattributed residual) must never exceed (1 - viability) +
// epsilon, viability/cell_count/confluence must stay in range, and every
// particle must remain synced to the vessel's viability with weights
// summing to 1. Violation raises a hard, non-recoverable error carrying the
// full diagnostic receipt spec.md 4.1 requires -- including the viability
// this sub-step (or instant kill) started from, not just where it landed.
func checkConservation(v *types.VesselState, vBefore, lambda, dt float64, hazards map[stress.Bucket]float64) error {
	fail := func() error {
		hz := make(map[string]float64, len(hazards))
		for b, val := range hazards {
			hz[string(b)] = val
		}
		return &types.ConservationViolationError{
			VesselID: v.VesselID,
			VBefore:  vBefore,
			VAfter:   v.Viability,
			Lambda:   lambda,
			DeltaH:   dt,
			Hazards:  hz,
			Ledger:   v.Death,
		}
	}

	allowed := (1 - v.Viability) + types.ConservationEpsilon
	if v.Death.CreditedSum() > allowed {
		return fail()
	}
	if v.Viability < -types.ConservationEpsilon || v.Viability > 1+types.ConservationEpsilon {
		return fail()
	}
	if v.CellCount < -types.ConservationEpsilon {
		return fail()
	}
	if v.Confluence < -types.ConservationEpsilon || v.Confluence > 1+types.ConservationEpsilon {
		return fail()
	}
	for _, p := range v.Particles {
		if math.Abs(p.Viability-v.Viability) >= types.ConservationEpsilon {
			return fail()
		}
	}
	wsum := 0.0
	for _, p := range v.Particles {
		wsum += p.Weight
	}
	if len(v.Particles) > 0 && math.Abs(wsum-1.0) >= types.ConservationEpsilon {
		return fail()
	}
	return nil
}

// applyGrowth advances cell_count and confluence under exponential growth
// with a confluence brake (spec.md 4.1, "Growth"). Post-mitotic lines are
// clamped to zero division.
func applyGrowth(v *types.VesselState, cl paramstore.CellLineParams, dt float64) {
	if cl.PostMitotic || cl.DoublingTimeH <= 0 {
		return
	}
	maxConfluence := cl.MaxConfluence
	if maxConfluence <= 0 {
		maxConfluence = 1.0
	}
	brake := 1 - v.Confluence/maxConfluence
	if brake < 0 {
		brake = 0
	}
	rate := math.Ln2 / cl.DoublingTimeH * v.Viability * brake
	growthFactor := math.Exp(rate * dt)
	v.CellCount *= growthFactor
	v.Confluence = clamp01(v.Confluence * growthFactor)
}
