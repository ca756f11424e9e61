// Package stress implements spec.md component D, the Stress & Compound
// Model: it maps (compound, cell line, dose, exposure time, latent state)
// onto hazard proposals, latent-axis updates, and morphology penalties. It
// never mutates a VesselState itself -- the vessel physics engine owns that
// -- it only computes what the engine should do to one.
package stress

import (
	"math"
	"sort"

	"github.com/insitro-labs/cellsim/paramstore"
	"github.com/insitro-labs/cellsim/types"
)

// Bucket names the death-ledger credit target a proposed hazard feeds.
// Kept distinct from types.DeathLedger's field names so the model package
// does not need to import struct-field reflection to allocate credit.
type Bucket string

const (
	BucketCompound           Bucket = "compound"
	BucketStarvation         Bucket = "starvation"
	BucketMitoticCatastrophe Bucket = "mitotic_catastrophe"
	BucketERStress           Bucket = "er_stress"
	BucketMitoDysfunction    Bucket = "mito_dysfunction"
	BucketConfluence         Bucket = "confluence"
	BucketUnknown            Bucket = "unknown"
)

// AllBuckets is the canonical bucket order. The engine sums and credits
// hazards in this order, never in map-iteration order, so that two runs
// with the same root seed accumulate floating point identically (spec.md 8,
// bit-identical reproduction).
var AllBuckets = []Bucket{
	BucketCompound, BucketStarvation, BucketMitoticCatastrophe, BucketERStress,
	BucketMitoDysfunction, BucketConfluence, BucketUnknown,
}

// Params holds the tunable constants of the hazard and latent models. These
// are not Parameter Store rows (they describe the shape of the model, not
// a measured biological quantity) so they live as Go defaults;
// config.RunConfig has no field that overrides them.
type Params struct {
	// MechanismMaxHazardPerH is the per-hour hazard ceiling (at full Hill
	// saturation) for a compound's direct mechanism death pathway, keyed by
	// mechanism. Microtubule is absent here deliberately: it kills dividing
	// cells via BucketMitoticCatastrophe and non-dividing cells via the
	// cell line's AttritionRateByMechanism, never via this table.
	MechanismMaxHazardPerH map[types.Mechanism]float64

	MitoticCatastropheMaxHazardPerH float64

	ERStressThreshold0    float64
	MitoThreshold0        float64
	ERStressMaxHazardPerH float64
	MitoMaxHazardPerH     float64
	SigmoidSteepness      float64

	// LatentRisePerH is how fast one hour of full-saturation exposure to a
	// mechanism's compound raises that mechanism's latent axis.
	LatentRisePerH map[types.Mechanism]float64

	ConfluenceDeathThreshold float64
	ConfluenceMaxHazardPerH  float64

	StarvationHoursThreshold float64
	StarvationMaxHazardPerH  float64

	SenescenceMaxHazardPerH float64
}

// DefaultParams returns the model constants this repository ships with.
// They are deliberately mild: a demonstration catalogue plus these defaults
// should produce cultures that survive hours-to-days of simulated time
// without everything instantly dying, the same way the teacher's default
// neuron constants produce a quiet, stable network rather than runaway
// firing.
func DefaultParams() Params {
	return Params{
		MechanismMaxHazardPerH: map[types.Mechanism]float64{
			types.MechanismERStress:      0.05,
			types.MechanismMitochondrial: 0.05,
			types.MechanismOxidative:     0.06,
			types.MechanismProteasome:    0.04,
			types.MechanismDNADamage:     0.05,
		},
		MitoticCatastropheMaxHazardPerH: 0.08,
		ERStressThreshold0:              0.7,
		MitoThreshold0:                  0.7,
		ERStressMaxHazardPerH:           0.15,
		MitoMaxHazardPerH:               0.15,
		SigmoidSteepness:                8.0,
		LatentRisePerH: map[types.Mechanism]float64{
			types.MechanismERStress:      0.08,
			types.MechanismMitochondrial: 0.08,
			types.MechanismMicrotubule:   0.10,
		},
		ConfluenceDeathThreshold: 0.95,
		ConfluenceMaxHazardPerH:  0.10,
		StarvationHoursThreshold: 72.0,
		StarvationMaxHazardPerH:  0.08,
		SenescenceMaxHazardPerH:  1.0,
	}
}

// Model is the stateless evaluator of the stress/compound algorithm; it
// holds only constants, never per-vessel state.
type Model struct {
	Params Params
}

// New builds a Model with the given parameters.
func New(p Params) Model {
	return Model{Params: p}
}

// Proposal is one sub-step's hazard and latent-axis output.
type Proposal struct {
	Hazards     map[Bucket]float64
	LatentDelta types.LatentAxes
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// hillFraction returns dose^h / (ec50^h + dose^h), clamped to [0,1] and safe
// against a zero or negative ec50/dose.
func hillFraction(dose, ec50, hill float64) float64 {
	if dose <= 0 || ec50 <= 0 {
		return 0
	}
	dh := math.Pow(dose, hill)
	eh := math.Pow(ec50, hill)
	f := dh / (eh + dh)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// HillFraction exposes the package's Hill dose-response fraction to callers
// outside the hazard-proposal loop (the observation layer uses it to render
// the DNA-damage scalar assay, which has no dedicated latent axis).
func HillFraction(dose, ec50, hill float64) float64 {
	return hillFraction(dose, ec50, hill)
}

// sensitivityMultiplier looks up a cell line's threshold multiplier for a
// mechanism, defaulting to 1.0 (no shift) when the catalogue does not name
// one -- absence means "no empirical adjustment", the same convention
// paramstore.Store.PotencyScalar uses.
func sensitivityMultiplier(cl paramstore.CellLineParams, mech types.Mechanism) float64 {
	if cl.SensitivityMultiplier == nil {
		return 1.0
	}
	if v, ok := cl.SensitivityMultiplier[mech]; ok {
		return v
	}
	return 1.0
}

// Propose computes every active hazard on v over a sub-step of dtH hours,
// given the vessel's current (already-committed) state and its cell line's
// parameters. Hazards are returned as per-hour rates (the engine multiplies
// by dtH when committing survival); LatentDelta is already scaled by dtH,
// since latent axes accumulate additively rather than through a survival
// exponential. Propose performs no mutation; the engine commits the
// survival step and credits the returned hazards itself (spec.md 4.1).
func (m Model) Propose(v *types.VesselState, cl paramstore.CellLineParams, store *paramstore.Store, nowH, dtH float64) Proposal {
	p := m.Params
	hazards := map[Bucket]float64{}
	var latentDelta types.LatentAxes

	for _, id := range sortedExposureIDs(v.Exposures) {
		exp := v.Exposures[id]
		if exp.WashedOut {
			continue
		}
		frac := hillFraction(exp.DoseUM, exp.IC50UMAdjusted, exp.HillSlope)
		if frac <= 0 {
			continue
		}
		compound, err := store.Compound(id)
		if err != nil {
			// Exposure recorded against a compound the catalogue no longer
			// carries: treat as inert rather than crashing physics on a
			// stale exposure record. The governance layer sees stale
			// catalogues via paramstore.Validate, not here.
			continue
		}
		mech := compound.MechanismAxis
		switch mech {
		case types.MechanismMicrotubule:
			if cl.PostMitotic {
				rate := cl.AttritionRateByMechanism[types.MechanismMicrotubule]
				hazards[BucketCompound] += rate * frac
			} else {
				hazards[BucketMitoticCatastrophe] += p.MitoticCatastropheMaxHazardPerH * frac
			}
			latentDelta.TransportDysfunction += p.LatentRisePerH[types.MechanismMicrotubule] * frac * dtH
		default:
			hazards[BucketCompound] += p.MechanismMaxHazardPerH[mech] * frac
			if rise, ok := p.LatentRisePerH[mech]; ok {
				switch mech {
				case types.MechanismERStress:
					latentDelta.ERStress += rise * frac * dtH
				case types.MechanismMitochondrial:
					latentDelta.MitoDysfunction += rise * frac * dtH
				}
			}
		}
	}

	thetaER := p.ERStressThreshold0 * sensitivityMultiplier(cl, types.MechanismERStress)
	hazards[BucketERStress] += p.ERStressMaxHazardPerH * sigmoid(p.SigmoidSteepness*(v.Latent.ERStress-thetaER))

	thetaMito := p.MitoThreshold0 * sensitivityMultiplier(cl, types.MechanismMitochondrial)
	hazards[BucketMitoDysfunction] += p.MitoMaxHazardPerH * sigmoid(p.SigmoidSteepness*(v.Latent.MitoDysfunction-thetaMito))

	if v.Confluence > p.ConfluenceDeathThreshold {
		over := (v.Confluence - p.ConfluenceDeathThreshold) / (1 - p.ConfluenceDeathThreshold)
		hazards[BucketConfluence] += p.ConfluenceMaxHazardPerH * over
	}

	hoursSinceFeed := nowH - v.LastFeedTimeH
	if hoursSinceFeed > p.StarvationHoursThreshold {
		over := (hoursSinceFeed - p.StarvationHoursThreshold) / p.StarvationHoursThreshold
		if over > 1 {
			over = 1
		}
		hazards[BucketStarvation] += p.StarvationMaxHazardPerH * over
	}

	if cl.SenescenceRate > 0 {
		hazards[BucketUnknown] += cl.SenescenceRate * p.SenescenceMaxHazardPerH
	}

	return Proposal{Hazards: hazards, LatentDelta: latentDelta}
}

// sortedExposureIDs fixes the order exposures contribute to shared hazard
// buckets and latent deltas; map-iteration order would make the floating
// point sums run-dependent.
func sortedExposureIDs(exposures map[types.CompoundID]*types.CompoundExposure) []types.CompoundID {
	ids := make([]types.CompoundID, 0, len(exposures))
	for id := range exposures {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
