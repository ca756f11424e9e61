package agent

import (
	"math"

	"github.com/insitro-labs/cellsim/types"
)

// mechanisms is the closed set of mechanism axes the belief tracks a
// posterior over (spec.md 3, "Mechanism").
var mechanisms = []types.Mechanism{
	types.MechanismERStress, types.MechanismMitochondrial, types.MechanismMicrotubule,
	types.MechanismOxidative, types.MechanismProteasome, types.MechanismDNADamage,
}

// Belief is the agent's posterior over which mechanism is responsible for
// the effects it observes. SPEC_FULL.md resolves spec.md 4.6's
// unspecified "posterior over mechanisms" as the simplest model consistent
// with the spec: a multinomial distribution updated multiplicatively by
// observed evidence strength, renormalized each step (a Bayesian-flavored
// heuristic, not a full generative inference -- see DESIGN.md).
type Belief struct {
	Posterior map[string]float64
}

// NewBelief returns a uniform prior over every mechanism.
func NewBelief() Belief {
	p := make(map[string]float64, len(mechanisms))
	for _, m := range mechanisms {
		p[string(m)] = 1.0 / float64(len(mechanisms))
	}
	return Belief{Posterior: p}
}

// entropyBits walks the fixed mechanism order rather than ranging the map:
// float summation order must not depend on map iteration, or two runs with
// the same seed would diverge in the last ulp (spec.md 8).
func entropyBits(p map[string]float64) float64 {
	h := 0.0
	for _, m := range mechanisms {
		if v := p[string(m)]; v > 0 {
			h -= v * math.Log2(v)
		}
	}
	return h
}

// Update folds one observation's evidence for mechanism mech (evidenceStrength
// in [0,1], 0 = no signal, 1 = maximal signal) into the posterior by
// multiplying that mechanism's mass by (1 + 3*evidenceStrength) and
// renormalizing. It returns the actually-observed entropy reduction in
// bits, for the caller to compare against whatever the agent claimed.
func (b *Belief) Update(mech types.Mechanism, evidenceStrength float64) (observedReductionBits float64) {
	before := entropyBits(b.Posterior)
	if evidenceStrength < 0 {
		evidenceStrength = 0
	}
	if evidenceStrength > 1 {
		evidenceStrength = 1
	}
	b.Posterior[string(mech)] *= 1 + 3*evidenceStrength
	total := 0.0
	for _, m := range mechanisms {
		total += b.Posterior[string(m)]
	}
	if total > 0 {
		for k := range b.Posterior {
			b.Posterior[k] /= total
		}
	}
	after := entropyBits(b.Posterior)
	reduction := before - after
	if reduction < 0 {
		reduction = 0
	}
	return reduction
}

// MaxPosterior returns the largest posterior mass currently held by any
// mechanism.
func (b Belief) MaxPosterior() float64 {
	max := 0.0
	for _, v := range b.Posterior {
		if v > max {
			max = v
		}
	}
	return max
}

// NuisanceProbability derives a nuisance-probability input to the
// governance decision from the calibration gate's state (SPEC_FULL.md:
// spec.md 4.6 takes nuisance probability as a given input without naming
// its source; this repo ties it to measurement trustworthiness, the one
// other signal the agent has about how much of what it's seeing might be
// technical noise rather than biology). Earned confidence in the noise
// model lowers nuisance probability; a lost or never-earned gate raises it.
func NuisanceProbability(gateState string) float64 {
	switch gateState {
	case "earned":
		return 0.1
	case "lost":
		return 0.7
	default:
		return 0.5
	}
}
