package stress

import (
	"github.com/insitro-labs/cellsim/paramstore"
	"github.com/insitro-labs/cellsim/types"
)

// Channel names one of the five morphology channels the observation layer's
// cell-painting assay renders (spec.md 3, "morphology bundle").
type Channel string

const (
	ChannelER      Channel = "er"
	ChannelMito    Channel = "mito"
	ChannelNucleus Channel = "nucleus"
	ChannelActin   Channel = "actin"
	ChannelRNA     Channel = "rna"
)

// channelForMechanism is the fixed mechanism-to-channel mapping this model
// uses to decide which morphology channel a compound's mechanism perturbs.
// ER_stress and Proteasome share the ER channel (both are protein-quality-
// control failures); Mitochondrial and Oxidative share the mito channel
// (oxidative stress is substantially mitochondrial in origin here);
// Microtubule maps to actin (cytoskeletal transport failure, matching
// spec.md 8 scenario 2's "actin channel reduction" for a microtubule
// poison); DNA_damage maps to nucleus (where gammaH2AX foci are scored).
// RNA is observed but has no dedicated direct-mechanism driver in this
// model -- it carries only the shared technical/noise factors, modelling a
// channel whose assay is mechanism-agnostic in this catalogue.
var channelForMechanism = map[types.Mechanism]Channel{
	types.MechanismERStress:      ChannelER,
	types.MechanismProteasome:    ChannelER,
	types.MechanismMitochondrial: ChannelMito,
	types.MechanismOxidative:     ChannelMito,
	types.MechanismMicrotubule:   ChannelActin,
	types.MechanismDNADamage:     ChannelNucleus,
}

// ChannelForMechanism exposes the fixed mapping to the observation layer.
func ChannelForMechanism(mech types.Mechanism) (Channel, bool) {
	c, ok := channelForMechanism[mech]
	return c, ok
}

// MorphologyPenalty computes the dose-driven morphology penalty for one
// exposure on cellLine, per spec.md 4.2: morph_ec50 = viability_ec50 *
// morph_ec50_fraction[cell_line], penalty = intensity * dose^h / (morph_ec50^h
// + dose^h). It uses the exposure's frozen IC50UMAdjusted/HillSlope, never
// the compound's baseline, preserving cross-modality coherence.
func MorphologyPenalty(exp *types.CompoundExposure, compound paramstore.Compound, cellLine types.CellLineID) float64 {
	if exp.WashedOut {
		return 0
	}
	frac, ok := compound.MorphologyEC50FractionByCellLine[cellLine]
	if !ok || frac <= 0 {
		frac = 1.0
	}
	morphEC50 := exp.IC50UMAdjusted * frac
	return compound.MorphologyIntensity * hillFraction(exp.DoseUM, morphEC50, exp.HillSlope)
}

// LatentMorphologyEffect returns the morphology contribution of a latent
// stress axis, independent of dose -- this is how the Microtubule mechanism
// renders morphology exclusively (spec.md 4.2: "direct axis effect skipped
// to prevent double-counting"), and how every other mechanism's latent
// state contributes an additional effect on top of its direct dose penalty.
func LatentMorphologyEffect(axes types.LatentAxes, channel Channel) float64 {
	switch channel {
	case ChannelER:
		return axes.ERStress
	case ChannelMito:
		return axes.MitoDysfunction
	case ChannelActin:
		return axes.TransportDysfunction
	default:
		return 0
	}
}
