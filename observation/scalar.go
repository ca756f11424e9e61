package observation

import (
	"github.com/insitro-labs/cellsim/paramstore"
	"github.com/insitro-labs/cellsim/runcontext"
	"github.com/insitro-labs/cellsim/stress"
	"github.com/insitro-labs/cellsim/types"
)

// ScalarAssayBias is the fixed per-assay multiplicative bias spec.md 4.3
// names but leaves unspecified in value; these default to 1.0 (no bias).
// config.RunConfig has no field that overrides them.
var ScalarAssayBias = map[string]float64{
	"ATP": 1.0, "LDH": 1.0, "UPR": 1.0, "trafficking": 1.0, "gammaH2AX": 1.0,
}

// AtpViabilityAssay renders the scalar biochemical bundle for one vessel
// snapshot (spec.md 4.3, "atp_viability_assay"). total_tech_factor =
// plate x day x operator x well x edge x reader_gain, further multiplied
// by the assay's own scalar_assay_bias and per-assay reagent-lot shift.
func AtpViabilityAssay(rootSeed int64, v types.VesselState, cl paramstore.CellLineParams, store *paramstore.Store, rc *runcontext.RunContext, w WellContext) ScalarBundle {
	edge := 1.0
	if w.IsEdgeWell() {
		edge = 1 + cl.EdgePenalty
	}
	readerGain := rc.ReaderGain()
	plate := rc.PlateLatent(w.Batch, w.PlateID)
	day := rc.DayLatent(w.Batch, w.Day)
	operator := rc.OperatorLatent(w.Batch, w.Operator)

	render := func(assay string, base float64) float64 {
		stream := measurementStream(rootSeed, w, string(v.VesselID), assay)
		cv := cl.AssayCV[assay]
		well := lognormalNoise(stream, cv)
		lot := 1 + 0.1*rc.AssayLotShift(assay)
		total := plate * day * operator * well * edge * readerGain * lot
		return base * total * ScalarAssayBias[assay]
	}

	dnaDamageFrac := 0.0
	for id, exp := range v.Exposures {
		if exp.WashedOut {
			continue
		}
		compound, err := store.Compound(id)
		if err != nil || compound.MechanismAxis != types.MechanismDNADamage {
			continue
		}
		if f := stress.HillFraction(exp.DoseUM, exp.IC50UMAdjusted, exp.HillSlope); f > dnaDamageFrac {
			dnaDamageFrac = f
		}
	}

	return ScalarBundle{
		ATP:                  render("ATP", v.Viability),
		LDH:                  render("LDH", 1-v.Viability),
		UPR:                  render("UPR", v.Latent.ERStress),
		Trafficking:          render("trafficking", v.Latent.TransportDysfunction),
		GammaH2AXIntensity:   render("gammaH2AX", dnaDamageFrac),
		GammaH2AXPctPositive: clamp01(dnaDamageFrac) * 100 * edge,
		GammaH2AXFold:        1 + dnaDamageFrac*readerGain,
	}
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
