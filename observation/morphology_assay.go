package observation

import (
	"sort"

	"github.com/insitro-labs/cellsim/paramstore"
	"github.com/insitro-labs/cellsim/runcontext"
	"github.com/insitro-labs/cellsim/stress"
	"github.com/insitro-labs/cellsim/types"
)

// ChannelBias is the fixed per-channel multiplicative bias spec.md 4.3
// names for the imaging assay, defaulting to 1.0; config.RunConfig has no
// field that overrides it.
var ChannelBias = map[stress.Channel]float64{
	stress.ChannelER: 1.0, stress.ChannelMito: 1.0, stress.ChannelNucleus: 1.0,
	stress.ChannelActin: 1.0, stress.ChannelRNA: 1.0,
}

var allChannels = []stress.Channel{
	stress.ChannelER, stress.ChannelMito, stress.ChannelNucleus, stress.ChannelActin, stress.ChannelRNA,
}

// channelPenalties computes, per channel, the total [0,1] morphology
// penalty for one vessel snapshot: every channel picks up its latent-axis
// effect (spec.md 4.2), and every mechanism except Microtubule additionally
// contributes its dose-driven MorphologyPenalty -- Microtubule is rendered
// exclusively through the transport_dysfunction latent to avoid double
// counting (spec.md 4.2).
func channelPenalties(v types.VesselState, store *paramstore.Store) map[stress.Channel]float64 {
	penalty := make(map[stress.Channel]float64, len(allChannels))
	for _, ch := range allChannels {
		penalty[ch] = stress.LatentMorphologyEffect(v.Latent, ch)
	}
	for _, id := range sortedExposureIDs(v.Exposures) {
		exp := v.Exposures[id]
		if exp.WashedOut {
			continue
		}
		compound, err := store.Compound(id)
		if err != nil {
			continue
		}
		if compound.MechanismAxis == types.MechanismMicrotubule {
			continue
		}
		ch, ok := stress.ChannelForMechanism(compound.MechanismAxis)
		if !ok {
			continue
		}
		penalty[ch] += stress.MorphologyPenalty(exp, compound, v.CellLineID)
	}
	for ch, p := range penalty {
		penalty[ch] = clamp01(p)
	}
	return penalty
}

// CellPaintingAssay renders the morphology bundle for one vessel snapshot
// (spec.md 4.3, "cell_painting_assay"): per-channel intensity = physical
// baseline x (1 - penalty) x channel bias x illumination bias, passed
// through a batch-dependent pipeline transform standing in for feature
// extraction drift. Edge wells apply the cell line's catalogued edge
// penalty, the same factor AtpViabilityAssay uses (spec.md 4.3, "Edge
// wells").
func CellPaintingAssay(rootSeed int64, v types.VesselState, cl paramstore.CellLineParams, store *paramstore.Store, rc *runcontext.RunContext, w WellContext) MorphologyBundle {
	illumination := rc.IlluminationBias()
	penalty := channelPenalties(v, store)
	edge := 1.0
	if w.IsEdgeWell() {
		edge = 1 + cl.EdgePenalty
	}

	render := func(ch stress.Channel) float64 {
		stream := measurementStream(rootSeed, w, string(v.VesselID), "morph_"+string(ch))
		noise := lognormalNoise(stream, 0.08)
		baseline := 1.0
		intensity := baseline * (1 - penalty[ch]) * ChannelBias[ch] * illumination * noise * edge
		return pipelineTransform(rootSeed, w, intensity)
	}

	return MorphologyBundle{
		ER:      render(stress.ChannelER),
		Mito:    render(stress.ChannelMito),
		Nucleus: render(stress.ChannelNucleus),
		Actin:   render(stress.ChannelActin),
		RNA:     render(stress.ChannelRNA),
	}
}

// sortedExposureIDs fixes the order exposures contribute shared-channel
// penalties; map-iteration order would make the sums run-dependent.
func sortedExposureIDs(exposures map[types.CompoundID]*types.CompoundExposure) []types.CompoundID {
	ids := make([]types.CompoundID, 0, len(exposures))
	for id := range exposures {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// pipelineTransform stands in for the batch-dependent feature-extraction
// drift spec.md 4.3 names: a small, deterministic multiplicative shift
// keyed by batch, independent of the per-read measurement stream so every
// channel read in the same batch shares the same extraction drift.
func pipelineTransform(rootSeed int64, w WellContext, intensity float64) float64 {
	drift := runcontext.NewStream(rootSeed, "pipeline-drift", w.Batch).NormFloat64() * 0.03
	return intensity * (1 + drift)
}
