package stress

import (
	"math"
	"testing"

	"github.com/insitro-labs/cellsim/paramstore"
	"github.com/insitro-labs/cellsim/types"
)

func TestHillFractionBoundsAndMidpoint(t *testing.T) {
	if f := HillFraction(0, 1.0, 2.0); f != 0 {
		t.Errorf("zero dose should give zero fraction, got %v", f)
	}
	if f := HillFraction(1.0, 0, 2.0); f != 0 {
		t.Errorf("zero ec50 should give zero fraction, got %v", f)
	}
	mid := HillFraction(1.0, 1.0, 2.0)
	if math.Abs(mid-0.5) > 1e-9 {
		t.Errorf("dose == ec50 should sit at the Hill midpoint 0.5, got %v", mid)
	}
	high := HillFraction(100.0, 1.0, 2.0)
	if high < 0.99 {
		t.Errorf("dose >> ec50 should approach saturation, got %v", high)
	}
}

func baseCellLine() paramstore.CellLineParams {
	return paramstore.CellLineParams{
		CellLineID:    "HEK293",
		DoublingTimeH: 24,
		MaxConfluence: 0.95,
		SensitivityMultiplier: map[types.Mechanism]float64{
			types.MechanismERStress: 1.0,
		},
	}
}

func baseStore(compound paramstore.Compound) *paramstore.Store {
	cat := &paramstore.Catalogue{
		Compounds: []paramstore.Compound{compound},
	}
	return paramstore.NewStore(cat)
}

// TestProposeDirectMechanismHazard checks that a non-microtubule compound's
// dose contributes to BucketCompound proportional to its Hill fraction.
func TestProposeDirectMechanismHazard(t *testing.T) {
	m := New(DefaultParams())
	compound := paramstore.Compound{
		CompoundID:    "thapsigargin",
		MechanismAxis: types.MechanismERStress,
		HillSlope:     1.8,
	}
	store := baseStore(compound)
	cl := baseCellLine()
	v := &types.VesselState{
		Exposures: map[types.CompoundID]*types.CompoundExposure{
			"thapsigargin": {CompoundID: "thapsigargin", DoseUM: 1.0, IC50UMAdjusted: 0.5, HillSlope: 1.8},
		},
	}
	prop := m.Propose(v, cl, store, 0, 0.5)
	if prop.Hazards[BucketCompound] <= 0 {
		t.Errorf("expected positive compound hazard, got %v", prop.Hazards[BucketCompound])
	}
	if prop.LatentDelta.ERStress <= 0 {
		t.Errorf("expected ER stress latent axis to rise under ER_stress exposure, got %v", prop.LatentDelta.ERStress)
	}
}

// TestProposeMicrotubuleSplitsByMitoticState verifies the mechanism's
// documented split: post-mitotic lines route through AttritionRateByMechanism
// into BucketCompound, dividing lines route into BucketMitoticCatastrophe --
// never both, and never the other's bucket.
func TestProposeMicrotubuleSplitsByMitoticState(t *testing.T) {
	m := New(DefaultParams())
	compound := paramstore.Compound{
		CompoundID:    "nocodazole",
		MechanismAxis: types.MechanismMicrotubule,
		HillSlope:     2.0,
	}
	store := baseStore(compound)
	exposures := map[types.CompoundID]*types.CompoundExposure{
		"nocodazole": {CompoundID: "nocodazole", DoseUM: 1.0, IC50UMAdjusted: 0.3, HillSlope: 2.0},
	}

	dividing := baseCellLine()
	v1 := &types.VesselState{Exposures: exposures}
	p1 := m.Propose(v1, dividing, store, 0, 0.5)
	if p1.Hazards[BucketMitoticCatastrophe] <= 0 {
		t.Errorf("expected mitotic catastrophe hazard for a dividing line, got %+v", p1.Hazards)
	}
	if p1.Hazards[BucketCompound] != 0 {
		t.Errorf("dividing line should not also route into BucketCompound, got %v", p1.Hazards[BucketCompound])
	}

	postMitotic := baseCellLine()
	postMitotic.PostMitotic = true
	postMitotic.AttritionRateByMechanism = map[types.Mechanism]float64{types.MechanismMicrotubule: 0.02}
	v2 := &types.VesselState{Exposures: exposures}
	p2 := m.Propose(v2, postMitotic, store, 0, 0.5)
	if p2.Hazards[BucketCompound] <= 0 {
		t.Errorf("expected post-mitotic attrition hazard in BucketCompound, got %+v", p2.Hazards)
	}
	if p2.Hazards[BucketMitoticCatastrophe] != 0 {
		t.Errorf("post-mitotic line should not route into BucketMitoticCatastrophe, got %v", p2.Hazards[BucketMitoticCatastrophe])
	}
}

// TestProposeThresholdShiftLowersSensitizedThreshold confirms a
// sensitivity multiplier < 1 raises the ER-stress hazard at the same latent
// level, since the sigmoid midpoint theta_shifted = theta0*multiplier moves
// left.
func TestProposeThresholdShiftLowersSensitizedThreshold(t *testing.T) {
	m := New(DefaultParams())
	store := baseStore(paramstore.Compound{CompoundID: "none", MechanismAxis: types.MechanismERStress})
	v := &types.VesselState{
		Exposures: map[types.CompoundID]*types.CompoundExposure{},
		Latent:    types.LatentAxes{ERStress: 0.6},
	}

	resistant := baseCellLine()
	resistant.SensitivityMultiplier[types.MechanismERStress] = 1.0
	sensitized := baseCellLine()
	sensitized.SensitivityMultiplier[types.MechanismERStress] = 0.5

	hr := m.Propose(v, resistant, store, 0, 0.5).Hazards[BucketERStress]
	hs := m.Propose(v, sensitized, store, 0, 0.5).Hazards[BucketERStress]
	if hs <= hr {
		t.Errorf("expected sensitized cell line's ER stress hazard to exceed the resistant line's: sensitized=%v resistant=%v", hs, hr)
	}
}

func TestProposeConfluenceHazardOnlyAboveThreshold(t *testing.T) {
	m := New(DefaultParams())
	store := baseStore(paramstore.Compound{CompoundID: "none"})
	cl := baseCellLine()

	below := &types.VesselState{Exposures: map[types.CompoundID]*types.CompoundExposure{}, Confluence: 0.5}
	above := &types.VesselState{Exposures: map[types.CompoundID]*types.CompoundExposure{}, Confluence: 0.99}

	if h := m.Propose(below, cl, store, 0, 0.5).Hazards[BucketConfluence]; h != 0 {
		t.Errorf("expected no confluence hazard below threshold, got %v", h)
	}
	if h := m.Propose(above, cl, store, 0, 0.5).Hazards[BucketConfluence]; h <= 0 {
		t.Errorf("expected confluence hazard above threshold, got %v", h)
	}
}

func TestProposeStarvationHazardGrowsWithTimeSinceFeed(t *testing.T) {
	m := New(DefaultParams())
	store := baseStore(paramstore.Compound{CompoundID: "none"})
	cl := baseCellLine()
	v := &types.VesselState{Exposures: map[types.CompoundID]*types.CompoundExposure{}, LastFeedTimeH: 0}

	fed := m.Propose(v, cl, store, 10, 0.5).Hazards[BucketStarvation]
	starved := m.Propose(v, cl, store, 200, 0.5).Hazards[BucketStarvation]
	if fed != 0 {
		t.Errorf("expected no starvation hazard shortly after feeding, got %v", fed)
	}
	if starved <= 0 {
		t.Errorf("expected starvation hazard long after feeding, got %v", starved)
	}
}

func TestProposeStaleExposureIgnoredNotFatal(t *testing.T) {
	m := New(DefaultParams())
	store := baseStore(paramstore.Compound{CompoundID: "other"})
	cl := baseCellLine()
	v := &types.VesselState{
		Exposures: map[types.CompoundID]*types.CompoundExposure{
			"vanished": {CompoundID: "vanished", DoseUM: 5.0, IC50UMAdjusted: 1.0, HillSlope: 1.5},
		},
	}
	prop := m.Propose(v, cl, store, 0, 0.5)
	if prop.Hazards[BucketCompound] != 0 {
		t.Errorf("exposure against a missing catalogue compound should be inert, got %v", prop.Hazards[BucketCompound])
	}
}

func TestChannelForMechanismMapping(t *testing.T) {
	cases := map[types.Mechanism]Channel{
		types.MechanismERStress:      ChannelER,
		types.MechanismProteasome:    ChannelER,
		types.MechanismMitochondrial: ChannelMito,
		types.MechanismOxidative:     ChannelMito,
		types.MechanismMicrotubule:   ChannelActin,
		types.MechanismDNADamage:     ChannelNucleus,
	}
	for mech, want := range cases {
		got, ok := ChannelForMechanism(mech)
		if !ok || got != want {
			t.Errorf("mechanism %v: got channel %v ok=%v, want %v", mech, got, ok, want)
		}
	}
}

func TestMorphologyPenaltyWashedOutIsZero(t *testing.T) {
	exp := &types.CompoundExposure{DoseUM: 10, IC50UMAdjusted: 0.5, HillSlope: 2.0, WashedOut: true}
	compound := paramstore.Compound{MorphologyIntensity: 0.9}
	if p := MorphologyPenalty(exp, compound, "HEK293"); p != 0 {
		t.Errorf("expected zero morphology penalty once washed out, got %v", p)
	}
}

func TestMorphologyPenaltyScalesWithEC50Fraction(t *testing.T) {
	exp := &types.CompoundExposure{DoseUM: 0.3, IC50UMAdjusted: 1.0, HillSlope: 2.0}
	compound := paramstore.Compound{
		MorphologyIntensity: 0.9,
		MorphologyEC50FractionByCellLine: map[types.CellLineID]float64{
			"iPSC_neuron": 0.3,
		},
	}
	sensitiveLinePenalty := MorphologyPenalty(exp, compound, "iPSC_neuron")
	defaultLinePenalty := MorphologyPenalty(exp, compound, "HEK293")
	if sensitiveLinePenalty <= defaultLinePenalty {
		t.Errorf("a smaller morph EC50 fraction should produce a larger penalty at the same dose: sensitive=%v default=%v",
			sensitiveLinePenalty, defaultLinePenalty)
	}
}

func TestLatentMorphologyEffectChannels(t *testing.T) {
	axes := types.LatentAxes{ERStress: 0.4, MitoDysfunction: 0.3, TransportDysfunction: 0.2}
	if v := LatentMorphologyEffect(axes, ChannelER); v != axes.ERStress {
		t.Errorf("ER channel should read ERStress axis, got %v", v)
	}
	if v := LatentMorphologyEffect(axes, ChannelMito); v != axes.MitoDysfunction {
		t.Errorf("mito channel should read MitoDysfunction axis, got %v", v)
	}
	if v := LatentMorphologyEffect(axes, ChannelActin); v != axes.TransportDysfunction {
		t.Errorf("actin channel should read TransportDysfunction axis, got %v", v)
	}
	if v := LatentMorphologyEffect(axes, ChannelRNA); v != 0 {
		t.Errorf("RNA channel has no direct latent driver in this model, got %v", v)
	}
}
