package runcontext

import (
	"math"
	"sync"
)

// cursedProbability is the chance that a run draws a high-magnitude
// instrument shift -- a "cursed day" (spec.md glossary) -- rather than the
// usual small-magnitude drift.
const cursedProbability = 0.05

// cursedMagnitude and normalMagnitude are the standard deviations of the
// instrument-shift draw in the cursed and ordinary cases, respectively.
const (
	cursedMagnitude = 0.9
	normalMagnitude = 0.15
)

// lotCorrelationWeight controls how strongly a per-assay reagent-lot shift
// leans on the run's instrument latent versus its own independent draw.
// Strictly between 0 and 1 so lot effects are correlated with, but never
// identical to, the cursed latent (spec.md 4.3, "partial correlation").
const lotCorrelationWeight = 0.35

// RunContext is the immutable per-run snapshot of instrument, operator, and
// batch latents shared across every modality (spec.md 3, "RunContext"). It
// is built once at run start from a single root integer seed and never
// mutated afterward; derived per-(batch, plate, day, operator) latents are
// computed deterministically on demand and cached for reuse within the run.
type RunContext struct {
	RootSeed int64

	// InstrumentShift is the run's instrument drift latent. ReaderGain and
	// IlluminationBias are both deterministic functions of this single
	// value, which is what gives them exactly correlated drift (spec.md
	// 4.3, "perfect cross-modality correlation").
	InstrumentShift float64
	Cursed          bool

	// instrumentMagnitude is the standard deviation InstrumentShift was
	// drawn with (cursed or normal). Lot shifts reuse it so their
	// independent component lives on the same scale as the shared one,
	// keeping the population correlation at exactly lotCorrelationWeight.
	instrumentMagnitude float64

	mu          sync.Mutex
	lotShifts   map[string]float64
	plateLatent map[string]float64
	dayLatent   map[string]float64
	operatorLat map[string]float64
	ec50Mod     map[string]float64
}

// New draws a fresh RunContext deterministically from rootSeed. Two calls
// with the same rootSeed always produce bit-identical RunContexts.
func New(rootSeed int64) *RunContext {
	stream := NewStream(rootSeed, "instrument-shift")
	cursed := stream.Float64() < cursedProbability
	magnitude := normalMagnitude
	if cursed {
		magnitude = cursedMagnitude
	}
	shift := stream.NormFloat64() * magnitude

	return &RunContext{
		RootSeed:            rootSeed,
		InstrumentShift:     shift,
		Cursed:              cursed,
		instrumentMagnitude: magnitude,
		lotShifts:       make(map[string]float64),
		plateLatent:     make(map[string]float64),
		dayLatent:       make(map[string]float64),
		operatorLat:     make(map[string]float64),
		ec50Mod:         make(map[string]float64),
	}
}

// CompoundEC50Modifier returns a deterministic, run-scoped multiplicative
// adjustment to a compound's IC50, independent of any cell line. It models
// run-to-run reagent potency drift that is distinct from the empirical
// per-(compound, cell_line) potency scalar in the Parameter Store (spec.md
// 4.1, "treat_with_compound" -- "run-context EC50 modifier"). Centered at
// 1.0 with a modest lognormal spread, same shape as the technical latents.
func (rc *RunContext) CompoundEC50Modifier(compoundID string) float64 {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if v, ok := rc.ec50Mod[compoundID]; ok {
		return v
	}
	v := math.Exp(NewStream(rc.RootSeed, "ec50-modifier", compoundID).NormFloat64() * 0.1)
	rc.ec50Mod[compoundID] = v
	return v
}

// ReaderGain is the scalar-assay instrument multiplier.
func (rc *RunContext) ReaderGain() float64 {
	return math.Exp(rc.InstrumentShift)
}

// IlluminationBias is the imaging-assay instrument multiplier. It is the
// same exponential of the same InstrumentShift that drives ReaderGain, which
// is what produces exact (not merely high) sample correlation between the
// two across repeated runs (spec.md 8, scenario 6).
func (rc *RunContext) IlluminationBias() float64 {
	return math.Exp(rc.InstrumentShift)
}

// AssayLotShift returns the reagent-lot effect for a named scalar assay
// (e.g. "ATP", "LDH"). It is independently drawn per assay but partially
// correlated with the run's cursed instrument latent, never perfectly and
// never zero (spec.md 8, scenario 6).
func (rc *RunContext) AssayLotShift(assay string) float64 {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if v, ok := rc.lotShifts[assay]; ok {
		return v
	}
	independent := NewStream(rc.RootSeed, "lot", assay).NormFloat64() * rc.instrumentMagnitude
	v := lotCorrelationWeight*rc.InstrumentShift + math.Sqrt(1-lotCorrelationWeight*lotCorrelationWeight)*independent
	rc.lotShifts[assay] = v
	return v
}

// PlateLatent returns the deterministic per-plate technical multiplier for
// (batch, plate), seeded with (run_seed, batch, plate) per spec.md 4.3.
func (rc *RunContext) PlateLatent(batch, plate string) float64 {
	return rc.cachedLatent(rc.plateLatent, "plate-latent", batch, plate)
}

// DayLatent returns the deterministic per-day technical multiplier for
// (batch, day).
func (rc *RunContext) DayLatent(batch, day string) float64 {
	return rc.cachedLatent(rc.dayLatent, "day-latent", batch, day)
}

// OperatorLatent returns the deterministic per-operator technical multiplier
// for (batch, operator).
func (rc *RunContext) OperatorLatent(batch, operator string) float64 {
	return rc.cachedLatent(rc.operatorLat, "operator-latent", batch, operator)
}

func (rc *RunContext) cachedLatent(cache map[string]float64, kind, batch, key string) float64 {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	cacheKey := batch + "/" + key
	if v, ok := cache[cacheKey]; ok {
		return v
	}
	// Technical multipliers are centered at 1.0 with a modest lognormal
	// spread: always positive, rarely extreme.
	v := math.Exp(NewStream(rc.RootSeed, kind, batch, key).NormFloat64() * 0.08)
	cache[cacheKey] = v
	return v
}
