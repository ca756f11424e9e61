package observation

import (
	"math"
	"math/rand"

	"github.com/insitro-labs/cellsim/runcontext"
)

// measurementStream returns the measurement RNG stream for one (vessel,
// assay) read at a given well, keyed by (run_seed, batch, plate, well,
// day, operator, vessel, assay) so repeated reads of the same state at the
// same well produce identical noise, while replicate wells each draw their
// own well-level noise (spec.md 4.3, "measurement RNG streams are separate
// from physics RNG").
func measurementStream(rootSeed int64, w WellContext, vesselID, assay string) *rand.Rand {
	return runcontext.NewStream(rootSeed, "measurement", w.Batch, w.PlateID, w.WellPos, w.Day, w.Operator, vesselID, assay)
}

// lognormalNoise draws a multiplicative noise factor with the given
// coefficient of variation, centered at 1.0.
func lognormalNoise(r *rand.Rand, cv float64) float64 {
	if cv <= 0 {
		return 1.0
	}
	sigma := math.Sqrt(math.Log(1 + cv*cv))
	return math.Exp(r.NormFloat64()*sigma - 0.5*sigma*sigma)
}
