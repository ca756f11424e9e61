package governance

import "github.com/insitro-labs/cellsim/types"

// Biases holds the multiplier applied to each action-intent's heuristic
// score under a NO_COMMIT decision (spec.md 4.6). Multipliers only scale
// the search's heuristic score; they never change an action's legality --
// that is epistemic.Controller.ShouldRefuseAction's job alone.
type Biases struct {
	ReduceNuisance float64
	Discriminate   float64
	Observe        float64
	AmplifySignal  float64
}

// BiasFor looks up the multiplier table row for the given blocker set and
// evidence strength (used only by the LOW_POSTERIOR_TOP-only row's
// AMPLIFY_SIGNAL column, spec.md 4.6's table footnote). Blockers not on
// NO_COMMIT (i.e. an empty set) get the identity row.
func BiasFor(blockers []types.Blocker, evidenceStrength float64) Biases {
	hasNuisance := hasBlocker(blockers, types.BlockerHighNuisance)
	hasLowPosterior := hasBlocker(blockers, types.BlockerLowPosteriorTop)

	switch {
	case hasNuisance && hasLowPosterior:
		return Biases{ReduceNuisance: 3.0, Discriminate: 0.5, Observe: 1.5, AmplifySignal: 0.3}
	case hasNuisance:
		return Biases{ReduceNuisance: 3.0, Discriminate: 0.5, Observe: 1.5, AmplifySignal: 0.3}
	case hasLowPosterior:
		amplify := 1.0
		if evidenceStrength < 0.5 {
			amplify = 1.5
		}
		return Biases{ReduceNuisance: 1.0, Discriminate: 2.5, Observe: 2.0, AmplifySignal: amplify}
	default:
		return Biases{ReduceNuisance: 1.0, Discriminate: 1.0, Observe: 1.0, AmplifySignal: 1.0}
	}
}

// MultiplierFor returns the single multiplier for a given action intent.
func (b Biases) MultiplierFor(intent types.ActionIntent) float64 {
	switch intent {
	case types.IntentReduceNuisance:
		return b.ReduceNuisance
	case types.IntentDiscriminate:
		return b.Discriminate
	case types.IntentObserve:
		return b.Observe
	case types.IntentAmplifySignal:
		return b.AmplifySignal
	default:
		return 1.0
	}
}
