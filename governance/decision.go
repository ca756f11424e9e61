// Package governance implements spec.md component H, the Governance
// Contract: classifying a (posterior over mechanisms, nuisance probability)
// pair into COMMIT/NO_COMMIT/NO_DETECTION/BAD_INPUT with a machine-readable
// blocker set, and the action-intent bias table that nudges (never
// legalizes or forbids) the agent's next-action search under NO_COMMIT
// (spec.md 4.6).
package governance

import (
	"math"
	"sort"

	"github.com/insitro-labs/cellsim/types"
)

// Thresholds controlling the COMMIT decision (spec.md 4.6).
type Thresholds struct {
	CommitPosterior float64
	NuisanceMax     float64
}

// DefaultThresholds matches the values this repository's default run
// configuration ships with; callers may override them per experiment.
func DefaultThresholds() Thresholds {
	return Thresholds{CommitPosterior: 0.8, NuisanceMax: 0.3}
}

// Decision is the outcome of one governance call.
type Decision struct {
	Verdict  types.GovernanceVerdict
	Blockers []types.Blocker
}

// Decide classifies a posterior distribution over mechanisms plus a
// nuisance probability into a governance verdict (spec.md 4.6). posterior
// must be non-empty and each entry in [0,1]; malformed input classifies as
// BAD_INPUT rather than panicking.
func Decide(posterior map[string]float64, nuisanceProb float64, th Thresholds) Decision {
	if len(posterior) == 0 {
		return Decision{Verdict: types.VerdictBadInput, Blockers: []types.Blocker{types.BlockerBadInput}}
	}
	sum := 0.0
	maxP := 0.0
	for _, p := range posterior {
		if p < 0 || p > 1 || math.IsNaN(p) {
			return Decision{Verdict: types.VerdictBadInput, Blockers: []types.Blocker{types.BlockerBadInput}}
		}
		sum += p
		if p > maxP {
			maxP = p
		}
	}
	if math.Abs(sum-1.0) > 1e-6 {
		return Decision{Verdict: types.VerdictBadInput, Blockers: []types.Blocker{types.BlockerBadInput}}
	}
	if nuisanceProb < 0 || nuisanceProb > 1 || math.IsNaN(nuisanceProb) {
		return Decision{Verdict: types.VerdictBadInput, Blockers: []types.Blocker{types.BlockerBadInput}}
	}

	var blockers []types.Blocker
	if maxP < th.CommitPosterior {
		blockers = append(blockers, types.BlockerLowPosteriorTop)
	}
	if nuisanceProb > th.NuisanceMax {
		blockers = append(blockers, types.BlockerHighNuisance)
	}

	if len(blockers) == 0 {
		return Decision{Verdict: types.VerdictCommit}
	}
	if maxP == 0 {
		return Decision{Verdict: types.VerdictNoDetection, Blockers: blockers}
	}
	return Decision{Verdict: types.VerdictNoCommit, Blockers: sortedBlockers(blockers)}
}

func sortedBlockers(b []types.Blocker) []types.Blocker {
	out := append([]types.Blocker(nil), b...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func hasBlocker(blockers []types.Blocker, b types.Blocker) bool {
	for _, x := range blockers {
		if x == b {
			return true
		}
	}
	return false
}
