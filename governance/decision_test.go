package governance

import (
	"testing"

	"github.com/insitro-labs/cellsim/types"
)

func th() Thresholds { return Thresholds{CommitPosterior: 0.8, NuisanceMax: 0.3} }

func TestDecideCommit(t *testing.T) {
	posterior := map[string]float64{"ER_stress": 0.9, "mitochondrial": 0.1}
	d := Decide(posterior, 0.1, th())
	if d.Verdict != types.VerdictCommit {
		t.Fatalf("expected COMMIT, got %v blockers=%v", d.Verdict, d.Blockers)
	}
	if len(d.Blockers) != 0 {
		t.Errorf("COMMIT should carry no blockers, got %v", d.Blockers)
	}
}

func TestDecideNoCommitLowPosterior(t *testing.T) {
	posterior := map[string]float64{"ER_stress": 0.5, "mitochondrial": 0.5}
	d := Decide(posterior, 0.1, th())
	if d.Verdict != types.VerdictNoCommit {
		t.Fatalf("expected NO_COMMIT, got %v", d.Verdict)
	}
	if !hasBlocker(d.Blockers, types.BlockerLowPosteriorTop) {
		t.Errorf("expected LOW_POSTERIOR_TOP blocker, got %v", d.Blockers)
	}
}

func TestDecideNoCommitHighNuisance(t *testing.T) {
	posterior := map[string]float64{"ER_stress": 0.95, "mitochondrial": 0.05}
	d := Decide(posterior, 0.6, th())
	if d.Verdict != types.VerdictNoCommit {
		t.Fatalf("expected NO_COMMIT, got %v", d.Verdict)
	}
	if !hasBlocker(d.Blockers, types.BlockerHighNuisance) {
		t.Errorf("expected HIGH_NUISANCE blocker, got %v", d.Blockers)
	}
}

func TestDecideNoCommitBothBlockersSorted(t *testing.T) {
	posterior := map[string]float64{"ER_stress": 0.5, "mitochondrial": 0.5}
	d := Decide(posterior, 0.9, th())
	if d.Verdict != types.VerdictNoCommit {
		t.Fatalf("expected NO_COMMIT, got %v", d.Verdict)
	}
	if len(d.Blockers) != 2 {
		t.Fatalf("expected both blockers present, got %v", d.Blockers)
	}
	if d.Blockers[0] > d.Blockers[1] {
		t.Errorf("expected blockers sorted, got %v", d.Blockers)
	}
}

func TestDecideBadInputEmptyPosterior(t *testing.T) {
	d := Decide(map[string]float64{}, 0.1, th())
	if d.Verdict != types.VerdictBadInput {
		t.Fatalf("expected BAD_INPUT for empty posterior, got %v", d.Verdict)
	}
}

func TestDecideBadInputDoesNotSumToOne(t *testing.T) {
	posterior := map[string]float64{"ER_stress": 0.5, "mitochondrial": 0.2}
	d := Decide(posterior, 0.1, th())
	if d.Verdict != types.VerdictBadInput {
		t.Fatalf("expected BAD_INPUT for a posterior not summing to 1, got %v", d.Verdict)
	}
}

func TestDecideBadInputOutOfRangeNuisance(t *testing.T) {
	posterior := map[string]float64{"ER_stress": 1.0}
	d := Decide(posterior, 1.5, th())
	if d.Verdict != types.VerdictBadInput {
		t.Fatalf("expected BAD_INPUT for out-of-range nuisance probability, got %v", d.Verdict)
	}
}

func TestBiasForIdentityRowWhenNoBlockers(t *testing.T) {
	b := BiasFor(nil, 0.5)
	if b.ReduceNuisance != 1.0 || b.Discriminate != 1.0 || b.Observe != 1.0 || b.AmplifySignal != 1.0 {
		t.Errorf("expected identity row with no blockers, got %+v", b)
	}
}

func TestBiasForHighNuisanceRow(t *testing.T) {
	b := BiasFor([]types.Blocker{types.BlockerHighNuisance}, 0.9)
	if b.ReduceNuisance != 3.0 {
		t.Errorf("expected HIGH_NUISANCE row to strongly favor reduce-nuisance actions, got %+v", b)
	}
}

func TestBiasForLowPosteriorAmplifiesWeakEvidence(t *testing.T) {
	weak := BiasFor([]types.Blocker{types.BlockerLowPosteriorTop}, 0.2)
	strong := BiasFor([]types.Blocker{types.BlockerLowPosteriorTop}, 0.9)
	if weak.AmplifySignal <= strong.AmplifySignal {
		t.Errorf("weak evidence should get a larger amplify-signal bias than strong evidence: weak=%v strong=%v",
			weak.AmplifySignal, strong.AmplifySignal)
	}
}

func TestBiasForBothBlockersMatchesHighNuisanceRow(t *testing.T) {
	both := BiasFor([]types.Blocker{types.BlockerHighNuisance, types.BlockerLowPosteriorTop}, 0.9)
	nuisanceOnly := BiasFor([]types.Blocker{types.BlockerHighNuisance}, 0.9)
	if both != nuisanceOnly {
		t.Errorf("per spec.md 4.6's table, the combined-blocker row matches the nuisance-only row: got %+v vs %+v", both, nuisanceOnly)
	}
}

func TestMultiplierForLooksUpMatchingIntent(t *testing.T) {
	b := Biases{ReduceNuisance: 2, Discriminate: 3, Observe: 4, AmplifySignal: 5}
	if b.MultiplierFor(types.IntentReduceNuisance) != 2 {
		t.Error("wrong multiplier for reduce-nuisance intent")
	}
	if b.MultiplierFor(types.IntentDiscriminate) != 3 {
		t.Error("wrong multiplier for discriminate intent")
	}
	if b.MultiplierFor(types.IntentObserve) != 4 {
		t.Error("wrong multiplier for observe intent")
	}
	if b.MultiplierFor(types.IntentAmplifySignal) != 5 {
		t.Error("wrong multiplier for amplify-signal intent")
	}
}
