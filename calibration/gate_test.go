package calibration

import (
	"math"
	"testing"
)

func TestNewGateStartsUnknown(t *testing.T) {
	g := New()
	if g.State() != "unknown" {
		t.Errorf("fresh gate should start unknown, got %q", g.State())
	}
	if !math.IsInf(g.RelWidth(), 1) {
		t.Errorf("fresh gate should report infinite relative width, got %v", g.RelWidth())
	}
}

func TestAddReplicatesRequiresAtLeastTwo(t *testing.T) {
	g := New()
	g.AddReplicates([]float64{1.0})
	if g.DFCurrent() != 0 {
		t.Errorf("a single residual should contribute no degrees of freedom, got %d", g.DFCurrent())
	}
}

// TestGateEarnsWithEnoughTightReplicates checks the earn-side hysteresis
// threshold: enough low-variance replicate groups should bring RelWidth
// below EarnRelWidth and flip the gate to "earned".
func TestGateEarnsWithEnoughTightReplicates(t *testing.T) {
	g := New()
	residuals := []float64{0.98, 1.01, 0.99, 1.02, 1.00, 0.99, 1.01, 1.00}
	for i := 0; i < 40; i++ {
		g.AddReplicates(residuals)
	}
	if g.State() != "earned" {
		t.Errorf("expected gate to earn after many tight replicate groups, got state=%q relwidth=%v df=%d",
			g.State(), g.RelWidth(), g.DFCurrent())
	}
}

// TestGateHysteresisDoesNotLoseOnModerateWidening verifies the asymmetric
// earn/lose thresholds: once earned, relative width between EarnRelWidth
// and LoseRelWidth must not flip the gate back to lost.
func TestGateHysteresisDoesNotLoseOnModerateWidening(t *testing.T) {
	g := &Gate{state: "earned", df: 20, sumSquares: 20 * 1.0}
	rw := g.RelWidth()
	if rw > LoseRelWidth {
		t.Skipf("fixture relwidth %v already exceeds LoseRelWidth, adjust fixture", rw)
	}
	g.recompute()
	if g.State() != "earned" {
		t.Errorf("gate should remain earned while relwidth (%v) stays under LoseRelWidth (%v)", rw, LoseRelWidth)
	}
}

func TestGateLosesOnLargeWidening(t *testing.T) {
	g := &Gate{state: "earned", df: 3, sumSquares: 3 * 4.0}
	g.recompute()
	if g.State() != "lost" {
		t.Errorf("gate should lose with very few df and high variance: relwidth=%v state=%q", g.RelWidth(), g.State())
	}
}

func TestDFNeededToEarnZeroOnceEarned(t *testing.T) {
	g := &Gate{state: "earned", df: 200, sumSquares: 200}
	if need := g.DFNeededToEarn(); need != 0 {
		t.Errorf("an already-earned gate should need 0 more df, got %d", need)
	}
}

func TestDFNeededToEarnFromScratchIsPositive(t *testing.T) {
	g := New()
	if need := g.DFNeededToEarn(); need <= 0 {
		t.Errorf("a fresh gate should need a positive number of df to earn, got %d", need)
	}
}

func TestWellsNeededRounding(t *testing.T) {
	if n := WellsNeeded(5, 4); n != 8 {
		t.Errorf("5 df at 4 replicates/group (3 df/group) should need 2 groups = 8 wells, got %d", n)
	}
	if n := WellsNeeded(0, 4); n != 4 {
		t.Errorf("zero df gain should still request at least one group, got %d", n)
	}
	if n := WellsNeeded(3, 1); n != 6 {
		t.Errorf("a degenerate replicatesPerGroup < 2 should be floored to 2 (1 df/group), so 3 df need 3 groups = 6 wells, got %d", n)
	}
}

func TestCostPerDFAmortizesFixedCost(t *testing.T) {
	small := CostPerDF(100, 2, 5)
	large := CostPerDF(100, 20, 5)
	if large >= small {
		t.Errorf("a larger expected df gain should amortize the fixed plate cost to a lower per-df cost: small=%v large=%v", small, large)
	}
}

func TestCostPerDFZeroExpectedGainFallsBackToFixedPlusPerWell(t *testing.T) {
	got := CostPerDF(100, 0, 5)
	if got != 105 {
		t.Errorf("zero expected df gain should fall back to fixed+per_well cost, got %v", got)
	}
}
