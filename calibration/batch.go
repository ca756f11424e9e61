package calibration

// CostPerDF implements spec.md 4.4's fixed-cost amortization for batch
// sizing: cost_per_df = fixed_plate_cost / df_gain_expected + per_well_cost.
// Used by the agent's calibration-proposal scoring to compare calibration
// actions of different batch sizes on a common footing.
func CostPerDF(fixedPlateCost, dfGainExpected, perWellCost float64) float64 {
	if dfGainExpected <= 0 {
		return fixedPlateCost + perWellCost
	}
	return fixedPlateCost/dfGainExpected + perWellCost
}
