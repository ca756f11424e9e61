package paramstore

import "fmt"

// ValidationReport summarizes how many catalogue rows sit in each
// verification tier, so a CI job can fail a build that leans too heavily on
// needs_validation parameters without hand-inspecting the YAML.
type ValidationReport struct {
	Verified            int
	LiteratureConsensus int
	Estimated           int
	NeedsValidation     int
}

// Validate walks every row in the catalogue that carries a verification
// status and tallies it. It never rejects the catalogue itself -- estimated
// and needs_validation parameters are legitimate inputs, just ones the
// outer agent should be more cautious trusting.
func Validate(cat *Catalogue) ValidationReport {
	var r ValidationReport
	count := func(status string) {
		switch status {
		case "verified":
			r.Verified++
		case "literature_consensus":
			r.LiteratureConsensus++
		case "estimated":
			r.Estimated++
		case "needs_validation":
			r.NeedsValidation++
		}
	}
	for _, cl := range cat.CellLineGrowthParameters {
		count(string(cl.Verification))
	}
	for _, c := range cat.Compounds {
		count(string(c.Verification))
	}
	for _, e := range cat.CompoundIC50 {
		count(string(e.Verification))
	}
	return r
}

// String renders a one-line human summary, used by labctl validate-catalogue.
func (r ValidationReport) String() string {
	return fmt.Sprintf("verified=%d literature_consensus=%d estimated=%d needs_validation=%d",
		r.Verified, r.LiteratureConsensus, r.Estimated, r.NeedsValidation)
}
