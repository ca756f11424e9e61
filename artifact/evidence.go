package artifact

// EvidenceRecord is one belief-update record in `<run>_evidence.jsonl`
// (spec.md 6). EvidenceTimeH is simulated time, not wall-clock; Cycle must
// be strictly monotonic (spec.md 8, "k > previous_k and k in Z").
type EvidenceRecord struct {
	Cycle         int                `json:"cycle"`
	EvidenceTimeH float64            `json:"evidence_time_h"`
	Posterior     map[string]float64 `json:"posterior"`
	NuisanceProb  float64            `json:"nuisance_prob"`
}

// DiagnosticsRecord is one per-cycle noise-metrics record in
// `<run>_diagnostics.jsonl` (spec.md 6).
type DiagnosticsRecord struct {
	Cycle       int     `json:"cycle"`
	RelWidth    float64 `json:"rel_width"`
	PooledSigma float64 `json:"pooled_sigma"`
	DF          int     `json:"df"`
}

// RunSummary is the terminal `<run>.json` artifact (spec.md 6).
//
// InvocationID is a freshly generated identifier for this particular
// execution of labctl run, used to correlate this summary with its sibling
// log lines in external log aggregation -- it is deliberately NOT derived
// from RootSeed and plays no part in the bit-identical-reproduction
// property (spec.md 8): two runs with the same seed still get distinct
// InvocationIDs, exactly as two identical requests to a production service
// still get distinct trace IDs.
type RunSummary struct {
	InvocationID       string         `json:"invocation_id"`
	Status             string         `json:"status"`
	RegimeSummary      map[string]int `json:"regime_summary"`
	Budget             float64        `json:"budget"`
	CyclesCompleted    int            `json:"cycles_completed"`
	GateSlack          float64        `json:"gate_slack"`
	TimeInGatePercent  float64        `json:"time_in_gate_percent"`
	ContaminationFlags []string       `json:"contamination_flags"`
}
