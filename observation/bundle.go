// Package observation implements spec.md component E: rendering vessel
// state into fallible scalar and imaging readouts, with correlated
// instrument drift shared across modalities. Measurements never mutate
// vessel state (spec.md 3, "Ownership") and are produced from a read-only
// types.VesselState snapshot plus a separate measurement RNG stream keyed
// by (run_seed, batch, plate, day, operator) -- spec.md 4.3, "Observer
// independence".
package observation

import "github.com/insitro-labs/cellsim/stress"

// ScalarBundle is the scalar biochemical assay output for one vessel at one
// measurement time (spec.md 3, "ObservationRecord").
type ScalarBundle struct {
	ATP                  float64 `json:"atp"`
	LDH                  float64 `json:"ldh"`
	UPR                  float64 `json:"upr"`
	Trafficking          float64 `json:"trafficking"`
	GammaH2AXIntensity   float64 `json:"gamma_h2ax_intensity"`
	GammaH2AXPctPositive float64 `json:"gamma_h2ax_pct_positive"`
	GammaH2AXFold        float64 `json:"gamma_h2ax_fold_induction"`
}

// MorphologyBundle is the cell-painting imaging output, one intensity per
// channel (spec.md 3, "morphology bundle").
type MorphologyBundle struct {
	ER      float64 `json:"er"`
	Mito    float64 `json:"mito"`
	Nucleus float64 `json:"nucleus"`
	Actin   float64 `json:"actin"`
	RNA     float64 `json:"rna"`
}

// Record is a write-once observation of one vessel at one point in
// simulated time (spec.md 3, "ObservationRecord" lifecycle).
type Record struct {
	VesselID    string           `json:"vessel_id"`
	TimeH       float64          `json:"time_h"`
	Scalar      ScalarBundle     `json:"scalar"`
	Morphology  MorphologyBundle `json:"morphology"`
	Well        WellContext      `json:"well"`
	IsEdgeWell  bool             `json:"is_edge_well"`
}

func (m MorphologyBundle) byChannel(ch stress.Channel) float64 {
	switch ch {
	case stress.ChannelER:
		return m.ER
	case stress.ChannelMito:
		return m.Mito
	case stress.ChannelNucleus:
		return m.Nucleus
	case stress.ChannelActin:
		return m.Actin
	case stress.ChannelRNA:
		return m.RNA
	default:
		return 0
	}
}
