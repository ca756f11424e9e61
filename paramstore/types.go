// Package paramstore is the read-only lookup layer (spec.md component A):
// cell-line growth/stress parameters, compound IC50/Hill tables, vessel
// geometry, and seeding densities. It never computes biology itself and
// never substitutes a default for a missing key — see types.MissingParameterError.
package paramstore

import "github.com/insitro-labs/cellsim/types"

// CellLineParams holds the growth, stress-sensitivity, and assay parameters
// for one cultured cell line (spec.md 3, "CellLineParams").
type CellLineParams struct {
	CellLineID        types.CellLineID `yaml:"cell_line_id"`
	DoublingTimeH     float64          `yaml:"doubling_time_h"`
	MaxConfluence     float64          `yaml:"max_confluence"`
	SeedingEfficiency float64          `yaml:"seeding_efficiency"`
	PassageStress     float64          `yaml:"passage_stress"`
	SenescenceRate    float64          `yaml:"senescence_rate"`
	EdgePenalty       float64          `yaml:"edge_penalty"`
	PostMitotic       bool             `yaml:"post_mitotic"`

	// SensitivityMultiplier scales each mechanism's hazard threshold:
	// theta_shifted = theta0 * SensitivityMultiplier[mechanism]. Values < 1
	// lower the threshold, so the population dies earlier (spec.md 4.1).
	SensitivityMultiplier map[types.Mechanism]float64 `yaml:"sensitivity_multiplier"`

	// AssayCV is the expected coefficient of variation per scalar assay,
	// used by the observation layer's noise model.
	AssayCV map[string]float64 `yaml:"assay_cv"`

	// AttritionRateByMechanism is the per-step attrition applied to
	// post-mitotic populations under a mechanism even when mitosis-linked
	// death is impossible (spec.md 4.2, "slow burn").
	AttritionRateByMechanism map[types.Mechanism]float64 `yaml:"attrition_rate_by_mechanism"`

	Verification types.VerificationStatus `yaml:"verification"`
}

// Compound is one compound's dose-response and mechanism parameter set
// (spec.md 3, "Compound").
type Compound struct {
	CompoundID     types.CompoundID `yaml:"compound_id"`
	IC50UMBaseline float64          `yaml:"ic50_uM_baseline"`
	HillSlope      float64          `yaml:"hill_slope"`
	MechanismAxis  types.Mechanism  `yaml:"mechanism_axis"`
	AttritionRate  float64          `yaml:"attrition_rate"`

	// InstantKillThresholdUM, if nonzero, is the dose above which an instant
	// supra-lethal kill fires in addition to the ongoing hazard (spec.md 4.1,
	// "Instant kill semantics").
	InstantKillThresholdUM float64 `yaml:"instant_kill_threshold_uM"`
	InstantKillFraction    float64 `yaml:"instant_kill_fraction"`

	// MorphologyIntensity is the maximum morphology-channel penalty at full
	// Hill saturation, before the per-cell-line EC50 fraction is applied.
	MorphologyIntensity float64 `yaml:"morphology_intensity"`

	// MorphologyEC50FractionByCellLine scales this compound's adjusted
	// viability IC50 down to its morphology EC50, per cell line (spec.md 3:
	// "morphology_EC50_fraction_by_cell_line"). A stem-cell-derived neuron
	// line under microtubule stress might carry 0.3 here, meaning its
	// morphology visibly degrades at a third of the dose that moves
	// viability.
	MorphologyEC50FractionByCellLine map[types.CellLineID]float64 `yaml:"morphology_ec50_fraction_by_cell_line"`

	Verification types.VerificationStatus `yaml:"verification"`
}

// CompoundIC50Entry is one row of the compound x cell_line adjusted-IC50
// table: per-pair potency scalars measured empirically rather than derived
// purely from SensitivityMultiplier.
type CompoundIC50Entry struct {
	CompoundID    types.CompoundID         `yaml:"compound_id"`
	CellLineID    types.CellLineID         `yaml:"cell_line_id"`
	PotencyScalar float64                  `yaml:"potency_scalar"`
	Verification  types.VerificationStatus `yaml:"verification"`
}

// VesselType describes plate/flask geometry relevant to edge-well detection
// and well count.
type VesselType struct {
	Name        string `yaml:"name"`
	PlateFormat int    `yaml:"plate_format"` // 96 or 384; 0 for non-plate vessels (flasks)
	Rows        int    `yaml:"rows"`
	Cols        int    `yaml:"cols"`
}

// SeedingDensity is the default initial cell count for a (cell_line, vessel_type) pair.
type SeedingDensity struct {
	CellLineID    types.CellLineID `yaml:"cell_line_id"`
	VesselType    string           `yaml:"vessel_type"`
	InitialCells  float64          `yaml:"initial_cells"`
}

// Catalogue is the full set of tables the Parameter Store loads, mirroring
// spec.md 6's named tables. Verification status has no table of its own: it
// is the per-row Verification field of the cell-line, compound and IC50 rows.
type Catalogue struct {
	CellLineGrowthParameters []CellLineParams     `yaml:"cell_line_growth_parameters"`
	SeedingDensities         []SeedingDensity     `yaml:"seeding_densities"`
	VesselTypes              []VesselType         `yaml:"vessel_types"`
	Compounds                []Compound           `yaml:"compounds"`
	CompoundIC50             []CompoundIC50Entry  `yaml:"compound_ic50"`
}
