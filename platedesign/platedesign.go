// Package platedesign implements the minimal plate-design ingestion
// SPEC_FULL.md supplements spec.md with: loading the well records an
// external plate-layout generator produces and asserting position
// uniqueness per plate (spec.md 6, "the core asserts position uniqueness
// per plate and treats the rest as given"). The generator itself, and any
// further invariant checking of the experimental design, stays out of
// scope (spec.md 1).
package platedesign

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Well is one plate-design row as spec.md 6 defines it.
type Well struct {
	PlateID      string  `yaml:"plate_id"`
	WellPos      string  `yaml:"well_pos"`
	CellLine     string  `yaml:"cell_line"`
	Compound     string  `yaml:"compound"`
	DoseUM       float64 `yaml:"dose_uM"`
	IsSentinel   bool    `yaml:"is_sentinel"`
	SentinelType string  `yaml:"sentinel_type,omitempty"`
	Day          string  `yaml:"day"`
	Operator     string  `yaml:"operator"`
	TimepointH   float64 `yaml:"timepoint_h"`
}

// Design is a full plate design: every well record across every plate in
// one experiment.
type Design struct {
	Wells []Well `yaml:"wells"`
}

// DuplicatePositionError is raised when two wells on the same plate declare
// the same well position.
type DuplicatePositionError struct {
	PlateID string
	WellPos string
}

func (e *DuplicatePositionError) Error() string {
	return fmt.Sprintf("platedesign: duplicate well position %s on plate %s", e.WellPos, e.PlateID)
}

// Load reads a YAML-encoded Design from path and asserts position
// uniqueness per plate before returning it.
func Load(path string) (*Design, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("platedesign: read %s: %w", path, err)
	}
	var d Design
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("platedesign: parse %s: %w", path, err)
	}
	if err := AssertUniquePositions(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// AssertUniquePositions is the one invariant spec.md 6 requires the core
// itself to enforce on ingested plate designs.
func AssertUniquePositions(d *Design) error {
	seen := make(map[[2]string]bool, len(d.Wells))
	for _, w := range d.Wells {
		key := [2]string{w.PlateID, w.WellPos}
		if seen[key] {
			return &DuplicatePositionError{PlateID: w.PlateID, WellPos: w.WellPos}
		}
		seen[key] = true
	}
	return nil
}
