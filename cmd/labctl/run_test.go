package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/insitro-labs/cellsim/types"
)

// writeRunFixtures lays out a minimal catalogue, plate design, and run
// config under a temp dir and returns the config path. initialCells feeds
// the catalogue's seeding density for the one biology cell the design
// names.
func writeRunFixtures(t *testing.T, initialCells float64) string {
	t.Helper()
	dir := t.TempDir()

	catalogue := `cell_line_growth_parameters:
  - cell_line_id: HEK293
    doubling_time_h: 24.0
    max_confluence: 0.95
    seeding_efficiency: 0.85
    passage_stress: 0.04
    senescence_rate: 0.002
    edge_penalty: 0.15
    post_mitotic: false
    sensitivity_multiplier:
      ER_stress: 1.0
    assay_cv:
      ATP: 0.08
    verification: verified

compounds:
  - compound_id: thapsigargin
    ic50_uM_baseline: 0.5
    hill_slope: 1.8
    mechanism_axis: ER_stress
    morphology_intensity: 0.8
    verification: verified

seeding_densities:
  - cell_line_id: HEK293
    vessel_type: 96-well
    initial_cells: ` + fmt.Sprintf("%g", initialCells) + `
`

	design := `wells:
  - plate_id: P1
    well_pos: B02
    cell_line: HEK293
    compound: thapsigargin
    dose_uM: 0.5
    is_sentinel: false
    day: d0
    operator: opA
    timepoint_h: 24

  - plate_id: P1
    well_pos: A01
    cell_line: HEK293
    compound: ""
    dose_uM: 0
    is_sentinel: true
    sentinel_type: vehicle
    day: d0
    operator: opA
    timepoint_h: 24

  - plate_id: P1
    well_pos: A02
    cell_line: HEK293
    compound: ""
    dose_uM: 0
    is_sentinel: true
    sentinel_type: vehicle
    day: d0
    operator: opA
    timepoint_h: 24

  - plate_id: P1
    well_pos: A03
    cell_line: HEK293
    compound: ""
    dose_uM: 0
    is_sentinel: true
    sentinel_type: vehicle
    day: d0
    operator: opA
    timepoint_h: 24

  - plate_id: P1
    well_pos: A04
    cell_line: HEK293
    compound: ""
    dose_uM: 0
    is_sentinel: true
    sentinel_type: vehicle
    day: d0
    operator: opA
    timepoint_h: 24
`

	cataloguePath := filepath.Join(dir, "catalogue.yaml")
	designPath := filepath.Join(dir, "design.yaml")
	outputDir := filepath.Join(dir, "artifacts")
	config := `run:
  root_seed: 5
  catalogue_path: ` + cataloguePath + `
  plate_design_path: ` + designPath + `
  output_dir: ` + outputDir + `
  max_cycles: 150
  step_h: 0.5
logging:
  level: error
  format: text
metrics:
  enabled: false
governance:
  commit_posterior: 0.8
  nuisance_max: 0.3
budget:
  total_wells: 5000
`

	for path, doc := range map[string]string{
		cataloguePath:                     catalogue,
		designPath:                        design,
		filepath.Join(dir, "config.yaml"): config,
	} {
		if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
			t.Fatalf("write fixture %s: %v", path, err)
		}
	}
	return filepath.Join(dir, "config.yaml")
}

// withRunGlobals points the package's cobra flag globals at the fixture for
// one test and restores them after.
func withRunGlobals(t *testing.T, configPath string) {
	t.Helper()
	prevCfg, prevName := cfgFile, runName
	cfgFile, runName = configPath, "run"
	t.Cleanup(func() { cfgFile, runName = prevCfg, prevName })
}

func TestRunCommandCompletesOnValidInputs(t *testing.T) {
	withRunGlobals(t, writeRunFixtures(t, 10000))
	if err := runExperiment(runCmd, nil); err != nil {
		t.Fatalf("run should complete on valid inputs: %v", err)
	}
}

// TestRunCommandFailsOnConservationViolation forces a genuine conservation
// violation through the full command path -- a catalogue declaring a
// negative seeding density fails the engine's cell_count >= 0 invariant at
// seed time -- and asserts runExperiment returns the typed error, so main
// exits non-zero (spec.md 6, "ConservationViolationError -- engine
// invariant broken. Exit non-zero").
func TestRunCommandFailsOnConservationViolation(t *testing.T) {
	withRunGlobals(t, writeRunFixtures(t, -10000))
	err := runExperiment(runCmd, nil)
	if err == nil {
		t.Fatal("expected run to fail on a conservation violation")
	}
	var cv *types.ConservationViolationError
	if !errors.As(err, &cv) {
		t.Fatalf("expected a ConservationViolationError in the chain, got %v", err)
	}
}
