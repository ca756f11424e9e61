// Package config loads labctl's YAML-driven run configuration, the same
// way the teacher pack's jhkimqd-chaos-utils/pkg/config loads its chaos
// framework configuration: a single typed struct, unmarshalled with
// gopkg.in/yaml.v3, with a DefaultConfig constructor rather than relying on
// zero values scattered through the codebase.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RunConfig is the top-level configuration for one `labctl run` invocation.
type RunConfig struct {
	Run        RunSettings        `yaml:"run"`
	Logging    LoggingSettings    `yaml:"logging"`
	Metrics    MetricsSettings    `yaml:"metrics"`
	Governance GovernanceSettings `yaml:"governance"`
	Budget     BudgetSettings     `yaml:"budget"`
}

// RunSettings controls the simulated experiment itself.
type RunSettings struct {
	RootSeed        int64   `yaml:"root_seed"`
	CataloguePath   string  `yaml:"catalogue_path"`
	PlateDesignPath string  `yaml:"plate_design_path"`
	OutputDir       string  `yaml:"output_dir"`
	MaxCycles       int     `yaml:"max_cycles"`
	StepH           float64 `yaml:"step_h"`
}

// LoggingSettings controls the telemetry.Logger.
type LoggingSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsSettings controls the optional Prometheus metrics registry. Enabled
// makes labctl run build one; Addr is not read, and no HTTP exporter is
// started.
type MetricsSettings struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// GovernanceSettings overrides governance.Thresholds.
type GovernanceSettings struct {
	CommitPosterior float64 `yaml:"commit_posterior"`
	NuisanceMax     float64 `yaml:"nuisance_max"`
}

// BudgetSettings controls the epistemic controller's well budget.
type BudgetSettings struct {
	TotalWells float64 `yaml:"total_wells"`
}

// DefaultConfig returns the configuration this repository ships with when
// no YAML file overrides it.
func DefaultConfig() *RunConfig {
	return &RunConfig{
		Run: RunSettings{
			RootSeed:  1,
			MaxCycles: 100,
			StepH:     0.5,
			OutputDir: "./artifacts",
		},
		Logging: LoggingSettings{Level: "info", Format: "text"},
		Metrics: MetricsSettings{Enabled: false, Addr: ":9090"},
		Governance: GovernanceSettings{
			CommitPosterior: 0.8,
			NuisanceMax:     0.3,
		},
		Budget: BudgetSettings{TotalWells: 200},
	}
}

// Load reads a YAML config file from path and merges it onto DefaultConfig,
// matching the teacher's pattern of a load function that wraps, never
// panics on, a missing or malformed file.
func Load(path string) (*RunConfig, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
