package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/insitro-labs/cellsim/agent"
	"github.com/insitro-labs/cellsim/artifact"
	"github.com/insitro-labs/cellsim/config"
	"github.com/insitro-labs/cellsim/governance"
	"github.com/insitro-labs/cellsim/paramstore"
	"github.com/insitro-labs/cellsim/platedesign"
	"github.com/insitro-labs/cellsim/runcontext"
	"github.com/insitro-labs/cellsim/stress"
	"github.com/insitro-labs/cellsim/telemetry"
	"github.com/insitro-labs/cellsim/types"
	"github.com/insitro-labs/cellsim/vessel"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Args:  cobra.NoArgs,
	Short: "Execute a simulated vessel experiment end to end",
	Long:  `Loads a parameter catalogue and a plate design, then drives the outer epistemic agent loop until the gate is earned and every plate-design cell has been explored, or the cycle budget runs out.`,
	RunE:  runExperiment,
}

var runName string

func init() {
	runCmd.Flags().StringVar(&runName, "name", "run", "run name, used as the artifact file prefix")
}

func runExperiment(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("labctl run: %w", err)
	}

	logFormat := telemetry.LogFormatText
	if cfg.Logging.Format == "json" {
		logFormat = telemetry.LogFormatJSON
	}
	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	logger := telemetry.NewLogger(telemetry.LoggerConfig{Level: level, Format: logFormat, Output: os.Stdout})

	logger.Info("labctl run starting", "version", version, "root_seed", cfg.Run.RootSeed)

	cat, err := paramstore.LoadCatalogue(cfg.Run.CataloguePath)
	if err != nil {
		return fmt.Errorf("labctl run: %w", err)
	}
	store := paramstore.NewStore(cat)

	design, err := platedesign.Load(cfg.Run.PlateDesignPath)
	if err != nil {
		return fmt.Errorf("labctl run: %w", err)
	}
	cells := agent.CollapseDesign(design)
	sentinels := agent.SentinelCount(design)
	logger.Info("plate design loaded", "cells", len(cells), "sentinel_wells", sentinels)

	rc := runcontext.New(cfg.Run.RootSeed)
	model := stress.New(stress.DefaultParams())
	engine := vessel.New(store, rc, model)

	var metrics *telemetry.Metrics
	if cfg.Metrics.Enabled {
		metrics = telemetry.NewMetrics()
	}

	if err := os.MkdirAll(cfg.Run.OutputDir, 0o755); err != nil {
		return fmt.Errorf("labctl run: create output dir: %w", err)
	}
	artifacts, err := openArtifacts(cfg.Run.OutputDir, runName)
	if err != nil {
		return fmt.Errorf("labctl run: %w", err)
	}

	thresholds := governance.Thresholds{
		CommitPosterior: cfg.Governance.CommitPosterior,
		NuisanceMax:     cfg.Governance.NuisanceMax,
	}
	loop := agent.NewLoop(engine, store, rc, thresholds, cfg.Budget.TotalWells, cfg.Run.MaxCycles, logger, metrics, artifacts)

	status := types.RunStatusCompletedNoGate
	var cycleErr error
	for !loop.Done(cells) {
		event, err := loop.RunCycle(cells, sentinels)
		if err != nil {
			logger.Error(err, "cycle failed, aborting run", "cycle", loop.Cycle)
			status = types.RunStatusAborted
			cycleErr = fmt.Errorf("labctl run: cycle %d: %w", loop.Cycle, err)
			break
		}
		logger.Info("cycle complete", "cycle", event.Cycle, "action", event.SelectedTemplate, "verdict", event.Reason)
	}
	if status != types.RunStatusAborted && loop.Gate.State() == "earned" {
		status = types.RunStatusGateEarned
	}

	// The summary is written even for an aborted run (status carries the
	// abort), but a cycle failure -- a conservation violation above all --
	// must still surface as a non-zero exit (spec.md 6, error taxonomy).
	summaryPath := filepath.Join(cfg.Run.OutputDir, runName+".json")
	if err := loop.Finalize(status, summaryPath); err != nil {
		if cycleErr == nil {
			return fmt.Errorf("labctl run: finalize: %w", err)
		}
		logger.Error(err, "finalize failed after aborted run")
	}
	logger.Info("labctl run complete", "status", status, "cycles", loop.Cycle, "budget_remaining", loop.BudgetRemaining)
	return cycleErr
}

func openArtifacts(dir, name string) (agent.Artifacts, error) {
	decisions, err := artifact.Open(filepath.Join(dir, name+"_decisions.jsonl"), "decisions")
	if err != nil {
		return agent.Artifacts{}, err
	}
	evidence, err := artifact.Open(filepath.Join(dir, name+"_evidence.jsonl"), "evidence")
	if err != nil {
		return agent.Artifacts{}, err
	}
	diagnostics, err := artifact.Open(filepath.Join(dir, name+"_diagnostics.jsonl"), "diagnostics")
	if err != nil {
		return agent.Artifacts{}, err
	}
	refusals, err := artifact.Open(filepath.Join(dir, name+"_refusals.jsonl"), "refusals")
	if err != nil {
		return agent.Artifacts{}, err
	}
	return agent.Artifacts{Decisions: decisions, Evidence: evidence, Diagnostics: diagnostics, Refusals: refusals}, nil
}
