package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/insitro-labs/cellsim/agent"
	"github.com/insitro-labs/cellsim/config"
	"github.com/insitro-labs/cellsim/governance"
	"github.com/insitro-labs/cellsim/paramstore"
	"github.com/insitro-labs/cellsim/platedesign"
	"github.com/insitro-labs/cellsim/runcontext"
	"github.com/insitro-labs/cellsim/stress"
	"github.com/insitro-labs/cellsim/telemetry"
	"github.com/insitro-labs/cellsim/vessel"
	"github.com/spf13/cobra"
)

var replayAgainst string

var replayCmd = &cobra.Command{
	Use:   "replay",
	Args:  cobra.NoArgs,
	Short: "Re-derive a run from its root seed and diff decisions against a prior run",
	Long:  `Rebuilds the RunContext and vessel engine from the same root seed, catalogue, and plate design a prior run used, replays the outer loop in memory (writing no artifacts), and reports the first cycle where its decisions diverge from --against's decisions log. Re-running the identical inputs through New(rootSeed) must reproduce bit-identical RunContexts (spec.md 5), so any divergence here means an input -- catalogue, plate design, or code -- changed between runs.`,
	RunE:  runReplay,
}

func init() {
	replayCmd.Flags().StringVar(&replayAgainst, "against", "", "prior run's <run>_decisions.jsonl to diff against (required)")
}

func runReplay(cmd *cobra.Command, args []string) error {
	if replayAgainst == "" {
		return fmt.Errorf("labctl replay: --against is required")
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("labctl replay: %w", err)
	}
	prior, err := readDecisionLog(replayAgainst)
	if err != nil {
		return fmt.Errorf("labctl replay: %w", err)
	}

	cat, err := paramstore.LoadCatalogue(cfg.Run.CataloguePath)
	if err != nil {
		return fmt.Errorf("labctl replay: %w", err)
	}
	store := paramstore.NewStore(cat)
	design, err := platedesign.Load(cfg.Run.PlateDesignPath)
	if err != nil {
		return fmt.Errorf("labctl replay: %w", err)
	}
	cells := agent.CollapseDesign(design)
	sentinels := agent.SentinelCount(design)

	rc := runcontext.New(cfg.Run.RootSeed)
	model := stress.New(stress.DefaultParams())
	engine := vessel.New(store, rc, model)

	discard, err := discardArtifacts()
	if err != nil {
		return fmt.Errorf("labctl replay: %w", err)
	}
	defer discard.close()

	thresholds := governance.Thresholds{CommitPosterior: cfg.Governance.CommitPosterior, NuisanceMax: cfg.Governance.NuisanceMax}
	logger := telemetry.NewLogger(telemetry.LoggerConfig{Level: "warn", Format: telemetry.LogFormatText, Output: os.Stdout})
	loop := agent.NewLoop(engine, store, rc, thresholds, cfg.Budget.TotalWells, cfg.Run.MaxCycles, logger, nil, discard.artifacts)

	for i := 0; !loop.Done(cells); i++ {
		event, err := loop.RunCycle(cells, sentinels)
		if err != nil {
			return fmt.Errorf("labctl replay: cycle %d: %w", loop.Cycle, err)
		}
		if i >= len(prior) {
			fmt.Printf("replay diverges at cycle %d: prior run had no corresponding cycle\n", event.Cycle)
			return nil
		}
		if event.SelectedTemplate != prior[i].SelectedTemplate || event.Reason != prior[i].Reason {
			fmt.Printf("replay diverges at cycle %d: got template=%q reason=%q, prior had template=%q reason=%q\n",
				event.Cycle, event.SelectedTemplate, event.Reason, prior[i].SelectedTemplate, prior[i].Reason)
			return nil
		}
	}
	fmt.Println("replay matches prior run through every recorded cycle")
	return nil
}

func readDecisionLog(path string) ([]governance.DecisionEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read decision log %s: %w", path, err)
	}
	defer f.Close()

	var events []governance.DecisionEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event governance.DecisionEvent
		if err := json.Unmarshal(line, &event); err != nil {
			return nil, fmt.Errorf("parse decision log %s: %w", path, err)
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read decision log %s: %w", path, err)
	}
	return events, nil
}

// discardSink opens every artifact writer against a scratch directory, since
// replay only needs RunCycle's return value, not its side-written logs; the
// scratch files are removed on close rather than left in the temp directory.
type discardSink struct {
	dir       string
	artifacts agent.Artifacts
}

func discardArtifacts() (*discardSink, error) {
	dir, err := os.MkdirTemp("", "labctl-replay-*")
	if err != nil {
		return nil, fmt.Errorf("create replay scratch dir: %w", err)
	}
	a, err := openArtifacts(dir, "scratch")
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	return &discardSink{dir: dir, artifacts: a}, nil
}

func (d *discardSink) close() {
	d.artifacts.Decisions.Close()
	d.artifacts.Evidence.Close()
	d.artifacts.Diagnostics.Close()
	d.artifacts.Refusals.Close()
	os.RemoveAll(d.dir)
}
