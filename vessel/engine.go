// Package vessel implements spec.md component C, the Vessel Physics Engine:
// the hazard-composition / survival / death-accounting loop that advances a
// VesselState through time under competing death hazards while preserving
// conservation and attribution provenance (spec.md 4.1). It is the
// exclusive owner of every types.VesselState it creates.
package vessel

import (
	"fmt"

	"github.com/insitro-labs/cellsim/paramstore"
	"github.com/insitro-labs/cellsim/runcontext"
	"github.com/insitro-labs/cellsim/stress"
	"github.com/insitro-labs/cellsim/types"
)

// Operator action time costs in hours. These are never charged to simulated
// time by the engine itself -- spec.md 4.1 and 9 are explicit that "policy
// layer must pay" -- the operations only return them. The agent package
// does not call these operations, so nothing in this repository charges
// the returned costs.
const (
	TimeCostFeedH    = 0.10
	TimeCostWashoutH = 0.20
	TimeCostPassageH = 0.50
	TimeCostHarvestH = 0.30
)

// PassageStressDefault is the typical instant-kill fraction credited to
// death_unknown on passage, representing dissociation stress (spec.md 4.1,
// "Passage operation"). It is not applied by the engine itself -- PassageCells
// takes the source cell line's catalogued PassageStress exactly as given, so
// that a catalogue entry of zero (a dissociation-hardy line) is honored
// rather than silently replaced. This constant exists so catalogue authors
// have a documented starting value to put in cell_line_growth_parameters.
const PassageStressDefault = 0.05

// SeedConfluence is the nominal starting confluence of a freshly seeded
// vessel. Confluence then grows multiplicatively with cell count, so the
// max-confluence brake and the over-confluence death hazard both engage as
// the culture fills in.
const SeedConfluence = 0.10

// Engine owns every VesselState created through SeedVessel. It is not
// safe for concurrent use from multiple goroutines -- spec.md 5 specifies a
// single-threaded cooperative model, with parallelism only across processes
// each owning disjoint vessels.
type Engine struct {
	store   *paramstore.Store
	rc      *runcontext.RunContext
	stress  stress.Model
	vessels map[types.VesselID]*types.VesselState
}

// New constructs an Engine bound to a Parameter Store, a RunContext, and a
// stress model.
func New(store *paramstore.Store, rc *runcontext.RunContext, model stress.Model) *Engine {
	return &Engine{
		store:   store,
		rc:      rc,
		stress:  model,
		vessels: make(map[types.VesselID]*types.VesselState),
	}
}

// Vessel returns a read-only snapshot of a vessel's current state.
func (e *Engine) Vessel(id types.VesselID) (types.VesselState, error) {
	v, ok := e.vessels[id]
	if !ok {
		return types.VesselState{}, &types.UnknownVesselError{VesselID: id}
	}
	return v.Snapshot(), nil
}

// VesselIDs returns every seeded vessel id, sorted for the stable
// between-vessel ordering spec.md 5 requires of the outer loop.
func (e *Engine) VesselIDs() []types.VesselID {
	ids := make([]types.VesselID, 0, len(e.vessels))
	for id := range e.vessels {
		ids = append(ids, id)
	}
	sortVesselIDs(ids)
	return ids
}

func sortVesselIDs(ids []types.VesselID) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}

func (e *Engine) mustVessel(id types.VesselID) (*types.VesselState, error) {
	v, ok := e.vessels[id]
	if !ok {
		return nil, &types.UnknownVesselError{VesselID: id}
	}
	if v.Harvested {
		return nil, &types.HarvestedVesselError{VesselID: id}
	}
	return v, nil
}

// SeedVessel creates a new vessel with a fresh plating context and an empty
// death ledger (spec.md 4.1, "seed_vessel"). initialViability defaults to
// 1.0 when zero is passed -- callers that
// truly want a zero-viability seed should pass a tiny positive epsilon,
// which is outside normal experimental usage.
func (e *Engine) SeedVessel(id types.VesselID, cellLineID types.CellLineID, initialCells, initialViability, nowH float64) error {
	if _, exists := e.vessels[id]; exists {
		return fmt.Errorf("vessel: seed_vessel: vessel %q already exists", id)
	}
	if _, err := e.store.CellLine(cellLineID); err != nil {
		return err
	}
	if initialViability == 0 {
		initialViability = 1.0
	}
	v := &types.VesselState{
		VesselID:        id,
		CellLineID:      cellLineID,
		SeedTimeH:       nowH,
		LastUpdateTimeH: nowH,
		LastFeedTimeH:   nowH,
		CellCount:       initialCells,
		Viability:       initialViability,
		Confluence:      SeedConfluence,
		Exposures:       make(map[types.CompoundID]*types.CompoundExposure),
		Particles:       []types.Particle{{Name: "primary", Weight: 1.0, Viability: initialViability}},
		Plating:         samplePlatingContext(e.rc, id),
	}
	e.vessels[id] = v
	return checkConservation(v, initialViability, 0, 0, nil)
}

func samplePlatingContext(rc *runcontext.RunContext, id types.VesselID) types.PlatingContext {
	stream := runcontext.NewStream(rc.RootSeed, "plating", string(id))
	return types.PlatingContext{
		PostDissociationStress: clamp01(0.05 + 0.05*stream.Float64()),
		Clumpiness:             clamp01(stream.Float64()),
	}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
