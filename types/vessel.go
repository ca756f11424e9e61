package types

// DeathLedger is the per-cause death-accounting bucket set. Every field is a
// fraction of the vessel's initial viable mass; the invariant enforced by the
// vessel physics engine is Sum(fields) <= (1 - viability) + ConservationEpsilon.
type DeathLedger struct {
	Compound             float64 `json:"death_compound"`
	Starvation           float64 `json:"death_starvation"`
	MitoticCatastrophe   float64 `json:"death_mitotic_catastrophe"`
	ERStress             float64 `json:"death_er_stress"`
	MitoDysfunction      float64 `json:"death_mito_dysfunction"`
	Confluence           float64 `json:"death_confluence"`
	Unknown              float64 `json:"death_unknown"`
	Unattributed         float64 `json:"death_unattributed"`
}

// CreditedSum returns the total credited death mass, excluding Unattributed (which is
// derived from the others, never an independent credit).
func (d DeathLedger) CreditedSum() float64 {
	return d.Compound + d.Starvation + d.MitoticCatastrophe + d.ERStress +
		d.MitoDysfunction + d.Confluence + d.Unknown
}

// Total returns every bucket including the derived Unattributed residual.
func (d DeathLedger) Total() float64 {
	return d.CreditedSum() + d.Unattributed
}

// LatentAxes holds the slow cellular-state variables that gate morphology and
// long-horizon death, each clamped to [0, 1].
type LatentAxes struct {
	ERStress             float64 `json:"er_stress"`
	MitoDysfunction      float64 `json:"mito_dysfunction"`
	TransportDysfunction float64 `json:"transport_dysfunction"`
}

// CompoundExposure records one compound's dosing history on a vessel, with
// the adjusted dose-response parameters frozen at treat_with_compound time so
// that later hazard and morphology renders stay coherent (spec.md 4.2,
// "cross-modality coherence").
type CompoundExposure struct {
	CompoundID      CompoundID `json:"compound_id"`
	DoseUM          float64    `json:"dose_uM"`
	StartTimeH      float64    `json:"start_time"`
	IC50UMAdjusted  float64    `json:"ic50_uM_adjusted"`
	HillSlope       float64    `json:"hill_slope"`
	PotencyScalar   float64    `json:"potency_scalar"`
	WashedOut       bool       `json:"washed_out"`
}

// Particle is one member of a vessel's epistemic-particle ensemble. In the
// physical-mixture regime this spec requires (spec.md 9, Open Questions),
// every particle's Viability is kept synced to the owning vessel's
// Viability; only Weight and Name vary between particles.
type Particle struct {
	Name      string  `json:"name"`
	Weight    float64 `json:"weight"`
	Viability float64 `json:"viability"`
}

// PlatingContext is sampled once at seed or passage time and held fixed for
// the vessel's lifetime until the next passage.
type PlatingContext struct {
	PostDissociationStress float64 `json:"post_dissociation_stress"`
	Clumpiness             float64 `json:"clumpiness"`
}

// StepScratch holds per-substep working values. It is never persisted, and
// Snapshot clears it; the engine's hazard-composition substep does not write
// to it, so it carries no hazard breakdown.
type StepScratch struct {
	KillTotal      float64
	HazardByBucket map[string]float64
}

// VesselState is the full mutable state of one logical well or flask. It is
// exclusively owned by the vessel physics engine: observation code reads
// immutable snapshots and never mutates it (spec.md 3, "Ownership").
type VesselState struct {
	VesselID        VesselID   `json:"vessel_id"`
	CellLineID      CellLineID `json:"cell_line_id"`
	SeedTimeH       float64    `json:"seed_time"`
	LastUpdateTimeH float64    `json:"last_update_time"`
	LastFeedTimeH   float64    `json:"last_feed_time"`

	CellCount   float64 `json:"cell_count"`
	Viability   float64 `json:"viability"`
	Confluence  float64 `json:"confluence"`

	Death  DeathLedger `json:"death"`
	Latent LatentAxes  `json:"latent"`

	Exposures map[CompoundID]*CompoundExposure `json:"exposures"`

	Particles []Particle `json:"particles"`

	Plating PlatingContext `json:"plating"`

	// Harvested marks a vessel that has been terminally sampled. Harvested
	// vessels remain in the engine's index (their final state is still a
	// valid read target for observation) but refuse further physics
	// operations.
	Harvested bool `json:"harvested"`

	Scratch StepScratch `json:"-"`
}

// Snapshot returns a deep copy safe to hand to observation code, which must
// never be able to mutate the engine's live state through an aliased map or
// slice.
func (v *VesselState) Snapshot() VesselState {
	cp := *v
	cp.Exposures = make(map[CompoundID]*CompoundExposure, len(v.Exposures))
	for id, exp := range v.Exposures {
		e := *exp
		cp.Exposures[id] = &e
	}
	cp.Particles = append([]Particle(nil), v.Particles...)
	cp.Scratch = StepScratch{}
	return cp
}
