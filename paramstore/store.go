package paramstore

import (
	"fmt"
	"os"

	"github.com/insitro-labs/cellsim/types"
	"gopkg.in/yaml.v3"
)

// Store is the read-only, in-memory lookup index built from a Catalogue. It
// is built once at run start and never mutated afterward, matching the
// "read-only after initialization" discipline spec.md 5 requires of
// RunContext and applies equally here.
type Store struct {
	cellLines   map[types.CellLineID]CellLineParams
	compounds   map[types.CompoundID]Compound
	ic50        map[[2]string]CompoundIC50Entry
	vesselTypes map[string]VesselType
	seeding     map[[2]string]SeedingDensity
}

// LoadCatalogue reads a YAML-encoded Catalogue from path. Grounded in the
// teacher pack's config idiom (jhkimqd-chaos-utils/pkg/config.Config), which
// loads a single YAML document into a typed struct and returns a wrapped
// error rather than panicking.
func LoadCatalogue(path string) (*Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("paramstore: read catalogue %s: %w", path, err)
	}
	var cat Catalogue
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("paramstore: parse catalogue %s: %w", path, err)
	}
	return &cat, nil
}

// NewStore indexes a Catalogue for O(1) lookups. It performs no validation
// beyond building the indices; callers that want to fail fast on
// parameter_verification status should inspect entries themselves (see
// cmd/labctl's validate-catalogue command).
func NewStore(cat *Catalogue) *Store {
	s := &Store{
		cellLines:   make(map[types.CellLineID]CellLineParams, len(cat.CellLineGrowthParameters)),
		compounds:   make(map[types.CompoundID]Compound, len(cat.Compounds)),
		ic50:        make(map[[2]string]CompoundIC50Entry, len(cat.CompoundIC50)),
		vesselTypes: make(map[string]VesselType, len(cat.VesselTypes)),
		seeding:     make(map[[2]string]SeedingDensity, len(cat.SeedingDensities)),
	}
	for _, cl := range cat.CellLineGrowthParameters {
		s.cellLines[cl.CellLineID] = cl
	}
	for _, c := range cat.Compounds {
		s.compounds[c.CompoundID] = c
	}
	for _, e := range cat.CompoundIC50 {
		s.ic50[[2]string{string(e.CompoundID), string(e.CellLineID)}] = e
	}
	for _, vt := range cat.VesselTypes {
		s.vesselTypes[vt.Name] = vt
	}
	for _, sd := range cat.SeedingDensities {
		s.seeding[[2]string{string(sd.CellLineID), sd.VesselType}] = sd
	}
	return s
}

// CellLine looks up a cell line's parameters. Missing entries raise
// types.MissingParameterError rather than returning a zero value, per
// spec.md 7's "do not silently substitute defaults" rule.
func (s *Store) CellLine(id types.CellLineID) (CellLineParams, error) {
	cl, ok := s.cellLines[id]
	if !ok {
		return CellLineParams{}, &types.MissingParameterError{Kind: "cell_line", Key: string(id)}
	}
	return cl, nil
}

// Compound looks up a compound's parameters.
func (s *Store) Compound(id types.CompoundID) (Compound, error) {
	c, ok := s.compounds[id]
	if !ok {
		return Compound{}, &types.MissingParameterError{Kind: "compound", Key: string(id)}
	}
	return c, nil
}

// PotencyScalar looks up the empirical (compound, cell_line) potency scalar.
// Defaults to 1.0 only when the pair is legitimately absent from the table
// (not every compound has been profiled on every line) -- this is the one
// place a "default" exists, and it means "no empirical adjustment", not "this
// data is missing" (which would instead be a MissingParameterError against
// the compound or cell-line tables themselves).
func (s *Store) PotencyScalar(compound types.CompoundID, cellLine types.CellLineID) float64 {
	e, ok := s.ic50[[2]string{string(compound), string(cellLine)}]
	if !ok {
		return 1.0
	}
	return e.PotencyScalar
}

// VesselType looks up plate/flask geometry.
func (s *Store) VesselType(name string) (VesselType, error) {
	vt, ok := s.vesselTypes[name]
	if !ok {
		return VesselType{}, &types.MissingParameterError{Kind: "vessel_type", Key: name}
	}
	return vt, nil
}

// SeedingDensity looks up the default initial cell count for a (cell_line, vessel_type) pair.
func (s *Store) SeedingDensity(cellLine types.CellLineID, vesselType string) (SeedingDensity, error) {
	sd, ok := s.seeding[[2]string{string(cellLine), vesselType}]
	if !ok {
		return SeedingDensity{}, &types.MissingParameterError{Kind: "seeding_density", Key: string(cellLine) + "/" + vesselType}
	}
	return sd, nil
}
