package paramstore

import (
	"errors"
	"strings"
	"testing"

	"github.com/insitro-labs/cellsim/types"
)

func loadTestStore(t *testing.T) *Store {
	t.Helper()
	cat, err := LoadCatalogue("../testdata/catalogue.yaml")
	if err != nil {
		t.Fatalf("load catalogue: %v", err)
	}
	return NewStore(cat)
}

func TestCatalogueLookups(t *testing.T) {
	s := loadTestStore(t)

	cl, err := s.CellLine("iPSC_neuron")
	if err != nil {
		t.Fatalf("cell line lookup: %v", err)
	}
	if !cl.PostMitotic {
		t.Error("iPSC_neuron should be post-mitotic")
	}
	if cl.SensitivityMultiplier[types.MechanismMicrotubule] != 0.4 {
		t.Errorf("unexpected microtubule sensitivity %v", cl.SensitivityMultiplier[types.MechanismMicrotubule])
	}

	c, err := s.Compound("nocodazole")
	if err != nil {
		t.Fatalf("compound lookup: %v", err)
	}
	if c.MechanismAxis != types.MechanismMicrotubule {
		t.Errorf("unexpected mechanism axis %v", c.MechanismAxis)
	}

	vt, err := s.VesselType("384-well")
	if err != nil {
		t.Fatalf("vessel type lookup: %v", err)
	}
	if vt.Rows != 16 || vt.Cols != 24 {
		t.Errorf("unexpected 384-well geometry %dx%d", vt.Rows, vt.Cols)
	}

	sd, err := s.SeedingDensity("HEK293", "T75-flask")
	if err != nil {
		t.Fatalf("seeding density lookup: %v", err)
	}
	if sd.InitialCells != 1e6 {
		t.Errorf("unexpected T75 seeding density %v", sd.InitialCells)
	}
}

// TestLookupMissRaisesMissingParameter checks spec.md 7's "do not silently
// substitute defaults" rule: every miss is a typed error, never a zero value.
func TestLookupMissRaisesMissingParameter(t *testing.T) {
	s := loadTestStore(t)

	var missing *types.MissingParameterError
	if _, err := s.CellLine("CHO"); !errors.As(err, &missing) {
		t.Fatalf("expected MissingParameterError, got %v", err)
	}
	if missing.Kind != "cell_line" || missing.Key != "CHO" {
		t.Errorf("error should carry the missed kind and key, got %+v", missing)
	}
	if _, err := s.Compound("staurosporine"); !errors.As(err, &missing) {
		t.Errorf("expected MissingParameterError for an unknown compound, got %v", err)
	}
	if _, err := s.VesselType("6-well"); !errors.As(err, &missing) {
		t.Errorf("expected MissingParameterError for an unknown vessel type, got %v", err)
	}
	if _, err := s.SeedingDensity("iPSC_neuron", "T75-flask"); !errors.As(err, &missing) {
		t.Errorf("expected MissingParameterError for an unprofiled seeding pair, got %v", err)
	}
}

func TestPotencyScalarAbsentPairMeansNoAdjustment(t *testing.T) {
	s := loadTestStore(t)
	if got := s.PotencyScalar("thapsigargin", "iPSC_neuron"); got != 1.4 {
		t.Errorf("profiled pair should return the catalogued scalar, got %v", got)
	}
	if got := s.PotencyScalar("oligomycin", "HEK293"); got != 1.0 {
		t.Errorf("unprofiled pair means no empirical adjustment, got %v", got)
	}
}

func TestValidateTalliesVerificationTiers(t *testing.T) {
	cat, err := LoadCatalogue("../testdata/catalogue.yaml")
	if err != nil {
		t.Fatalf("load catalogue: %v", err)
	}
	r := Validate(cat)
	if r.Verified != 4 || r.LiteratureConsensus != 2 || r.Estimated != 1 || r.NeedsValidation != 1 {
		t.Errorf("unexpected verification tally %+v", r)
	}
	if !strings.Contains(r.String(), "needs_validation=1") {
		t.Errorf("report string should name the needs_validation count, got %q", r.String())
	}
}
