package main

import (
	"fmt"

	"github.com/insitro-labs/cellsim/paramstore"
	"github.com/spf13/cobra"
)

var validateCatalogueCmd = &cobra.Command{
	Use:   "validate-catalogue <path>",
	Args:  cobra.ExactArgs(1),
	Short: "Load a parameter catalogue and report its verification-tier breakdown",
	Long:  `Parses the YAML catalogue at <path> and summarizes how many rows fall in each parameter_verification tier. A catalogue with unresolvable lookups still loads -- verification tiers are informational, not a gate.`,
	RunE:  validateCatalogue,
}

func validateCatalogue(cmd *cobra.Command, args []string) error {
	path := args[0]
	cat, err := paramstore.LoadCatalogue(path)
	if err != nil {
		return fmt.Errorf("labctl validate-catalogue: %w", err)
	}
	report := paramstore.Validate(cat)
	fmt.Printf("catalogue %s: %s\n", path, report)
	fmt.Printf("  cell lines: %d\n", len(cat.CellLineGrowthParameters))
	fmt.Printf("  compounds: %d\n", len(cat.Compounds))
	fmt.Printf("  compound_ic50 rows: %d\n", len(cat.CompoundIC50))
	fmt.Printf("  vessel types: %d\n", len(cat.VesselTypes))
	fmt.Printf("  seeding densities: %d\n", len(cat.SeedingDensities))
	if report.NeedsValidation > 0 {
		fmt.Printf("warning: %d rows still need_validation\n", report.NeedsValidation)
	}
	return nil
}
