// Command labctl drives the vessel simulator from the command line, grounded
// in the teacher pack's chaos-runner CLI (jhkimqd-chaos-utils/cmd/chaos-runner):
// a cobra root command with persistent --config/--verbose flags and one
// subcommand per file.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:     "labctl",
	Short:   "Deterministic virtual cell-culture laboratory",
	Long:    `labctl runs simulated vessel experiments under chemical perturbation, enforcing conservation invariants, epistemic-debt bookkeeping, and governance gating end to end.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "run config file (default: built-in defaults)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCatalogueCmd)
	rootCmd.AddCommand(replayCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
