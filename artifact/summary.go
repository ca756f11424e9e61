package artifact

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteSummary writes the terminal run summary as a single pretty-printed
// JSON document (not JSONL -- it is written once, at run end, unlike the
// four append-only logs).
func WriteSummary(path string, summary RunSummary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("artifact: marshal run summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("artifact: write run summary %s: %w", path, err)
	}
	return nil
}
