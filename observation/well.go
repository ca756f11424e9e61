package observation

import (
	"fmt"
)

// WellContext identifies where and under what technical conditions a
// measurement was taken. Batch, Day, and Operator seed the RunContext's
// shared technical latents (spec.md 4.3); PlateFormat/Rows/Cols let the
// assay detect edge wells against the declared plate geometry.
type WellContext struct {
	PlateID     string `json:"plate_id"`
	WellPos     string `json:"well_pos"`
	Batch       string `json:"batch"`
	Day         string `json:"day"`
	Operator    string `json:"operator"`
	PlateFormat int    `json:"plate_format"`
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
}

// rowCol parses a well position like "A01" into zero-based (row, col).
// Non-plate vessels (flasks, PlateFormat == 0) never reach here.
func rowCol(wellPos string) (row, col int, err error) {
	if len(wellPos) < 2 {
		return 0, 0, fmt.Errorf("observation: malformed well position %q", wellPos)
	}
	rowChar := wellPos[0]
	if rowChar < 'A' || rowChar > 'Z' {
		return 0, 0, fmt.Errorf("observation: malformed well position %q", wellPos)
	}
	row = int(rowChar - 'A')
	var colNum int
	if _, err := fmt.Sscanf(wellPos[1:], "%d", &colNum); err != nil {
		return 0, 0, fmt.Errorf("observation: malformed well position %q: %w", wellPos, err)
	}
	return row, colNum - 1, nil
}

// IsEdgeWell reports whether w sits on the outer ring of its declared plate
// format (spec.md 4.3, "Edge wells"). Non-plate vessels are never edge
// wells.
func (w WellContext) IsEdgeWell() bool {
	if w.PlateFormat == 0 || w.Rows == 0 || w.Cols == 0 {
		return false
	}
	row, col, err := rowCol(w.WellPos)
	if err != nil {
		return false
	}
	return row == 0 || row == w.Rows-1 || col == 0 || col == w.Cols-1
}
