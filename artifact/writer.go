// Package artifact implements spec.md 6's append-only run artifacts: the
// decisions, evidence, diagnostics, and refusals JSONL logs plus the
// terminal run summary. Writers refuse a non-monotonic cycle number at
// write time rather than writing it and discovering the break on replay
// (spec.md 7, "ledger refuses the append").
package artifact

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/insitro-labs/cellsim/types"
)

// Writer is an append-only JSONL log that enforces strictly monotonic
// cycle numbers across writes.
type Writer struct {
	name      string
	file      *os.File
	prevCycle int
	started   bool
}

// Open creates (or truncates) path as a fresh append-only log named name
// for error messages.
func Open(path, name string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("artifact: open %s log %s: %w", name, path, err)
	}
	return &Writer{name: name, file: f}, nil
}

// Append writes one JSON-encoded record for the given cycle, refusing the
// write with a types.IntegrityError if cycle is not strictly greater than
// the previous cycle written to this log.
func (w *Writer) Append(cycle int, record any) error {
	if w.started && cycle <= w.prevCycle {
		return &types.IntegrityError{Log: w.name, Cycle: cycle, PrevCycle: w.prevCycle, Reason: "non-monotonic cycle"}
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("artifact: marshal %s record: %w", w.name, err)
	}
	if _, err := w.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("artifact: write %s record: %w", w.name, err)
	}
	w.prevCycle = cycle
	w.started = true
	return nil
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	return w.file.Close()
}
