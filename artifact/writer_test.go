package artifact

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"

	"github.com/insitro-labs/cellsim/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterAppendsMonotonicCycles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evidence.jsonl")
	w, err := Open(path, "evidence")
	require.NoError(t, err)

	require.NoError(t, w.Append(0, EvidenceRecord{Cycle: 0, EvidenceTimeH: 0}))
	require.NoError(t, w.Append(1, EvidenceRecord{Cycle: 1, EvidenceTimeH: 4}))
	require.NoError(t, w.Append(2, EvidenceRecord{Cycle: 2, EvidenceTimeH: 8}))
	require.NoError(t, w.Close())

	t.Run("lines_match_appended_cycles", func(t *testing.T) {
		f, err := os.Open(path)
		require.NoError(t, err)
		defer f.Close()

		var lines []string
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		require.NoError(t, scanner.Err())
		assert.Len(t, lines, 3)
		assert.Contains(t, lines[0], `"cycle":0`)
		assert.Contains(t, lines[1], `"cycle":1`)
		assert.Contains(t, lines[2], `"cycle":2`)
	})
}

func TestWriterRefusesNonMonotonicCycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diagnostics.jsonl")
	w, err := Open(path, "diagnostics")
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Append(3, DiagnosticsRecord{Cycle: 3}))

	err = w.Append(3, DiagnosticsRecord{Cycle: 3})
	require.Error(t, err)
	var integrity *types.IntegrityError
	assert.ErrorAs(t, err, &integrity)

	err = w.Append(1, DiagnosticsRecord{Cycle: 1})
	require.Error(t, err)
	assert.ErrorAs(t, err, &integrity)
}

func TestWriterFirstAppendAcceptsCycleZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decisions.jsonl")
	w, err := Open(path, "decisions")
	require.NoError(t, err)
	defer w.Close()

	assert.NoError(t, w.Append(0, struct {
		Cycle int `json:"cycle"`
	}{Cycle: 0}))
}
