package backup

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	state := NewStateManager(dir)

	last, err := state.Last()
	require.NoError(t, err)
	assert.Nil(t, last)

	result := &RunResult{
		RunID:      "ab12cd34",
		StartedAt:  time.Date(2026, 8, 23, 3, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2026, 8, 23, 3, 12, 0, 0, time.UTC),
		Phase:      PhaseDone,
		Archive:    filepath.Join(dir, "mongodb-20260823_030000.gz"),
		Target:     "aws",
	}
	require.NoError(t, state.Record(result))

	last, err = state.Last()
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, result, last)
}

func TestStateRecordOverwrites(t *testing.T) {
	t.Parallel()

	state := NewStateManager(t.TempDir())

	require.NoError(t, state.Record(&RunResult{RunID: "first", Phase: PhaseFailed, FailedIn: PhaseDumping, Error: "boom"}))
	require.NoError(t, state.Record(&RunResult{RunID: "second", Phase: PhaseDone}))

	last, err := state.Last()
	require.NoError(t, err)
	assert.Equal(t, "second", last.RunID)
	assert.Equal(t, PhaseDone, last.Phase)
}

func TestStateCreatesDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "deep", "path")
	state := NewStateManager(dir)
	require.NoError(t, state.Record(&RunResult{RunID: "x", Phase: PhaseDone}))
	assert.FileExists(t, filepath.Join(dir, StateFileName))
}
