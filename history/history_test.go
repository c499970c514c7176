package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specgo/specgo/model"
)

func sampleRecord(id string, ts time.Time) model.RunRecord {
	return model.RunRecord{
		ID:        id,
		Timestamp: ts,
		Args:      []string{"specgo", "run"},
		WorkDir:   "/work/project",
		Duration:  3 * time.Second,
		Summary:   model.Summary{Total: 2, Passed: 1, Failed: 1},
		Results: []model.SpecResult{
			{Description: "adds", ContextPath: []string{"Calc"}, Status: model.StatusPassed},
			{Description: "subtracts", ContextPath: []string{"Calc"}, Index: 1, Status: model.StatusFailed,
				Failure: &model.Failure{Message: "overflow"}},
		},
	}
}

func TestNewRecordID(t *testing.T) {
	a, err := NewRecordID()
	require.NoError(t, err)
	assert.Len(t, a, 32)

	b, err := NewRecordID()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSaveAndLoadRoundtrip(t *testing.T) {
	root := t.TempDir()
	ts := time.Date(2026, 8, 31, 14, 30, 5, 0, time.UTC)
	rec := sampleRecord("deadbeefdeadbeef", ts)

	runDir, err := Save(root, rec)
	require.NoError(t, err)
	assert.Equal(t, "20260831-143005-deadbeef", filepath.Base(runDir))

	entries, err := LoadEntries(zerolog.Nop(), root)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0].Record
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.Args, got.Args)
	assert.Equal(t, rec.Summary, got.Summary)
	require.Len(t, got.Results, 2)
	assert.Equal(t, "overflow", got.Results[1].Failure.Message)
	assert.Equal(t, runDir, entries[0].FullPath)
}

func TestLoadEntriesSkipsCorruptReports(t *testing.T) {
	root := t.TempDir()
	_, err := Save(root, sampleRecord("cafecafecafecafe", time.Now()))
	require.NoError(t, err)

	badDir := filepath.Join(root, "20260101-000000-bad")
	require.NoError(t, os.MkdirAll(badDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(badDir, "report.json"), []byte("{not json"), 0644))

	entries, err := LoadEntries(zerolog.Nop(), root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "cafecafecafecafe", entries[0].Record.ID)
}

func TestLoadEntriesEmptyRoot(t *testing.T) {
	entries, err := LoadEntries(zerolog.Nop(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}
