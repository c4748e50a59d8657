package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/domain"
)

func TestNewRunID_HasPrefixAndIsSortable(t *testing.T) {
	t1 := NewRunID(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	t2 := NewRunID(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
	assert.Contains(t, t1, "dsstar_")
	assert.Less(t, t1, t2)
}

func TestArtifactStore_WriteIterationWritesOnlyProvidedFiles(t *testing.T) {
	root := t.TempDir()
	s := Open(root, nil)
	runID, layout := s.NewRun(time.Now())
	require.Contains(t, runID, "dsstar_")

	err := s.WriteIteration(context.Background(), layout, 1, IterationArtifacts{
		Prompt: "a prompt",
		HTML:   "<html></html>",
	})
	require.NoError(t, err)

	assert.FileExists(t, layout.PromptPath(1))
	assert.FileExists(t, layout.HTMLPath(1))
	assert.NoFileExists(t, layout.PlanPath(1))
	assert.NoFileExists(t, layout.SmokeTestPath(1))
}

func TestArtifactStore_FinalHTMLWrittenEvenOnFailure(t *testing.T) {
	root := t.TempDir()
	s := Open(root, nil)
	_, layout := s.NewRun(time.Now())

	require.NoError(t, s.WriteFinalHTML(layout, "<html>last seen</html>"))

	data, err := os.ReadFile(layout.FinalHTMLPath())
	require.NoError(t, err)
	assert.Equal(t, "<html>last seen</html>", string(data))
}

func TestArtifactStore_SummaryJSONIsPrettyPrinted(t *testing.T) {
	root := t.TempDir()
	s := Open(root, nil)
	_, layout := s.NewRun(time.Now())

	require.NoError(t, s.WriteSummary(layout, &domain.RunSummary{RunID: "x", Success: true}))

	data, err := os.ReadFile(layout.SummaryPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"run_id\"")
}

func TestWriteAtomic_NoPartialFileVisibleUnderFinalName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")
	require.NoError(t, writeAtomic(path, []byte("hello"), 0o644))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.json", entries[0].Name())
}

func TestRunIndex_RecordAndList(t *testing.T) {
	root := t.TempDir()
	idx, err := OpenRunIndex(root)
	require.NoError(t, err)
	defer idx.Close()

	idx.Record(&domain.RunSummary{RunID: "dsstar_1", Success: true, TotalIterations: 2, Timestamp: time.Now()})

	rows, err := idx.List(10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "dsstar_1", rows[0].RunID)
	assert.True(t, rows[0].Success)
}
