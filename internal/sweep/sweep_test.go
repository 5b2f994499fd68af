package sweep

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cuemby/clustersim/internal/sched"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCombinationsCount(t *testing.T) {
	combos := DefaultCombinations()
	assert.Len(t, combos, 4*2*10)
}

func TestDefaultCombinationsCoverRatioRange(t *testing.T) {
	combos := DefaultCombinations()
	seen := map[float64]bool{}
	for _, c := range combos {
		seen[c.Ratio] = true
	}
	assert.True(t, seen[0.2])
	assert.True(t, seen[2.0])
	assert.Len(t, seen, 10)
}

func TestLoadConfigParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sweep.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
combinations:
  - policy: fifo
    predict: false
    ratio: 1.0
  - policy: hrrn
    predict: true
    ratio: 0.5
`), 0o644))

	combos, err := LoadConfig(path)
	require.NoError(t, err)
	require.Len(t, combos, 2)
	assert.Equal(t, sched.FIFO, combos[0].Policy)
	assert.Equal(t, 1.0, combos[0].Ratio)
	assert.Equal(t, sched.HRRN, combos[1].Policy)
	assert.True(t, combos[1].Predict)
}

func TestLoadConfigRejectsUnknownPolicy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sweep.yaml")
	require.NoError(t, os.WriteFile(path, []byte("combinations:\n  - policy: bogus\n    ratio: 1.0\n"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestCombinationNameFormat(t *testing.T) {
	c := Combination{Policy: sched.FIFO, Predict: true, Ratio: 0.6}
	assert.Contains(t, c.Name(), "fifo")
	assert.Contains(t, c.Name(), "time_pred")
}

func writeTraceFiles(t *testing.T) (nodesPath, jobsPath string) {
	t.Helper()
	dir := t.TempDir()

	nodesPath = filepath.Join(dir, "nodes.txt")
	require.NoError(t, os.WriteFile(nodesPath, []byte("8 32 2\n"), 0o644))

	jobsPath = filepath.Join(dir, "jobs.txt")
	require.NoError(t, os.WriteFile(jobsPath, []byte(
		"0 1 10 5 5 1 8\n0 1 10 5 5 1 8\n"), 0o644))
	return nodesPath, jobsPath
}

func TestRunProducesOneResultFilePerCombination(t *testing.T) {
	nodesPath, jobsPath := writeTraceFiles(t)
	outDir := t.TempDir()

	combos := []Combination{
		{Policy: sched.FIFO, Predict: false, Ratio: 1.0},
		{Policy: sched.HRRN, Predict: true, Ratio: 1.0},
	}

	results, err := Run(context.Background(), nodesPath, jobsPath, combos, outDir)
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, r := range results {
		assert.FileExists(t, r.ResultPath)
		assert.Equal(t, 0, r.Dropped)
		assert.NotEmpty(t, r.RunID)
	}
	assert.NotEqual(t, results[0].RunID, results[1].RunID)
}

func TestRunIsolatesStatePerCombination(t *testing.T) {
	nodesPath, jobsPath := writeTraceFiles(t)
	outDir := t.TempDir()

	combos := []Combination{
		{Policy: sched.FIFO, Predict: false, Ratio: 1.0},
		{Policy: sched.FIFO, Predict: false, Ratio: 2.0},
	}

	results, err := Run(context.Background(), nodesPath, jobsPath, combos, outDir)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.NotEqual(t, results[0].ResultPath, results[1].ResultPath)
}
