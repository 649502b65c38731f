package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lkovalevski/propensity-score/pkg/dataset"
)

func load(t *testing.T, rows [][]float64) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Load(rows, []string{"x1", "treat", "y"}, []string{"x1"}, "treat", "y")
	require.NoError(t, err)
	return ds
}

func TestSummarize(t *testing.T) {
	ds := load(t, [][]float64{
		{1, 1, 0},
		{3, 1, 0},
		{2, 0, 0},
		{4, 0, 0},
		{6, 0, 0},
	})

	rows, err := Summarize(ds)
	require.NoError(t, err)
	// One covariate, no score column: control row then treated row.
	require.Len(t, rows, 2)

	control := rows[0]
	assert.Equal(t, "x1", control.Column)
	assert.False(t, control.Treated)
	assert.Equal(t, 3, control.Count)
	assert.InDelta(t, 4.0, control.Mean, 1e-12)
	assert.InDelta(t, 4.0, control.P50, 1e-12)

	treated := rows[1]
	assert.True(t, treated.Treated)
	assert.Equal(t, 2, treated.Count)
	assert.InDelta(t, 2.0, treated.Mean, 1e-12)
	assert.InDelta(t, 1.5, treated.P25, 1e-12)
	assert.InDelta(t, 2.5, treated.P75, 1e-12)
}

func TestSummarizeIncludesScoreColumn(t *testing.T) {
	ds := load(t, [][]float64{
		{1, 1, 0},
		{2, 0, 0},
	})
	scored, err := ds.WithScores([]float64{0.7, 0.3})
	require.NoError(t, err)

	rows, err := Summarize(scored)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, dataset.ScoreColumn, rows[2].Column)
	assert.Equal(t, dataset.ScoreColumn, rows[3].Column)
	assert.InDelta(t, 0.3, rows[2].Mean, 1e-12) // control group
	assert.InDelta(t, 0.7, rows[3].Mean, 1e-12) // treated group
}

func TestScoreDistribution(t *testing.T) {
	ds := load(t, [][]float64{
		{1, 1, 0},
		{2, 0, 0},
		{3, 0, 0},
	})

	_, _, err := ScoreDistribution(ds)
	var serr *dataset.SchemaError
	require.ErrorAs(t, err, &serr)

	scored, err := ds.WithScores([]float64{0.9, 0.2, 0.4})
	require.NoError(t, err)
	treated, control, err := ScoreDistribution(scored)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.9}, treated)
	assert.Equal(t, []float64{0.2, 0.4}, control)
}

func TestStandardizedMeanDifferences(t *testing.T) {
	// Treated mean 2, control mean 4, both variances 1 -> SMD = -2.
	ds := load(t, [][]float64{
		{1, 1, 0},
		{3, 1, 0},
		{3, 0, 0},
		{5, 0, 0},
	})

	smds, err := StandardizedMeanDifferences(ds)
	require.NoError(t, err)
	assert.InDelta(t, -2.0, smds["x1"], 1e-12)

	mean, err := MeanAbsSMD(ds)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, mean, 1e-12)
}

func TestScoreOverlap(t *testing.T) {
	ds := load(t, [][]float64{
		{1, 1, 0},
		{2, 1, 0},
		{3, 0, 0},
		{4, 0, 0},
	})

	identical, err := ds.WithScores([]float64{0.2, 0.8, 0.2, 0.8})
	require.NoError(t, err)
	ks, err := ScoreOverlap(identical)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, ks, 1e-12)

	disjoint, err := ds.WithScores([]float64{0.8, 0.9, 0.1, 0.2})
	require.NoError(t, err)
	ks, err = ScoreOverlap(disjoint)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, ks, 1e-12)
}
