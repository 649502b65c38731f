package propensity

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lkovalevski/propensity-score/pkg/dataset"
)

// logisticSample draws n units with two standard-normal covariates and
// treatment assigned with probability sigmoid(w1*x1 + w2*x2).
func logisticSample(t *testing.T, rng *rand.Rand, n int, w1, w2 float64) *dataset.Dataset {
	t.Helper()
	rows := make([][]float64, n)
	for i := range rows {
		x1 := rng.NormFloat64()
		x2 := rng.NormFloat64()
		treat := 0.0
		if rng.Float64() < sigmoid(w1*x1+w2*x2) {
			treat = 1.0
		}
		rows[i] = []float64{x1, x2, treat, 0}
	}
	ds, err := dataset.Load(rows, []string{"x1", "x2", "treat", "y"}, []string{"x1", "x2"}, "treat", "y")
	require.NoError(t, err)
	return ds
}

func constantTreatment(t *testing.T, value float64) *dataset.Dataset {
	t.Helper()
	rows := [][]float64{
		{0.1, value, 1},
		{0.2, value, 2},
		{0.3, value, 3},
	}
	ds, err := dataset.Load(rows, []string{"x1", "treat", "y"}, []string{"x1"}, "treat", "y")
	require.NoError(t, err)
	return ds
}

func TestFitDegenerateTreatment(t *testing.T) {
	for _, value := range []float64{0, 1} {
		_, err := Fit(constantTreatment(t, value))
		var derr *DegenerateDataError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "treat", derr.Column)
		assert.Equal(t, value, derr.Value)
	}
}

func TestFitDoesNotConverge(t *testing.T) {
	ds := logisticSample(t, rand.New(rand.NewSource(7)), 100, 0.5, -0.25)
	model, err := Fit(ds, func(o *Options) {
		o.MaxEpochs = 2
		o.Tolerance = 1e-15
	})
	assert.Nil(t, model)
	var cerr *ConvergenceError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, 2, cerr.Epochs)
}

func TestFitRecoversCoefficients(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ds := logisticSample(t, rng, 4000, 0.5, -0.25)

	model, err := Fit(ds, func(o *Options) { o.Rand = rng })
	require.NoError(t, err)
	require.Len(t, model.Weights, 2)
	assert.InDelta(t, 0.5, model.Weights[0], 0.2)
	assert.InDelta(t, -0.25, model.Weights[1], 0.2)
	assert.InDelta(t, 0.0, model.Bias, 0.2)
}

func TestFitTrace(t *testing.T) {
	ds := logisticSample(t, rand.New(rand.NewSource(3)), 200, 1.0, 0.0)

	var losses []float64
	_, err := Fit(ds, func(o *Options) {
		o.Trace = func(epoch int, loss float64) { losses = append(losses, loss) }
	})
	require.NoError(t, err)
	require.NotEmpty(t, losses)
	// The fit criterion must improve over training.
	assert.Less(t, losses[len(losses)-1], losses[0])
}

func TestScoreIsPure(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	ds := logisticSample(t, rng, 500, 0.5, -0.25)
	model, err := Fit(ds, func(o *Options) { o.Rand = rng })
	require.NoError(t, err)

	first, err := model.Score(ds)
	require.NoError(t, err)
	second, err := model.Score(ds)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	for _, p := range first {
		assert.Greater(t, p, 0.0)
		assert.Less(t, p, 1.0)
	}
}

func TestScoreMissingCovariate(t *testing.T) {
	ds := logisticSample(t, rand.New(rand.NewSource(5)), 50, 0.5, -0.25)
	model, err := Fit(ds)
	require.NoError(t, err)

	model.Covariates = []string{"x1", "gone"}
	_, err = model.Score(ds)
	var serr *dataset.SchemaError
	require.ErrorAs(t, err, &serr)
}

func TestScoreHeldOutData(t *testing.T) {
	rng := rand.New(rand.NewSource(19))
	train := logisticSample(t, rng, 1000, 1.5, 0.0)
	model, err := Fit(train, func(o *Options) { o.Rand = rng })
	require.NoError(t, err)

	// Score data the model never saw, with x2 pinned at zero so the score
	// depends on x1 alone. The fitted x1 coefficient is positive, so the
	// score must increase with x1.
	x1 := []float64{-2, -1, 0, 1, 2}
	rows := make([][]float64, len(x1))
	for i, v := range x1 {
		rows[i] = []float64{v, 0, 0, 0}
	}
	held, err := dataset.Load(rows, []string{"x1", "x2", "treat", "y"}, []string{"x1", "x2"}, "treat", "y")
	require.NoError(t, err)

	scores, err := model.Score(held)
	require.NoError(t, err)
	for i := 1; i < len(scores); i++ {
		assert.Greater(t, scores[i], scores[i-1])
	}
}
