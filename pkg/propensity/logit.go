// Package propensity fits the covariate-conditional treatment-probability
// model: an L2-regularized logistic regression trained by full-batch
// gradient descent. The fitted model is immutable; scoring is a pure
// evaluation that never needs treatment labels.
package propensity

import (
	"math"
	"math/rand"
	"runtime"
	"sync"

	"github.com/lkovalevski/propensity-score/pkg/dataset"
	"github.com/lkovalevski/propensity-score/pkg/optim"
	"github.com/lkovalevski/propensity-score/pkg/stats"
)

// probEps keeps scored probabilities inside the open interval (0,1) and
// the log-likelihood finite.
const probEps = 1e-12

// Options are the fit hyperparameters.
type Options struct {
	LearningRate float64
	MaxEpochs    int
	Tolerance    float64 // convergence threshold on the max coefficient delta per epoch
	WeightDecay  float64 // L2 penalty on the coefficients
	Rand         *rand.Rand
	Trace        func(epoch int, loss float64)
}

// DefaultOptions are tuned for standardized covariates; Fit standardizes
// internally, so they rarely need changing.
var DefaultOptions = Options{
	LearningRate: 0.5,
	MaxEpochs:    20000,
	Tolerance:    1e-7,
	WeightDecay:  1e-4,
}

// Model is an immutable fitted logistic model mapping covariates to
// P(treatment=1 | covariates). Weights are on the raw covariate scale,
// ordered as Covariates.
type Model struct {
	Weights    []float64
	Bias       float64
	Covariates []string
}

// Fit trains a logistic model on the dataset's covariates and treatment
// column. It fails with *DegenerateDataError when the treatment column is
// constant, and with *ConvergenceError when gradient descent does not
// stabilize; it never falls back to an arbitrary fit.
func Fit(ds *dataset.Dataset, optFns ...func(o *Options)) (*Model, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(1))
	}

	y := ds.Treatment()
	if len(y) == 0 {
		return nil, &DegenerateDataError{Column: ds.TreatmentName()}
	}
	ones := 0
	for _, v := range y {
		if v == 1 {
			ones++
		}
	}
	if ones == 0 || ones == len(y) {
		return nil, &DegenerateDataError{Column: ds.TreatmentName(), Value: y[0]}
	}

	// Standardize each covariate column for optimizer stability; the
	// coefficients are mapped back to the raw scale below.
	X := ds.CovariateMatrix()
	n, d := len(X), len(ds.Covariates())
	means := make([]float64, d)
	stds := make([]float64, d)
	for j := 0; j < d; j++ {
		col := make([]float64, n)
		for i := range X {
			col[i] = X[i][j]
		}
		means[j] = stats.Mean(col)
		stds[j] = stats.Std(col)
		if stds[j] == 0 {
			stds[j] = 1
		}
	}
	Z := make([][]float64, n)
	for i, row := range X {
		z := make([]float64, d)
		for j, v := range row {
			z[j] = (v - means[j]) / stds[j]
		}
		Z[i] = z
	}

	// Small random init breaks symmetry; the source is explicit so fits
	// are reproducible.
	w := make([]float64, d)
	for j := range w {
		w[j] = opts.Rand.NormFloat64() * 0.01
	}
	b := 0.0

	opt := optim.NewGradientDescent(opts.LearningRate, opts.WeightDecay)
	p := make([]float64, n)
	gW := make([]float64, d)
	lastDelta := math.Inf(1)

	for ep := 0; ep < opts.MaxEpochs; ep++ {
		for i, z := range Z {
			sum := b
			for j, v := range z {
				sum += w[j] * v
			}
			p[i] = sigmoid(sum)
		}
		if opts.Trace != nil {
			opts.Trace(ep, negLogLikelihood(y, p))
		}

		for j := range gW {
			gW[j] = 0
		}
		gb := 0.0
		for i, z := range Z {
			diff := (p[i] - y[i]) / float64(n)
			for j, v := range z {
				gW[j] += diff * v
			}
			gb += diff
		}

		prevB := b
		prev := append([]float64(nil), w...)
		opt.Step(w, gW)
		b -= opts.LearningRate * gb

		lastDelta = math.Abs(b - prevB)
		for j := range w {
			if dv := math.Abs(w[j] - prev[j]); dv > lastDelta {
				lastDelta = dv
			}
		}
		if math.IsNaN(lastDelta) || math.IsInf(lastDelta, 0) {
			return nil, &ConvergenceError{Epochs: ep + 1, Delta: lastDelta}
		}
		if lastDelta < opts.Tolerance {
			return newModel(w, b, means, stds, ds.Covariates()), nil
		}
	}
	return nil, &ConvergenceError{Epochs: opts.MaxEpochs, Delta: lastDelta}
}

// newModel maps standardized-scale coefficients back to the raw covariate
// scale so Score can be applied to unstandardized data.
func newModel(w []float64, b float64, means, stds []float64, covariates []string) *Model {
	raw := make([]float64, len(w))
	bias := b
	for j, wj := range w {
		raw[j] = wj / stds[j]
		bias -= wj * means[j] / stds[j]
	}
	return &Model{
		Weights:    raw,
		Bias:       bias,
		Covariates: append([]string(nil), covariates...),
	}
}

// Score evaluates the model on a dataset, returning one probability in
// (0,1) per row. It is a pure function: the model is not modified, the
// dataset's treatment labels are not read, and repeated calls with the
// same input produce identical results. Rows are scored in parallel.
func (m *Model) Score(ds *dataset.Dataset) ([]float64, error) {
	cols := make([][]float64, len(m.Covariates))
	for j, name := range m.Covariates {
		col, err := ds.Column(name)
		if err != nil {
			return nil, err
		}
		cols[j] = col
	}

	n := ds.Len()
	out := make([]float64, n)
	var wg sync.WaitGroup
	workers := runtime.GOMAXPROCS(0)
	rowsPerWorker := (n + workers - 1) / workers

	for wk := 0; wk < workers; wk++ {
		start := wk * rowsPerWorker
		end := min(start+rowsPerWorker, n)
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				sum := m.Bias
				for j := range m.Weights {
					sum += m.Weights[j] * cols[j][i]
				}
				out[i] = clampProb(sigmoid(sum))
			}
		}(start, end)
	}
	wg.Wait()
	return out, nil
}

func sigmoid(x float64) float64 { return 1.0 / (1.0 + math.Exp(-x)) }

func clampProb(p float64) float64 {
	return math.Min(math.Max(p, probEps), 1-probEps)
}

// negLogLikelihood is the mean binary cross-entropy of the predictions,
// with probabilities clamped away from 0 and 1.
func negLogLikelihood(y, p []float64) float64 {
	s := 0.0
	for i := range y {
		pi := clampProb(p[i])
		s += -(y[i]*math.Log(pi) + (1-y[i])*math.Log(1-pi))
	}
	return s / float64(len(y))
}
