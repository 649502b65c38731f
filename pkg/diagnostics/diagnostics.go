// Package diagnostics computes covariate-balance summaries for the
// matching pipeline. It is run on the dataset before and after matching
// with identical computations, so the two outputs are directly
// comparable. The package produces data only; rendering tables or charts
// is the consumer's concern.
package diagnostics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/lkovalevski/propensity-score/pkg/dataset"
	"github.com/lkovalevski/propensity-score/pkg/stats"
)

// GroupSummary describes one column within one treatment group.
type GroupSummary struct {
	Column  string
	Treated bool
	Count   int
	Mean    float64
	Std     float64
	P25     float64
	P50     float64
	P75     float64
}

// Summarize returns per-group summary statistics for every covariate and,
// when present, the propensity score. Rows come out column-major with the
// control group first, a stable order for side-by-side comparison.
func Summarize(ds *dataset.Dataset) ([]GroupSummary, error) {
	var out []GroupSummary
	for _, name := range summaryColumns(ds) {
		col, err := ds.Column(name)
		if err != nil {
			return nil, err
		}
		treatedVals, controlVals := split(ds, col)
		out = append(out,
			summarize(name, false, controlVals),
			summarize(name, true, treatedVals),
		)
	}
	return out, nil
}

// ScoreDistribution returns the raw propensity scores per treatment
// group, for external density or histogram rendering.
func ScoreDistribution(ds *dataset.Dataset) (treated, control []float64, err error) {
	scores := ds.Scores()
	if scores == nil {
		return nil, nil, &dataset.SchemaError{Column: dataset.ScoreColumn, Reason: "dataset has not been scored"}
	}
	treated, control = split(ds, scores)
	return treated, control, nil
}

// StandardizedMeanDifferences returns, per covariate, the difference in
// group means divided by the pooled standard deviation. Values shrink as
// balance improves.
func StandardizedMeanDifferences(ds *dataset.Dataset) (map[string]float64, error) {
	out := make(map[string]float64, len(ds.Covariates()))
	for _, name := range ds.Covariates() {
		col, err := ds.Column(name)
		if err != nil {
			return nil, err
		}
		treatedVals, controlVals := split(ds, col)
		out[name] = smd(treatedVals, controlVals)
	}
	return out, nil
}

// MeanAbsSMD collapses the per-covariate standardized mean differences
// into one balance scalar: the mean of their absolute values.
func MeanAbsSMD(ds *dataset.Dataset) (float64, error) {
	smds, err := StandardizedMeanDifferences(ds)
	if err != nil {
		return 0, err
	}
	sum := 0.0
	for _, v := range smds {
		sum += math.Abs(v)
	}
	return sum / float64(len(smds)), nil
}

// ScoreOverlap returns the Kolmogorov-Smirnov statistic between the
// treated and control score distributions: 0 means identical
// distributions, 1 means no overlap at all.
func ScoreOverlap(ds *dataset.Dataset) (float64, error) {
	treated, control, err := ScoreDistribution(ds)
	if err != nil {
		return 0, err
	}
	t := append([]float64(nil), treated...)
	c := append([]float64(nil), control...)
	sort.Float64s(t)
	sort.Float64s(c)
	return stat.KolmogorovSmirnov(t, nil, c, nil), nil
}

func summaryColumns(ds *dataset.Dataset) []string {
	cols := append([]string(nil), ds.Covariates()...)
	if ds.Scored() {
		cols = append(cols, dataset.ScoreColumn)
	}
	return cols
}

func summarize(name string, treated bool, vals []float64) GroupSummary {
	return GroupSummary{
		Column:  name,
		Treated: treated,
		Count:   len(vals),
		Mean:    stats.Mean(vals),
		Std:     stats.Std(vals),
		P25:     stats.Percentile(vals, 25),
		P50:     stats.Percentile(vals, 50),
		P75:     stats.Percentile(vals, 75),
	}
}

func split(ds *dataset.Dataset, col []float64) (treatedVals, controlVals []float64) {
	for i, v := range col {
		if ds.Treated(i) {
			treatedVals = append(treatedVals, v)
		} else {
			controlVals = append(controlVals, v)
		}
	}
	return treatedVals, controlVals
}

// smd is the standardized mean difference with the pooled-variance
// denominator. A zero pooled variance means both groups are constant; the
// difference is then already in outcome units and 0 only if the means
// agree.
func smd(treatedVals, controlVals []float64) float64 {
	mt, mc := stats.Mean(treatedVals), stats.Mean(controlVals)
	vt, vc := stats.Variance(treatedVals), stats.Variance(controlVals)
	pooled := math.Sqrt((vt + vc) / 2)
	if pooled == 0 {
		if mt == mc {
			return 0
		}
		return math.Inf(sign(mt - mc))
	}
	return (mt - mc) / pooled
}

func sign(v float64) int {
	if v < 0 {
		return -1
	}
	return 1
}
