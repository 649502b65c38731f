// Package effect computes the treatment-effect estimate on a matched
// sample: the difference in mean outcome between the treated and control
// groups. This is deliberately a plain mean difference — it assumes the
// matching already balanced the covariates and offers no standard errors
// or regression adjustment; callers needing those must layer them on top.
package effect

import (
	"fmt"

	"github.com/lkovalevski/propensity-score/pkg/dataset"
	"github.com/lkovalevski/propensity-score/pkg/stats"
)

// EmptyGroupError reports a treatment group with no units at estimation
// time. The matcher's contract makes this unreachable on its output, but
// the estimator checks its own preconditions rather than trusting the
// caller.
type EmptyGroupError struct {
	Group string
}

func (e *EmptyGroupError) Error() string {
	return fmt.Sprintf("effect: %s group is empty", e.Group)
}

// Estimate returns mean(outcome | treated) - mean(outcome | control) over
// the dataset, normally the matched sample.
func Estimate(ds *dataset.Dataset) (float64, error) {
	treat := ds.Treatment()
	outcome := ds.Outcome()

	var treated, control []float64
	for i, v := range treat {
		if v == 1 {
			treated = append(treated, outcome[i])
		} else {
			control = append(control, outcome[i])
		}
	}
	if len(treated) == 0 {
		return 0, &EmptyGroupError{Group: "treated"}
	}
	if len(control) == 0 {
		return 0, &EmptyGroupError{Group: "control"}
	}
	return stats.Mean(treated) - stats.Mean(control), nil
}

// Format renders an estimate for display with two decimal places.
func Format(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
