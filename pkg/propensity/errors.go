package propensity

import "fmt"

// DegenerateDataError reports a treatment column containing only one
// class; the probability of treatment is then undefined.
type DegenerateDataError struct {
	Column string
	Value  float64
}

func (e *DegenerateDataError) Error() string {
	return fmt.Sprintf("propensity: treatment column %q is constant at %g, both classes are required", e.Column, e.Value)
}

// ConvergenceError reports a fit that did not stabilize within the epoch
// budget. The partial coefficients are discarded; a non-converged model
// is never returned.
type ConvergenceError struct {
	Epochs int
	Delta  float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("propensity: fit did not converge after %d epochs (last max coefficient delta %g)", e.Epochs, e.Delta)
}
