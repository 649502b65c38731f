// Package psm estimates the causal effect of a binary treatment from
// observational data via propensity score matching: fit a logistic
// treatment-probability model, pair each treated unit with the control of
// nearest score, and take the mean outcome difference on the matched
// sample, with balance diagnostics before and after matching.
package psm

import (
	"fmt"

	"github.com/lkovalevski/propensity-score/pkg/dataset"
	"github.com/lkovalevski/propensity-score/pkg/diagnostics"
	"github.com/lkovalevski/propensity-score/pkg/effect"
	"github.com/lkovalevski/propensity-score/pkg/match"
	"github.com/lkovalevski/propensity-score/pkg/propensity"
)

// Options configure a pipeline run.
type Options struct {
	// WithoutReplacement switches to the explicit without-replacement
	// matching variant. The default, with replacement, is the intended
	// policy: it maximizes per-pair match quality at the cost of reusing
	// controls.
	WithoutReplacement bool

	// Order is the treated processing order for without-replacement
	// matching; nil means descending propensity score.
	Order func(a, b match.Unit) bool

	// Propensity collects fit options passed through to propensity.Fit.
	Propensity []func(o *propensity.Options)
}

// Result carries every intermediate and final product of one run, so
// callers can report, render or audit any stage.
type Result struct {
	Model   *propensity.Model
	Scored  *dataset.Dataset // input dataset plus the propensity column
	Pairs   *match.PairSet
	Matched *dataset.Dataset

	Effect float64

	BalanceBefore []diagnostics.GroupSummary
	BalanceAfter  []diagnostics.GroupSummary
	SMDBefore     float64 // mean absolute standardized covariate difference, pre-match
	SMDAfter      float64
}

// Run executes the full pipeline on a loaded dataset. Each stage
// validates its own preconditions and fails fast; a returned error names
// the stage that failed and no partial Result is produced.
func Run(ds *dataset.Dataset, optFns ...func(o *Options)) (*Result, error) {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}

	model, err := propensity.Fit(ds, opts.Propensity...)
	if err != nil {
		return nil, fmt.Errorf("fit propensity model: %w", err)
	}
	scores, err := model.Score(ds)
	if err != nil {
		return nil, fmt.Errorf("score dataset: %w", err)
	}
	scored, err := ds.WithScores(scores)
	if err != nil {
		return nil, fmt.Errorf("attach scores: %w", err)
	}

	treated := units(scored.TreatedSubset())
	controls := units(scored.ControlSubset())
	var pairs *match.PairSet
	if opts.WithoutReplacement {
		pairs, err = match.MatchWithoutReplacement(treated, controls, opts.Order)
	} else {
		pairs, err = match.Match(treated, controls)
	}
	if err != nil {
		return nil, fmt.Errorf("match units: %w", err)
	}

	matched, err := scored.Gather(pairs.MatchedIDs())
	if err != nil {
		return nil, fmt.Errorf("build matched dataset: %w", err)
	}

	ate, err := effect.Estimate(matched)
	if err != nil {
		return nil, fmt.Errorf("estimate effect: %w", err)
	}

	balanceBefore, err := diagnostics.Summarize(scored)
	if err != nil {
		return nil, fmt.Errorf("summarize pre-match balance: %w", err)
	}
	balanceAfter, err := diagnostics.Summarize(matched)
	if err != nil {
		return nil, fmt.Errorf("summarize post-match balance: %w", err)
	}
	smdBefore, err := diagnostics.MeanAbsSMD(scored)
	if err != nil {
		return nil, fmt.Errorf("pre-match balance: %w", err)
	}
	smdAfter, err := diagnostics.MeanAbsSMD(matched)
	if err != nil {
		return nil, fmt.Errorf("post-match balance: %w", err)
	}

	return &Result{
		Model:         model,
		Scored:        scored,
		Pairs:         pairs,
		Matched:       matched,
		Effect:        ate,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceAfter,
		SMDBefore:     smdBefore,
		SMDAfter:      smdAfter,
	}, nil
}

// units extracts (identifier, score) pairs from a scored subset.
func units(ds *dataset.Dataset) []match.Unit {
	scores := ds.Scores()
	out := make([]match.Unit, ds.Len())
	for i := range out {
		out[i] = match.Unit{ID: ds.ID(i), Score: scores[i]}
	}
	return out
}
