// Command psm is the command-line front end for the matching pipeline:
// it loads a tabular dataset, runs propensity estimation, matching and
// effect estimation, and renders balance tables and score-distribution
// plots. All statistical work lives in the library packages; this wrapper
// only moves data in and results out.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "psm",
	Short: "Estimate treatment effects via propensity score matching",
	Long: `psm estimates the causal effect of a binary treatment on an outcome
from observational data. It fits a logistic propensity model, pairs each
treated unit with the control of nearest score, and reports the mean
outcome difference on the matched sample together with covariate-balance
diagnostics before and after matching.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(simulateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
