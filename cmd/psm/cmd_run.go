package main

import (
	"fmt"
	"io"
	"log"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	psm "github.com/lkovalevski/propensity-score"
	"github.com/lkovalevski/propensity-score/pkg/dataset"
	"github.com/lkovalevski/propensity-score/pkg/diagnostics"
	"github.com/lkovalevski/propensity-score/pkg/effect"
)

var runFlags struct {
	config  string
	csv     string
	plotDir string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the matching pipeline on a CSV dataset",
	Long: `Run loads a CSV dataset, fits the propensity model, matches treated
units to controls and prints the effect estimate with balance tables.

The column roles come from a YAML config:

  csv: data.csv
  covariates: [x1, x2]
  treatment: treat
  outcome: y
  plot_dir: out/

--csv and --plot-dir override the config when set.`,
	Args: cobra.NoArgs,
	RunE: runPipeline,
}

func init() {
	f := runCmd.Flags()
	f.StringVarP(&runFlags.config, "config", "c", "analysis.yaml", "Path to the YAML analysis config")
	f.StringVar(&runFlags.csv, "csv", "", "CSV dataset path (overrides the config)")
	f.StringVar(&runFlags.plotDir, "plot-dir", "", "Directory for score-distribution plots (overrides the config)")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(runFlags.config)
	if err != nil {
		return err
	}
	if runFlags.csv != "" {
		cfg.CSV = runFlags.csv
	}
	if runFlags.plotDir != "" {
		cfg.PlotDir = runFlags.plotDir
	}
	if cfg.CSV == "" {
		return fmt.Errorf("no CSV path given in config or --csv")
	}

	ds, err := dataset.ReadCSV(cfg.CSV, cfg.Covariates, cfg.Treatment, cfg.Outcome)
	if err != nil {
		return err
	}
	log.Printf("loaded %d units (%d treated) from %s", ds.Len(), ds.TreatedSubset().Len(), cfg.CSV)

	res, err := psm.Run(ds, func(o *psm.Options) {
		o.WithoutReplacement = cfg.WithoutReplacement
	})
	if err != nil {
		return err
	}

	renderBalance(cmd.OutOrStdout(), "Balance before matching", res.BalanceBefore)
	renderBalance(cmd.OutOrStdout(), "Balance after matching", res.BalanceAfter)
	renderSummary(cmd.OutOrStdout(), res)
	fmt.Fprintf(cmd.OutOrStdout(), "\nEstimated treatment effect: %s\n", effect.Format(res.Effect))

	if cfg.PlotDir == "" {
		return nil
	}

	// The two plots only read the (immutable) result, so they render
	// concurrently.
	var g errgroup.Group
	g.Go(func() error {
		return saveScorePlot(res.Scored, "Propensity scores before matching",
			filepath.Join(cfg.PlotDir, "scores_before.png"))
	})
	g.Go(func() error {
		return saveScorePlot(res.Matched, "Propensity scores after matching",
			filepath.Join(cfg.PlotDir, "scores_after.png"))
	})
	if err := g.Wait(); err != nil {
		return err
	}
	log.Printf("saved score plots to %s", cfg.PlotDir)
	return nil
}

func renderSummary(w io.Writer, res *psm.Result) {
	ksBefore, err := diagnostics.ScoreOverlap(res.Scored)
	if err != nil {
		log.Printf("score overlap (before): %v", err)
		return
	}
	ksAfter, err := diagnostics.ScoreOverlap(res.Matched)
	if err != nil {
		log.Printf("score overlap (after): %v", err)
		return
	}
	fmt.Fprintf(w, "\nMean |SMD|: %.4f before, %.4f after matching\n", res.SMDBefore, res.SMDAfter)
	fmt.Fprintf(w, "KS score distance: %.4f before, %.4f after matching\n", ksBefore, ksAfter)
}
