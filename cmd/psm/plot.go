package main

import (
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/lkovalevski/propensity-score/pkg/dataset"
	"github.com/lkovalevski/propensity-score/pkg/diagnostics"
)

// saveScorePlot renders the treated and control propensity-score
// distributions as overlaid normalized histograms and saves them as a PNG.
func saveScorePlot(ds *dataset.Dataset, title, filename string) error {
	treated, control, err := diagnostics.ScoreDistribution(ds)
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Propensity score"
	p.Y.Label.Text = "Density"

	ht, err := plotter.NewHist(plotter.Values(treated), 30)
	if err != nil {
		return err
	}
	ht.Normalize(1)
	ht.FillColor = color.RGBA{R: 220, G: 60, B: 60, A: 128}
	p.Add(ht)

	hc, err := plotter.NewHist(plotter.Values(control), 30)
	if err != nil {
		return err
	}
	hc.Normalize(1)
	hc.FillColor = color.RGBA{B: 220, G: 60, R: 60, A: 128}
	p.Add(hc)

	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}
	return p.Save(6*vg.Inch, 4*vg.Inch, filename)
}
