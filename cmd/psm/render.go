package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/lkovalevski/propensity-score/pkg/diagnostics"
)

// renderBalance prints grouped summary statistics as a text table, one
// row per column per treatment group.
func renderBalance(w io.Writer, title string, rows []diagnostics.GroupSummary) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetTitle(title)
	tw.AppendHeader(table.Row{"Column", "Group", "Count", "Mean", "Std", "P25", "P50", "P75"})
	for _, r := range rows {
		group := "control"
		if r.Treated {
			group = "treated"
		}
		tw.AppendRow(table.Row{
			r.Column,
			group,
			r.Count,
			fmt.Sprintf("%.4f", r.Mean),
			fmt.Sprintf("%.4f", r.Std),
			fmt.Sprintf("%.4f", r.P25),
			fmt.Sprintf("%.4f", r.P50),
			fmt.Sprintf("%.4f", r.P75),
		})
	}
	tw.SetStyle(table.StyleLight)
	tw.Render()
}
