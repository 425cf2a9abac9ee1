package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"ftpswatch/internal/preflight"
)

// renderResults draws preflight results as a rounded table. Status cells are
// colored only when colorize is set.
func renderResults(results []preflight.Result, colorize bool) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Check", "Status", "Detail"})

	for _, r := range results {
		tw.AppendRow(table.Row{r.Name, statusLabel(r.Passed, colorize), r.Detail})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignCenter, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignLeft, AlignHeader: text.AlignLeft, WidthMax: 80},
	})
	return tw.Render()
}

func statusLabel(passed, colorize bool) string {
	label, colors := "FAIL", text.Colors{text.FgRed, text.Bold}
	if passed {
		label, colors = "OK", text.Colors{text.FgGreen}
	}
	if colorize {
		return colors.Sprint(label)
	}
	return label
}
