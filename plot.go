package main

import (
	"path"

	"github.com/spf13/cobra"

	"github.com/zeu5/managed-rl-env/analysis"
	"github.com/zeu5/managed-rl-env/record"
)

// Plot rebuilds the metric curves from a recorded run and renders them
func Plot(saveDir string) error {
	records, err := record.ReadJSONL(path.Join(saveDir, "records.jsonl"))
	if err != nil {
		return err
	}
	curves := analysis.CurvesFromRecords(records)
	analysis.Summarize(curves)
	return analysis.PlotCurves(curves, "Recorded run", path.Join(saveDir, "records.png"))
}

func PlotCommand() *cobra.Command {
	return &cobra.Command{
		Use: "plot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Plot(saveDir)
		},
	}
}
