package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/piwi3910/marcenapp/internal/importer"
	"github.com/piwi3910/marcenapp/internal/model"
)

var estimateWaste float64

var estimateCmd = &cobra.Command{
	Use:   "estimate <parts-file>",
	Short: "Estimate sheets to buy and edge banding needed",
	Args:  cobra.ExactArgs(1),
	RunE:  runEstimate,
}

func init() {
	estimateCmd.Flags().Float64Var(&estimateWaste, "waste", -1, "Waste allowance in percent (default from config)")
	rootCmd.AddCommand(estimateCmd)
}

func runEstimate(cmd *cobra.Command, args []string) error {
	j, err := loadJob(args[0], cfg.NestingSettings(), importer.DefaultOptions())
	if err != nil {
		return err
	}
	waste := cfg.WastePercent
	if estimateWaste >= 0 {
		waste = estimateWaste
	}

	out := cmd.OutOrStdout()
	printEstimate(out, model.EstimateByMaterial(j.Parts, j.Settings, waste))
	printEdgeBanding(out, model.CalculateEdgeBanding(j.Parts, waste), model.CalculatePerPartEdgeBanding(j.Parts))
	return nil
}

func printEstimate(w io.Writer, estimates []model.PurchaseEstimate) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MATERIAL\tAREA m2\tSHEETS (EXACT)\tMIN\tTO BUY\tCOST")
	var cost float64
	for _, e := range estimates {
		fmt.Fprintf(tw, "%s\t%.3f\t%.2f\t%d\t%d\t%.2f\n",
			e.Material, e.TotalSquareMeters, e.SheetsNeededExact, e.SheetsNeededMin, e.SheetsWithWaste, e.EstimatedCost)
		cost += e.EstimatedCost
	}
	tw.Flush()
	fmt.Fprintf(w, "Total cost %.2f\n", cost)
}

func printEdgeBanding(w io.Writer, sum model.EdgeBandingSummary, rows []model.PartEdgeBanding) {
	if sum.PieceCount == 0 {
		fmt.Fprintln(w, "\nNo edge banding")
		return
	}
	fmt.Fprintf(w, "\nEdge banding: %.2f m on %d edges of %d pieces, %.2f m with %.0f%% waste\n",
		sum.TotalLinearM, sum.EdgeCount, sum.PieceCount, sum.TotalWithWasteM, sum.WastePercent)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range rows {
		fmt.Fprintf(tw, "  %s\t%s\t%.0fx%.0f\tx%d\t%s\t%.2f m\n",
			r.Name, r.Material, r.Width, r.Height, r.Quantity, r.Edges, r.TotalLength/1000)
	}
	tw.Flush()
}
