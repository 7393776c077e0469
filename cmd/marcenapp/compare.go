package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/piwi3910/marcenapp/internal/engine"
	"github.com/piwi3910/marcenapp/internal/importer"
)

var compareCmd = &cobra.Command{
	Use:   "compare <parts-file>",
	Short: "Compare the current settings with what-if alternatives",
	Long: `Nests the part list under the current settings and under a few
alternatives (thinner blade, no edge trim, reference stock) in parallel and
prints sheets, efficiency and waste value side by side.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	j, err := loadJob(args[0], cfg.NestingSettings(), importer.DefaultOptions())
	if err != nil {
		return err
	}
	results, err := engine.CompareScenarios(cmd.Context(), engine.BuildDefaultScenarios(j.Settings), j.Parts)
	if err != nil {
		return err
	}
	printComparison(cmd.OutOrStdout(), results)
	return nil
}

func printComparison(w io.Writer, results []engine.ComparisonResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCENARIO\tSHEETS\tEFFICIENCY\tWASTE VALUE")
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(tw, "%s\t-\t-\t%s\n", r.Scenario.Name, r.Error)
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%.1f%%\t%.2f\n", r.Scenario.Name, r.SheetsUsed, r.Efficiency*100, r.WasteValue)
	}
	tw.Flush()
}
