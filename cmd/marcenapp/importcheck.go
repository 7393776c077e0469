package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/marcenapp/internal/export"
	"github.com/piwi3910/marcenapp/internal/importer"
)

var (
	checkMaterial  string
	checkNormalize bool
)

var importCheckCmd = &cobra.Command{
	Use:   "import-check <file>",
	Short: "Report import errors and warnings for a part list",
	Long: `Reads a CSV, Excel, JSON or DXF part list and lists every row problem
without nesting. With --normalize the parts that were read are printed back
as CSV in the standard column layout.`,
	Args: cobra.ExactArgs(1),
	RunE: runImportCheck,
}

func init() {
	importCheckCmd.Flags().StringVar(&checkMaterial, "material", "white", "Material for rows that name none")
	importCheckCmd.Flags().BoolVar(&checkNormalize, "normalize", false, "Print the parts read as CSV")
	rootCmd.AddCommand(importCheckCmd)
}

func runImportCheck(cmd *cobra.Command, args []string) error {
	res := importer.ImportFile(args[0], importer.Options{DefaultMaterial: checkMaterial})
	out := cmd.OutOrStdout()

	if checkNormalize {
		if err := export.WritePartsCSV(out, res.Parts); err != nil {
			return err
		}
	} else {
		units := 0
		for _, p := range res.Parts {
			units += p.Quantity
		}
		fmt.Fprintf(out, "%d parts (%d units)\n", len(res.Parts), units)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
	for _, e := range res.Errors {
		fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", e)
	}
	if len(res.Errors) > 0 {
		return fmt.Errorf("%d import errors", len(res.Errors))
	}
	return nil
}
