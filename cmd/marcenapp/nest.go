package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/piwi3910/marcenapp/internal/engine"
	"github.com/piwi3910/marcenapp/internal/export"
	"github.com/piwi3910/marcenapp/internal/gcode"
	"github.com/piwi3910/marcenapp/internal/importer"
	"github.com/piwi3910/marcenapp/internal/model"
	"github.com/piwi3910/marcenapp/internal/project"
)

// outputs names the files a nest run writes. Empty fields are skipped.
type outputs struct {
	PDF      string
	Labels   string
	CSV      string
	XLSX     string
	DXF      string
	Chart    string
	GCodeDir string
	JSON     string
}

var (
	nestOut      outputs
	nestMaterial string
)

var nestCmd = &cobra.Command{
	Use:   "nest <parts-file>",
	Short: "Nest a part list and write the requested outputs",
	Long: `Nests every part of the file onto stock sheets, prints a per-sheet
summary with the reusable offcuts, and writes each requested output.

Example:
  marcenapp nest kitchen.csv --pdf kitchen.pdf --labels labels.pdf --gcode ./nc`,
	Args: cobra.ExactArgs(1),
	RunE: runNest,
}

func init() {
	f := nestCmd.Flags()
	f.StringVar(&nestOut.PDF, "pdf", "", "Write the layout PDF to this path")
	f.StringVar(&nestOut.Labels, "labels", "", "Write part labels (PDF) to this path")
	f.StringVar(&nestOut.CSV, "csv", "", "Write the cut list CSV to this path")
	f.StringVar(&nestOut.XLSX, "xlsx", "", "Write the Excel workbook to this path")
	f.StringVar(&nestOut.DXF, "dxf", "", "Write the sheet drawing (DXF) to this path")
	f.StringVar(&nestOut.Chart, "chart", "", "Write the utilization chart (HTML) to this path")
	f.StringVar(&nestOut.GCodeDir, "gcode", "", "Write one G-code program per sheet into this directory")
	f.StringVar(&nestOut.JSON, "json", "", "Write the nesting result as JSON to this path")
	f.StringVar(&nestMaterial, "material", model.DefaultMaterialOrder[0], "Material for rows that name none")
	rootCmd.AddCommand(nestCmd)
}

func runNest(cmd *cobra.Command, args []string) error {
	path := args[0]
	j, err := loadJob(path, cfg.NestingSettings(), importer.Options{DefaultMaterial: nestMaterial})
	if err != nil {
		return err
	}
	for _, w := range j.Warnings {
		logger.Warn("import warning", zap.String("file", path), zap.String("warning", w))
	}

	result, err := engine.New(j.Settings).Compute(j.Parts)
	if err != nil {
		return err
	}
	logger.Info("nested",
		zap.String("job", j.Name),
		zap.Int("parts", len(j.Parts)),
		zap.Int("items", result.ItemCount()),
		zap.Int("sheets", len(result.Sheets)),
		zap.Float64("efficiency", result.Efficiency),
	)

	out := cmd.OutOrStdout()
	printSummary(out, j, result)

	written, err := writeOutputs(j, result, nestOut, gcode.SettingsFromConfig(cfg))
	for _, p := range written {
		fmt.Fprintf(out, "Wrote %s\n", p)
	}
	if err != nil {
		return err
	}

	if j.Project {
		rememberProject(path)
	}
	return nil
}

// rememberProject puts path at the top of the recent projects list.
func rememberProject(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	cfg.AddRecentProject(abs, 10)
	if err := project.SaveAppConfig(configPath, cfg); err != nil {
		logger.Warn("could not update recent projects", zap.Error(err))
	}
}

func printSummary(w io.Writer, j job, result model.NestingResult) {
	fmt.Fprintf(w, "%s: %d parts, %d items on %d sheets (%s %.0fx%.0f)\n",
		j.Name, len(j.Parts), result.ItemCount(), len(result.Sheets),
		result.Stock.Label, result.Stock.Width, result.Stock.Height)
	fmt.Fprintf(w, "Efficiency %.1f%%, waste value %.2f\n\n", result.Efficiency*100, result.WasteValue)
	if len(result.Sheets) == 0 {
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SHEET\tMATERIAL\tITEMS\tUSED m2\tUTILIZATION")
	for i, s := range result.Sheets {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%.3f\t%.1f%%\n",
			i+1, s.Material, len(s.Items), s.UsedArea/1e6, result.SheetEfficiency(i)*100)
	}
	tw.Flush()

	offcuts := model.DetectAllOffcuts(result, j.Settings)
	if len(offcuts) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%d reusable offcuts, %.3f m2:\n", len(offcuts), model.TotalOffcutArea(offcuts)/1e6)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, o := range offcuts {
		fmt.Fprintf(tw, "  sheet %d\t%s\t%.0f x %.0f\tat (%.0f, %.0f)\tvalue %.2f\n",
			o.SheetIndex+1, o.Material, o.Width, o.Height, o.X, o.Y, o.Value)
	}
	tw.Flush()
}

// writeOutputs writes every requested file and returns the paths written,
// stopping at the first failure.
func writeOutputs(j job, result model.NestingResult, out outputs, machine gcode.MachineSettings) ([]string, error) {
	var written []string
	steps := []struct {
		path  string
		kind  string
		write func(string) error
	}{
		{out.PDF, "layout PDF", func(p string) error { return export.ExportPDF(p, result, j.Settings) }},
		{out.Labels, "labels", func(p string) error { return export.ExportLabels(p, result) }},
		{out.CSV, "cut list", func(p string) error { return export.ExportCutListCSV(p, result) }},
		{out.XLSX, "workbook", func(p string) error { return export.ExportExcel(p, result, j.Settings) }},
		{out.DXF, "drawing", func(p string) error { return export.ExportDXF(p, result) }},
		{out.Chart, "chart", func(p string) error { return export.ExportChart(p, result) }},
		{out.JSON, "result JSON", func(p string) error { return writeResultJSON(p, result) }},
	}
	for _, s := range steps {
		if s.path == "" {
			continue
		}
		if err := s.write(s.path); err != nil {
			return written, fmt.Errorf("writing %s: %w", s.kind, err)
		}
		logger.Debug("wrote output", zap.String("kind", s.kind), zap.String("path", s.path))
		written = append(written, s.path)
	}

	if out.GCodeDir != "" {
		paths, err := export.ExportGCode(out.GCodeDir, fileBase(j.Name), result, machine)
		written = append(written, paths...)
		if err != nil {
			return written, fmt.Errorf("writing G-code: %w", err)
		}
	}
	return written, nil
}

func writeResultJSON(path string, result model.NestingResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
