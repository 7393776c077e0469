package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/piwi3910/marcenapp/internal/model"
)

var cutListHeader = []string{"Sheet", "Material", "Part ID", "Name", "Copy", "X", "Y", "Width", "Height", "Grain"}

// WriteCutListCSV writes one row per placed unit, in sheet order. The
// header matches what the importer reads back as a part list.
func WriteCutListCSV(w io.Writer, result model.NestingResult) error {
	if len(result.Sheets) == 0 {
		return ErrNoSheets
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(cutListHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, s := range result.Sheets {
		for _, it := range s.Items {
			row := []string{
				strconv.Itoa(i + 1),
				it.Material,
				it.PartID,
				it.Name,
				strconv.Itoa(it.Copy),
				formatMM(it.X),
				formatMM(it.Y),
				formatMM(it.Width),
				formatMM(it.Height),
				it.Grain.String(),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("writing row for %q: %w", it.Name, err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePartsCSV writes the part list in the import column layout.
func WritePartsCSV(w io.Writer, parts []model.Part) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Name", "Width", "Height", "Quantity", "Material", "Grain", "Edges"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, p := range parts {
		row := []string{p.Name, formatMM(p.Width), formatMM(p.Height), strconv.Itoa(p.Quantity), p.Material, p.Grain.String(), p.EdgeBanding.String()}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row for %q: %w", p.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCutListCSV writes the cut list to path.
func ExportCutListCSV(path string, result model.NestingResult) error {
	return writeFile(path, func(w io.Writer) error { return WriteCutListCSV(w, result) })
}

func formatMM(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// writeFile creates path and removes it again if fn fails.
func writeFile(path string, fn func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()
	return fn(f)
}
