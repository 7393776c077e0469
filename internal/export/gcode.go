package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/piwi3910/marcenapp/internal/gcode"
	"github.com/piwi3910/marcenapp/internal/model"
)

// WriteGCode writes the programs for all sheets back to back, each closed
// with its own end codes.
func WriteGCode(w io.Writer, result model.NestingResult, settings gcode.MachineSettings) error {
	if len(result.Sheets) == 0 {
		return ErrNoSheets
	}
	for _, code := range gcode.New(settings).GenerateAll(result) {
		if _, err := io.WriteString(w, code+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// ExportGCode writes one program per sheet into dir, named
// <base>_sheet<N>_<material>.nc, and returns the written paths.
func ExportGCode(dir, base string, result model.NestingResult, settings gcode.MachineSettings) ([]string, error) {
	if len(result.Sheets) == 0 {
		return nil, ErrNoSheets
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}

	var paths []string
	for i, code := range gcode.New(settings).GenerateAll(result) {
		name := fmt.Sprintf("%s_sheet%d_%s.nc", base, i+1, result.Sheets[i].Material)
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(code), 0644); err != nil {
			return paths, fmt.Errorf("writing %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
