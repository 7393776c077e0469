package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/marcenapp/internal/gcode"
	"github.com/piwi3910/marcenapp/internal/model"
)

func TestWriteGCode_AllSheets(t *testing.T) {
	settings := gcode.SettingsFromConfig(model.DefaultAppConfig())
	var buf bytes.Buffer
	require.NoError(t, WriteGCode(&buf, buildTestResult(), settings))

	out := buf.String()
	assert.Contains(t, out, "sheet 1 of 2, material white")
	assert.Contains(t, out, "sheet 2 of 2, material wood")
	assert.Equal(t, 2, strings.Count(out, "M2\n"))
}

func TestExportGCode_OneFilePerSheet(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nc")
	settings := gcode.SettingsFromConfig(model.DefaultAppConfig())

	paths, err := ExportGCode(dir, "job", buildTestResult(), settings)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "job_sheet1_white.nc"),
		filepath.Join(dir, "job_sheet2_wood.nc"),
	}, paths)

	data, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Contains(t, string(data), "Back Panel #1")
}
