package export

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/marcenapp/internal/model"
)

func TestWriteChart_HTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteChart(&buf, buildTestResult()))

	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "Sheet utilization")
	assert.Contains(t, html, "1 white")
	assert.Contains(t, html, "wood waste")
}

func TestExportChart_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.html")
	require.NoError(t, ExportChart(path, buildTestResult()))
}

func TestWriteChart_Empty(t *testing.T) {
	assert.ErrorIs(t, WriteChart(&bytes.Buffer{}, model.NestingResult{}), ErrNoSheets)
}
