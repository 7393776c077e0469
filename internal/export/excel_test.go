package export

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/marcenapp/internal/model"
)

func TestWriteExcel_Workbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExcel(&buf, buildTestResult(), model.DefaultNestingSettings()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{summarySheet, cutListSheet}, f.GetSheetList())

	rows, err := f.GetRows(cutListSheet)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "Name", rows[0][3])
	assert.Equal(t, "Back Panel", rows[4][3])

	sheets, err := f.GetCellValue(summarySheet, "B5")
	require.NoError(t, err)
	assert.Equal(t, "2", sheets)

	material, err := f.GetCellValue(summarySheet, "B12")
	require.NoError(t, err)
	assert.Equal(t, "wood", material)
}

func TestExportExcel_SaveAs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nesting.xlsx")
	settings := model.DefaultNestingSettings()
	settings.MaterialPrices = map[string]float64{"wood": 450}
	require.NoError(t, ExportExcel(path, buildTestResult(), settings))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	price, err := f.GetCellValue(summarySheet, "F12")
	require.NoError(t, err)
	assert.Equal(t, "450", price)
}

func TestWriteExcel_Empty(t *testing.T) {
	err := WriteExcel(&bytes.Buffer{}, model.NestingResult{}, model.DefaultNestingSettings())
	assert.ErrorIs(t, err, ErrNoSheets)
}
