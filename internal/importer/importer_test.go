package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/marcenapp/internal/model"
)

// ─── Delimiter and header detection ────────────────────────

func TestDetectCSVDelimiter(t *testing.T) {
	for _, want := range []rune{',', ';', '\t', '|'} {
		d := string(want)
		data := "Name" + d + "Width" + d + "Height" + d + "Qty\n" +
			"Shelf" + d + "600" + d + "300" + d + "2\n" +
			"Door" + d + "400" + d + "800" + d + "1\n"
		if got := DetectCSVDelimiter([]byte(data)); got != want {
			t.Errorf("expected %q delimiter, got %q", want, got)
		}
	}
}

func TestDetectColumns_StandardHeaders(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Name", "Width", "Height", "Quantity", "Material", "Grain", "Edges"})
	require.True(t, isHeader)
	assert.Equal(t, ColumnMapping{0, 1, 2, 3, 4, 5, 6}, mapping)
}

func TestDetectColumns_PortugueseAndReordered(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Qtd", "Cor", "Largura", "Altura", "Peça"})
	require.True(t, isHeader)
	assert.Equal(t, 4, mapping[colName])
	assert.Equal(t, 2, mapping[colWidth])
	assert.Equal(t, 3, mapping[colHeight])
	assert.Equal(t, 0, mapping[colQuantity])
	assert.Equal(t, 1, mapping[colMaterial])
	assert.Equal(t, -1, mapping[colGrain])
}

func TestDetectColumns_NoHeader(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Shelf", "600", "300", "2"})
	assert.False(t, isHeader)
	assert.Equal(t, positionalMapping, mapping)
}

// ─── CSV import ────────────────────────────────────────────

func TestImportCSVData_WithHeaders(t *testing.T) {
	data := "Name,Width,Height,Quantity,Material,Grain,Edges\n" +
		"Side,600,300,2,White,Vertical,T+B\n" +
		"Back,1200,800,1,backing,,\n"

	result := ImportCSVData([]byte(data), DefaultOptions())
	require.Empty(t, result.Errors)
	require.Len(t, result.Parts, 2)

	side := result.Parts[0]
	assert.Equal(t, "Side", side.Name)
	assert.Equal(t, 600.0, side.Width)
	assert.Equal(t, 300.0, side.Height)
	assert.Equal(t, 2, side.Quantity)
	assert.Equal(t, "white", side.Material, "material tags are lowercased")
	assert.Equal(t, model.GrainVertical, side.Grain)
	assert.Equal(t, model.EdgeBanding{Top: true, Bottom: true}, side.EdgeBanding)
	assert.Equal(t, "backing", result.Parts[1].Material)
	assert.True(t, result.OK())
}

func TestImportCSVData_WithoutHeaders(t *testing.T) {
	result := ImportCSVData([]byte("Shelf,600,300,2,wood\nDoor,400,800,1\n"), DefaultOptions())
	require.Empty(t, result.Errors)
	require.Len(t, result.Parts, 2)
	assert.Equal(t, "wood", result.Parts[0].Material)
	assert.Equal(t, "white", result.Parts[1].Material, "falls back to the default material")
}

func TestImportCSVData_SemicolonAndCommaDecimals(t *testing.T) {
	data := "Nome;Largura;Altura;Qtd;Cor\nPrateleira;600,5;300;2;white\n"
	result := ImportCSVData([]byte(data), DefaultOptions())
	require.Empty(t, result.Errors)
	require.Len(t, result.Parts, 1)
	assert.Equal(t, 600.5, result.Parts[0].Width)
	assert.Contains(t, result.Warnings, "detected semicolon delimiter")
}

func TestImportCSVData_RowErrorsDoNotAbort(t *testing.T) {
	data := "Name,Width,Height,Quantity,Material\n" +
		"Good,600,300,1,white\n" +
		"BadWidth,abc,300,1,white\n" +
		"Negative,-5,300,1,white\n" +
		"ZeroQty,100,100,0,white\n" +
		"\n" +
		"AlsoGood,200,100,3,wood\n"

	result := ImportCSVData([]byte(data), DefaultOptions())
	assert.Len(t, result.Parts, 2)
	require.Len(t, result.Errors, 3)
	assert.Equal(t, `line 3: invalid width "abc"`, result.Errors[0])
	assert.Contains(t, result.Errors[1], "line 4")
	assert.Contains(t, result.Errors[2], "line 5")
	assert.False(t, result.OK())
}

func TestImportCSVData_MissingMaterialWithoutDefault(t *testing.T) {
	result := ImportCSVData([]byte("Name,Width,Height,Quantity\nShelf,600,300,2\n"), Options{})
	assert.Empty(t, result.Parts)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "missing material")
}

func TestImportCSVData_MissingRequiredColumn(t *testing.T) {
	result := ImportCSVData([]byte("Name,Width,Quantity\nShelf,600,2\n"), DefaultOptions())
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Height")
}

func TestImportCSVData_MissingQuantityDefaultsToOne(t *testing.T) {
	result := ImportCSVData([]byte("Name,Width,Height\nShelf,600,300\n"), DefaultOptions())
	require.Len(t, result.Parts, 1)
	assert.Equal(t, 1, result.Parts[0].Quantity)
	assert.NotEmpty(t, result.Warnings)
}

func TestImportCSVData_UnknownGrainAndEdgesWarn(t *testing.T) {
	data := "Name,Width,Height,Quantity,Grain,Edges\nShelf,600,300,1,diagonal,XYZ\n"
	result := ImportCSVData([]byte(data), DefaultOptions())
	require.Len(t, result.Parts, 1)
	assert.Equal(t, model.GrainNone, result.Parts[0].Grain)
	assert.False(t, result.Parts[0].EdgeBanding.HasAny())
	assert.Len(t, result.Warnings, 3) // no material column, grain, edges
}

func TestImportCSVData_EmptyFile(t *testing.T) {
	result := ImportCSVData([]byte("   \n"), DefaultOptions())
	assert.Equal(t, []string{"file is empty"}, result.Errors)
}

func TestImportCSV_FileNotFound(t *testing.T) {
	result := ImportCSV(filepath.Join(t.TempDir(), "missing.csv"), DefaultOptions())
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "cannot open file")
}

func TestImportFile_DispatchesByExtension(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "parts.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("Name,Width,Height,Quantity\nShelf,600,300,2\n"), 0644))

	result := ImportFile(csvPath, DefaultOptions())
	assert.Len(t, result.Parts, 1)

	result = ImportFile(filepath.Join(dir, "parts.pdf"), DefaultOptions())
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "unsupported")
}

func TestParseEdges(t *testing.T) {
	tests := []struct {
		in   string
		want model.EdgeBanding
		ok   bool
	}{
		{"", model.EdgeBanding{}, true},
		{"none", model.EdgeBanding{}, true},
		{"all", model.EdgeBanding{Top: true, Bottom: true, Left: true, Right: true}, true},
		{"T+B", model.EdgeBanding{Top: true, Bottom: true}, true},
		{"lr", model.EdgeBanding{Left: true, Right: true}, true},
		{"T, L", model.EdgeBanding{Top: true, Left: true}, true},
		{"Q", model.EdgeBanding{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseEdges(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseGrain(t *testing.T) {
	tests := []struct {
		input    string
		expected model.Grain
		ok       bool
	}{
		{"Horizontal", model.GrainHorizontal, true},
		{"h", model.GrainHorizontal, true},
		{"Vertical", model.GrainVertical, true},
		{"V", model.GrainVertical, true},
		{"none", model.GrainNone, true},
		{"-", model.GrainNone, true},
		{"", model.GrainNone, true},
		{"  h  ", model.GrainHorizontal, true},
		{"diagonal", model.GrainNone, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			grain, ok := parseGrain(tt.input)
			if grain != tt.expected {
				t.Errorf("parseGrain(%q): expected %v, got %v", tt.input, tt.expected, grain)
			}
			if ok != tt.ok {
				t.Errorf("parseGrain(%q): expected ok=%v, got %v", tt.input, tt.ok, ok)
			}
		})
	}
}

// ─── Excel import ──────────────────────────────────────────

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "parts.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, value := range row {
			ref, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("failed to create cell reference: %v", err)
			}
			if err := f.SetCellValue(sheet, ref, value); err != nil {
				t.Fatalf("failed to set cell value: %v", err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}
	return path
}

func TestImportExcel_WithHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Name", "Width", "Height", "Quantity", "Material"},
		{"Shelf", 600, 300, 2, "wood"},
		{"Door", 400, 800, 1, "white"},
	})

	result := ImportExcel(path, DefaultOptions())
	require.Empty(t, result.Errors)
	require.Len(t, result.Parts, 2)
	assert.Equal(t, "Shelf", result.Parts[0].Name)
	assert.Equal(t, "wood", result.Parts[0].Material)
	assert.Equal(t, 800.0, result.Parts[1].Height)
}

func TestImportExcelReader(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Shelf", 600, 300, 2, "wood"},
	})
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	result := ImportExcelReader(f, DefaultOptions())
	require.Empty(t, result.Errors)
	require.Len(t, result.Parts, 1)
	assert.Equal(t, 2, result.Parts[0].Quantity)
}

func TestImportExcel_FileNotFound(t *testing.T) {
	result := ImportExcel(filepath.Join(t.TempDir(), "none.xlsx"), DefaultOptions())
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "cannot open Excel file")
}
