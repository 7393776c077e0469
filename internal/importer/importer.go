// Package importer reads part lists from CSV, Excel, JSON and DXF files.
// CSV and Excel share one row parser with delimiter detection and
// case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/marcenapp/internal/model"
)

// ImportResult collects parsed parts and per-row problems. A bad row is
// reported and skipped; it never aborts the whole file.
type ImportResult struct {
	Parts    []model.Part `json:"parts"`
	Errors   []string     `json:"errors"`
	Warnings []string     `json:"warnings"`
}

// OK reports whether at least one part was read and nothing failed.
func (r ImportResult) OK() bool {
	return len(r.Errors) == 0 && len(r.Parts) > 0
}

func (r *ImportResult) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ImportResult) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Options control how rows become parts.
type Options struct {
	// DefaultMaterial is used for rows without a material cell.
	DefaultMaterial string
}

func DefaultOptions() Options {
	return Options{DefaultMaterial: model.DefaultMaterialOrder[0]}
}

type column int

const (
	colName column = iota
	colWidth
	colHeight
	colQuantity
	colMaterial
	colGrain
	colEdges
	numColumns
)

var columnNames = [numColumns]string{"Name", "Width", "Height", "Quantity", "Material", "Grain", "Edges"}

// ColumnMapping holds the cell index of each column, -1 when absent.
type ColumnMapping [numColumns]int

// Positional layout used when a file has no header row.
var positionalMapping = ColumnMapping{0, 1, 2, 3, 4, 5, 6}

// headerAliases lists accepted header spellings (lowercase), English and Portuguese.
var headerAliases = map[column][]string{
	colName:     {"name", "label", "part", "part name", "description", "desc", "piece", "item", "peca", "peça", "nome"},
	colWidth:    {"width", "w", "length", "len", "x", "largura", "comprimento"},
	colHeight:   {"height", "h", "depth", "d", "y", "altura"},
	colQuantity: {"quantity", "qty", "count", "num", "amount", "pcs", "pieces", "quantidade", "qtd"},
	colMaterial: {"material", "materialtag", "material tag", "finish", "color", "colour", "cor", "acabamento"},
	colGrain:    {"grain", "grain direction", "direction", "grain dir", "veio"},
	colEdges:    {"edges", "edge banding", "edgebanding", "banding", "fita", "fita de borda"},
}

var aliasIndex = func() map[string]column {
	idx := make(map[string]column)
	for col, aliases := range headerAliases {
		for _, a := range aliases {
			idx[a] = col
		}
	}
	return idx
}()

// DetectCSVDelimiter picks the delimiter among comma, semicolon, tab and pipe
// that splits the most rows into the same column count as the first row.
func DetectCSVDelimiter(data []byte) rune {
	best, bestScore := ',', 0
	for _, delim := range []rune{',', ';', '\t', '|'} {
		records, err := readCSV(bytes.NewReader(data), delim)
		if err != nil || len(records) == 0 || len(records[0]) < 2 {
			continue
		}
		cols := len(records[0])
		score := 0
		for _, row := range records {
			if len(row) == cols {
				score++
			}
		}
		if weighted := score*10 + cols; weighted > bestScore {
			best, bestScore = delim, weighted
		}
	}
	return best
}

func readCSV(r io.Reader, delim rune) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = delim
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

// DetectColumns maps a header row to column indices. It returns the
// positional mapping and false when no cell matches a known header.
func DetectColumns(row []string) (ColumnMapping, bool) {
	var m ColumnMapping
	for i := range m {
		m[i] = -1
	}
	found := false
	for i, cell := range row {
		col, ok := aliasIndex[strings.ToLower(strings.TrimSpace(cell))]
		if !ok {
			continue
		}
		found = true
		if m[col] == -1 {
			m[col] = i
		}
	}
	if !found {
		return positionalMapping, false
	}
	return m, true
}

func parseGrain(s string) (model.Grain, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "horizontal", "h":
		return model.GrainHorizontal, true
	case "vertical", "v":
		return model.GrainVertical, true
	case "", "none", "n", "-":
		return model.GrainNone, true
	default:
		return model.GrainNone, false
	}
}

// ParseEdges reads banded sides written as letters, e.g. "T+B", "TBLR" or "all".
func ParseEdges(s string) (model.EdgeBanding, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch s {
	case "", "-", "NONE":
		return model.EdgeBanding{}, true
	case "ALL":
		return model.EdgeBanding{Top: true, Bottom: true, Left: true, Right: true}, true
	}
	var eb model.EdgeBanding
	for _, r := range s {
		switch r {
		case 'T':
			eb.Top = true
		case 'B':
			eb.Bottom = true
		case 'L':
			eb.Left = true
		case 'R':
			eb.Right = true
		case '+', ',', ' ':
		default:
			return model.EdgeBanding{}, false
		}
	}
	return eb, true
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseNumber accepts both "12.5" and the comma decimal "12,5".
func parseNumber(s string) (float64, error) {
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	return strconv.ParseFloat(s, 64)
}

// parseRow turns one row into a part. The error string is empty on success;
// warnings never reject the row.
func parseRow(row []string, m ColumnMapping, where string, n int, opts Options) (model.Part, string, []string) {
	var warnings []string

	name := cell(row, m[colName])
	if name == "" {
		name = fmt.Sprintf("Part %d", n+1)
	}

	var dims [2]float64
	for i, col := range []column{colWidth, colHeight} {
		raw := cell(row, m[col])
		if raw == "" {
			return model.Part{}, fmt.Sprintf("%s: missing %s", where, strings.ToLower(columnNames[col])), nil
		}
		v, err := parseNumber(raw)
		if err != nil {
			return model.Part{}, fmt.Sprintf("%s: invalid %s %q", where, strings.ToLower(columnNames[col]), raw), nil
		}
		dims[i] = v
	}

	qtyRaw := cell(row, m[colQuantity])
	qty := 1
	if qtyRaw == "" {
		warnings = append(warnings, fmt.Sprintf("%s: no quantity, using 1", where))
	} else {
		v, err := strconv.Atoi(qtyRaw)
		if err != nil {
			return model.Part{}, fmt.Sprintf("%s: invalid quantity %q", where, qtyRaw), nil
		}
		qty = v
	}

	if dims[0] <= 0 || dims[1] <= 0 || qty <= 0 {
		return model.Part{}, fmt.Sprintf("%s: width, height and quantity must be positive", where), nil
	}

	material := strings.ToLower(cell(row, m[colMaterial]))
	if material == "" {
		if opts.DefaultMaterial == "" {
			return model.Part{}, fmt.Sprintf("%s: missing material", where), nil
		}
		material = opts.DefaultMaterial
	}

	part := model.NewPart(name, dims[0], dims[1], qty, material)

	if raw := cell(row, m[colGrain]); raw != "" {
		if g, ok := parseGrain(raw); ok {
			part.Grain = g
		} else {
			warnings = append(warnings, fmt.Sprintf("%s: unknown grain direction %q, using None", where, raw))
		}
	}
	if raw := cell(row, m[colEdges]); raw != "" {
		if eb, ok := ParseEdges(raw); ok {
			part.EdgeBanding = eb
		} else {
			warnings = append(warnings, fmt.Sprintf("%s: unknown edge banding %q, ignored", where, raw))
		}
	}

	return part, "", warnings
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ImportFile dispatches on the file extension: .csv/.txt, .xlsx/.xlsm, .json, .dxf.
func ImportFile(path string, opts Options) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt", ".tsv":
		return ImportCSV(path, opts)
	case ".xlsx", ".xlsm":
		return ImportExcel(path, opts)
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return ImportResult{Errors: []string{fmt.Sprintf("cannot open file: %v", err)}}
		}
		return ImportJSON(data)
	case ".dxf":
		return ImportDXF(path, opts)
	default:
		return ImportResult{Errors: []string{fmt.Sprintf("unsupported file type %q", filepath.Ext(path))}}
	}
}

// ImportCSV reads a CSV file with any supported delimiter.
func ImportCSV(path string, opts Options) ImportResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("cannot open file: %v", err)}}
	}
	return ImportCSVData(data, opts)
}

// ImportCSVData parses CSV content already in memory.
func ImportCSVData(data []byte, opts Options) ImportResult {
	var result ImportResult
	if len(bytes.TrimSpace(data)) == 0 {
		result.errorf("file is empty")
		return result
	}

	delim := DetectCSVDelimiter(data)
	if delim != ',' {
		name := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delim]
		result.warnf("detected %s delimiter", name)
	}

	records, err := readCSV(bytes.NewReader(data), delim)
	if err != nil {
		result.errorf("cannot read CSV: %v", err)
		return result
	}
	importRows(&result, records, "line", opts)
	return result
}

// ImportExcel reads the first worksheet of an Excel file.
func ImportExcel(path string, opts Options) ImportResult {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("cannot open Excel file: %v", err)}}
	}
	defer f.Close()
	return importWorkbook(f, opts)
}

// ImportExcelReader reads the first worksheet of an Excel workbook stream.
func ImportExcelReader(r io.Reader, opts Options) ImportResult {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("cannot read Excel data: %v", err)}}
	}
	defer f.Close()
	return importWorkbook(f, opts)
}

func importWorkbook(f *excelize.File, opts Options) ImportResult {
	var result ImportResult
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.errorf("workbook has no sheets")
		return result
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.errorf("cannot read sheet %q: %v", sheets[0], err)
		return result
	}
	importRows(&result, rows, "row", opts)
	return result
}

// importRows is shared by CSV and Excel: it detects the header, checks the
// required columns and parses every non-empty row.
func importRows(result *ImportResult, rows [][]string, unit string, opts Options) {
	if len(rows) == 0 {
		result.errorf("no data rows found")
		return
	}

	mapping, hasHeader := DetectColumns(rows[0])
	start := 0
	if hasHeader {
		start = 1
		var missing []string
		for _, col := range []column{colWidth, colHeight} {
			if mapping[col] == -1 {
				missing = append(missing, columnNames[col])
			}
		}
		if len(missing) > 0 {
			result.errorf("required columns not found in header: %s", strings.Join(missing, ", "))
			return
		}
		if mapping[colMaterial] == -1 && opts.DefaultMaterial != "" {
			result.warnf("no material column, using %q", opts.DefaultMaterial)
		}
	} else if len(rows[0]) >= 3 {
		if _, err := parseNumber(strings.TrimSpace(rows[0][1])); err != nil {
			start = 1
			result.warnf("unrecognized header row skipped")
		}
	}

	for i := start; i < len(rows); i++ {
		if isEmptyRow(rows[i]) {
			continue
		}
		where := fmt.Sprintf("%s %d", unit, i+1)
		part, errMsg, warnings := parseRow(rows[i], mapping, where, len(result.Parts), opts)
		result.Warnings = append(result.Warnings, warnings...)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		result.Parts = append(result.Parts, part)
	}
}
