package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table is a fully materialized spreadsheet: positional column labels
// (A, B, C, ...) and data rows with blank cells normalized to empty strings.
// The first sheet row is treated as a header and excluded from Rows.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ReadSpreadsheet parses an .xlsx or .csv file into a Table.
func ReadSpreadsheet(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return readExcel(path)
	case ".csv":
		return readCSV(path)
	default:
		return nil, fmt.Errorf("unsupported spreadsheet format: %s", filepath.Ext(path))
	}
}

func readExcel(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet %s: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("spreadsheet %s has no sheets", path)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	return buildTable(rows), nil
}

func readCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // tolerate ragged rows
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv %s: %w", path, err)
	}

	return buildTable(rows), nil
}

// buildTable drops the header row, pads ragged rows to the header width and
// trims cell whitespace, matching the reference parser's normalization.
func buildTable(rows [][]string) *Table {
	if len(rows) == 0 {
		return &Table{}
	}

	width := len(rows[0])
	labelCount := width
	if labelCount > 26 {
		labelCount = 26 // single-letter column references only
	}
	columns := make([]string, 0, labelCount)
	for i := 0; i < labelCount; i++ {
		columns = append(columns, string(rune('A'+i)))
	}

	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		normalized := make([]string, width)
		for i := 0; i < width; i++ {
			if i < len(row) {
				normalized[i] = strings.TrimSpace(row[i])
			}
		}
		data = append(data, normalized)
	}

	return &Table{Columns: columns, Rows: data}
}
