// Package tabular is the spreadsheet boundary: it reads CSV and Excel
// exports into a uniform in-memory table so the rest of the pipeline never
// touches file formats directly.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInputNotFound indicates a required input path does not resolve to a
// readable file. The run aborts before any output is written.
var ErrInputNotFound = errors.New("input file not found")

// MalformedSchemaError indicates an expected column is absent or the table
// shape is wrong after header resolution. Fatal: silent misalignment would
// corrupt every downstream score.
type MalformedSchemaError struct {
	Column string
	Detail string
}

func (e *MalformedSchemaError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("malformed schema: %s", e.Detail)
	}
	return fmt.Sprintf("required column %q not found", e.Column)
}

// Table is a header row plus rows of string cells. Ragged rows are padded
// with empty cells on access, matching spreadsheet semantics.
type Table struct {
	Headers []string
	Rows    [][]string

	colIndex map[string]int
}

// New builds a table from explicit headers and rows.
func New(headers []string, rows [][]string) *Table {
	t := &Table{Headers: headers, Rows: rows}
	t.reindex()
	return t
}

func (t *Table) reindex() {
	t.colIndex = make(map[string]int, len(t.Headers))
	for i, h := range t.Headers {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		// First occurrence wins for duplicate headers.
		if _, ok := t.colIndex[h]; !ok {
			t.colIndex[h] = i
		}
	}
}

// Col returns the index of the named column, or a MalformedSchemaError.
func (t *Table) Col(name string) (int, error) {
	if i, ok := t.colIndex[name]; ok {
		return i, nil
	}
	return 0, &MalformedSchemaError{Column: name}
}

// Cell returns the trimmed cell at (row, col), or "" when the row is ragged.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// Rebase re-reads the headers from the given data row and keeps only the
// rows below it. Report exports from Crystal Reports carry several banner
// rows above the real header row.
func (t *Table) Rebase(headerRow int) error {
	if headerRow >= len(t.Rows) {
		return fmt.Errorf("header row %d out of range (%d data rows)", headerRow, len(t.Rows))
	}
	t.Headers = t.Rows[headerRow]
	t.Rows = t.Rows[headerRow+1:]
	t.reindex()
	return nil
}

// Read loads a table from path, dispatching on file extension. CSV is read
// with encoding/csv; .xlsx workbooks are read via excelize (first sheet
// only, which is all the upstream exports ever contain).
func Read(path string) (*Table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".xlsx", ".xlsm":
		return readExcel(path)
	default:
		return nil, fmt.Errorf("unsupported input format: %s", path)
	}
}

func readCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return New(nil, nil), nil
	}
	return New(records[0], records[1:]), nil
}
