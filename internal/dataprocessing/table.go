package dataprocessing

import (
	"path/filepath"
	"strings"

	apperrors "schoolcli/internal/errors"
)

// Format identifies how a table is encoded on disk.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "txt"
	FormatXLSX Format = "xlsx"
)

// SupportedExtensions lists the file extensions the loader accepts, in
// lookup order.
var SupportedExtensions = []string{".csv", ".xlsx", ".txt"}

// DetectFormat maps a path's extension (case-insensitive) to a Format.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".txt":
		return FormatTSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", apperrors.NewUnsupportedFormatError(path)
	}
}

// Table is a rectangular set of raw cell strings under an ordered header.
// Every row has exactly len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]string
	Source  string
	Format  Format
}

// Len returns the number of data rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnIndex returns the position of the named column or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// Column returns a copy of every cell in the named column.
func (t *Table) Column(name string) ([]string, bool) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out, true
}

func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
