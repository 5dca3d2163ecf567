package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "schoolcli/internal/errors"
)

const utf8BOM = "\ufeff"

// LoadFile reads an assessment table from a .csv, tab-separated .txt or
// .xlsx file. Workbooks are read from their first sheet.
func LoadFile(path string) (*Table, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewIOError("failed to open "+path, err).WithContext("path", path)
	}
	defer f.Close()

	table, err := ParseReader(f, format, path)
	if err != nil {
		return nil, err
	}

	slog.Debug("Loaded assessment table",
		slog.String("path", path),
		slog.String("format", string(format)),
		slog.Int("columns", len(table.Columns)),
		slog.Int("rows", table.Len()))

	return table, nil
}

// ParseReader decodes a table of the given format from r. name is recorded
// as the table's Source and used in error messages.
func ParseReader(r io.Reader, format Format, name string) (*Table, error) {
	var (
		records [][]string
		err     error
	)

	switch format {
	case FormatCSV:
		records, err = readDelimited(r, ',')
	case FormatTSV:
		records, err = readDelimited(r, '\t')
	case FormatXLSX:
		records, err = readWorkbook(r)
	default:
		return nil, apperrors.NewUnsupportedFormatError(name)
	}
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr.WithContext("source", name)
		}
		return nil, apperrors.NewParsingError("failed to parse "+name, err).WithContext("source", name)
	}

	table, err := buildTable(records, name)
	if err != nil {
		return nil, err
	}
	table.Format = format
	return table, nil
}

func readDelimited(r io.Reader, comma rune) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

func readWorkbook(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewEmptyDatasetError("workbook has no sheets")
	}

	// Stored values, not display text: a score formatted "0" must not round.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// buildTable takes the first non-blank record as header and pads the
// remaining non-blank records to its width.
func buildTable(records [][]string, name string) (*Table, error) {
	start := 0
	for start < len(records) && isBlankRow(records[start]) {
		start++
	}
	if start == len(records) {
		return nil, apperrors.NewEmptyDatasetError("no header row in " + name).WithContext("source", name)
	}

	header := records[start]
	columns := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		h = strings.TrimSpace(h)
		if h != "" && seen[h] {
			return nil, apperrors.NewParsingError(fmt.Sprintf("duplicate column %q", h), nil).
				WithContext("source", name).
				WithContext("column", h)
		}
		seen[h] = true
		columns[i] = h
	}

	table := &Table{Columns: columns, Source: name}
	width := len(columns)

	for i, rec := range records[start+1:] {
		if isBlankRow(rec) {
			continue
		}
		if len(rec) > width && !isBlankRow(rec[width:]) {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("row %d has %d fields, header has %d", i+1, len(rec), width), nil).
				WithContext("source", name).
				WithContext("row", i+1)
		}
		row := make([]string, width)
		copy(row, rec)
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}
