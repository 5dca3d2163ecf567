package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"schoolcli/internal/dataprocessing"
	apperrors "schoolcli/internal/errors"
)

// CSVWriter writes delimited text files
type CSVWriter struct {
	comma rune
}

// NewCSVWriter creates a comma-separated writer
func NewCSVWriter() *CSVWriter {
	return &CSVWriter{comma: ','}
}

// NewTSVWriter creates a tab-separated writer
func NewTSVWriter() *CSVWriter {
	return &CSVWriter{comma: '\t'}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to filePath, replacing any existing file.
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	slog.Info("Writing delimited file",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return apperrors.NewIOError("failed to create directory", err).WithContext("path", filePath)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return apperrors.NewIOError("failed to create file", err).WithContext("path", filePath)
	}
	defer file.Close()

	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return apperrors.NewIOError("failed to write BOM", err).WithContext("path", filePath)
		}
	}

	writer := csv.NewWriter(file)
	writer.Comma = w.comma

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return apperrors.NewIOError("failed to write headers", err).WithContext("path", filePath)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return apperrors.NewIOError(fmt.Sprintf("failed to write record %d", i), err).WithContext("path", filePath)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperrors.NewIOError("failed to flush file", err).WithContext("path", filePath)
	}
	return file.Close()
}

// WriteTableCSV writes table as comma-separated values, or tab-separated when
// path ends in .txt.
func WriteTableCSV(path string, table *dataprocessing.Table) error {
	if table == nil {
		return fmt.Errorf("no table to export")
	}

	w := NewCSVWriter()
	if format, err := dataprocessing.DetectFormat(path); err == nil && format == dataprocessing.FormatTSV {
		w = NewTSVWriter()
	}

	return w.WriteCSV(path, WriteOptions{
		Headers: table.Columns,
		Records: table.Rows,
	})
}

// WriteTable writes table in the format selected by path's extension.
func WriteTable(path string, table *dataprocessing.Table) error {
	format, err := dataprocessing.DetectFormat(path)
	if err != nil {
		return err
	}

	if format == dataprocessing.FormatXLSX {
		return WriteTableXLSX(path, table)
	}
	return WriteTableCSV(path, table)
}
