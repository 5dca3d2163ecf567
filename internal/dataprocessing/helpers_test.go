package dataprocessing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var testHeader = []string{"Name", "Semester", "INF 652", "CSC 241", "ITM 101", "ITM 371", "COSC 201"}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// writeWorkbook saves rows (header first) to the first sheet of a new workbook.
func writeWorkbook(t *testing.T, dir, name string, rows [][]string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for r, row := range rows {
		for c, val := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, val))
		}
	}

	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func newTable(rows ...[]string) *Table {
	return &Table{
		Columns: append([]string(nil), testHeader...),
		Rows:    rows,
		Source:  "inline",
		Format:  FormatCSV,
	}
}

// writeNumericWorkbook saves one student row whose course cells hold value as
// a number formatted with the built-in number format numFmt.
func writeNumericWorkbook(t *testing.T, dir, name string, value float64, numFmt int) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := make([]interface{}, len(testHeader))
	for i, h := range testHeader {
		header[i] = h
	}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))

	row := []interface{}{"Alice", "Fall"}
	for range testHeader[2:] {
		row = append(row, value)
	}
	require.NoError(t, f.SetSheetRow(sheet, "A2", &row))

	style, err := f.NewStyle(&excelize.Style{NumFmt: numFmt})
	require.NoError(t, err)
	last, err := excelize.CoordinatesToCellName(len(testHeader), 2)
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, "C2", last, style))

	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}
