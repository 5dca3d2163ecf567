package dataprocessing

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "schoolcli/internal/errors"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"scores.csv", FormatCSV, false},
		{"SCORES.CSV", FormatCSV, false},
		{"scores.txt", FormatTSV, false},
		{"dir/scores.XLSX", FormatXLSX, false},
		{"scores.xls", "", true},
		{"scores.json", "", true},
		{"scores", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := DetectFormat(tt.path)
			if tt.wantErr {
				assert.True(t, apperrors.IsType(err, apperrors.ErrTypeUnsupportedFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		path     string
		wantCols []string
		wantRows [][]string
		wantErr  apperrors.ErrorType
	}{
		{
			name:     "csv",
			path:     writeFile(t, dir, "a.csv", "Name,Semester,INF 652\nAlice,Fall,90\nBob,Spring,80\n"),
			wantCols: []string{"Name", "Semester", "INF 652"},
			wantRows: [][]string{{"Alice", "Fall", "90"}, {"Bob", "Spring", "80"}},
		},
		{
			name:     "tab separated txt",
			path:     writeFile(t, dir, "a.txt", "Name\tSemester\tINF 652\nAlice\tFall\t90\n"),
			wantCols: []string{"Name", "Semester", "INF 652"},
			wantRows: [][]string{{"Alice", "Fall", "90"}},
		},
		{
			name:     "bom and padded headers",
			path:     writeFile(t, dir, "bom.csv", "\ufeff Name , Semester\nAlice,Fall\n"),
			wantCols: []string{"Name", "Semester"},
			wantRows: [][]string{{"Alice", "Fall"}},
		},
		{
			name:     "short rows padded and blank rows skipped",
			path:     writeFile(t, dir, "short.csv", "\nName,Semester,INF 652\nAlice\n,,\nBob,Spring,70\n"),
			wantCols: []string{"Name", "Semester", "INF 652"},
			wantRows: [][]string{{"Alice", "", ""}, {"Bob", "Spring", "70"}},
		},
		{
			name:     "xlsx first sheet",
			path:     writeWorkbook(t, dir, "a.xlsx", [][]string{{"Name", "Semester", "INF 652"}, {"Alice", "Fall", "90"}}),
			wantCols: []string{"Name", "Semester", "INF 652"},
			wantRows: [][]string{{"Alice", "Fall", "90"}},
		},
		{
			name:     "header only is still a table",
			path:     writeFile(t, dir, "header.csv", "Name,Semester\n"),
			wantCols: []string{"Name", "Semester"},
		},
		{
			name:    "empty file",
			path:    writeFile(t, dir, "empty.csv", ""),
			wantErr: apperrors.ErrTypeEmptyDataset,
		},
		{
			name:    "unsupported extension",
			path:    writeFile(t, dir, "a.json", "{}"),
			wantErr: apperrors.ErrTypeUnsupportedFormat,
		},
		{
			name:    "missing file",
			path:    filepath.Join(dir, "missing.csv"),
			wantErr: apperrors.ErrTypeIOFailure,
		},
		{
			name:    "malformed csv",
			path:    writeFile(t, dir, "bad.csv", "Name,Semester\n\"Alice,Fall\n"),
			wantErr: apperrors.ErrTypeParsing,
		},
		{
			name:    "corrupt workbook",
			path:    writeFile(t, dir, "bad.xlsx", "not a zip archive"),
			wantErr: apperrors.ErrTypeParsing,
		},
		{
			name:    "extra fields",
			path:    writeFile(t, dir, "wide.csv", "Name,Semester\nAlice,Fall,90\n"),
			wantErr: apperrors.ErrTypeParsing,
		},
		{
			name:    "duplicate header",
			path:    writeFile(t, dir, "dup.csv", "Name,Name\nAlice,Alice\n"),
			wantErr: apperrors.ErrTypeParsing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := LoadFile(tt.path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, apperrors.TypeOf(err), "error: %v", err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantCols, table.Columns)
			assert.Equal(t, tt.wantRows, table.Rows)
			assert.Equal(t, tt.path, table.Source)
		})
	}
}

func TestParseReader(t *testing.T) {
	table, err := ParseReader(strings.NewReader("Name,Semester\nAlice,Fall\n"), FormatCSV, "upload.csv")
	require.NoError(t, err)

	assert.Equal(t, FormatCSV, table.Format)
	assert.Equal(t, "upload.csv", table.Source)
	assert.Equal(t, 1, table.Len())

	_, err = ParseReader(strings.NewReader(""), Format("ods"), "upload.ods")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeUnsupportedFormat))
}

func TestTableColumn(t *testing.T) {
	table := newTable(
		[]string{"Alice", "Fall", "90", "80", "70", "60", "50"},
		[]string{"Bob", "Spring", "10", "20", "30", "40", "50"},
	)

	names, ok := table.Column("Name")
	require.True(t, ok)
	assert.Equal(t, []string{"Alice", "Bob"}, names)

	_, ok = table.Column("Missing")
	assert.False(t, ok)

	var nilTable *Table
	assert.Equal(t, 0, nilTable.Len())
}

func TestLoadFile_WorkbookReadsStoredNumbers(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		value    float64
		numFmt   int
		wantCell string
		wantMean float64
	}{
		{"integer format does not round", 85.6, 1, "85.6", 85.6},
		{"thousands separator format", 1234.5, 4, "1234.5", 1234.5},
		{"two decimals format", 90, 2, "90", 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeNumericWorkbook(t, dir, strings.ReplaceAll(tt.name, " ", "_")+".xlsx", tt.value, tt.numFmt)

			table, err := LoadFile(path)
			require.NoError(t, err)
			require.Equal(t, 1, table.Len())
			assert.Equal(t, tt.wantCell, table.Rows[0][2])

			result, err := Analyze(table, DefaultAnalysisOptions())
			require.NoError(t, err)
			assert.InDelta(t, tt.wantMean, result.CourseAverages[0].Average, 1e-9)
			assert.InDelta(t, tt.wantMean*5, result.TopStudents[0].Total, 1e-9)
		})
	}
}
