package exporter

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"schoolcli/internal/dataprocessing"
	apperrors "schoolcli/internal/errors"
	"schoolcli/pkg/contracts/domain"
)

// Workbook sheet names
const (
	SheetCourses         = "Courses"
	SheetSemesters       = "Semesters"
	SheetTopStudents     = "Top Students"
	SheetRecommendations = "Recommendations"
)

// WriteWorkbook saves result as an .xlsx workbook with one sheet per report section.
func WriteWorkbook(path string, result *domain.AnalysisResult) error {
	if result == nil {
		return fmt.Errorf("no analysis result to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	courses := [][]interface{}{{"Course", "Average Score"}}
	for _, c := range result.CourseAverages {
		courses = append(courses, []interface{}{c.Course, round2(c.Average)})
	}

	semesters := [][]interface{}{{"Semester", "Students", "Average Total"}}
	for _, s := range result.SemesterAverages {
		semesters = append(semesters, []interface{}{s.Semester, s.Students, round2(s.Average)})
	}

	top := [][]interface{}{{"Rank", "Name", "Semester", "Total", "Best Course"}}
	for i, s := range result.TopStudents {
		top = append(top, []interface{}{i + 1, s.Name, s.Semester, round2(s.Total), s.BestCourse})
	}

	recs := [][]interface{}{{"#", "Recommendation"}}
	for i, r := range result.Recommendations {
		recs = append(recs, []interface{}{i + 1, r})
	}

	sheets := []struct {
		name string
		rows [][]interface{}
	}{
		{SheetCourses, courses},
		{SheetSemesters, semesters},
		{SheetTopStudents, top},
		{SheetRecommendations, recs},
	}

	for i, s := range sheets {
		if err := addSheet(f, i, s.name, s.rows); err != nil {
			return apperrors.NewIOError("failed to build workbook", err).WithContext("sheet", s.name)
		}
	}

	return saveWorkbook(f, path)
}

// WriteTableXLSX saves table to the first sheet of a new workbook.
func WriteTableXLSX(path string, table *dataprocessing.Table) error {
	if table == nil {
		return fmt.Errorf("no table to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	rows := make([][]interface{}, 0, table.Len()+1)
	rows = append(rows, toRow(table.Columns))
	for _, r := range table.Rows {
		rows = append(rows, toNumericRow(r))
	}

	if err := addSheet(f, 0, "Sheet1", rows); err != nil {
		return apperrors.NewIOError("failed to build workbook", err)
	}

	return saveWorkbook(f, path)
}

// addSheet writes rows to a sheet, renaming the default sheet when index is 0.
func addSheet(f *excelize.File, index int, name string, rows [][]interface{}) error {
	if index == 0 {
		if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
			return err
		}
	} else if _, err := f.NewSheet(name); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return err
		}
	}

	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(name, "A1", last, style)
}

func saveWorkbook(f *excelize.File, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewIOError("failed to create directory", err).WithContext("path", path)
	}
	if err := f.SaveAs(path); err != nil {
		return apperrors.NewIOError("failed to save workbook", err).WithContext("path", path)
	}

	slog.Info("Workbook written", slog.String("path", path))
	return nil
}

func toRow(cells []string) []interface{} {
	row := make([]interface{}, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}

// toNumericRow stores cells that parse as finite numbers as numbers so
// spreadsheet tools treat score columns as numeric.
func toNumericRow(cells []string) []interface{} {
	row := make([]interface{}, len(cells))
	for i, c := range cells {
		row[i] = c
		if v, err := strconv.ParseFloat(strings.TrimSpace(c), 64); err == nil && !math.IsInf(v, 0) && !math.IsNaN(v) {
			row[i] = v
		}
	}
	return row
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
