package dataprocessing

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"schoolcli/internal/config"
	apperrors "schoolcli/internal/errors"
	"schoolcli/pkg/contracts/domain"
)

// NoBestCourse is reported for a student whose row has no course scores.
const NoBestCourse = "N/A"

// missingMarkers are cell values treated like blank cells.
var missingMarkers = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"NaN":  true,
	"nan":  true,
	"null": true,
	"NULL": true,
	"#N/A": true,
}

var optionsValidator = validator.New()

// AnalysisOptions selects the columns the analyzer reads.
type AnalysisOptions struct {
	Courses        []string `validate:"required,min=1,unique,dive,required"`
	NameColumn     string   `validate:"required"`
	SemesterColumn string   `validate:"required"`
	TopN           int      `validate:"gte=1"`
}

// DefaultAnalysisOptions returns options for the standard course list
func DefaultAnalysisOptions() AnalysisOptions {
	return AnalysisOptions{
		Courses:        append([]string(nil), config.DefaultCourses...),
		NameColumn:     config.DefaultNameColumn,
		SemesterColumn: config.DefaultSemesterColumn,
		TopN:           config.DefaultTopN,
	}
}

// OptionsFromConfig builds options from the analysis config section
func OptionsFromConfig(cfg config.AnalysisConfig) AnalysisOptions {
	return AnalysisOptions{
		Courses:        append([]string(nil), cfg.Courses...),
		NameColumn:     cfg.NameColumn,
		SemesterColumn: cfg.SemesterColumn,
		TopN:           cfg.TopN,
	}
}

// Validate checks the options and returns a VALIDATION error naming the
// first offending field.
func (o AnalysisOptions) Validate() error {
	err := optionsValidator.Struct(o)
	if err == nil {
		return nil
	}

	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		fe := verrs[0]
		return apperrors.NewAppValidationError(
			fmt.Sprintf("invalid analysis option %s: failed %q", fe.Namespace(), fe.Tag())).
			WithContext("field", fe.Field())
	}
	return apperrors.NewAppValidationError(err.Error())
}

// scoreGrid holds the parsed course cells of a table.
type scoreGrid struct {
	values  [][]float64
	defined [][]bool
}

// Analyze computes course averages, semester averages, the top students and
// the recommendations for table.
func Analyze(table *Table, opts AnalysisOptions) (*domain.AnalysisResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if table.Len() == 0 {
		return nil, apperrors.NewEmptyDatasetError("table has no data rows")
	}

	nameIdx := table.ColumnIndex(opts.NameColumn)
	if nameIdx < 0 {
		return nil, apperrors.NewMissingColumnError(opts.NameColumn)
	}
	semesterIdx := table.ColumnIndex(opts.SemesterColumn)
	if semesterIdx < 0 {
		return nil, apperrors.NewMissingColumnError(opts.SemesterColumn)
	}
	courseIdx := make([]int, len(opts.Courses))
	for i, course := range opts.Courses {
		idx := table.ColumnIndex(course)
		if idx < 0 {
			return nil, apperrors.NewMissingColumnError(course)
		}
		courseIdx[i] = idx
	}

	grid, err := parseScores(table, opts.Courses, courseIdx)
	if err != nil {
		return nil, err
	}

	courseAverages, err := courseMeans(opts.Courses, grid)
	if err != nil {
		return nil, err
	}
	highest, lowest := extremeCourses(courseAverages)

	totals := rowTotals(grid)

	semesterAverages := semesterMeans(table, semesterIdx, totals)
	if len(semesterAverages) == 0 {
		return nil, apperrors.NewEmptyDatasetError(
			fmt.Sprintf("column %q has no values", opts.SemesterColumn)).
			WithContext("column", opts.SemesterColumn)
	}
	best, worst := extremeSemesters(semesterAverages)

	top := topStudents(table, nameIdx, semesterIdx, opts, grid, totals)

	return &domain.AnalysisResult{
		CourseAverages:   courseAverages,
		HighestCourse:    highest,
		LowestCourse:     lowest,
		SemesterAverages: semesterAverages,
		BestSemester:     best,
		WorstSemester:    worst,
		TopStudents:      top,
		Recommendations:  Recommendations(highest.Course, lowest.Course, best.Semester, worst.Semester),
		RowCount:         table.Len(),
		Source:           table.Source,
	}, nil
}

func parseScores(table *Table, courses []string, courseIdx []int) (*scoreGrid, error) {
	grid := &scoreGrid{
		values:  make([][]float64, len(table.Rows)),
		defined: make([][]bool, len(table.Rows)),
	}

	for r, row := range table.Rows {
		grid.values[r] = make([]float64, len(courses))
		grid.defined[r] = make([]bool, len(courses))

		for c, idx := range courseIdx {
			cell := strings.TrimSpace(row[idx])
			if missingMarkers[cell] {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, apperrors.NewNonNumericValueError(courses[c], r+1, cell, err)
			}
			if math.IsInf(v, 0) || math.IsNaN(v) {
				return nil, apperrors.NewNonNumericValueError(courses[c], r+1, cell, nil)
			}
			grid.values[r][c] = v
			grid.defined[r][c] = true
		}
	}

	return grid, nil
}

func courseMeans(courses []string, grid *scoreGrid) ([]domain.CourseAverage, error) {
	out := make([]domain.CourseAverage, len(courses))
	for c, course := range courses {
		var sum float64
		var n int
		for r := range grid.values {
			if grid.defined[r][c] {
				sum += grid.values[r][c]
				n++
			}
		}
		if n == 0 {
			return nil, apperrors.NewEmptyDatasetError(
				fmt.Sprintf("column %q has no numeric values", course)).
				WithContext("column", course)
		}
		out[c] = domain.CourseAverage{Course: course, Average: sum / float64(n)}
	}
	return out, nil
}

// extremeCourses scans in course order; the first course reaching an
// extreme keeps it.
func extremeCourses(avgs []domain.CourseAverage) (highest, lowest domain.CourseAverage) {
	highest, lowest = avgs[0], avgs[0]
	for _, a := range avgs[1:] {
		if a.Average > highest.Average {
			highest = a
		}
		if a.Average < lowest.Average {
			lowest = a
		}
	}
	return highest, lowest
}

func rowTotals(grid *scoreGrid) []float64 {
	totals := make([]float64, len(grid.values))
	for r, vals := range grid.values {
		for c, v := range vals {
			if grid.defined[r][c] {
				totals[r] += v
			}
		}
	}
	return totals
}

// semesterMeans groups row totals by semester in order of first appearance.
// Rows with a blank semester are left out.
func semesterMeans(table *Table, semesterIdx int, totals []float64) []domain.SemesterAverage {
	var order []string
	sums := make(map[string]float64)
	counts := make(map[string]int)

	for r, row := range table.Rows {
		sem := strings.TrimSpace(row[semesterIdx])
		if sem == "" {
			continue
		}
		if _, ok := counts[sem]; !ok {
			order = append(order, sem)
		}
		sums[sem] += totals[r]
		counts[sem]++
	}

	out := make([]domain.SemesterAverage, len(order))
	for i, sem := range order {
		out[i] = domain.SemesterAverage{
			Semester: sem,
			Average:  sums[sem] / float64(counts[sem]),
			Students: counts[sem],
		}
	}
	return out
}

func extremeSemesters(avgs []domain.SemesterAverage) (best, worst domain.SemesterAverage) {
	best, worst = avgs[0], avgs[0]
	for _, a := range avgs[1:] {
		if a.Average > best.Average {
			best = a
		}
		if a.Average < worst.Average {
			worst = a
		}
	}
	return best, worst
}

// topStudents ranks rows by total, descending. Equal totals keep row order.
func topStudents(table *Table, nameIdx, semesterIdx int, opts AnalysisOptions, grid *scoreGrid, totals []float64) []domain.StudentRanking {
	rows := make([]int, len(totals))
	for i := range rows {
		rows[i] = i
	}
	sort.SliceStable(rows, func(a, b int) bool {
		return totals[rows[a]] > totals[rows[b]]
	})

	n := opts.TopN
	if n > len(rows) {
		n = len(rows)
	}

	out := make([]domain.StudentRanking, n)
	for i, r := range rows[:n] {
		out[i] = domain.StudentRanking{
			Name:       strings.TrimSpace(table.Rows[r][nameIdx]),
			Semester:   strings.TrimSpace(table.Rows[r][semesterIdx]),
			Total:      totals[r],
			BestCourse: bestCourse(opts.Courses, grid.values[r], grid.defined[r]),
		}
	}
	return out
}

func bestCourse(courses []string, values []float64, defined []bool) string {
	best := -1
	for c := range courses {
		if !defined[c] {
			continue
		}
		if best < 0 || values[c] > values[best] {
			best = c
		}
	}
	if best < 0 {
		return NoBestCourse
	}
	return courses[best]
}

// Recommendations returns the five fixed recommendation lines.
func Recommendations(highestCourse, lowestCourse, bestSemester, worstSemester string) []string {
	return []string{
		fmt.Sprintf("Consider reviewing the curriculum for %s, as it has the lowest average score.", lowestCourse),
		fmt.Sprintf("Look into the factors contributing to the success in %s, which has the highest average score.", highestCourse),
		fmt.Sprintf("Investigate potential issues in the %s semester, which has the lowest overall performance.", worstSemester),
		fmt.Sprintf("Analyze what contributes to the success in the %s semester, which has the highest overall performance.", bestSemester),
		"Students struggling in their courses are encouraged to seek help from the top students in their best courses.",
	}
}
