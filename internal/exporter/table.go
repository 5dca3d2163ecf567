package exporter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"schoolcli/pkg/contracts/domain"
)

// RenderTables writes the analysis as console tables: course averages,
// semester averages, top students and recommendations.
func RenderTables(w io.Writer, result *domain.AnalysisResult) error {
	if result == nil {
		return fmt.Errorf("no analysis result to render")
	}

	fmt.Fprintln(w, "Course Averages")
	courses := newTable(w, []string{"Course", "Average Score", "Note"})
	for _, c := range result.CourseAverages {
		courses.Append([]string{c.Course, formatScore(c.Average), courseNote(c, result)})
	}
	courses.Render()

	fmt.Fprintln(w, "\nSemester Averages")
	semesters := newTable(w, []string{"Semester", "Students", "Average Total", "Note"})
	for _, s := range result.SemesterAverages {
		semesters.Append([]string{s.Semester, strconv.Itoa(s.Students), formatScore(s.Average), semesterNote(s, result)})
	}
	semesters.Render()

	fmt.Fprintf(w, "\nTop %d Students\n", len(result.TopStudents))
	top := newTable(w, []string{"Rank", "Name", "Semester", "Total", "Best Course"})
	for i, s := range result.TopStudents {
		top.Append([]string{strconv.Itoa(i + 1), s.Name, s.Semester, formatScore(s.Total), s.BestCourse})
	}
	top.Render()

	fmt.Fprintln(w, "\nRecommendations")
	recs := newTable(w, []string{"#", "Recommendation"})
	for i, r := range result.Recommendations {
		recs.Append([]string{strconv.Itoa(i + 1), r})
	}
	recs.Render()

	return nil
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

func formatScore(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func courseNote(c domain.CourseAverage, result *domain.AnalysisResult) string {
	switch c.Course {
	case result.HighestCourse.Course:
		return "highest"
	case result.LowestCourse.Course:
		return "lowest"
	}
	return ""
}

func semesterNote(s domain.SemesterAverage, result *domain.AnalysisResult) string {
	switch s.Semester {
	case result.BestSemester.Semester:
		return "best"
	case result.WorstSemester.Semester:
		return "worst"
	}
	return ""
}
