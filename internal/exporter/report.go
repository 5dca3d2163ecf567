package exporter

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"schoolcli/pkg/contracts/domain"
)

// ReportTitle is the first line of every summary report
const ReportTitle = "School Assessment Summary Report"

// ReportDateLayout formats the generation date line
const ReportDateLayout = "2006-01-02"

const bullet = "    - "

// RenderReport returns the summary report for result, dated generatedOn.
func RenderReport(result *domain.AnalysisResult, generatedOn time.Time) string {
	var b strings.Builder
	// strings.Builder never fails
	_ = WriteReport(&b, result, generatedOn)
	return b.String()
}

// WriteReport writes the summary report to w.
func WriteReport(w io.Writer, result *domain.AnalysisResult, generatedOn time.Time) error {
	if result == nil {
		return fmt.Errorf("no analysis result to report")
	}

	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%s\n\n", ReportTitle)

	fmt.Fprintln(bw, "1. Course Performance Analysis:")
	fmt.Fprintf(bw, "%sHighest Average Score: %s (%.2f)\n", bullet, result.HighestCourse.Course, result.HighestCourse.Average)
	fmt.Fprintf(bw, "%sLowest Average Score: %s (%.2f)\n", bullet, result.LowestCourse.Course, result.LowestCourse.Average)
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "2. Semester Performance Analysis:")
	fmt.Fprintf(bw, "%sBest Semester: %s (Average Score: %.2f)\n", bullet, result.BestSemester.Semester, result.BestSemester.Average)
	fmt.Fprintf(bw, "%sWorst Semester: %s (Average Score: %.2f)\n", bullet, result.WorstSemester.Semester, result.WorstSemester.Average)
	fmt.Fprintln(bw)

	fmt.Fprintf(bw, "3. Top %d Students:\n", len(result.TopStudents))
	for _, s := range result.TopStudents {
		fmt.Fprintf(bw, "%s%s: Best Course: %s\n", bullet, s.Name, s.BestCourse)
	}
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "4. Recommendations:")
	for _, rec := range result.Recommendations {
		fmt.Fprintf(bw, "%s%s\n", bullet, rec)
	}
	fmt.Fprintln(bw)

	fmt.Fprintf(bw, "Report Generated on: %s\n", generatedOn.Format(ReportDateLayout))

	return bw.Flush()
}
