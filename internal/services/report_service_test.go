package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolcli/internal/config"
	"schoolcli/internal/dataprocessing"
	apperrors "schoolcli/internal/errors"
	"schoolcli/internal/files"
	"schoolcli/internal/infrastructure"
)

const (
	fallCSV = "Name,Semester,INF 652,CSC 241,ITM 101,ITM 371,COSC 201\n" +
		"Alice,Fall,95,85,90,88,92\n"
	springCSV = "Name,Semester,INF 652,CSC 241,ITM 101,ITM 371,COSC 201\n" +
		"Bob,Spring,55,65,60,58,62\n"
)

var fixedDate = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestService(t *testing.T, options ...ReportServiceOption) (*ReportService, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	options = append([]ReportServiceOption{WithClock(func() time.Time { return fixedDate })}, options...)
	return NewReportService(dataprocessing.DefaultAnalysisOptions(), logger, options...), &logs
}

func TestReportService_AnalyzeFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "fall.csv", fallCSV)

	svc, logs := newTestService(t)
	result, err := svc.AnalyzeFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 1, result.RowCount)
	assert.Equal(t, "COSC 201", result.HighestCourse.Course)
	assert.Equal(t, "Fall", result.BestSemester.Semester)
	assert.Contains(t, logs.String(), "Analysis completed")
	assert.Contains(t, logs.String(), `"component":"report_service"`)
}

func TestReportService_AnalyzeFileErrors(t *testing.T) {
	dir := t.TempDir()
	noCourse := writeFixture(t, dir, "partial.csv", "Name,Semester,INF 652\nAlice,Fall,90\n")
	notNumeric := writeFixture(t, dir, "bad.csv", strings.Replace(fallCSV, "95", "ninety", 1))

	tests := []struct {
		name    string
		path    string
		wantErr apperrors.ErrorType
	}{
		{"unsupported extension", filepath.Join(dir, "scores.pdf"), apperrors.ErrTypeUnsupportedFormat},
		{"missing file", filepath.Join(dir, "missing.csv"), apperrors.ErrTypeIOFailure},
		{"missing course column", noCourse, apperrors.ErrTypeMissingColumn},
		{"non numeric score", notNumeric, apperrors.ErrTypeNonNumericValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, logs := newTestService(t)
			result, err := svc.AnalyzeFile(context.Background(), tt.path)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.Equal(t, tt.wantErr, apperrors.TypeOf(err), "error: %v", err)
			assert.Contains(t, logs.String(), string(tt.wantErr))
		})
	}
}

func TestReportService_MergeFiles(t *testing.T) {
	dir := t.TempDir()
	fall := writeFixture(t, dir, "fall.csv", fallCSV)
	spring := writeFixture(t, dir, "spring.csv", springCSV)

	svc, _ := newTestService(t)

	table, err := svc.MergeFiles(context.Background(), fall, spring)
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "Alice", table.Rows[0][0])
	assert.Equal(t, "Bob", table.Rows[1][0])

	result, err := svc.AnalyzeTable(context.Background(), table)
	require.NoError(t, err)
	assert.Equal(t, "Fall", result.BestSemester.Semester)
	assert.Equal(t, "Spring", result.WorstSemester.Semester)
	assert.Equal(t, 450.0, result.BestSemester.Average)
	assert.Equal(t, 300.0, result.WorstSemester.Average)
}

func TestReportService_MergeFilesFormatMismatch(t *testing.T) {
	dir := t.TempDir()
	fall := writeFixture(t, dir, "fall.csv", fallCSV)

	svc, _ := newTestService(t)
	_, err := svc.MergeFiles(context.Background(), fall, filepath.Join(dir, "spring.xlsx"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeFormatMismatch), "error: %v", err)
}

func TestReportService_AnalyzeDirectory(t *testing.T) {
	t.Run("merges in name order", func(t *testing.T) {
		dir := t.TempDir()
		writeFixture(t, dir, "b_spring.csv", springCSV)
		writeFixture(t, dir, "a_fall.csv", fallCSV)
		writeFixture(t, dir, "notes.md", "ignored")

		svc, _ := newTestService(t)
		analysis, err := svc.AnalyzeDirectory(context.Background(), dir)
		require.NoError(t, err)

		assert.Equal(t, []string{filepath.Join(dir, "a_fall.csv"), filepath.Join(dir, "b_spring.csv")}, analysis.Files)
		assert.Equal(t, 2, analysis.Result.RowCount)
		assert.Equal(t, "Alice", analysis.Result.TopStudents[0].Name)

		require.NotNil(t, analysis.Merged)
		require.Equal(t, 2, analysis.Merged.Len())
		assert.Equal(t, "Alice", analysis.Merged.Rows[0][0])
		assert.Equal(t, "Bob", analysis.Merged.Rows[1][0])
	})

	t.Run("no assessment files", func(t *testing.T) {
		dir := t.TempDir()
		writeFixture(t, dir, "notes.md", "ignored")

		svc, _ := newTestService(t)
		_, err := svc.AnalyzeDirectory(context.Background(), dir)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
		assert.ErrorIs(t, err, ErrNoAssessmentFiles)
	})

	t.Run("mixed formats", func(t *testing.T) {
		dir := t.TempDir()
		writeFixture(t, dir, "fall.csv", fallCSV)
		writeFixture(t, dir, "spring.txt", strings.ReplaceAll(springCSV, ",", "\t"))

		svc, _ := newTestService(t)
		_, err := svc.AnalyzeDirectory(context.Background(), dir)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeFormatMismatch))
	})

	t.Run("missing directory", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.AnalyzeDirectory(context.Background(), filepath.Join(t.TempDir(), "nope"))
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeIOFailure))
	})
}

func TestReportService_AnalyzeURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/exports/fall.csv" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(fallCSV))
	}))
	defer srv.Close()

	staging := t.TempDir()
	fetcher := &files.Fetcher{Timeout: time.Second}
	svc, _ := newTestService(t)

	result, err := svc.AnalyzeURL(context.Background(), fetcher, srv.URL+"/exports/fall.csv", staging)
	require.NoError(t, err)
	assert.Equal(t, "Alice", result.TopStudents[0].Name)
	assert.FileExists(t, filepath.Join(staging, "fall.csv"))

	_, err = svc.AnalyzeURL(context.Background(), fetcher, srv.URL+"/exports/spring.csv", staging)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNetwork))
}

func TestReportService_WithTopN(t *testing.T) {
	dir := t.TempDir()
	fall := writeFixture(t, dir, "fall.csv", fallCSV)
	spring := writeFixture(t, dir, "spring.csv", springCSV)

	svc, _ := newTestService(t)
	top1 := svc.WithTopN(1)

	result, _, err := top1.AnalyzeFiles(context.Background(), fall, spring)
	require.NoError(t, err)
	require.Len(t, result.TopStudents, 1)
	assert.Equal(t, "Alice", result.TopStudents[0].Name)

	assert.Equal(t, config.DefaultTopN, svc.Options().TopN, "original service is unchanged")
	assert.Same(t, svc, svc.WithTopN(0))
}

func TestReportService_RenderAndSave(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "fall.csv", fallCSV)

	svc, logs := newTestService(t)
	result, err := svc.AnalyzeFile(context.Background(), path)
	require.NoError(t, err)

	report := svc.Render(result)
	assert.True(t, strings.HasSuffix(report, "Report Generated on: 2026-10-16\n"))

	paths, err := config.Default().Paths.Resolve(dir)
	require.NoError(t, err)

	saved, err := svc.SaveReport(context.Background(), result, paths)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(paths.ReportsDir, "assessment_summary_20261016.txt"), saved)

	data, err := os.ReadFile(saved)
	require.NoError(t, err)
	assert.Equal(t, report, string(data))
	assert.NotContains(t, logs.String(), "Replacing existing report")

	again, err := svc.SaveReport(context.Background(), result, paths)
	require.NoError(t, err)
	assert.Equal(t, saved, again)
	assert.Contains(t, logs.String(), "Replacing existing report")

	_, err = svc.SaveReport(context.Background(), nil, paths)
	assert.ErrorIs(t, err, ErrNilResult)
}

func TestReportService_RecordsMetrics(t *testing.T) {
	providers, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := infrastructure.CreateAnalysisMetrics(providers.Meter)
	require.NoError(t, err)

	dir := t.TempDir()
	path := writeFixture(t, dir, "fall.csv", fallCSV)

	svc, _ := newTestService(t, WithTracer(providers.Tracer), WithMetrics(metrics))
	_, err = svc.AnalyzeFile(context.Background(), path)
	require.NoError(t, err)
	_, err = svc.AnalyzeFile(context.Background(), filepath.Join(dir, "missing.csv"))
	require.Error(t, err)

	w := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := w.Body.String()
	assert.Contains(t, body, `operation="analyze_file"`)
	assert.Contains(t, body, `status="success"`)
	assert.Contains(t, body, `error_kind="IO_FAILURE"`)
}
