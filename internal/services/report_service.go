package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"schoolcli/internal/config"
	"schoolcli/internal/dataprocessing"
	apperrors "schoolcli/internal/errors"
	"schoolcli/internal/exporter"
	"schoolcli/internal/files"
	"schoolcli/internal/infrastructure"
	"schoolcli/internal/validation"
	"schoolcli/pkg/contracts/domain"
)

// ReportFilePrefix names saved text reports: <prefix>_YYYYMMDD.txt
const ReportFilePrefix = "assessment_summary"

// ReportService runs load, merge, analysis and rendering with tracing,
// metrics and structured logs. It is safe for concurrent use.
type ReportService struct {
	opts      dataprocessing.AnalysisOptions
	validator *validation.FileValidator
	tracer    trace.Tracer
	metrics   *infrastructure.AnalysisMetrics
	logger    *slog.Logger
	now       func() time.Time
}

// ReportServiceOption configures a ReportService
type ReportServiceOption func(*ReportService)

// WithTracer sets the tracer used for spans
func WithTracer(tracer trace.Tracer) ReportServiceOption {
	return func(s *ReportService) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithMetrics sets the instruments analysis runs are recorded on
func WithMetrics(metrics *infrastructure.AnalysisMetrics) ReportServiceOption {
	return func(s *ReportService) {
		s.metrics = metrics
	}
}

// WithClock overrides the clock used for report dates
func WithClock(now func() time.Time) ReportServiceOption {
	return func(s *ReportService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewReportService creates a report service for the given analysis options
func NewReportService(opts dataprocessing.AnalysisOptions, logger *slog.Logger, options ...ReportServiceOption) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}

	s := &ReportService{
		opts:      opts,
		validator: validation.NewFileValidator(logger),
		tracer:    otel.Tracer(infrastructure.MeterName),
		logger:    infrastructure.WithComponent(logger, "report_service"),
		now:       time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Options returns a copy of the analysis options
func (s *ReportService) Options() dataprocessing.AnalysisOptions {
	opts := s.opts
	opts.Courses = append([]string(nil), s.opts.Courses...)
	return opts
}

// WithTopN returns a service that ranks n students. n < 1 keeps the current value.
func (s *ReportService) WithTopN(n int) *ReportService {
	if n < 1 {
		return s
	}
	clone := *s
	clone.opts = s.Options()
	clone.opts.TopN = n
	return &clone
}

// AnalyzeFile loads path and analyzes it
func (s *ReportService) AnalyzeFile(ctx context.Context, path string) (*domain.AnalysisResult, error) {
	ctx, span := s.tracer.Start(ctx, "ReportService.AnalyzeFile",
		trace.WithAttributes(attribute.String("file.path", path)))
	defer span.End()

	start := time.Now()

	if err := s.validator.ValidateAssessmentFile(path); err != nil {
		return nil, s.fail(ctx, "analyze_file", start, err)
	}

	table, err := dataprocessing.LoadFile(path)
	if err != nil {
		return nil, s.fail(ctx, "analyze_file", start, err)
	}

	return s.analyze(ctx, "analyze_file", start, table)
}

// AnalyzeTable analyzes an already loaded table
func (s *ReportService) AnalyzeTable(ctx context.Context, table *dataprocessing.Table) (*domain.AnalysisResult, error) {
	ctx, span := s.tracer.Start(ctx, "ReportService.AnalyzeTable")
	defer span.End()

	return s.analyze(ctx, "analyze_table", time.Now(), table)
}

// AnalyzeUpload analyzes an uploaded table, ranking topN students.
// topN < 1 keeps the configured value.
func (s *ReportService) AnalyzeUpload(ctx context.Context, table *dataprocessing.Table, topN int) (*domain.AnalysisResult, error) {
	return s.WithTopN(topN).AnalyzeTable(ctx, table)
}

// AnalyzeFiles merges paths in order and analyzes the result
func (s *ReportService) AnalyzeFiles(ctx context.Context, paths ...string) (*domain.AnalysisResult, *dataprocessing.Table, error) {
	ctx, span := s.tracer.Start(ctx, "ReportService.AnalyzeFiles",
		trace.WithAttributes(attribute.Int("file.count", len(paths))))
	defer span.End()

	start := time.Now()

	table, err := s.mergeAll(ctx, paths...)
	if err != nil {
		return nil, nil, s.fail(ctx, "analyze_files", start, err)
	}

	result, err := s.analyze(ctx, "analyze_files", start, table)
	if err != nil {
		return nil, nil, err
	}
	return result, table, nil
}

// AnalyzeURL downloads rawURL into the staging directory and analyzes it.
// The URL path's extension selects the loader.
func (s *ReportService) AnalyzeURL(ctx context.Context, fetcher *files.Fetcher, rawURL, stagingDir string) (*domain.AnalysisResult, error) {
	ctx, span := s.tracer.Start(ctx, "ReportService.AnalyzeURL",
		trace.WithAttributes(attribute.String("url", rawURL)))
	defer span.End()

	start := time.Now()

	local, err := fetcher.FetchToFile(ctx, rawURL, stagingDir)
	if err != nil {
		return nil, s.fail(ctx, "analyze_url", start, err)
	}

	s.logger.InfoContext(ctx, "Fetched assessment file",
		slog.String("url", rawURL),
		slog.String("path", local))

	table, err := dataprocessing.LoadFile(local)
	if err != nil {
		return nil, s.fail(ctx, "analyze_url", start, err)
	}

	return s.analyze(ctx, "analyze_url", start, table)
}

// DirectoryAnalysis is the outcome of AnalyzeDirectory.
type DirectoryAnalysis struct {
	Result *domain.AnalysisResult
	Merged *dataprocessing.Table
	Files  []string
}

// AnalyzeDirectory merges every supported file in dir, in name order, and
// analyzes the result. Files of different formats fail with a format mismatch.
func (s *ReportService) AnalyzeDirectory(ctx context.Context, dir string) (*DirectoryAnalysis, error) {
	ctx, span := s.tracer.Start(ctx, "ReportService.AnalyzeDirectory",
		trace.WithAttributes(attribute.String("dir", dir)))
	defer span.End()

	start := time.Now()

	if err := s.validator.ValidateInputDirectory(dir); err != nil {
		return nil, s.fail(ctx, "analyze_directory", start, err)
	}

	found, err := files.NewDiscovery("").FindAssessmentFiles(dir)
	if err != nil {
		return nil, s.fail(ctx, "analyze_directory", start, err)
	}
	if len(found) == 0 {
		err := apperrors.NewAppError(apperrors.ErrTypeNotFound,
			fmt.Sprintf("no assessment files in %s", dir), ErrNoAssessmentFiles).
			WithContext("path", dir)
		return nil, s.fail(ctx, "analyze_directory", start, err)
	}

	paths := files.Paths(found)
	table, err := s.mergeAll(ctx, paths...)
	if err != nil {
		return nil, s.fail(ctx, "analyze_directory", start, err)
	}

	result, err := s.analyze(ctx, "analyze_directory", start, table)
	if err != nil {
		return nil, err
	}
	return &DirectoryAnalysis{Result: result, Merged: table, Files: paths}, nil
}

// MergeFiles merges two files of the same format, first then second
func (s *ReportService) MergeFiles(ctx context.Context, first, second string) (*dataprocessing.Table, error) {
	ctx, span := s.tracer.Start(ctx, "ReportService.MergeFiles",
		trace.WithAttributes(
			attribute.String("file.first", first),
			attribute.String("file.second", second)))
	defer span.End()

	start := time.Now()

	table, err := s.mergeAll(ctx, first, second)
	if err != nil {
		return nil, s.fail(ctx, "merge", start, err)
	}

	infrastructure.RecordAnalysis(ctx, s.metrics, "merge", table.Len(), time.Since(start), "")
	return table, nil
}

func (s *ReportService) mergeAll(ctx context.Context, paths ...string) (*dataprocessing.Table, error) {
	if len(paths) > 1 {
		if err := s.validator.ValidateMergeInputs(paths...); err != nil {
			return nil, err
		}
	}

	table, err := dataprocessing.MergeAll(paths...)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Merged assessment files",
		slog.Int("files", len(paths)),
		slog.Int("rows", table.Len()))
	return table, nil
}

// Render returns the text report for result dated with the service clock
func (s *ReportService) Render(result *domain.AnalysisResult) string {
	return exporter.RenderReport(result, s.now())
}

// SaveReport writes the text report into the reports directory under a
// dated name and returns its path.
func (s *ReportService) SaveReport(ctx context.Context, result *domain.AnalysisResult, paths *config.Paths) (string, error) {
	ctx, span := s.tracer.Start(ctx, "ReportService.SaveReport")
	defer span.End()

	if result == nil {
		return "", ErrNilResult
	}

	now := s.now()
	name := config.DatedReportName(ReportFilePrefix, "txt", now)
	manager := files.NewManager(paths)

	if manager.FileExists("reports/" + name) {
		s.logger.InfoContext(ctx, "Replacing existing report", slog.String("file", name))
	}

	if err := manager.WriteFile("reports/"+name, []byte(exporter.RenderReport(result, now))); err != nil {
		appErr := apperrors.NewIOError("failed to save report", err).WithContext("file", name)
		infrastructure.RecordError(ctx, appErr)
		return "", appErr
	}

	path := manager.CleanPath("reports/" + name)
	s.logger.InfoContext(ctx, "Report saved", slog.String("path", path))
	return path, nil
}

func (s *ReportService) analyze(ctx context.Context, op string, start time.Time, table *dataprocessing.Table) (*domain.AnalysisResult, error) {
	result, err := dataprocessing.Analyze(table, s.opts)
	if err != nil {
		return nil, s.fail(ctx, op, start, err)
	}

	duration := time.Since(start)
	infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
		"analysis.rows":           result.RowCount,
		"analysis.semesters":      len(result.SemesterAverages),
		"analysis.highest_course": result.HighestCourse.Course,
	})
	infrastructure.RecordAnalysis(ctx, s.metrics, op, result.RowCount, duration, "")

	s.logger.InfoContext(ctx, "Analysis completed",
		slog.String("operation", op),
		slog.String("source", result.Source),
		slog.Int("rows", result.RowCount),
		slog.String("highest_course", result.HighestCourse.Course),
		slog.String("best_semester", result.BestSemester.Semester),
		slog.Duration("duration", duration))

	return result, nil
}

// fail records err on the span, the metrics and the log, and returns it unchanged.
func (s *ReportService) fail(ctx context.Context, op string, start time.Time, err error) error {
	kind := string(apperrors.TypeOf(err))
	if kind == "" {
		kind = "UNKNOWN"
	}

	infrastructure.RecordError(ctx, err)
	infrastructure.RecordAnalysis(ctx, s.metrics, op, 0, time.Since(start), kind)

	s.logger.WarnContext(ctx, "Analysis failed",
		slog.String("operation", op),
		slog.String("error_kind", kind),
		slog.String("error", err.Error()))

	return err
}
