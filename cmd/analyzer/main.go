package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"

	"schoolcli/internal/config"
	"schoolcli/internal/dataprocessing"
	apperrors "schoolcli/internal/errors"
	"schoolcli/internal/exporter"
	"schoolcli/internal/files"
	"schoolcli/internal/infrastructure"
	"schoolcli/internal/services"
	"schoolcli/pkg/contracts"
	"schoolcli/pkg/contracts/domain"
)

const (
	formatText  = "text"
	formatTable = "table"
)

type options struct {
	file       string
	merge      string
	mergeOut   string
	dir        string
	url        string
	format     string
	xlsx       string
	top        int
	out        string
	save       bool
	configFile string
	version    bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the analyzer with args and returns the process exit code.
// The report goes to stdout (or -out); logs and status lines go to stderr.
func run(args []string, stdout, stderr io.Writer) int {
	status := newStatus(stderr)

	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		status.fail(err)
		return 1
	}
	if opts.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return 0
	}

	cfg, err := loadConfig(opts.configFile)
	if err != nil {
		status.fail(err)
		return 1
	}

	// Console logs go to stderr; stdout is the report sink.
	logger, logFile, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		status.fail(apperrors.NewConfigError("failed to configure logging", err))
		return 1
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = infrastructure.EnsureTraceID(ctx)

	a := &analyzer{
		opts:    opts,
		cfg:     cfg,
		service: services.NewReportService(dataprocessing.OptionsFromConfig(cfg.Analysis), logger).WithTopN(opts.top),
		logger:  logger,
		status:  status,
		stdout:  stdout,
		create:  createFile,
	}

	if err := a.run(ctx); err != nil {
		status.fail(err)
		return 1
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("analyzer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.file, "file", "", "analyze one assessment file (.csv, .xlsx or tab-separated .txt)")
	fs.StringVar(&opts.merge, "merge", "", "merge two files of the same format and analyze the result: a,b")
	fs.StringVar(&opts.mergeOut, "merge-out", "", "write the merged table to this path (.csv, .txt or .xlsx)")
	fs.StringVar(&opts.dir, "dir", "", "merge every assessment file in a directory and analyze the result")
	fs.StringVar(&opts.url, "url", "", "fetch a remote assessment file and analyze it")
	fs.StringVar(&opts.format, "format", formatText, "report format: text or table")
	fs.StringVar(&opts.xlsx, "xlsx", "", "also write the analysis workbook to this path")
	fs.IntVar(&opts.top, "top", 0, "number of top students to list (default from config)")
	fs.StringVar(&opts.out, "out", "", "write the report to this file instead of stdout")
	fs.BoolVar(&opts.save, "save", false, "also save a dated text report under the reports directory")
	fs.StringVar(&opts.configFile, "config", "", "path to a YAML config file")
	fs.BoolVar(&opts.version, "version", false, "print version information and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if opts.version {
		return opts, nil
	}

	sources := 0
	for _, s := range []string{opts.file, opts.merge, opts.dir, opts.url} {
		if s != "" {
			sources++
		}
	}
	if sources != 1 {
		return nil, fmt.Errorf("exactly one of -file, -merge, -dir or -url is required")
	}

	if opts.format != formatText && opts.format != formatTable {
		return nil, fmt.Errorf("invalid -format %q (want %s or %s)", opts.format, formatText, formatTable)
	}
	if opts.top < 0 {
		return nil, fmt.Errorf("-top must not be negative, got %d", opts.top)
	}
	if opts.mergeOut != "" && opts.merge == "" && opts.dir == "" {
		return nil, fmt.Errorf("-merge-out requires -merge or -dir")
	}

	return opts, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func createFile(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

type analyzer struct {
	opts    *options
	cfg     *config.Config
	service *services.ReportService
	logger  *slog.Logger
	status  *status
	stdout  io.Writer
	create  func(path string) (io.WriteCloser, error)
}

func (a *analyzer) run(ctx context.Context) error {
	result, merged, err := a.analyze(ctx)
	if err != nil {
		return err
	}

	if merged != nil && a.opts.mergeOut != "" {
		if err := exporter.WriteTable(a.opts.mergeOut, merged); err != nil {
			return err
		}
		a.status.ok("Merged table written to %s (%d rows)", a.opts.mergeOut, merged.Len())
	}

	if err := a.writeReport(result); err != nil {
		return err
	}

	if a.opts.xlsx != "" {
		if err := exporter.WriteWorkbook(a.opts.xlsx, result); err != nil {
			return err
		}
		a.status.ok("Workbook written to %s", a.opts.xlsx)
	}

	if a.opts.save {
		paths, err := a.paths()
		if err != nil {
			return err
		}
		saved, err := a.service.SaveReport(ctx, result, paths)
		if err != nil {
			return err
		}
		a.status.ok("Report saved to %s", saved)
	}

	return nil
}

// analyze loads the selected source and returns the result plus the merged
// table when the source combined several files.
func (a *analyzer) analyze(ctx context.Context) (*domain.AnalysisResult, *dataprocessing.Table, error) {
	switch {
	case a.opts.file != "":
		a.status.info("Analyzing %s", a.opts.file)
		result, err := a.service.AnalyzeFile(ctx, a.opts.file)
		return result, nil, err

	case a.opts.merge != "":
		parts := strings.Split(a.opts.merge, ",")
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
			return nil, nil, apperrors.NewAppValidationError("-merge expects two comma-separated paths")
		}
		first, second := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		a.status.info("Merging %s and %s", first, second)
		return a.service.AnalyzeFiles(ctx, first, second)

	case a.opts.dir != "":
		a.status.info("Scanning %s", a.opts.dir)
		analysis, err := a.service.AnalyzeDirectory(ctx, a.opts.dir)
		if err != nil {
			return nil, nil, err
		}
		a.status.ok("Merged %d files", len(analysis.Files))
		return analysis.Result, analysis.Merged, nil

	default:
		paths, err := a.paths()
		if err != nil {
			return nil, nil, err
		}
		fetcher := files.NewFetcher(a.cfg.Fetch)
		fetcher.Files = files.NewManager(paths)
		a.status.info("Fetching %s", a.opts.url)
		result, err := a.service.AnalyzeURL(ctx, fetcher, a.opts.url, "cache")
		return result, nil, err
	}
}

// writeReport writes the report to stdout, or to -out when set.
func (a *analyzer) writeReport(result *domain.AnalysisResult) error {
	if a.opts.out == "" {
		return a.renderReport(a.stdout, result)
	}

	file, err := a.create(a.opts.out)
	if err != nil {
		return apperrors.NewIOError("failed to create report file", err).WithContext("path", a.opts.out)
	}
	if err := a.renderReport(file, result); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return apperrors.NewIOError("failed to close report file", err).WithContext("path", a.opts.out)
	}

	a.status.ok("Report written to %s", a.opts.out)
	return nil
}

func (a *analyzer) renderReport(w io.Writer, result *domain.AnalysisResult) error {
	var err error
	if a.opts.format == formatTable {
		if err = exporter.RenderTables(w, result); err == nil {
			_, err = fmt.Fprintf(w, "\nReport Generated on: %s\n", time.Now().Format(exporter.ReportDateLayout))
		}
	} else {
		_, err = io.WriteString(w, a.service.Render(result))
	}
	if err != nil {
		return apperrors.NewIOError("failed to write report", err)
	}
	return nil
}

func (a *analyzer) paths() (*config.Paths, error) {
	paths, err := a.cfg.Paths.Resolve("")
	if err != nil {
		return nil, err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, apperrors.NewIOError("failed to create directories", err)
	}
	return paths, nil
}

// status prints coloured progress lines.
type status struct {
	w     io.Writer
	infoC *color.Color
	okC   *color.Color
	errC  *color.Color
}

func newStatus(w io.Writer) *status {
	return &status{
		w:     w,
		infoC: color.New(color.FgCyan),
		okC:   color.New(color.FgGreen),
		errC:  color.New(color.FgRed, color.Bold),
	}
}

func (s *status) info(format string, args ...interface{}) {
	s.infoC.Fprintf(s.w, "> "+format+"\n", args...)
}

func (s *status) ok(format string, args ...interface{}) {
	s.okC.Fprintf(s.w, "ok "+format+"\n", args...)
}

func (s *status) fail(err error) {
	if kind := apperrors.TypeOf(err); kind != "" {
		s.errC.Fprintf(s.w, "error [%s]: %v\n", kind, err)
		return
	}
	s.errC.Fprintf(s.w, "error: %v\n", err)
}
