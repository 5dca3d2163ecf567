package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"schoolcli/internal/dataprocessing"
	apperrors "schoolcli/internal/errors"
)

// FileValidator checks input and output paths before the CLI and the
// HTTP service touch them.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateInputDirectory validates that dir exists and is a directory
func (v *FileValidator) ValidateInputDirectory(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("Input directory does not exist",
			slog.String("directory", dir))
		return apperrors.NewIOError(fmt.Sprintf("input directory %s does not exist", dir), err).
			WithContext("path", dir)
	}
	if err != nil {
		v.logger.Error("Failed to stat input directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewIOError(fmt.Sprintf("failed to stat directory %s", dir), err).
			WithContext("path", dir)
	}
	if !info.IsDir() {
		v.logger.Error("Input path is not a directory",
			slog.String("path", dir))
		return apperrors.NewIOError(fmt.Sprintf("%s is not a directory", dir), nil).
			WithContext("path", dir)
	}
	return nil
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewIOError(fmt.Sprintf("failed to create output directory %s", dir), err).
			WithContext("path", dir)
	}

	// Verify it's writable by creating a test file
	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewIOError(fmt.Sprintf("output directory %s is not writable", dir), err).
			WithContext("path", dir)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return apperrors.NewIOError(fmt.Sprintf("file %s does not exist", path), err).
			WithContext("path", path)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewIOError(fmt.Sprintf("failed to stat file %s", path), err).
			WithContext("path", path)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return apperrors.NewIOError(fmt.Sprintf("%s is a directory, not a file", path), nil).
			WithContext("path", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewIOError(fmt.Sprintf("file %s is not readable", path), err).
			WithContext("path", path)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateAssessmentFile checks that path has a supported extension, is not
// an office lock file and is readable.
func (v *FileValidator) ValidateAssessmentFile(path string) error {
	if _, err := dataprocessing.DetectFormat(path); err != nil {
		v.logger.Error("Unsupported assessment file",
			slog.String("file", path),
			slog.String("extension", strings.ToLower(filepath.Ext(path))))
		return err
	}

	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") || strings.HasPrefix(base, ".~lock.") {
		v.logger.Warn("Skipping temporary office file",
			slog.String("file", path))
		return apperrors.NewAppValidationError(fmt.Sprintf("file %s is a temporary office file", path)).
			WithContext("path", path)
	}

	return v.ValidateFile(path)
}

// ValidateMergeInputs validates every path and checks they share one format.
func (v *FileValidator) ValidateMergeInputs(paths ...string) error {
	if len(paths) < 2 {
		return apperrors.NewAppValidationError(fmt.Sprintf("merge needs at least two files, got %d", len(paths)))
	}

	first, err := dataprocessing.DetectFormat(paths[0])
	if err != nil {
		return err
	}
	for _, p := range paths[1:] {
		format, err := dataprocessing.DetectFormat(p)
		if err != nil {
			return err
		}
		if format != first {
			return apperrors.NewFormatMismatchError(
				fmt.Sprintf("cannot merge %s file %s with %s file %s", first, paths[0], format, p))
		}
	}

	for _, p := range paths {
		if err := v.ValidateAssessmentFile(p); err != nil {
			return err
		}
	}
	return nil
}
