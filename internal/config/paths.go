package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
	CacheDir   string `yaml:"cache_dir" envconfig:"CACHE_DIR"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// Paths contains the resolved, absolute application paths
type Paths struct {
	BaseDir    string
	DataDir    string
	ReportsDir string
	CacheDir   string
	LogsDir    string
}

// Resolve turns the configured (possibly relative) directories into absolute
// paths under baseDir. An empty baseDir means the current working directory.
func (p PathsConfig) Resolve(baseDir string) (*Paths, error) {
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		baseDir = wd
	}

	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory %s: %w", baseDir, err)
	}

	resolve := func(dir string) string {
		if filepath.IsAbs(dir) {
			return dir
		}
		return filepath.Join(abs, dir)
	}

	return &Paths{
		BaseDir:    abs,
		DataDir:    resolve(p.DataDir),
		ReportsDir: resolve(p.ReportsDir),
		CacheDir:   resolve(p.CacheDir),
		LogsDir:    resolve(p.LogsDir),
	}, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.ReportsDir, p.CacheDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// GetReportPath returns a path inside the reports directory
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetCachePath returns a path inside the cache directory
func (p *Paths) GetCachePath(filename string) string {
	return filepath.Join(p.CacheDir, filename)
}

// GetLogPath returns a path inside the logs directory
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// DatedReportName builds "<prefix>_YYYYMMDD.<ext>".
func DatedReportName(prefix, ext string, date time.Time) string {
	return fmt.Sprintf("%s_%s.%s", prefix, date.Format("20060102"), ext)
}
