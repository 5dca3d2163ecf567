package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"schoolcli/internal/config"
)

// Manager provides file management operations
type Manager struct {
	paths *config.Paths
}

// NewManager creates a new file manager instance. With nil paths every
// path is used as given.
func NewManager(paths *config.Paths) *Manager {
	return &Manager{paths: paths}
}

// FileExists checks if a file exists at the given path
func (m *Manager) FileExists(path string) bool {
	fullPath := m.resolvePath(path)
	_, err := os.Stat(fullPath)
	exists := err == nil

	slog.Debug("FileExists check",
		slog.String("path", path),
		slog.String("full_path", fullPath),
		slog.Bool("exists", exists))

	return exists
}

// WriteFile writes data to a file, creating parent directories
func (m *Manager) WriteFile(path string, data []byte) error {
	fullPath := m.resolvePath(path)

	slog.Info("Writing file",
		slog.String("path", path),
		slog.String("full_path", fullPath),
		slog.Int("size_bytes", len(data)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	return os.WriteFile(fullPath, data, 0644)
}

// CleanPath returns the cleaned, resolved path
func (m *Manager) CleanPath(path string) string {
	return filepath.Clean(m.resolvePath(path))
}

// resolvePath maps "reports/", "cache/" and "logs/" prefixes to the
// configured directories. Other relative paths land in the data directory.
func (m *Manager) resolvePath(path string) string {
	if m.paths == nil || filepath.IsAbs(path) {
		return path
	}

	slashed := filepath.ToSlash(path)
	switch {
	case strings.HasPrefix(slashed, "reports/"):
		return m.paths.GetReportPath(strings.TrimPrefix(slashed, "reports/"))
	case strings.HasPrefix(slashed, "cache/"):
		return m.paths.GetCachePath(strings.TrimPrefix(slashed, "cache/"))
	case strings.HasPrefix(slashed, "logs/"):
		return m.paths.GetLogPath(strings.TrimPrefix(slashed, "logs/"))
	default:
		return filepath.Join(m.paths.DataDir, path)
	}
}
