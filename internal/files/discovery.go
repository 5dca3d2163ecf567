package files

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"schoolcli/internal/dataprocessing"
	apperrors "schoolcli/internal/errors"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
	Format  dataprocessing.Format
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance. Relative directories
// are resolved against basePath.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindAssessmentFiles lists the .csv, .xlsx and .txt files directly inside
// dir, sorted by name.
func (d *Discovery) FindAssessmentFiles(dir string) ([]FileInfo, error) {
	fullPath := dir
	if !filepath.IsAbs(dir) {
		fullPath = filepath.Join(d.basePath, dir)
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, apperrors.NewIOError("failed to read directory "+fullPath, err).WithContext("path", fullPath)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		format, err := dataprocessing.DetectFormat(entry.Name())
		if err != nil {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Format:  format,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// GroupByFormat splits files by format, keeping their order.
func GroupByFormat(files []FileInfo) map[dataprocessing.Format][]FileInfo {
	groups := make(map[dataprocessing.Format][]FileInfo)
	for _, f := range files {
		groups[f.Format] = append(groups[f.Format], f)
	}
	return groups
}

// Paths returns the Path of every file
func Paths(files []FileInfo) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}
