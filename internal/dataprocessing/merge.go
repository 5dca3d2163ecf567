package dataprocessing

import (
	"fmt"
	"log/slog"
	"strings"

	apperrors "schoolcli/internal/errors"
)

// MergeFiles loads two files of the same format and concatenates their rows,
// first then second.
func MergeFiles(first, second string) (*Table, error) {
	return MergeAll(first, second)
}

// MergeAll loads every path and concatenates the rows in argument order.
// All paths must share one format; this is checked before any file is opened.
func MergeAll(paths ...string) (*Table, error) {
	if len(paths) == 0 {
		return nil, apperrors.NewEmptyDatasetError("no files to merge")
	}

	formats := make([]Format, len(paths))
	for i, p := range paths {
		format, err := DetectFormat(p)
		if err != nil {
			return nil, err
		}
		formats[i] = format
	}
	for i := 1; i < len(formats); i++ {
		if formats[i] != formats[0] {
			return nil, apperrors.NewFormatMismatchError(
				fmt.Sprintf("cannot merge %s file %s with %s file %s", formats[0], paths[0], formats[i], paths[i])).
				WithContext("first", paths[0]).
				WithContext("second", paths[i])
		}
	}

	tables := make([]*Table, 0, len(paths))
	for _, p := range paths {
		t, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}

	return Merge(tables...)
}

// Merge concatenates already loaded tables. Every table must have the same
// format and the same set of column names; cells of later tables are
// reordered into the first table's column order.
func Merge(tables ...*Table) (*Table, error) {
	if len(tables) == 0 {
		return nil, apperrors.NewEmptyDatasetError("no tables to merge")
	}
	for i, t := range tables {
		if t == nil {
			return nil, apperrors.NewEmptyDatasetError(fmt.Sprintf("table %d is nil", i))
		}
	}

	base := tables[0]
	merged := &Table{
		Columns: append([]string(nil), base.Columns...),
		Format:  base.Format,
	}
	sources := make([]string, 0, len(tables))

	for _, t := range tables {
		if t.Format != base.Format {
			return nil, apperrors.NewFormatMismatchError(
				fmt.Sprintf("cannot merge %s table %s with %s table %s", base.Format, base.Source, t.Format, t.Source))
		}

		order, err := columnOrder(base.Columns, t.Columns)
		if err != nil {
			return nil, err.WithContext("first", base.Source).WithContext("second", t.Source)
		}

		for _, row := range t.Rows {
			out := make([]string, len(order))
			for i, src := range order {
				out[i] = row[src]
			}
			merged.Rows = append(merged.Rows, out)
		}
		sources = append(sources, t.Source)
	}

	merged.Source = strings.Join(sources, ",")

	slog.Debug("Merged assessment tables",
		slog.Int("tables", len(tables)),
		slog.Int("rows", merged.Len()))

	return merged, nil
}

// columnOrder maps each target column to its index in cols.
func columnOrder(target, cols []string) ([]int, *apperrors.AppError) {
	if len(target) != len(cols) {
		return nil, apperrors.NewFormatMismatchError("column schemas differ")
	}

	index := make(map[string]int, len(cols))
	for i, c := range cols {
		index[c] = i
	}

	order := make([]int, len(target))
	for i, c := range target {
		src, ok := index[c]
		if !ok {
			return nil, apperrors.NewFormatMismatchError("column schemas differ").WithContext("column", c)
		}
		order[i] = src
	}
	return order, nil
}
