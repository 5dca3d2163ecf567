// Package dataprocessing loads student assessment tables and computes the
// statistics behind the summary report.
//
// # Architecture
//
// The package is organized into three components:
//
// 1. Loader: reads .csv, tab-separated .txt and .xlsx files into a Table
// 2. Merge: concatenates tables of one format with the same columns
// 3. Analyzer: course averages, semester averages, top students and recommendations
//
// # Usage
//
//	table, err := dataprocessing.MergeFiles("fall.csv", "spring.csv")
//	if err != nil {
//	    return err
//	}
//	result, err := dataprocessing.Analyze(table, dataprocessing.DefaultAnalysisOptions())
//
// # Data Flow
//
//	File(s) → Loader → Table → Merge → Table → Analyzer → AnalysisResult
//
// # Error Handling
//
// Every failure is an *errors.AppError whose Type tells the caller what went
// wrong: UNSUPPORTED_FORMAT, FORMAT_MISMATCH, MISSING_COLUMN, EMPTY_DATASET,
// NON_NUMERIC_VALUE, IO_FAILURE or PARSING.
//
// # Missing values
//
// Blank course cells (and the usual NA markers) are skipped when averaging a
// course, add nothing to a row total and are never a student's best course.
package dataprocessing
