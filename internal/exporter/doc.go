// Package exporter turns analysis results and assessment tables into files
// and text.
//
// RenderReport and WriteReport produce the fixed-format summary report.
// RenderTables prints the same data as console tables. WriteWorkbook saves
// the result as an .xlsx workbook, and WriteTable writes a (merged) table
// back out as .csv, tab-separated .txt or .xlsx so it can be analyzed later.
//
// Example usage:
//
//	result, err := dataprocessing.Analyze(table, opts)
//	if err != nil {
//	    return err
//	}
//	fmt.Print(exporter.RenderReport(result, time.Now()))
//	err = exporter.WriteWorkbook("data/reports/summary.xlsx", result)
package exporter
