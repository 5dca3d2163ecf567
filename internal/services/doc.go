// Package services holds the application layer shared by the analyzer CLI
// and the HTTP server.
//
// ReportService drives a run end to end: it validates input paths, loads
// or merges assessment files, analyzes the resulting table and renders or
// saves the text report. Every operation opens a span and records the
// analysis counters, so both entry points get the same telemetry.
//
// HealthService backs the health, readiness and version endpoints.
//
//	svc := services.NewReportService(dataprocessing.DefaultAnalysisOptions(), logger,
//	    services.WithMetrics(metrics))
//	result, err := svc.AnalyzeFile(ctx, "fall.csv")
//	if err != nil {
//	    return err
//	}
//	fmt.Print(svc.Render(result))
package services
