// Package app wires the HTTP report service together and manages its
// lifecycle.
//
// # Initialization Flow
//
//	1. Resolve and create the data, reports, cache and logs directories
//	2. Initialize OpenTelemetry (tracing plus the Prometheus exporter)
//	3. Build the report and health services
//	4. Mount middleware and handlers on a chi router
//	5. Serve until the context is cancelled, then shut down gracefully
//
// # Routes
//
//	GET  /metrics              Prometheus scrape endpoint
//	GET  /api/health           basic health
//	GET  /api/health/ready     readiness (503 when directories are unusable)
//	GET  /api/health/live      liveness
//	GET  /api/version          build information
//	POST /api/v1/reports       upload a dataset, JSON report
//	POST /api/v1/reports/text  upload a dataset, plain-text report
//
// # Usage
//
//	application, err := app.NewApplication(cfg, logger, "")
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
package app
