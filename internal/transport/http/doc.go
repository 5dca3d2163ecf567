// Package http implements the HTTP handlers of the assessment report service.
// Handlers stay thin: they decode the request, call the service layer and
// encode the response with chi/render.
//
// # Endpoints
//
//	GET  /api/health             overall status and version
//	GET  /api/health/ready       reports and cache directories usable
//	GET  /api/health/live        uptime and runtime stats
//	GET  /api/version            build and API versions
//	POST /api/v1/reports         multipart "file" (+ "top") -> JSON result and text report
//	POST /api/v1/reports/text    same input -> text/plain report
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details. Dataset error kinds map to
// 4xx statuses through errors.ErrorHandler:
//
//	{
//	    "type": "/errors/dataset/missing-column",
//	    "title": "Missing Column",
//	    "status": 422,
//	    "detail": "missing column \"ITM 371\"",
//	    "instance": "/api/v1/reports",
//	    "error_code": "MISSING_COLUMN",
//	    "trace_id": "0b8e0a5c-..."
//	}
package http
