// Package http implements the HTTP handlers of the CleanViz service.
// Handlers are a thin layer between the chi router and the workspace service:
// they parse and validate requests, call the service and format the result.
//
// # Handlers
//
//	SessionsHandler  JSON API under /api/sessions
//	HealthHandler    /api/health, /api/health/ready, /api/health/live, /api/version
//	HTMLHandler      server-rendered UI at /, /upload, /s/{id}, /s/{id}/clean
//
// # Request Flow
//
//	HTTP Request → Chi Router → Middleware → Handler → WorkspaceService
//	                                              ↓
//	HTTP Response ← Handler ← View / bytes ←─────┘
//
// # Error Handling
//
// Service errors are mapped to API errors by mapServiceError and written as
// RFC 7807 problem details by errors.ErrorHandler:
//
//	{
//	    "type": "/errors/cleaning/duplicate-column",
//	    "title": "Conflict",
//	    "status": 409,
//	    "detail": "Renaming would produce duplicate column names",
//	    "instance": "/api/sessions/5b6c.../cleaning",
//	    "error_code": "DUPLICATE_COLUMN"
//	}
//
// The UI renders the same mapping as an error banner and omits the rest of
// the page.
//
// # Downloads
//
// Plots, the plot bundle, the report and exports are served with a
// Content-Disposition header carrying the fixed download file name
// (histogram.png, plots.zip, summary_report.md, cleaned_data.csv, ...).
package http
