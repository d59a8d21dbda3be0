// Package app wires CleanViz together and manages its lifecycle.
//
// # Initialization Flow
//
//	1. The caller loads configuration and initializes the logger
//	2. NewApplication initializes OpenTelemetry and the business metrics
//	3. The session store, chart renderer and services are created
//	4. The router is assembled with the middleware chain
//	5. The HTTP server is configured from the server section
//
// # Routes
//
//	/api/health, /api/health/ready, /api/health/live, /api/version
//	/api/sessions/...   JSON API and downloads
//	/, /upload, /s/{id} server-rendered pages
//	/metrics            Prometheus exposition, when enabled
//
// # Usage
//
//	application, err := app.NewApplication(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
//
// # Graceful Shutdown
//
// Run returns after SIGINT, SIGTERM or cancellation of its context. Stop
// waits for active requests up to the shutdown timeout, drops every session
// and flushes telemetry.
package app
