// Package services implements the business logic layer of CleanViz. It sits
// between the HTTP handlers and the dataset, analysis, charts, report and
// exporter packages.
//
// # Workspace
//
// WorkspaceService owns the session store. Each call names a session and
// carries the user's current selections; it locks the session, derives what
// the request asks for from the session's current table and returns a view
// model or an artifact (PNG, zip, Markdown, CSV, XLSX):
//
//	view, err := ws.Upload(ctx, "data.csv", content, dataset.DelimiterAuto)
//	view, err = ws.Clean(ctx, view.SessionID, dataset.CleanOptions{DropEmptyRows: true})
//	chart, err := ws.RenderPlot(ctx, view.SessionID, services.PlotRequest{Kind: charts.KindPCA})
//
// Plots that the data cannot support (PCA with too few columns or rows, a
// volcano plot without its columns) are refusals. View reports them on the
// plot state; RenderPlot returns the underlying analysis error.
//
// # Health
//
// HealthService answers liveness, readiness and version probes.
package services
