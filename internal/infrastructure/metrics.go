package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics holds the HTTP and workspace instruments
type BusinessMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Workspace metrics
	UploadsTotal       metric.Int64Counter
	PlotsRenderedTotal metric.Int64Counter
	PlotRenderDuration metric.Float64Histogram
	ActiveSessions     metric.Int64UpDownCounter
}

// CreateBusinessMetrics creates application-specific metrics
func CreateBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	httpRequestsTotal, err := meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	httpRequestDuration, err := meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	httpActiveRequests, err := meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	uploadsTotal, err := meter.Int64Counter(
		"cleanviz_uploads_total",
		metric.WithDescription("Total number of uploaded files by format and outcome"),
	)
	if err != nil {
		return nil, err
	}

	plotsRenderedTotal, err := meter.Int64Counter(
		"cleanviz_plots_rendered_total",
		metric.WithDescription("Total number of plot renders by kind and outcome"),
	)
	if err != nil {
		return nil, err
	}

	plotRenderDuration, err := meter.Float64Histogram(
		"cleanviz_plot_render_duration_seconds",
		metric.WithDescription("Plot render duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	activeSessions, err := meter.Int64UpDownCounter(
		"cleanviz_sessions_active",
		metric.WithDescription("Number of live workspace sessions"),
	)
	if err != nil {
		return nil, err
	}

	return &BusinessMetrics{
		HTTPRequestsTotal:   httpRequestsTotal,
		HTTPRequestDuration: httpRequestDuration,
		HTTPActiveRequests:  httpActiveRequests,
		UploadsTotal:        uploadsTotal,
		PlotsRenderedTotal:  plotsRenderedTotal,
		PlotRenderDuration:  plotRenderDuration,
		ActiveSessions:      activeSessions,
	}, nil
}

// RecordHTTPRequest records one finished request
func (m *BusinessMetrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status_code", status),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordUpload counts an upload attempt
func (m *BusinessMetrics) RecordUpload(ctx context.Context, format string, err error) {
	m.UploadsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("format", format),
		attribute.String("status", outcome(err)),
	))
}

// RecordPlot counts a render and records its duration
func (m *BusinessMetrics) RecordPlot(ctx context.Context, kind string, duration time.Duration, err error) {
	status := attribute.String("status", outcome(err))
	kindAttr := attribute.String("kind", kind)
	m.PlotsRenderedTotal.Add(ctx, 1, metric.WithAttributes(kindAttr, status))
	m.PlotRenderDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(kindAttr, status))
}

// SessionOpened increments the live session gauge
func (m *BusinessMetrics) SessionOpened(ctx context.Context) {
	m.ActiveSessions.Add(ctx, 1)
}

// SessionClosed decrements the live session gauge
func (m *BusinessMetrics) SessionClosed(ctx context.Context) {
	m.ActiveSessions.Add(ctx, -1)
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
