package services

import (
	"context"
	"time"
)

// Metrics receives workspace events. infrastructure.BusinessMetrics satisfies
// it; a nil Metrics disables recording.
type Metrics interface {
	RecordUpload(ctx context.Context, format string, err error)
	RecordPlot(ctx context.Context, kind string, duration time.Duration, err error)
	SessionOpened(ctx context.Context)
	SessionClosed(ctx context.Context)
}

type noopMetrics struct{}

func (noopMetrics) RecordUpload(context.Context, string, error) {}
func (noopMetrics) RecordPlot(context.Context, string, time.Duration, error) {}
func (noopMetrics) SessionOpened(context.Context) {}
func (noopMetrics) SessionClosed(context.Context) {}
