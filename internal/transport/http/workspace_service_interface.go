package http

import (
	"context"

	"cleanviz/internal/dataset"
	"cleanviz/internal/services"
	"cleanviz/pkg/contracts/domain"
)

// WorkspaceServiceInterface defines the workspace operations the HTTP layer
// drives. *services.WorkspaceService implements it.
type WorkspaceServiceInterface interface {
	Upload(ctx context.Context, fileName string, content []byte, hint dataset.Delimiter) (*domain.View, error)
	View(ctx context.Context, id string, opts services.ViewOptions) (*domain.View, error)
	Clean(ctx context.Context, id string, opts dataset.CleanOptions) (*domain.View, error)
	Summary(ctx context.Context, id string) ([]domain.ColumnStats, error)
	RenderPlot(ctx context.Context, id string, req services.PlotRequest) (*services.Chart, error)
	PlotBundle(ctx context.Context, id string) ([]byte, error)
	Report(ctx context.Context, id string) (string, error)
	ExportCSV(ctx context.Context, id string) ([]byte, error)
	ExportXLSX(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
}

var _ WorkspaceServiceInterface = (*services.WorkspaceService)(nil)
