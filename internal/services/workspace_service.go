package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"cleanviz/internal/analysis"
	"cleanviz/internal/charts"
	"cleanviz/internal/dataset"
	"cleanviz/internal/exporter"
	"cleanviz/internal/report"
	"cleanviz/internal/session"
	"cleanviz/pkg/contracts/domain"
)

// ViewOptions selects the optional parts of a view.
type ViewOptions struct {
	ShowStats bool
	Plot      *PlotRequest
}

// WorkspaceConfig tunes the workspace service.
type WorkspaceConfig struct {
	// PreviewRows is the number of rows included in a view.
	PreviewRows int
	// BundleWorkers bounds parallel rendering in PlotBundle.
	BundleWorkers int
}

// WorkspaceService runs the upload, clean, summarize, plot, report and
// export pipeline against per-session state. Every call is an explicit
// request carrying the session id and the user's selections.
type WorkspaceService struct {
	store    *session.Store
	renderer *charts.Renderer
	metrics  Metrics
	cfg      WorkspaceConfig
	logger   *slog.Logger
}

// NewWorkspaceService creates the workspace service. metrics may be nil.
func NewWorkspaceService(store *session.Store, renderer *charts.Renderer, cfg WorkspaceConfig, metrics Metrics, logger *slog.Logger) *WorkspaceService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if cfg.PreviewRows <= 0 {
		cfg.PreviewRows = 5
	}
	if cfg.BundleWorkers <= 0 {
		cfg.BundleWorkers = len(charts.Kinds)
	}

	ws := &WorkspaceService{
		store:    store,
		renderer: renderer,
		metrics:  metrics,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "workspace")),
	}
	store.OnEvicted(func(id string) {
		metrics.SessionClosed(context.Background())
		ws.logger.Debug("session evicted", slog.String("session_id", id))
	})

	ws.logger.Info("WorkspaceService initialized",
		slog.Int("preview_rows", cfg.PreviewRows),
		slog.Int("bundle_workers", cfg.BundleWorkers))
	return ws
}

// Upload parses an uploaded file into a new session.
func (ws *WorkspaceService) Upload(ctx context.Context, fileName string, content []byte, hint dataset.Delimiter) (*domain.View, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t, format, err := dataset.Load(fileName, content, hint)
	ws.metrics.RecordUpload(ctx, string(format), err)
	if err != nil {
		ws.logger.Warn("Upload: rejected",
			slog.String("file_name", fileName),
			slog.Int("size", len(content)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load %q: %w", fileName, err)
	}

	sess, err := ws.store.Create(fileName, format, t)
	if err != nil {
		return nil, err
	}
	ws.metrics.SessionOpened(ctx)

	ws.logger.Info("Upload: session created",
		slog.String("session_id", sess.ID),
		slog.String("file_name", fileName),
		slog.String("format", string(format)),
		slog.Int("rows", t.NumRows()),
		slog.Int("columns", t.NumCols()))

	sess.Lock()
	defer sess.Unlock()
	return ws.buildView(sess, ViewOptions{})
}

// View returns the current state of a session, optionally with statistics
// and the outcome of a plot selection.
func (ws *WorkspaceService) View(ctx context.Context, id string, opts ViewOptions) (*domain.View, error) {
	var view *domain.View
	err := ws.withSession(ctx, id, func(sess *session.Session) error {
		var err error
		view, err = ws.buildView(sess, opts)
		return err
	})
	return view, err
}

// Clean replaces the cleaning options of a session and rebuilds its table
// from the original upload.
func (ws *WorkspaceService) Clean(ctx context.Context, id string, opts dataset.CleanOptions) (*domain.View, error) {
	var view *domain.View
	err := ws.withSession(ctx, id, func(sess *session.Session) error {
		if err := sess.ApplyCleaning(opts); err != nil {
			return fmt.Errorf("failed to clean: %w", err)
		}
		ws.logger.Debug("Clean: applied",
			slog.String("session_id", id),
			slog.Bool("drop_empty_rows", opts.DropEmptyRows),
			slog.Bool("drop_empty_columns", opts.DropEmptyColumns),
			slog.Int("renames", len(opts.Renames)),
			slog.Int("rows", sess.Current().NumRows()))

		var err error
		view, err = ws.buildView(sess, ViewOptions{})
		return err
	})
	return view, err
}

// Summary returns descriptive statistics of every numeric column.
func (ws *WorkspaceService) Summary(ctx context.Context, id string) ([]domain.ColumnStats, error) {
	var stats []domain.ColumnStats
	err := ws.withSession(ctx, id, func(sess *session.Session) error {
		stats = toColumnStats(analysis.Describe(sess.Current()))
		return nil
	})
	return stats, err
}

// RenderPlot renders one plot of the current table. A PCA render is recorded
// in the session for the report.
func (ws *WorkspaceService) RenderPlot(ctx context.Context, id string, req PlotRequest) (*Chart, error) {
	start := time.Now()
	var chart *Chart
	err := ws.withSession(ctx, id, func(sess *session.Session) error {
		job, err := preparePlot(sess.Current(), req)
		if err != nil {
			return err
		}
		png, err := job.render(ws.renderer)
		if err != nil {
			return fmt.Errorf("failed to render %s: %w", req.Kind, err)
		}
		if job.pca != nil {
			sess.SetPCA(job.pca)
		}
		chart = &Chart{Kind: job.kind, FileName: job.kind.FileName(), X: job.x, Y: job.y, PNG: png}
		return nil
	})
	ws.metrics.RecordPlot(ctx, string(req.Kind), time.Since(start), err)
	if err != nil {
		ws.logger.Debug("RenderPlot: failed",
			slog.String("session_id", id),
			slog.String("kind", string(req.Kind)),
			slog.String("error", err.Error()))
		return nil, err
	}
	return chart, nil
}

// PlotBundle renders every plot the current table allows, in parallel, and
// returns them as a zip archive. Plots that cannot be drawn are listed in
// SKIPPED.txt.
func (ws *WorkspaceService) PlotBundle(ctx context.Context, id string) ([]byte, error) {
	var archive []byte
	err := ws.withSession(ctx, id, func(sess *session.Session) error {
		t := sess.Current()
		jobs := make([]*plotJob, len(charts.Kinds))
		var skipped []skippedPlot
		for i, kind := range charts.Kinds {
			job, err := preparePlot(t, PlotRequest{Kind: kind})
			if err != nil {
				if !IsRefusal(err) {
					return err
				}
				skipped = append(skipped, skippedPlot{kind: kind, reason: err.Error()})
				continue
			}
			jobs[i] = job
		}

		images := make([][]byte, len(jobs))
		var mu sync.Mutex
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(ws.cfg.BundleWorkers)
		for i, job := range jobs {
			if job == nil {
				continue
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				start := time.Now()
				png, err := job.render(ws.renderer)
				ws.metrics.RecordPlot(gctx, string(job.kind), time.Since(start), err)
				if err != nil {
					err = fmt.Errorf("failed to render %s: %w", job.kind, err)
					if !IsRefusal(err) {
						return err
					}
					mu.Lock()
					skipped = append(skipped, skippedPlot{kind: job.kind, reason: err.Error()})
					mu.Unlock()
					return nil
				}
				images[i] = png
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		rendered := 0
		for i, job := range jobs {
			if images[i] == nil {
				jobs[i] = nil
				continue
			}
			rendered++
			if job.pca != nil {
				sess.SetPCA(job.pca)
			}
		}
		sort.SliceStable(skipped, func(a, b int) bool {
			return slices.Index(charts.Kinds, skipped[a].kind) < slices.Index(charts.Kinds, skipped[b].kind)
		})

		var buf bytes.Buffer
		if err := writeBundle(&buf, jobs, images, skipped); err != nil {
			return err
		}
		archive = buf.Bytes()

		ws.logger.Info("PlotBundle: rendered",
			slog.String("session_id", id),
			slog.Int("plots", rendered),
			slog.Int("skipped", len(skipped)))
		return nil
	})
	return archive, err
}

// Report renders the Markdown summary of the current table. The PCA section
// reflects the last PCA render since the most recent cleaning.
func (ws *WorkspaceService) Report(ctx context.Context, id string) (string, error) {
	var md string
	err := ws.withSession(ctx, id, func(sess *session.Session) error {
		md = report.New(sess.FileName, sess.Current(), sess.PCA()).Markdown()
		return nil
	})
	return md, err
}

// ExportCSV serializes the current table as comma separated text.
func (ws *WorkspaceService) ExportCSV(ctx context.Context, id string) ([]byte, error) {
	var buf bytes.Buffer
	err := ws.withSession(ctx, id, func(sess *session.Session) error {
		return exporter.NewCSVWriter(exporter.WriteOptions{}).WriteTable(&buf, sess.Current())
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveCSV writes the current table to path with opts, creating parent
// directories.
func (ws *WorkspaceService) SaveCSV(ctx context.Context, id, path string, opts exporter.WriteOptions) error {
	return ws.withSession(ctx, id, func(sess *session.Session) error {
		return exporter.NewCSVWriter(opts).WriteFile(path, sess.Current())
	})
}

// ExportXLSX serializes the current table as a workbook.
func (ws *WorkspaceService) ExportXLSX(ctx context.Context, id string) ([]byte, error) {
	var buf bytes.Buffer
	err := ws.withSession(ctx, id, func(sess *session.Session) error {
		return exporter.WriteXLSX(&buf, sess.Current())
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Delete discards a session.
func (ws *WorkspaceService) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ws.store.Delete(id); err != nil {
		return err
	}
	ws.logger.Info("Delete: session removed", slog.String("session_id", id))
	return nil
}

// SessionCount is the number of live sessions.
func (ws *WorkspaceService) SessionCount() int {
	return ws.store.Count()
}

// withSession runs fn while holding the session lock.
func (ws *WorkspaceService) withSession(ctx context.Context, id string, fn func(*session.Session) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sess, err := ws.store.Get(id)
	if err != nil {
		return err
	}

	sess.Lock()
	defer sess.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(sess)
}

// buildView assembles the view model. The caller holds the session lock.
func (ws *WorkspaceService) buildView(sess *session.Session, opts ViewOptions) (*domain.View, error) {
	t := sess.Current()
	cleaning := sess.Options()

	view := &domain.View{
		SessionID:      sess.ID,
		FileName:       sess.FileName,
		Format:         string(sess.Format),
		Delimiter:      delimiterName(sess.Format),
		CreatedAt:      sess.CreatedAt,
		Rows:           t.NumRows(),
		Columns:        make([]domain.ColumnInfo, 0, t.NumCols()),
		NumericColumns: t.NumericColumns(),
		Preview: domain.Preview{
			Header: t.Names(),
			Rows:   t.Head(ws.cfg.PreviewRows),
		},
		Cleaning: domain.CleaningOptions{
			DropEmptyRows:    cleaning.DropEmptyRows,
			DropEmptyColumns: cleaning.DropEmptyColumns,
			Renames:          cleaning.Renames,
		},
		PlotKinds: plotKinds(),
	}
	for _, c := range t.Columns() {
		view.Columns = append(view.Columns, domain.ColumnInfo{
			Name:    c.Name,
			Kind:    c.Kind.String(),
			Missing: c.MissingCount(),
		})
	}

	if opts.ShowStats {
		view.Statistics = toColumnStats(analysis.Describe(t))
	}

	if opts.Plot != nil {
		state, err := ws.plotState(sess, *opts.Plot)
		if err != nil {
			return nil, err
		}
		view.Plot = state
	}
	return view, nil
}

// plotState checks whether a plot can be drawn and describes where to fetch
// it. Refusals become a warning or error on the state; bad column choices
// are returned as errors.
func (ws *WorkspaceService) plotState(sess *session.Session, req PlotRequest) (*domain.PlotState, error) {
	state := &domain.PlotState{Kind: string(req.Kind), X: req.X, Y: req.Y}

	job, err := preparePlot(sess.Current(), req)
	switch {
	case err == nil:
	case isWarning(err):
		state.Warning = err.Error()
		return state, nil
	case IsRefusal(err):
		state.Error = err.Error()
		return state, nil
	default:
		return nil, err
	}

	state.X, state.Y = job.x, job.y
	state.ImageURL = plotURL(sess.ID, job)
	state.FileName = job.kind.FileName()
	if job.pca != nil {
		sess.SetPCA(job.pca)
		state.ExplainedVariance = job.pca.ExplainedVariance[:]
	}
	if job.volcano != nil {
		significant, skipped := job.volcano.Significant, job.volcano.Skipped
		state.Significant, state.Skipped = &significant, &skipped
	}
	return state, nil
}

func delimiterName(f dataset.Format) string {
	switch f {
	case dataset.FormatCSV:
		return string(dataset.DelimiterComma)
	case dataset.FormatTSV:
		return string(dataset.DelimiterTab)
	default:
		return ""
	}
}

func plotKinds() []domain.PlotKind {
	kinds := make([]domain.PlotKind, len(charts.Kinds))
	for i, k := range charts.Kinds {
		kinds[i] = domain.PlotKind{Kind: string(k), Label: k.Label(), ColumnInputs: k.ColumnInputs()}
	}
	return kinds
}

func toColumnStats(stats []analysis.ColumnStats) []domain.ColumnStats {
	out := make([]domain.ColumnStats, len(stats))
	for i, s := range stats {
		out[i] = domain.ColumnStats{
			Column: s.Column,
			Count:  s.Count,
			Mean:   domain.Float(s.Mean),
			Std:    domain.Float(s.Std),
			Min:    domain.Float(s.Min),
			Q25:    domain.Float(s.Q25),
			Q50:    domain.Float(s.Q50),
			Q75:    domain.Float(s.Q75),
			Max:    domain.Float(s.Max),
		}
	}
	return out
}
