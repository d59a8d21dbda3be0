package services

import (
	"errors"
	"fmt"
	"math"
	"net/url"

	"cleanviz/internal/analysis"
	"cleanviz/internal/charts"
	"cleanviz/internal/dataset"
)

// PlotRequest selects a plot. Empty X and Y pick the default columns.
type PlotRequest struct {
	Kind charts.Kind
	X    string
	Y    string
}

// Chart is a rendered plot.
type Chart struct {
	Kind     charts.Kind
	FileName string
	X        string
	Y        string
	PNG      []byte
}

// plotJob is a plot whose inputs have been resolved and analysed against a
// table. render only reads data captured at prepare time, so jobs can run
// after the session lock is released or in parallel.
type plotJob struct {
	kind    charts.Kind
	x, y    string
	pca     *analysis.PCAResult
	volcano *analysis.VolcanoResult
	render  func(r *charts.Renderer) ([]byte, error)
}

// preparePlot resolves columns and runs the analysis a plot needs. Errors are
// either selection errors (ErrUnknownColumn, ErrColumnNotNumeric) or
// refusals (see IsRefusal).
func preparePlot(t *dataset.Table, req PlotRequest) (*plotJob, error) {
	job := &plotJob{kind: req.Kind}
	numeric := t.NumericColumns()

	switch req.Kind {
	case charts.KindHistogram, charts.KindBox:
		name, err := pickColumn(t, req.X, numeric, 0)
		if err != nil {
			return nil, err
		}
		values := mustColumn(t, name).Values()
		if len(values) == 0 {
			return nil, fmt.Errorf("%w: column %q has no values", analysis.ErrNoValues, name)
		}
		job.x = name
		if req.Kind == charts.KindHistogram {
			job.render = func(r *charts.Renderer) ([]byte, error) { return r.Histogram(name, values) }
		} else {
			job.render = func(r *charts.Renderer) ([]byte, error) { return r.BoxPlot(name, values) }
		}

	case charts.KindScatter:
		x, err := pickColumn(t, req.X, numeric, 0)
		if err != nil {
			return nil, err
		}
		y, err := pickColumn(t, req.Y, numeric, 1)
		if err != nil {
			return nil, err
		}
		xs, ys := mustColumn(t, x).Floats(), mustColumn(t, y).Floats()
		if !anyPair(xs, ys) {
			return nil, fmt.Errorf("%w: no rows with both %q and %q", analysis.ErrNoValues, x, y)
		}
		job.x, job.y = x, y
		job.render = func(r *charts.Renderer) ([]byte, error) { return r.Scatter(x, y, xs, ys) }

	case charts.KindHeatmap:
		m, err := analysis.Correlation(t)
		if err != nil {
			return nil, err
		}
		job.render = func(r *charts.Renderer) ([]byte, error) { return r.Heatmap(m) }

	case charts.KindPCA:
		res, err := analysis.PCA(t)
		if err != nil {
			return nil, err
		}
		job.pca = res
		job.render = func(r *charts.Renderer) ([]byte, error) { return r.PCA(res) }

	case charts.KindVolcano:
		res, err := analysis.Volcano(t)
		if err != nil {
			return nil, err
		}
		if len(res.Points) == 0 {
			return nil, fmt.Errorf("%w: no rows with both %s and %s", analysis.ErrNoValues, analysis.Log2FoldChangeColumn, analysis.PValueColumn)
		}
		job.volcano = res
		job.render = func(r *charts.Renderer) ([]byte, error) { return r.Volcano(res) }

	default:
		return nil, fmt.Errorf("%w: %q", charts.ErrUnknownKind, req.Kind)
	}
	return job, nil
}

// pickColumn returns name after checking it is a numeric column, or the
// numeric column at index def (clamped to the last one) when name is empty.
func pickColumn(t *dataset.Table, name string, numeric []string, def int) (string, error) {
	if name == "" {
		if len(numeric) == 0 {
			return "", analysis.ErrNoNumericColumns
		}
		return numeric[min(def, len(numeric)-1)], nil
	}
	c, ok := t.Column(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	if !c.Kind.IsNumeric() {
		return "", fmt.Errorf("%w: %q has kind %s", ErrColumnNotNumeric, name, c.Kind)
	}
	return name, nil
}

func mustColumn(t *dataset.Table, name string) *dataset.Column {
	c, _ := t.Column(name)
	return c
}

func anyPair(xs, ys []float64) bool {
	for i := range xs {
		if !math.IsNaN(xs[i]) && !math.IsNaN(ys[i]) {
			return true
		}
	}
	return false
}

// IsRefusal reports errors that mean "this plot cannot be drawn for this
// data" rather than a bad request.
func IsRefusal(err error) bool {
	return errors.Is(err, analysis.ErrInsufficientData) ||
		errors.Is(err, analysis.ErrMissingVolcanoColumns) ||
		errors.Is(err, analysis.ErrNotNumeric) ||
		errors.Is(err, analysis.ErrNoNumericColumns) ||
		errors.Is(err, analysis.ErrNoValues) ||
		errors.Is(err, charts.ErrNoPoints)
}

// isWarning reports refusals shown as warnings instead of errors.
func isWarning(err error) bool {
	return errors.Is(err, analysis.ErrInsufficientData) || errors.Is(err, analysis.ErrNoNumericColumns)
}

// plotURL is the API path serving the image of a prepared plot.
func plotURL(sessionID string, job *plotJob) string {
	u := url.URL{Path: fmt.Sprintf("/api/sessions/%s/plots/%s", sessionID, job.kind)}
	q := url.Values{}
	if job.x != "" {
		q.Set("x", job.x)
	}
	if job.y != "" {
		q.Set("y", job.y)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
