package charts

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	ErrUnknownKind = errors.New("unknown plot kind")
	ErrNoPoints    = errors.New("nothing to plot")
)

var (
	colorPrimary     = drawing.ColorFromHex("1f77b4")
	colorPrimaryFill = drawing.ColorFromHex("1f77b4").WithAlpha(110)
	colorAccent      = drawing.ColorFromHex("d62728")
	colorMuted       = drawing.ColorFromHex("9e9e9e")
	colorDark        = drawing.ColorFromHex("333333")
)

// Options sizes rendered charts in pixels.
type Options struct {
	Width  int
	Height int
}

// DefaultOptions returns the default 800x600 canvas.
func DefaultOptions() Options {
	return Options{Width: 800, Height: 600}
}

// Renderer turns analysis results into PNG bytes. It holds no mutable state
// and is safe for concurrent use.
type Renderer struct {
	opts Options
}

// NewRenderer creates a renderer, filling unset dimensions from DefaultOptions.
func NewRenderer(opts Options) *Renderer {
	def := DefaultOptions()
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}
	return &Renderer{opts: opts}
}

// Options returns the canvas size in use.
func (r *Renderer) Options() Options { return r.opts }

func (r *Renderer) render(ch chart.Chart) ([]byte, error) {
	ch.Width = r.opts.Width
	ch.Height = r.opts.Height
	if ch.Background.Padding.IsZero() {
		ch.Background = chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}}
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render %q: %w", ch.Title, err)
	}
	return buf.Bytes(), nil
}

// pointStyle draws markers only. A zero StrokeWidth would inherit the
// default line width, so the stroke is disabled explicitly.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    4,
		DotColor:    col,
	}
}

func lineStyle(col drawing.Color, width float64) chart.Style {
	return chart.Style{
		StrokeColor: col,
		StrokeWidth: width,
	}
}

func dashedStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeColor:     col,
		StrokeWidth:     1,
		StrokeDashArray: []float64{5, 5},
	}
}

// segment is a two-point line series.
func segment(x0, y0, x1, y1 float64, style chart.Style) chart.ContinuousSeries {
	return chart.ContinuousSeries{
		XValues: []float64{x0, x1},
		YValues: []float64{y0, y1},
		Style:   style,
	}
}

// paddedRange returns a range covering values with 5% headroom on each side.
// Degenerate spans are widened so the axis is always drawable. Spans wider
// than a float64 can hold are refused since go-chart measures axes as max-min.
func paddedRange(values ...[]float64) (*chart.ContinuousRange, error) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, vs := range values {
		for _, v := range vs {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 0) {
		return &chart.ContinuousRange{Min: 0, Max: 1}, nil
	}
	span := hi - lo
	if !finite(span) {
		return nil, fmt.Errorf("%w: values from %g to %g are too far apart to draw an axis", ErrNoPoints, lo, hi)
	}
	if span == 0 {
		span = math.Max(math.Abs(lo), 1)
		return &chart.ContinuousRange{Min: lo - span/2, Max: hi + span/2}, nil
	}
	padded := &chart.ContinuousRange{Min: lo - span*0.05, Max: hi + span*0.05}
	if !finite(padded.Max - padded.Min) {
		return &chart.ContinuousRange{Min: lo, Max: hi}, nil
	}
	return padded, nil
}

// pairs drops every index where x or y is NaN or infinite.
func pairs(xs, ys []float64) ([]float64, []float64) {
	outX := make([]float64, 0, len(xs))
	outY := make([]float64, 0, len(ys))
	for i := range xs {
		if !finite(xs[i]) || !finite(ys[i]) {
			continue
		}
		outX = append(outX, xs[i])
		outY = append(outY, ys[i])
	}
	return outX, outY
}

// ensureTwo duplicates a lone point; go-chart needs two values to draw a series.
func ensureTwo(xs, ys []float64) ([]float64, []float64) {
	if len(xs) == 1 {
		return []float64{xs[0], xs[0]}, []float64{ys[0], ys[0]}
	}
	return xs, ys
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteValues(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if finite(v) {
			out = append(out, v)
		}
	}
	return out
}
