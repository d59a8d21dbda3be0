package charts

import (
	"fmt"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"gonum.org/v1/gonum/floats"

	"cleanviz/internal/analysis"
)

// kdeSamples is the number of points the density curve is evaluated at.
const kdeSamples = 200

// Histogram renders the distribution of a numeric column with a kernel
// density overlay scaled to counts. Missing values are ignored.
func (r *Renderer) Histogram(column string, values []float64) ([]byte, error) {
	values = finiteValues(values)
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: column %q has no values", ErrNoPoints, column)
	}

	h := analysis.NewHistogram(values)
	bins := len(h.Counts)

	// step outline: each bin contributes its left and right edge at its count
	xs := make([]float64, 0, 2*bins+2)
	ys := make([]float64, 0, 2*bins+2)
	xs, ys = append(xs, h.Edges[0]), append(ys, 0)
	for i, c := range h.Counts {
		xs = append(xs, h.Edges[i], h.Edges[i+1])
		ys = append(ys, float64(c), float64(c))
	}
	xs, ys = append(xs, h.Edges[bins]), append(ys, 0)

	lo, hi := h.Edges[0], h.Edges[bins]
	if !finite(hi - lo) {
		return nil, fmt.Errorf("%w: values of %q from %g to %g are too far apart to bin", ErrNoPoints, column, lo, hi)
	}
	yMax := float64(h.MaxCount())

	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    "count",
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: colorPrimary,
				StrokeWidth: 1,
				FillColor:   colorPrimaryFill,
			},
		},
	}

	grid := make([]float64, kdeSamples)
	floats.Span(grid, lo, hi)
	if density := analysis.KDE(values, grid); density != nil {
		scale := float64(len(values)) * h.BinWidth
		floats.Scale(scale, density)
		yMax = math.Max(yMax, floats.Max(density))
		series = append(series, chart.ContinuousSeries{
			Name:    "density",
			XValues: grid,
			YValues: density,
			Style:   lineStyle(colorDark, 2),
		})
	}

	return r.render(chart.Chart{
		Title: fmt.Sprintf("Histogram of %s", column),
		XAxis: chart.XAxis{
			Name:  column,
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
		YAxis: chart.YAxis{
			Name:  "Count",
			Range: &chart.ContinuousRange{Min: 0, Max: yMax * 1.1},
		},
		Series: series,
	})
}

// BoxPlot renders quartiles, 1.5 IQR whiskers and outliers of a numeric
// column.
func (r *Renderer) BoxPlot(column string, values []float64) ([]byte, error) {
	values = finiteValues(values)
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: column %q has no values", ErrNoPoints, column)
	}
	yRange, err := paddedRange(values)
	if err != nil {
		return nil, err
	}
	b := analysis.NewBoxStats(values)

	const (
		center  = 1.0
		half    = 0.25
		capHalf = 0.1
	)
	left, right := center-half, center+half
	outline := lineStyle(colorPrimary, 2)

	series := []chart.Series{
		chart.ContinuousSeries{
			XValues: []float64{left, right, right, left, left},
			YValues: []float64{b.Q1, b.Q1, b.Q3, b.Q3, b.Q1},
			Style:   outline,
		},
		segment(left, b.Median, right, b.Median, lineStyle(colorAccent, 3)),
		segment(center, b.Q3, center, b.UpperWhisker, outline),
		segment(center, b.Q1, center, b.LowerWhisker, outline),
		segment(center-capHalf, b.UpperWhisker, center+capHalf, b.UpperWhisker, outline),
		segment(center-capHalf, b.LowerWhisker, center+capHalf, b.LowerWhisker, outline),
	}
	if len(b.Outliers) > 0 {
		ox := make([]float64, len(b.Outliers))
		for i := range ox {
			ox[i] = center
		}
		ox, oy := ensureTwo(ox, b.Outliers)
		series = append(series, chart.ContinuousSeries{
			XValues: ox,
			YValues: oy,
			Style:   pointStyle(colorDark),
		})
	}

	return r.render(chart.Chart{
		Title: fmt.Sprintf("Box Plot of %s", column),
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: 2},
			Ticks: []chart.Tick{
				{Value: 0, Label: ""},
				{Value: center, Label: column},
				{Value: 2, Label: ""},
			},
		},
		YAxis: chart.YAxis{
			Name:  column,
			Range: yRange,
		},
		Series: series,
	})
}
