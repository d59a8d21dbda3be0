package charts

import (
	"fmt"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"

	"cleanviz/internal/analysis"
)

// Volcano plots log2 fold change against -log10(p), coloring significant
// points and marking both thresholds with dashed lines.
func (r *Renderer) Volcano(res *analysis.VolcanoResult) ([]byte, error) {
	if res == nil || len(res.Points) == 0 {
		return nil, fmt.Errorf("%w: no rows with both %s and %s", ErrNoPoints, analysis.Log2FoldChangeColumn, analysis.PValueColumn)
	}

	var sigX, sigY, restX, restY []float64
	for _, p := range res.Points {
		if p.Significant {
			sigX, sigY = append(sigX, p.Log2FC), append(sigY, p.NegLog10P)
		} else {
			restX, restY = append(restX, p.Log2FC), append(restY, p.NegLog10P)
		}
	}

	pThreshold := -math.Log10(analysis.PValueThreshold)
	fc := analysis.FoldChangeThreshold
	xRange, err := paddedRange(sigX, restX, []float64{-fc, fc})
	if err != nil {
		return nil, err
	}
	yRange, err := paddedRange(sigY, restY, []float64{0, pThreshold})
	if err != nil {
		return nil, err
	}

	var series []chart.Series
	if len(restX) > 0 {
		restX, restY = ensureTwo(restX, restY)
		series = append(series, chart.ContinuousSeries{
			Name:    "Not significant",
			XValues: restX,
			YValues: restY,
			Style:   pointStyle(colorMuted),
		})
	}
	if len(sigX) > 0 {
		sigX, sigY = ensureTwo(sigX, sigY)
		series = append(series, chart.ContinuousSeries{
			Name:    "Significant",
			XValues: sigX,
			YValues: sigY,
			Style:   pointStyle(colorAccent),
		})
	}
	dashed := dashedStyle(colorDark)
	series = append(series,
		named(segment(xRange.Min, pThreshold, xRange.Max, pThreshold, dashed), fmt.Sprintf("p = %g", analysis.PValueThreshold)),
		named(segment(-fc, yRange.Min, -fc, yRange.Max, dashed), fmt.Sprintf("log2FC = %g", -fc)),
		named(segment(fc, yRange.Min, fc, yRange.Max, dashed), fmt.Sprintf("log2FC = %g", fc)),
	)

	ch := chart.Chart{
		Title:      "Volcano Plot",
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 60}},
		XAxis:      chart.XAxis{Name: "log2 Fold Change", Range: xRange},
		YAxis:      chart.YAxis{Name: "-log10(p-value)", Range: yRange},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return r.render(ch)
}

func named(s chart.ContinuousSeries, name string) chart.ContinuousSeries {
	s.Name = name
	return s
}
