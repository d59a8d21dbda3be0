package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// maxBins caps automatic binning for very wide distributions.
const maxBins = 200

// Histogram is a fixed-width binning of a sample.
type Histogram struct {
	Edges    []float64
	Counts   []int
	BinWidth float64
}

// NewHistogram bins values using the larger of the Sturges and
// Freedman-Diaconis bin counts. Edges stay finite for any finite input;
// BinWidth is +Inf when the range exceeds math.MaxFloat64.
func NewHistogram(values []float64) Histogram {
	if len(values) == 0 {
		return Histogram{}
	}
	lo, hi := floats.Min(values), floats.Max(values)
	if lo == hi {
		return Histogram{
			Edges:    []float64{lo - 0.5, hi + 0.5},
			Counts:   []int{len(values)},
			BinWidth: 1,
		}
	}

	// binned at half scale so hi-lo cannot overflow; halving is exact
	half := make([]float64, len(values))
	floats.ScaleTo(half, 0.5, values)
	lo, hi = lo/2, hi/2
	bins := autoBins(half, hi-lo)
	width := (hi - lo) / float64(bins)

	h := Histogram{
		Edges:    make([]float64, bins+1),
		Counts:   make([]int, bins),
		BinWidth: 2 * width,
	}
	floats.Span(h.Edges, lo, hi)
	floats.Scale(2, h.Edges)
	for _, v := range half {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		h.Counts[idx]++
	}
	return h
}

func autoBins(values []float64, span float64) int {
	n := float64(len(values))
	sturges := span / (math.Log2(n) + 1)
	width := sturges

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	iqr := Quantile(sorted, 0.75) - Quantile(sorted, 0.25)
	if fd := 2 * iqr * math.Pow(n, -1.0/3.0); fd > 0 && fd < width {
		width = fd
	}

	bins := int(math.Ceil(span / width))
	if bins < 1 {
		bins = 1
	}
	if bins > maxBins {
		bins = maxBins
	}
	return bins
}

// MaxCount returns the tallest bin.
func (h Histogram) MaxCount() int {
	m := 0
	for _, c := range h.Counts {
		if c > m {
			m = c
		}
	}
	return m
}

// KDE evaluates a Gaussian kernel density estimate of values at xs using
// Scott's bandwidth. It returns nil when the bandwidth is undefined (fewer
// than two values or zero spread).
func KDE(values, xs []float64) []float64 {
	n := len(values)
	if n < 2 {
		return nil
	}
	sd := stat.StdDev(values, nil)
	bw := sd * math.Pow(float64(n), -1.0/5.0)
	if bw == 0 || math.IsNaN(bw) {
		return nil
	}

	norm := 1 / (float64(n) * bw * math.Sqrt(2*math.Pi))
	out := make([]float64, len(xs))
	for i, x := range xs {
		var sum float64
		for _, v := range values {
			u := (x - v) / bw
			sum += math.Exp(-0.5 * u * u)
		}
		out[i] = sum * norm
	}
	return out
}

// BoxStats are the quantities drawn by a box plot.
type BoxStats struct {
	Q1, Median, Q3 float64
	LowerWhisker   float64
	UpperWhisker   float64
	Outliers       []float64
}

// NewBoxStats computes quartiles, whiskers at the most extreme values within
// 1.5 IQR of the box, and the outliers beyond them.
func NewBoxStats(values []float64) BoxStats {
	if len(values) == 0 {
		nan := math.NaN()
		return BoxStats{Q1: nan, Median: nan, Q3: nan, LowerWhisker: nan, UpperWhisker: nan}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	b := BoxStats{
		Q1:     Quantile(sorted, 0.25),
		Median: Quantile(sorted, 0.5),
		Q3:     Quantile(sorted, 0.75),
	}
	iqr := b.Q3 - b.Q1
	loFence, hiFence := b.Q1-1.5*iqr, b.Q3+1.5*iqr

	b.LowerWhisker, b.UpperWhisker = b.Q1, b.Q3
	for _, v := range sorted {
		if v >= loFence {
			b.LowerWhisker = math.Min(v, b.Q1)
			break
		}
	}
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i] <= hiFence {
			b.UpperWhisker = math.Max(sorted[i], b.Q3)
			break
		}
	}
	for _, v := range sorted {
		if v < loFence || v > hiFence {
			b.Outliers = append(b.Outliers, v)
		}
	}
	return b
}
