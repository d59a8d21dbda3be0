// Package charts renders histogram, box, scatter, correlation heatmap, PCA and
// volcano plots to PNG. Line and point charts are drawn with go-chart; the
// heatmap is painted directly because go-chart has no matrix series.
package charts
