// Package analysis computes the statistics behind the CleanViz summary table
// and plots. Everything here is pure: functions take a *dataset.Table and
// return plain result values, leaving rendering to the charts package.
//
// Numeric work is delegated to gonum (stat, floats, mat). Missing cells are
// skipped per column for descriptive statistics and per pair for
// correlation; PCA uses only rows that are complete across every numeric
// column.
package analysis
