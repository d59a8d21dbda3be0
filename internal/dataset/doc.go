// Package dataset holds the in-memory table model used by every CleanViz
// component, together with the operations that create and reshape it.
//
// # Table Model
//
// A Table is an ordered set of named columns of equal length. Each column
// keeps the raw cell text it was loaded with plus a missing mask, and an
// inferred Kind:
//
//	KindText     any present cell fails numeric parsing
//	KindInteger  every cell parses as an integer and none is missing
//	KindFloat    every present cell parses as a float (an all-missing column is float)
//
// Kinds are re-inferred whenever a table is derived from another one, so a
// column that loses its only text row becomes numeric.
//
// # Ingestion
//
// Load accepts delimited text (comma or tab) and .xlsx workbooks. For text
// input the delimiter is taken from an explicit hint or sniffed from the
// header line:
//
//	tbl, format, err := dataset.Load("expr.tsv", content, dataset.DelimiterAuto)
//
// # Cleaning
//
// Clean applies CleanOptions in a fixed order (drop empty rows, drop empty
// columns, rename) and always returns a new Table; the input is never
// mutated.
package dataset
