// Package exporter writes cleaned tables out of CleanViz.
//
// This package contains two writers:
//
// CSVWriter: header row plus records, no index column, optional UTF-8 BOM for
// Excel compatibility. Missing cells are written as empty strings so that a
// written file reloads to the same table.
//
// WriteXLSX: single-sheet workbook via excelize, with numeric columns stored
// as numbers.
//
// Example usage:
//
//	var buf bytes.Buffer
//	err := exporter.NewCSVWriter(exporter.WriteOptions{}).WriteTable(&buf, tbl)
package exporter
