package exporter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"cleanviz/internal/dataset"
)

// DefaultSheetName is the sheet written by WriteXLSX.
const DefaultSheetName = "data"

// WriteXLSX writes the table to a single-sheet workbook. Cells of numeric
// columns are stored as numbers, missing cells are left empty.
func WriteXLSX(dst io.Writer, t *dataset.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), DefaultSheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, t.NumCols())
	for j, name := range t.Names() {
		header[j] = name
	}
	if err := f.SetSheetRow(DefaultSheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	cols := t.Columns()
	for i := 0; i < t.NumRows(); i++ {
		row := make([]interface{}, len(cols))
		for j, c := range cols {
			text, ok := c.Cell(i)
			if !ok {
				row[j] = nil
				continue
			}
			row[j] = text
			if c.Kind.IsNumeric() {
				if v, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
					row[j] = v
				}
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(DefaultSheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	if _, err := f.WriteTo(dst); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
