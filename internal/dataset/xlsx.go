package dataset

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ParseXLSX reads the first sheet of a workbook. The first row is the header
// and trailing empty cells trimmed by excelize become missing cells.
func ParseXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open workbook: %v", ErrParse, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrParse)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read sheet %q: %v", ErrParse, sheets[0], err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrParse, ErrNoColumns)
	}

	header := rows[0]
	records := rows[1:]
	for i, rec := range records {
		if len(rec) > len(header) {
			return nil, fmt.Errorf("%w: sheet row %d has %d cells, expected %d", ErrParse, i+2, len(rec), len(header))
		}
	}

	t, err := New(header, records)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return t, nil
}
