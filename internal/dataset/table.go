package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the inferred type of a column.
type Kind int

const (
	KindText Kind = iota
	KindInteger
	KindFloat
)

// String returns the lower-case kind name used in API responses.
func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	default:
		return "text"
	}
}

// IsNumeric reports whether columns of this kind take part in statistics and plots.
func (k Kind) IsNumeric() bool {
	return k == KindInteger || k == KindFloat
}

// naTokens are the cell values treated as missing in addition to blank cells.
var naTokens = map[string]struct{}{
	"NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
	"NULL": {}, "null": {}, "None": {}, "<NA>": {}, "#N/A": {}, "#NA": {},
	"#N/A N/A": {}, "1.#IND": {}, "1.#QNAN": {}, "-1.#IND": {}, "-1.#QNAN": {},
}

// IsMissing reports whether a raw cell value counts as a missing value.
func IsMissing(cell string) bool {
	s := strings.TrimSpace(cell)
	if s == "" {
		return true
	}
	_, ok := naTokens[s]
	return ok
}

// Column is a named vector of cells.
type Column struct {
	Name    string
	Kind    Kind
	cells   []string
	missing []bool
}

func newColumn(name string, cells []string) *Column {
	c := &Column{Name: name, cells: cells, missing: make([]bool, len(cells))}
	for i, cell := range cells {
		c.missing[i] = IsMissing(cell)
	}
	c.Kind = inferKind(c.cells, c.missing)
	return c
}

// Len returns the number of cells.
func (c *Column) Len() int { return len(c.cells) }

// Cell returns the raw text of row i and whether it is present.
func (c *Column) Cell(i int) (string, bool) {
	return c.cells[i], !c.missing[i]
}

// IsMissing reports whether row i is missing.
func (c *Column) IsMissing(i int) bool { return c.missing[i] }

// MissingCount returns the number of missing cells.
func (c *Column) MissingCount() int {
	n := 0
	for _, m := range c.missing {
		if m {
			n++
		}
	}
	return n
}

// Floats returns the column as float64 values with NaN for missing cells.
// Text columns yield NaN for every cell that does not parse.
func (c *Column) Floats() []float64 {
	out := make([]float64, len(c.cells))
	for i, cell := range c.cells {
		if c.missing[i] {
			out[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}

// Values returns the present numeric values in row order.
func (c *Column) Values() []float64 {
	out := make([]float64, 0, len(c.cells))
	for _, v := range c.Floats() {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func inferKind(cells []string, missing []bool) Kind {
	present, anyMissing, allInt := 0, false, true
	for i, cell := range cells {
		if missing[i] {
			anyMissing = true
			continue
		}
		present++
		s := strings.TrimSpace(cell)
		if _, err := strconv.ParseInt(s, 10, 64); err == nil {
			continue
		}
		allInt = false
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return KindText
		}
	}
	if present > 0 && allInt && !anyMissing {
		return KindInteger
	}
	return KindFloat
}

// Table is an ordered collection of equal-length columns.
type Table struct {
	columns []*Column
	rows    int
}

// New builds a table from a header and row-major records. Short records are
// padded with missing cells; a record longer than the header is an error.
func New(header []string, records [][]string) (*Table, error) {
	if len(header) == 0 {
		return nil, ErrNoColumns
	}
	cols := make([][]string, len(header))
	for j := range cols {
		cols[j] = make([]string, len(records))
	}
	for i, rec := range records {
		if len(rec) > len(header) {
			return nil, fmt.Errorf("row %d has %d fields, expected %d: %w", i+1, len(rec), len(header), ErrRaggedTable)
		}
		for j, cell := range rec {
			cols[j][i] = cell
		}
	}

	names := normalizeHeader(header)
	t := &Table{columns: make([]*Column, len(names)), rows: len(records)}
	for j, name := range names {
		t.columns[j] = newColumn(name, cols[j])
	}
	return t, nil
}

// normalizeHeader names blank headers "Unnamed: <i>" and suffixes repeats
// with ".1", ".2" and so on.
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		if strings.TrimSpace(h) == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		out[i] = h
	}
	used := make(map[string]bool, len(out))
	for _, name := range out {
		used[name] = true
	}
	for i, name := range out {
		n, dup := seen[name]
		if !dup {
			seen[name] = 0
			continue
		}
		candidate := name
		for {
			n++
			candidate = fmt.Sprintf("%s.%d", name, n)
			if !used[candidate] {
				break
			}
		}
		seen[name] = n
		used[candidate] = true
		out[i] = candidate
	}
	return out
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return t.rows }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.columns) }

// Columns returns the columns in order. The slice must not be modified.
func (t *Table) Columns() []*Column { return t.columns }

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Column looks a column up by name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// NumericColumns returns the names of integer and float columns in order.
func (t *Table) NumericColumns() []string {
	var names []string
	for _, c := range t.columns {
		if c.Kind.IsNumeric() {
			names = append(names, c.Name)
		}
	}
	return names
}

// Row returns the raw cells of row i with missing cells as empty strings.
func (t *Table) Row(i int) []string {
	row := make([]string, len(t.columns))
	for j, c := range t.columns {
		if !c.missing[i] {
			row[j] = c.cells[i]
		}
	}
	return row
}

// Records returns every row as produced by Row.
func (t *Table) Records() [][]string {
	out := make([][]string, t.rows)
	for i := range out {
		out[i] = t.Row(i)
	}
	return out
}

// Head returns up to n rows from the top of the table.
func (t *Table) Head(n int) [][]string {
	if n > t.rows {
		n = t.rows
	}
	out := make([][]string, n)
	for i := 0; i < n; i++ {
		out[i] = t.Row(i)
	}
	return out
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	return t.selectRows(nil)
}

// selectRows derives a table holding only the given rows (all rows when keep
// is nil) and re-infers every column kind.
func (t *Table) selectRows(keep []int) *Table {
	n := t.rows
	if keep != nil {
		n = len(keep)
	}
	out := &Table{columns: make([]*Column, len(t.columns)), rows: n}
	for j, c := range t.columns {
		cells := make([]string, n)
		if keep == nil {
			copy(cells, c.cells)
		} else {
			for i, r := range keep {
				cells[i] = c.cells[r]
			}
		}
		out.columns[j] = newColumn(c.Name, cells)
	}
	return out
}
