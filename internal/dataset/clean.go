package dataset

import (
	"fmt"
	"sort"
	"strings"
)

// CleanOptions are the user's cleaning selections. Renames map a current
// column name (after dropping) to its new name.
type CleanOptions struct {
	DropEmptyRows    bool              `json:"drop_empty_rows"`
	DropEmptyColumns bool              `json:"drop_empty_columns"`
	Renames          map[string]string `json:"renames,omitempty"`
}

// Clean applies opts to t in the order rows, columns, renames.
func Clean(t *Table, opts CleanOptions) (*Table, error) {
	out := t
	if opts.DropEmptyRows {
		out = out.DropEmptyRows()
	}
	if opts.DropEmptyColumns {
		out = out.DropEmptyColumns()
	}
	if len(opts.Renames) > 0 {
		renamed, err := out.Rename(opts.Renames)
		if err != nil {
			return nil, err
		}
		out = renamed
	}
	if out == t {
		out = t.Clone()
	}
	return out, nil
}

// DropEmptyRows returns a table without the rows whose every cell is missing.
func (t *Table) DropEmptyRows() *Table {
	keep := make([]int, 0, t.rows)
	for i := 0; i < t.rows; i++ {
		for _, c := range t.columns {
			if !c.missing[i] {
				keep = append(keep, i)
				break
			}
		}
	}
	return t.selectRows(keep)
}

// DropEmptyColumns returns a table without the columns whose every cell is
// missing. A table with no rows loses all of its columns.
func (t *Table) DropEmptyColumns() *Table {
	out := &Table{rows: t.rows}
	for _, c := range t.columns {
		if c.MissingCount() == c.Len() {
			continue
		}
		cells := make([]string, len(c.cells))
		copy(cells, c.cells)
		out.columns = append(out.columns, newColumn(c.Name, cells))
	}
	return out
}

// Rename applies every mapping at once. Blank targets keep the old name.
// Unknown sources and mappings that would leave two columns with the same
// name are rejected.
func (t *Table) Rename(renames map[string]string) (*Table, error) {
	var unknown []string
	for from := range renames {
		if _, ok := t.Column(from); !ok {
			unknown = append(unknown, from)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, strings.Join(unknown, ", "))
	}

	names := make([]string, len(t.columns))
	seen := make(map[string]int, len(t.columns))
	var dups []string
	for j, c := range t.columns {
		name := c.Name
		if to, ok := renames[c.Name]; ok && strings.TrimSpace(to) != "" {
			name = strings.TrimSpace(to)
		}
		names[j] = name
		seen[name]++
		if seen[name] == 2 {
			dups = append(dups, name)
		}
	}
	if len(dups) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateColumn, strings.Join(dups, ", "))
	}

	out := t.Clone()
	for j, name := range names {
		out.columns[j].Name = name
	}
	return out, nil
}
