package domain

import (
	"math"
	"time"
)

// View is the state of one workspace as shown to a client after any request.
type View struct {
	SessionID      string          `json:"session_id"`
	FileName       string          `json:"file_name"`
	Format         string          `json:"format"`
	Delimiter      string          `json:"delimiter,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	Rows           int             `json:"rows"`
	Columns        []ColumnInfo    `json:"columns"`
	NumericColumns []string        `json:"numeric_columns"`
	Preview        Preview         `json:"preview"`
	Cleaning       CleaningOptions `json:"cleaning"`
	Statistics     []ColumnStats   `json:"statistics,omitempty"`
	Plot           *PlotState      `json:"plot,omitempty"`
	PlotKinds      []PlotKind      `json:"plot_kinds"`
}

// ColumnInfo describes one column of the current table.
type ColumnInfo struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Missing int    `json:"missing"`
}

// Preview holds the first rows of the current table. Missing cells are empty.
type Preview struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// CleaningOptions echo the cleaning in force.
type CleaningOptions struct {
	DropEmptyRows    bool              `json:"drop_empty_rows"`
	DropEmptyColumns bool              `json:"drop_empty_columns"`
	Renames          map[string]string `json:"renames,omitempty"`
}

// ColumnStats is the descriptive summary of a numeric column. Undefined
// values are null.
type ColumnStats struct {
	Column string   `json:"column"`
	Count  int      `json:"count"`
	Mean   *float64 `json:"mean"`
	Std    *float64 `json:"std"`
	Min    *float64 `json:"min"`
	Q25    *float64 `json:"25%"`
	Q50    *float64 `json:"50%"`
	Q75    *float64 `json:"75%"`
	Max    *float64 `json:"max"`
}

// PlotKind is an entry of the plot menu.
type PlotKind struct {
	Kind         string `json:"kind"`
	Label        string `json:"label"`
	ColumnInputs int    `json:"column_inputs"`
}

// PlotState is the outcome of selecting a plot. Exactly one of ImageURL,
// Warning and Error is set.
type PlotState struct {
	Kind     string `json:"kind"`
	X        string `json:"x,omitempty"`
	Y        string `json:"y,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	FileName string `json:"file_name,omitempty"`
	Warning  string `json:"warning,omitempty"`
	Error    string `json:"error,omitempty"`
	// Significant and Skipped are set for volcano plots.
	Significant *int `json:"significant,omitempty"`
	Skipped     *int `json:"skipped,omitempty"`
	// ExplainedVariance is set for PCA plots.
	ExplainedVariance []float64 `json:"explained_variance,omitempty"`
}

// Float returns a pointer to v, or nil when v is NaN or infinite.
func Float(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
