// Package report assembles the downloadable Markdown summary of a cleaned
// dataset.
package report

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"cleanviz/internal/analysis"
	"cleanviz/internal/dataset"
)

// FileName is the download name of the report.
const FileName = "summary_report.md"

// PCAFallback is written when no PCA result is available.
const PCAFallback = "PCA was not run or data was insufficient."

// Report is the data behind one summary document.
type Report struct {
	Source  string
	Rows    int
	Columns int
	Numeric []string
	Stats   []analysis.ColumnStats
	PCA     *analysis.PCAResult
}

// New summarizes t. pca is the result of the last PCA render for the same
// data, or nil.
func New(source string, t *dataset.Table, pca *analysis.PCAResult) Report {
	return Report{
		Source:  source,
		Rows:    t.NumRows(),
		Columns: t.NumCols(),
		Numeric: t.NumericColumns(),
		Stats:   analysis.Describe(t),
		PCA:     pca,
	}
}

// Markdown renders the report.
func (r Report) Markdown() string {
	var b strings.Builder
	_, _ = r.WriteTo(&b)
	return b.String()
}

// WriteTo writes the Markdown report to w.
func (r Report) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer

	buf.WriteString("# Data Summary Report\n\n")
	if r.Source != "" {
		fmt.Fprintf(&buf, "Source file: `%s`\n\n", r.Source)
	}
	fmt.Fprintf(&buf, "- **Rows:** %d\n", r.Rows)
	fmt.Fprintf(&buf, "- **Columns:** %d\n", r.Columns)
	numeric := "none"
	if len(r.Numeric) > 0 {
		numeric = strings.Join(r.Numeric, ", ")
	}
	fmt.Fprintf(&buf, "- **Numeric columns:** %s\n\n", numeric)

	buf.WriteString("## Descriptive Statistics\n\n")
	if len(r.Stats) == 0 {
		buf.WriteString("No numeric columns to summarize.\n\n")
	} else {
		writeStatsTable(&buf, r.Stats)
		buf.WriteString("\n")
	}

	buf.WriteString("## PCA\n\n")
	if r.PCA == nil {
		buf.WriteString(PCAFallback + "\n")
	} else {
		fmt.Fprintf(&buf, "- PC1 explains %.2f%% of variance\n", r.PCA.ExplainedVariance[0]*100)
		fmt.Fprintf(&buf, "- PC2 explains %.2f%% of variance\n", r.PCA.ExplainedVariance[1]*100)
	}

	return buf.WriteTo(w)
}

// writeStatsTable renders statistics as rows and columns as columns in
// Markdown pipe-table form.
func writeStatsTable(w io.Writer, stats []analysis.ColumnStats) {
	table := tablewriter.NewWriter(w)
	header := make([]string, 0, len(stats)+1)
	header = append(header, "")
	for _, s := range stats {
		header = append(header, s.Column)
	}
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	rows := make([][]string, len(analysis.StatNames))
	for i, name := range analysis.StatNames {
		rows[i] = append(rows[i], name)
	}
	for _, s := range stats {
		for i, v := range s.Values() {
			if i == 0 {
				rows[i] = append(rows[i], strconv.Itoa(s.Count))
				continue
			}
			rows[i] = append(rows[i], FormatStat(v))
		}
	}
	table.AppendBulk(rows)
	table.Render()
}

// FormatStat prints a statistic with six significant digits, or NaN.
func FormatStat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}
