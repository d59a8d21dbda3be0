package charts

import (
	"fmt"
	"strings"
)

// Kind names a supported plot.
type Kind string

const (
	KindHistogram Kind = "histogram"
	KindBox       Kind = "box"
	KindScatter   Kind = "scatter"
	KindHeatmap   Kind = "heatmap"
	KindPCA       Kind = "pca"
	KindVolcano   Kind = "volcano"
)

// Kinds lists every plot kind in menu order.
var Kinds = []Kind{KindHistogram, KindBox, KindScatter, KindHeatmap, KindPCA, KindVolcano}

var kindInfo = map[Kind]struct {
	file  string
	label string
	cols  int
}{
	KindHistogram: {"histogram.png", "Histogram", 1},
	KindBox:       {"box_plot.png", "Box Plot", 1},
	KindScatter:   {"scatter_plot.png", "Scatter Plot", 2},
	KindHeatmap:   {"heatmap.png", "Correlation Heatmap", 0},
	KindPCA:       {"pca_plot.png", "PCA (2 Components)", 0},
	KindVolcano:   {"volcano_plot.png", "Volcano Plot", 0},
}

// ParseKind accepts a kind name case-insensitively. "box_plot" and
// "scatter_plot" are accepted as aliases.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "_plot"))
	if _, ok := kindInfo[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// FileName is the download name of the rendered PNG.
func (k Kind) FileName() string { return kindInfo[k].file }

// Label is the human readable plot name.
func (k Kind) Label() string { return kindInfo[k].label }

// ColumnInputs is the number of user-selected columns the plot takes.
func (k Kind) ColumnInputs() int { return kindInfo[k].cols }
