package analysis

import "errors"

var (
	// ErrInsufficientData is returned when PCA has fewer than two numeric
	// columns or fewer than two complete rows. Callers show it as a warning.
	ErrInsufficientData = errors.New("insufficient data")

	ErrMissingVolcanoColumns = errors.New("volcano plot requires columns 'log2FoldChange' and 'p-value'")
	ErrNotNumeric            = errors.New("column is not numeric")
	ErrNoNumericColumns      = errors.New("no numeric columns")
	ErrNoValues              = errors.New("no plottable values")
	ErrDecomposition         = errors.New("principal component decomposition failed")
)
