package dataset

import "errors"

var (
	// ErrParse wraps every ingestion failure.
	ErrParse = errors.New("failed to parse upload")

	ErrNoColumns       = errors.New("no columns to parse")
	ErrUnknownColumn   = errors.New("unknown column")
	ErrDuplicateColumn = errors.New("duplicate column name")
	ErrRaggedTable     = errors.New("columns have different lengths")
)
