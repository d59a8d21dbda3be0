package services

import (
	"errors"

	"cleanviz/internal/session"
)

// Workspace errors
var (
	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = session.ErrNotFound

	// Column selection errors
	ErrUnknownColumn    = errors.New("unknown column")
	ErrColumnNotNumeric = errors.New("column is not numeric")
)
