// Package session keeps per-user workspaces in memory. A workspace holds the
// pristine upload, the cleaning options in force, the table derived from
// them and the last PCA projection of that table.
package session

import (
	"sync"
	"time"

	"cleanviz/internal/analysis"
	"cleanviz/internal/dataset"
)

// Session is one uploaded dataset and its derived state. Callers must hold
// the session lock (Lock/Unlock) around any sequence of reads and writes.
type Session struct {
	ID        string
	FileName  string
	Format    dataset.Format
	CreatedAt time.Time

	mu       sync.Mutex
	original *dataset.Table
	options  dataset.CleanOptions
	current  *dataset.Table
	pca      *analysis.PCAResult
}

func newSession(id, fileName string, format dataset.Format, t *dataset.Table) *Session {
	return &Session{
		ID:        id,
		FileName:  fileName,
		Format:    format,
		CreatedAt: time.Now().UTC(),
		original:  t,
		current:   t.Clone(),
	}
}

// Lock serializes requests against the session.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session.
func (s *Session) Unlock() { s.mu.Unlock() }

// Original is the table as uploaded. It is never mutated.
func (s *Session) Original() *dataset.Table { return s.original }

// Current is the table after applying Options to Original.
func (s *Session) Current() *dataset.Table { return s.current }

// Options returns a copy of the cleaning options in force.
func (s *Session) Options() dataset.CleanOptions {
	return copyOptions(s.options)
}

func copyOptions(opts dataset.CleanOptions) dataset.CleanOptions {
	if len(opts.Renames) > 0 {
		renames := make(map[string]string, len(opts.Renames))
		for k, v := range opts.Renames {
			renames[k] = v
		}
		opts.Renames = renames
	}
	return opts
}

// ApplyCleaning rebuilds Current from Original with opts, keeping its own
// copy of opts. On error the session is left unchanged. A successful call discards the PCA result since
// it described the previous table.
func (s *Session) ApplyCleaning(opts dataset.CleanOptions) error {
	cleaned, err := dataset.Clean(s.original, opts)
	if err != nil {
		return err
	}
	s.options = copyOptions(opts)
	s.current = cleaned
	s.pca = nil
	return nil
}

// PCA returns the last PCA result computed for Current, or nil.
func (s *Session) PCA() *analysis.PCAResult { return s.pca }

// SetPCA records a PCA result computed from Current.
func (s *Session) SetPCA(res *analysis.PCAResult) { s.pca = res }
