package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"cleanviz/internal/dataset"
)

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
	Delimiter rune
}

// CSVWriter writes tables as delimited text. The zero value writes plain
// comma-separated output.
type CSVWriter struct {
	options WriteOptions
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(options WriteOptions) *CSVWriter {
	return &CSVWriter{options: options}
}

// WriteTable writes the header row followed by every record. Missing cells
// are written as empty strings and no index column is added.
func (w *CSVWriter) WriteTable(dst io.Writer, t *dataset.Table) error {
	if w.options.BOMPrefix {
		if _, err := dst.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(dst)
	if w.options.Delimiter != 0 {
		writer.Comma = w.options.Delimiter
	}

	if err := writer.Write(t.Names()); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i := 0; i < t.NumRows(); i++ {
		if err := writer.Write(t.Row(i)); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteFile writes the table to filePath, creating parent directories.
func (w *CSVWriter) WriteFile(filePath string, t *dataset.Table) error {
	slog.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.Int("record_count", t.NumRows()))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := w.WriteTable(file, t); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
