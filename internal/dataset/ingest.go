package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Delimiter is the caller's hint for text uploads.
type Delimiter string

const (
	DelimiterAuto  Delimiter = "auto"
	DelimiterComma Delimiter = "comma"
	DelimiterTab   Delimiter = "tab"
)

// Format identifies how an upload was decoded.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatXLSX Format = "xlsx"
)

var (
	utf8BOM  = []byte{0xEF, 0xBB, 0xBF}
	zipMagic = []byte("PK\x03\x04")
)

// Load decodes an upload. Workbooks are recognised by the .xlsx extension or
// the zip signature; everything else is parsed as delimited text.
func Load(name string, content []byte, hint Delimiter) (*Table, Format, error) {
	if strings.EqualFold(filepath.Ext(name), ".xlsx") || bytes.HasPrefix(content, zipMagic) {
		t, err := ParseXLSX(bytes.NewReader(content))
		if err != nil {
			return nil, "", err
		}
		return t, FormatXLSX, nil
	}

	t, delim, err := Parse(content, hint)
	if err != nil {
		return nil, "", err
	}
	if delim == '\t' {
		return t, FormatTSV, nil
	}
	return t, FormatCSV, nil
}

// Parse reads UTF-8 delimited text whose first row is the header.
func Parse(content []byte, hint Delimiter) (*Table, rune, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	if !utf8.Valid(content) {
		return nil, 0, fmt.Errorf("%w: content is not valid UTF-8", ErrParse)
	}

	delim, err := resolveDelimiter(content, hint)
	if err != nil {
		return nil, 0, err
	}

	r := csv.NewReader(bytes.NewReader(content))
	r.Comma = delim
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, fmt.Errorf("%w: %w", ErrParse, ErrNoColumns)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrParse, err)
	}

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrParse, err)
		}
		if len(rec) > len(header) {
			line, _ := r.FieldPos(0)
			return nil, 0, fmt.Errorf("%w: line %d has %d fields, expected %d", ErrParse, line, len(rec), len(header))
		}
		records = append(records, rec)
	}

	t, err := New(header, records)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return t, delim, nil
}

func resolveDelimiter(content []byte, hint Delimiter) (rune, error) {
	switch hint {
	case DelimiterComma:
		return ',', nil
	case DelimiterTab:
		return '\t', nil
	case DelimiterAuto, "":
		return SniffDelimiter(content), nil
	default:
		return 0, fmt.Errorf("%w: unsupported delimiter %q", ErrParse, hint)
	}
}

// SniffDelimiter returns tab when the header line contains a tab and comma
// otherwise.
func SniffDelimiter(content []byte) rune {
	line, err := bufio.NewReader(bytes.NewReader(content)).ReadSlice('\n')
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return ','
	}
	if bytes.IndexByte(line, '\t') >= 0 {
		return '\t'
	}
	return ','
}
