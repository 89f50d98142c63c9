// Package table reads and writes small in-memory tables as delimited text or spreadsheets.
package table

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// Format is a serialization of a Table.
type Format string

const (
	FormatDelimited Format = "delimited"
	FormatXLSX      Format = "xlsx"
)

var (
	ErrInvalidEncoding = errors.New("content is not valid UTF-8")
	ErrRaggedRow       = errors.New("row length does not match the header")
)

// Table is a header row plus data rows of string cells. Every row has len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// New returns a table with columns and rows after checking that every row fits the header.
func New(columns []string, rows ...[]string) (*Table, error) {
	t := &Table{Columns: columns, Rows: rows}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks every row against the header.
func (t *Table) Validate() error {
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("%w: row %d has %d cells, header has %d", ErrRaggedRow, i+1, len(row), len(t.Columns))
		}
	}
	return nil
}

// Column returns the cells of the named column, or false when there is no such column.
func (t *Table) Column(name string) ([]string, bool) {
	idx := -1
	for i, c := range t.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}

	cells := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		cells[i] = row[idx]
	}
	return cells, true
}

// Options controls how a table is read or written.
type Options struct {
	// Format selects the codec. Empty means infer from the object name.
	Format Format

	// Delimiter separates fields in delimited text. Zero means infer from the object name:
	// tab for ".tsv", comma otherwise.
	Delimiter rune

	// Sheet is the worksheet to read or write for xlsx. Empty reads the first sheet and
	// writes "Sheet1".
	Sheet string
}

// Resolve fills in the format and delimiter for an object called name.
func (o Options) Resolve(name string) (Options, error) {
	ext := strings.ToLower(path.Ext(name))

	if o.Format == "" {
		o.Format = FormatDelimited
		if ext == ".xlsx" {
			o.Format = FormatXLSX
		}
	}

	switch o.Format {
	case FormatDelimited:
		if o.Delimiter == 0 {
			o.Delimiter = ','
			if ext == ".tsv" {
				o.Delimiter = '\t'
			}
		}
		if !validDelimiter(o.Delimiter) {
			return o, fmt.Errorf("invalid delimiter %q", o.Delimiter)
		}
	case FormatXLSX:
	default:
		return o, fmt.Errorf("unknown table format %q", o.Format)
	}

	return o, nil
}

// Read decodes a table from r. opts must already be resolved.
func Read(r io.Reader, opts Options) (*Table, error) {
	switch opts.Format {
	case FormatXLSX:
		return ReadXLSX(r, opts.Sheet)
	default:
		return ReadDelimited(r, opts.Delimiter)
	}
}

// Write encodes t to w. opts must already be resolved.
func Write(w io.Writer, t *Table, opts Options) error {
	switch opts.Format {
	case FormatXLSX:
		return WriteXLSX(w, t, opts.Sheet)
	default:
		return WriteDelimited(w, t, opts.Delimiter)
	}
}

// ParseDelimiter turns a flag value into a delimiter rune. "\t" and "tab" mean a tab.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case `\t`, "tab":
		return '\t', nil
	}

	runes := []rune(s)
	if len(runes) != 1 || !validDelimiter(runes[0]) {
		return 0, fmt.Errorf("invalid delimiter %q: must be a single character", s)
	}
	return runes[0], nil
}

func validDelimiter(r rune) bool {
	return r != 0 && r != '"' && r != '\r' && r != '\n' && r != 0xFFFD
}
