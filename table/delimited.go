package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// ReadDelimited parses UTF-8 delimited text. The first record is the header; a leading byte
// order mark is dropped. Empty input yields an empty table.
func ReadDelimited(r io.Reader, delimiter rune) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read table: %w", err)
	}

	data = bytes.TrimPrefix(data, bom)

	if !utf8.Valid(data) {
		return nil, ErrInvalidEncoding
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = delimiter

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse table header: %w", err)
	}

	t := &Table{Columns: header}

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse table: %w", err)
		}
		t.Rows = append(t.Rows, record)
	}

	return t, nil
}

// WriteDelimited writes the header and rows of t separated by delimiter.
func WriteDelimited(w io.Writer, t *Table, delimiter rune) error {
	if err := t.Validate(); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	cw.Comma = delimiter

	if len(t.Columns) > 0 {
		if err := cw.Write(t.Columns); err != nil {
			return fmt.Errorf("failed to write table header: %w", err)
		}
	}

	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("failed to write table rows: %w", err)
	}

	return nil
}
