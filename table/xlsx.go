package table

import (
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// ReadXLSX reads a worksheet. The first row is the header and short rows are padded with
// empty cells, since spreadsheets drop trailing blanks. An empty sheet name reads the first
// sheet.
func ReadXLSX(r io.Reader, sheet string) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Debug().Err(err).Msg("failed to close workbook")
		}
	}()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return &Table{}, nil
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	if len(rows) == 0 {
		return &Table{}, nil
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	t := &Table{Columns: pad(rows[0], width)}
	for _, row := range rows[1:] {
		t.Rows = append(t.Rows, pad(row, width))
	}

	return t, nil
}

// WriteXLSX writes t as a single worksheet, every cell as a string.
func WriteXLSX(w io.Writer, t *Table, sheet string) error {
	if err := t.Validate(); err != nil {
		return err
	}

	if sheet == "" {
		sheet = defaultSheet
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Debug().Err(err).Msg("failed to close workbook")
		}
	}()

	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return fmt.Errorf("failed to name sheet %s: %w", sheet, err)
		}
	}

	records := t.Rows
	if len(t.Columns) > 0 {
		records = append([][]string{t.Columns}, t.Rows...)
	}

	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+1, err)
		}

		values := make([]any, len(record))
		for j, v := range record {
			values[j] = v
		}

		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	return nil
}

func pad(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	out := make([]string, width)
	copy(out, row)
	return out
}
