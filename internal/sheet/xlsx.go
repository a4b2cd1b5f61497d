package sheet

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSX reads Office Open XML workbooks. Only one sheet is read.
type XLSX struct{}

// Name returns the format name.
func (x *XLSX) Name() string { return "xlsx" }

// Extensions returns the file extensions handled by the format.
func (x *XLSX) Extensions() []string { return []string{".xlsx", ".xlsm"} }

// Open loads the workbook and streams the rows of opts.Sheet, or of the first sheet.
func (x *XLSX) Open(r io.Reader, opts OpenOptions) (Source, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}

	name := opts.Sheet
	if name == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			_ = f.Close()
			return nil, errors.New("workbook has no sheets")
		}
		name = sheets[0]
	}

	rows, err := f.Rows(name)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("reading sheet %q: %w", name, err)
	}
	return &xlsxSource{file: f, sheet: name, rows: rows}, nil
}

type xlsxSource struct {
	file  *excelize.File
	sheet string
	rows  *excelize.Rows
	row   int
}

func (s *xlsxSource) Next() (Row, error) {
	if !s.rows.Next() {
		if err := s.rows.Error(); err != nil {
			return nil, fmt.Errorf("reading sheet %q: %w", s.sheet, err)
		}
		return nil, io.EOF
	}
	s.row++

	cols, err := s.rows.Columns(excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading row %d: %w", s.row, err)
	}

	row := make(Row, len(cols))
	for i, raw := range cols {
		cell, err := s.cell(i+1, raw)
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", s.row, err)
		}
		row[i] = cell
	}
	return row, nil
}

func (s *xlsxSource) cell(col int, raw string) (Cell, error) {
	if strings.TrimSpace(raw) == "" {
		return Cell{Value: raw}, nil
	}
	axis, err := excelize.CoordinatesToCellName(col, s.row)
	if err != nil {
		return Cell{}, err
	}
	typ, err := s.file.GetCellType(s.sheet, axis)
	if err != nil {
		return Cell{}, fmt.Errorf("cell %s: %w", axis, err)
	}
	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString,
		excelize.CellTypeFormula, excelize.CellTypeBool, excelize.CellTypeError:
		return TextCell(raw), nil
	default:
		// Numeric cells carry no explicit type attribute.
		return Classify(raw), nil
	}
}

func (s *xlsxSource) Close() error {
	rowsErr := s.rows.Close()
	if err := s.file.Close(); err != nil {
		return err
	}
	return rowsErr
}
