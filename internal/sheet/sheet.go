// Package sheet reads spreadsheet rows for the report parser.
package sheet

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
)

// CellType tags the kind of value a cell holds.
type CellType int

const (
	Empty CellType = iota
	Text
	Number
)

func (t CellType) String() string {
	switch t {
	case Text:
		return "text"
	case Number:
		return "number"
	default:
		return "empty"
	}
}

// Cell is one spreadsheet cell: its raw value and type tag.
type Cell struct {
	Value string
	Type  CellType
}

// TextCell returns a text cell.
func TextCell(v string) Cell { return Cell{Value: v, Type: Text} }

// NumberCell returns a numeric cell.
func NumberCell(v string) Cell { return Cell{Value: v, Type: Number} }

// Classify guesses the type of a raw string value: blank is Empty,
// a decimal literal is Number, anything else is Text.
func Classify(raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Cell{Value: raw}
	}
	if _, err := decimal.NewFromString(trimmed); err == nil {
		return Cell{Value: trimmed, Type: Number}
	}
	return Cell{Value: raw, Type: Text}
}

// NonEmpty reports whether the cell holds text or a number.
func (c Cell) NonEmpty() bool {
	return c.Type == Text || c.Type == Number
}

// Decimal returns the numeric value of a Number cell. Text cells that hold a
// decimal literal are converted too; anything else is invalid.
func (c Cell) Decimal() decimal.NullDecimal {
	if c.Type == Empty {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(strings.TrimSpace(c.Value))
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// Row is an ordered sequence of cells.
type Row []Cell

// Cell returns the cell at column i, or an Empty cell past the end of the row.
func (r Row) Cell(i int) Cell {
	if i < 0 || i >= len(r) {
		return Cell{}
	}
	return r[i]
}

// Source yields rows top to bottom. Next returns io.EOF after the last row.
type Source interface {
	Next() (Row, error)
	Close() error
}

// OpenOptions tune how a Format opens a source.
type OpenOptions struct {
	Sheet string // xlsx: sheet name, first sheet when empty
	Comma rune   // csv: field delimiter, ',' when zero
}

// Format opens a byte stream as a row Source.
type Format interface {
	Open(r io.Reader, opts OpenOptions) (Source, error)
	Name() string
	Extensions() []string
}

// Registry holds named formats.
type Registry struct {
	formats map[string]Format
	byExt   map[string]Format
}

// NewRegistry creates an empty format registry.
func NewRegistry() *Registry {
	return &Registry{formats: make(map[string]Format), byExt: make(map[string]Format)}
}

// Register adds a format. Panics on duplicate name.
func (r *Registry) Register(f Format) {
	key := strings.ToLower(f.Name())
	if _, ok := r.formats[key]; ok {
		panic("duplicate sheet format: " + key)
	}
	r.formats[key] = f
	for _, ext := range f.Extensions() {
		r.byExt[strings.ToLower(ext)] = f
	}
}

// Get returns the format for name, or nil.
func (r *Registry) Get(name string) Format {
	return r.formats[strings.ToLower(name)]
}

// ForPath returns the format matching the file extension of path.
func (r *Registry) ForPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	f, ok := r.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported file type %q", ext)
	}
	return f, nil
}

// Supported reports whether path has an extension some format reads.
func (r *Registry) Supported(path string) bool {
	_, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return ok
}

// DefaultRegistry returns a registry with all built-in formats.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&XLSX{})
	r.Register(&CSV{})
	return r
}

// Rows is an in-memory Source.
type Rows struct {
	rows []Row
	pos  int
}

// NewRows returns a Source over rows.
func NewRows(rows ...Row) *Rows {
	return &Rows{rows: rows}
}

// Next returns the next row or io.EOF.
func (s *Rows) Next() (Row, error) {
	if s.pos >= len(s.rows) {
		return nil, io.EOF
	}
	row := s.rows[s.pos]
	s.pos++
	return row, nil
}

// Close is a no-op.
func (s *Rows) Close() error { return nil }

// R builds a Row from Go values: strings become text (blank ones empty),
// integers and floats become numbers, nil is empty.
func R(values ...any) Row {
	row := make(Row, len(values))
	for i, v := range values {
		switch x := v.(type) {
		case nil:
			row[i] = Cell{}
		case string:
			if strings.TrimSpace(x) == "" {
				row[i] = Cell{Value: x}
			} else {
				row[i] = TextCell(x)
			}
		case int:
			row[i] = NumberCell(fmt.Sprint(x))
		case int64:
			row[i] = NumberCell(fmt.Sprint(x))
		case float64:
			row[i] = NumberCell(decimal.NewFromFloat(x).String())
		case Cell:
			row[i] = x
		default:
			row[i] = TextCell(fmt.Sprint(x))
		}
	}
	return row
}
