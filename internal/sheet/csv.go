package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// CSV reads comma-separated exports of a report sheet.
type CSV struct{}

// Name returns the format name.
func (c *CSV) Name() string { return "csv" }

// Extensions returns the file extensions handled by the format.
func (c *CSV) Extensions() []string { return []string{".csv"} }

// Open streams records from r. Cell types are inferred with Classify.
func (c *CSV) Open(r io.Reader, opts OpenOptions) (Source, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	return &csvSource{r: cr}, nil
}

type csvSource struct {
	r   *csv.Reader
	row int
}

func (s *csvSource) Next() (Row, error) {
	rec, err := s.r.Read()
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	s.row++
	if err != nil {
		return nil, fmt.Errorf("reading CSV row %d: %w", s.row, err)
	}
	row := make(Row, len(rec))
	for i, v := range rec {
		row[i] = Classify(v)
	}
	return row, nil
}

func (s *csvSource) Close() error { return nil }
