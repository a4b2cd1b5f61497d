// Package convert drives a parser over a row source.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/openstat-dev/snatree/internal/model"
	"github.com/openstat-dev/snatree/internal/parser"
	"github.com/openstat-dev/snatree/internal/sheet"
)

// Result is a fully parsed document with the parser's counters.
type Result struct {
	Document *model.Document
	Stats    parser.Stats
}

// Run feeds every row of src to a new parser. The document is returned only
// when the whole input was parsed; on error or cancellation it is discarded.
func Run(ctx context.Context, src sheet.Source, opts parser.Options) (*Result, error) {
	p := parser.New(opts)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading rows: %w", err)
		}
		if err := p.Process(row); err != nil {
			return nil, err
		}
	}

	doc, err := p.Finish()
	if err != nil {
		return nil, err
	}
	return &Result{Document: doc, Stats: p.Stats()}, nil
}

// Reader converts a stream in the given format.
func Reader(ctx context.Context, r io.Reader, format sheet.Format, open sheet.OpenOptions, opts parser.Options) (*Result, error) {
	src, err := format.Open(r, open)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return Run(ctx, src, opts)
}

// File converts the file at path, picking the format from its extension.
func File(ctx context.Context, path string, formats *sheet.Registry, open sheet.OpenOptions, opts parser.Options) (*Result, error) {
	format, err := formats.ForPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	res, err := Reader(ctx, f, format, open, opts)
	if err != nil {
		return nil, fmt.Errorf("converting %s: %w", path, err)
	}
	return res, nil
}
