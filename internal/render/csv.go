package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/openstat-dev/snatree/internal/model"
)

// CSV flattens the record trees: one row per record, one column per year.
type CSV struct{}

func (c *CSV) Name() string        { return "csv" }
func (c *CSV) Extension() string   { return ".csv" }
func (c *CSV) ContentType() string { return "text/csv; charset=utf-8" }

// Header returns the CSV header for a year axis.
func (c *CSV) Header(years []int) []string {
	header := []string{"account", "way", "level", "path", "code", "name"}
	for _, y := range years {
		header = append(header, strconv.Itoa(y))
	}
	return header
}

func (c *CSV) Write(w io.Writer, doc *model.Document) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(c.Header(doc.Years)); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	n := 1
	for _, acct := range doc.Accounts {
		for _, way := range []*model.Way{acct.Resources, acct.Uses} {
			var path []string
			err := model.Walk(way.Records, func(r *model.Record, depth int) error {
				path = append(path[:depth], r.Code)
				n++
				if err := cw.Write(marshalRow(acct, way, r, depth, path, doc.Years)); err != nil {
					return fmt.Errorf("writing row %d: %w", n, err)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func marshalRow(acct *model.Account, way *model.Way, r *model.Record, depth int, path []string, years []int) []string {
	row := []string{acct.Type, way.Name, strconv.Itoa(depth), strings.Join(path, "/"), r.Code, r.Name}
	for _, y := range years {
		v, _ := r.Values.Get(y)
		if v.Valid {
			row = append(row, v.Decimal.String())
		} else {
			row = append(row, "")
		}
	}
	return row
}
