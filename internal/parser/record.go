package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/openstat-dev/snatree/internal/model"
	"github.com/openstat-dev/snatree/internal/sheet"
)

const (
	colName        = 0
	colCode        = 1
	colFirstAmount = 2
)

// outcome tells the classifier where a data row leaves it.
type outcome int

const (
	outcomeNoop outcome = iota
	outcomeStay
	outcomeNextWay
	outcomeNextAccount
)

// buildRecord turns a data row into a record of the current way.
func (p *Parser) buildRecord(row sheet.Row) (outcome, error) {
	name := row.Cell(colName).Value
	code := row.Cell(colCode).Value

	values := make(model.Values, len(p.doc.Years))
	for i, year := range p.doc.Years {
		values[i] = model.Value{Year: year, Amount: row.Cell(colFirstAmount + i).Decimal()}
	}
	if values.AllFalsy() {
		p.stats.Dropped++
		p.log.Debug("dropping empty row", "row", p.stats.Rows, "name", name, "code", code)
		return outcomeNoop, nil
	}

	p.attach(model.NewRecord(name, code, values))
	p.stats.Records++

	if name != p.opts.TotalLabel {
		return outcomeStay, nil
	}
	switch p.way.Side {
	case model.SideUses:
		p.log.Debug("account closed", "row", p.stats.Rows, "account", p.account.Type)
		p.way = nil
		return outcomeNextAccount, nil
	case model.SideResources:
		p.way = p.account.Uses
		return outcomeNextWay, nil
	default:
		return outcomeNoop, fmt.Errorf("%w: total row on way %q (%s)", ErrInvariant, p.way.Name, p.way.Side)
	}
}

// attach places r in the current way. A record whose code minus its last
// character matches exactly one top-level code becomes that record's child.
// Otherwise a name starting with the including prefix nests the record under
// the latest top-level record. Everything else is top-level.
func (p *Parser) attach(r *model.Record) {
	if parent, ok := prefixParent(p.way, r.Code); ok {
		parent.AddChild(r)
		return
	}
	if p.opts.IncludingPrefix != "" {
		if rest, ok := strings.CutPrefix(r.Name, p.opts.IncludingPrefix); ok {
			if last := p.way.Last(); last != nil {
				r.Name = rest
				last.AddChild(r)
				return
			}
		}
	}
	p.way.Append(r)
}

// prefixParent searches the top-level records of w only; children are never
// candidates.
func prefixParent(w *model.Way, code string) (*model.Record, bool) {
	_, size := utf8.DecodeLastRuneInString(code)
	prefix := code[:len(code)-size]
	if prefix == "" {
		return nil, false
	}

	var found *model.Record
	for _, r := range w.Records {
		if r.Code != prefix {
			continue
		}
		if found != nil {
			return nil, false
		}
		found = r
	}
	return found, found != nil
}

// parseYears reads the year tokens that follow the code marker. Only text
// and number cells count. A token is the first whitespace-separated word of
// the cell, so footnote marks like "2016 1)" are ignored.
func parseYears(cells []sheet.Cell) ([]int, error) {
	years := []int{}
	seen := make(map[int]bool)
	for _, c := range cells {
		if !c.NonEmpty() {
			continue
		}
		fields := strings.Fields(c.Value)
		if len(fields) == 0 {
			return nil, fmt.Errorf("%w: blank year cell", ErrMalformedHeader)
		}
		d, err := decimal.NewFromString(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%w: year %q: %v", ErrMalformedHeader, c.Value, err)
		}
		year := int(d.IntPart())
		if seen[year] {
			return nil, fmt.Errorf("%w: duplicate year %d", ErrMalformedHeader, year)
		}
		seen[year] = true
		years = append(years, year)
	}
	return years, nil
}
