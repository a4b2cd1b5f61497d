// Package parser turns the rows of a national-accounts report into a
// model.Document.
//
// A Parser is a forward-only state machine. Each row is classified against
// the current state: the year header, an account title, a way header, or a
// data row of the current way. Rows that do not fit the current state are
// skipped. One Parser parses exactly one document.
package parser

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/openstat-dev/snatree/internal/model"
	"github.com/openstat-dev/snatree/internal/sheet"
)

// State is the classifier's position in the report.
type State int

const (
	SeekYearHeader State = iota
	SeekAccountType
	SeekWayHeader
	AccumulateRecords
)

func (s State) String() string {
	switch s {
	case SeekYearHeader:
		return "seek-year-header"
	case SeekAccountType:
		return "seek-account-type"
	case SeekWayHeader:
		return "seek-way-header"
	case AccumulateRecords:
		return "accumulate-records"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrMalformedHeader reports a year token that is not a number.
	ErrMalformedHeader = errors.New("malformed year header")
	// ErrInvariant reports a row that the current parser context cannot hold.
	ErrInvariant = errors.New("invariant violation")
	// ErrMissingHeader reports input that ended before the year header was found.
	ErrMissingHeader = errors.New("year header not found")
)

// RowError wraps a fatal error with the 1-based row it occurred on.
type RowError struct {
	Row   int
	State State
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d (%s): %v", e.Row, e.State, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Default sheet markers.
const (
	DefaultCodeMarker      = "коды"
	DefaultTotalLabel      = "Всего"
	DefaultIncludingPrefix = "в том числе "
	DefaultTitleColumn     = 2
)

// Options configures the markers the classifier looks for.
type Options struct {
	CodeMarker      string // header cell preceding the year tokens
	ResourcesLabel  string
	UsesLabel       string
	TotalLabel      string // name of the row closing a way
	IncludingPrefix string // name prefix of breakdown rows
	TitleColumn     int    // column holding account titles and way headers
	Logger          *slog.Logger
}

// DefaultOptions returns the markers used by the published reports.
func DefaultOptions() Options {
	return Options{
		CodeMarker:      DefaultCodeMarker,
		ResourcesLabel:  model.ResourcesLabel,
		UsesLabel:       model.UsesLabel,
		TotalLabel:      DefaultTotalLabel,
		IncludingPrefix: DefaultIncludingPrefix,
		TitleColumn:     DefaultTitleColumn,
	}
}

// Stats counts what the parser did with its input.
type Stats struct {
	Rows     int // rows processed
	Skipped  int // rows that did not match the current state
	Dropped  int // data rows without any non-zero value
	Records  int // records added to the document
	Accounts int
}

// Parser holds the state and context of one parse.
type Parser struct {
	opts Options
	log  *slog.Logger

	doc     *model.Document
	state   State
	account *model.Account // account being filled
	way     *model.Way     // side of account being filled, nil once closed
	stats   Stats
	err     error
}

// New creates a Parser in the SeekYearHeader state.
func New(opts Options) *Parser {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Parser{
		opts:  opts,
		log:   log,
		doc:   model.NewDocument(),
		state: SeekYearHeader,
	}
}

// State returns the current state.
func (p *Parser) State() State { return p.state }

// Stats returns counters for the rows processed so far.
func (p *Parser) Stats() Stats { return p.stats }

// Document returns the document built so far.
func (p *Parser) Document() *model.Document { return p.doc }

// Process classifies one row and updates the document. After a fatal error
// every later call returns the same error.
func (p *Parser) Process(row sheet.Row) error {
	if p.err != nil {
		return p.err
	}
	p.stats.Rows++

	var err error
	switch p.state {
	case SeekYearHeader:
		err = p.seekYearHeader(row)
	case SeekAccountType:
		p.seekAccountType(row)
	case SeekWayHeader:
		p.seekWayHeader(row)
	case AccumulateRecords:
		err = p.accumulateRecords(row)
	default:
		err = fmt.Errorf("%w: unknown state %d", ErrInvariant, int(p.state))
	}
	if err != nil {
		p.err = &RowError{Row: p.stats.Rows, State: p.state, Err: err}
		return p.err
	}
	return nil
}

// Finish ends the parse and returns the document. Input that never reached
// the year header is an error; an account left open is logged and kept.
func (p *Parser) Finish() (*model.Document, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.state == SeekYearHeader {
		return nil, ErrMissingHeader
	}
	if p.way != nil {
		p.log.Warn("input ended inside an account",
			"account", p.account.Type, "way", p.way.Name, "state", p.state.String())
	}
	return p.doc, nil
}

func (p *Parser) transition(next State) {
	p.log.Debug("transition", "row", p.stats.Rows, "from", p.state.String(), "to", next.String())
	p.state = next
}

func (p *Parser) skip(row sheet.Row) {
	p.stats.Skipped++
	p.log.Debug("skipping row", "row", p.stats.Rows, "state", p.state.String(), "title", row.Cell(p.opts.TitleColumn).Value)
}

func (p *Parser) seekYearHeader(row sheet.Row) error {
	idx := -1
	for i, c := range row {
		if c.Value == p.opts.CodeMarker {
			idx = i
			break
		}
	}
	if idx < 0 {
		p.skip(row)
		return nil
	}

	years, err := parseYears(row[idx+1:])
	if err != nil {
		return err
	}
	p.doc.Years = years
	p.log.Debug("year header", "row", p.stats.Rows, "years", years)
	p.transition(SeekAccountType)
	return nil
}

func (p *Parser) seekAccountType(row sheet.Row) {
	title := row.Cell(p.opts.TitleColumn)
	if title.Type != sheet.Text {
		p.skip(row)
		return
	}
	p.account = model.NewAccount(title.Value, p.opts.ResourcesLabel, p.opts.UsesLabel)
	p.way = p.account.Resources
	p.doc.Accounts = append(p.doc.Accounts, p.account)
	p.stats.Accounts++
	p.log.Debug("account", "row", p.stats.Rows, "type", title.Value)
	p.transition(SeekWayHeader)
}

func (p *Parser) seekWayHeader(row sheet.Row) {
	if row.Cell(p.opts.TitleColumn).Value != p.way.Name {
		p.skip(row)
		return
	}
	p.transition(AccumulateRecords)
}

func (p *Parser) accumulateRecords(row sheet.Row) error {
	if p.account == nil || p.way == nil {
		return fmt.Errorf("%w: data row without an open way", ErrInvariant)
	}
	out, err := p.buildRecord(row)
	if err != nil {
		return err
	}
	switch out {
	case outcomeNextWay:
		p.transition(SeekWayHeader)
	case outcomeNextAccount:
		p.transition(SeekAccountType)
	}
	return nil
}
