// Package validate checks parsed documents against the structural
// invariants of a report.
package validate

import (
	"fmt"
	"slices"

	"github.com/openstat-dev/snatree/internal/model"
	"github.com/openstat-dev/snatree/internal/parser"
)

// ValidationError describes a single invariant violation.
type ValidationError struct {
	Invariant   int
	Location    string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invariant %d [%s]: %s", e.Invariant, e.Location, e.Description)
}

// Labels are the sheet labels a document was parsed with.
type Labels struct {
	Resources string
	Uses      string
	Total     string
}

// LabelsFrom returns the labels used by parser options.
func LabelsFrom(opts parser.Options) Labels {
	return Labels{Resources: opts.ResourcesLabel, Uses: opts.UsesLabel, Total: opts.TotalLabel}
}

// Document enforces 6 invariants on a parsed document.
func Document(doc *model.Document, labels Labels) []ValidationError {
	var errs []ValidationError

	// Invariant 1: A year axis of distinct years exists before any account.
	if len(doc.Years) == 0 && len(doc.Accounts) > 0 {
		errs = append(errs, ValidationError{
			Invariant:   1,
			Location:    "document",
			Description: "accounts present without a year header",
		})
	}
	seen := make(map[int]bool, len(doc.Years))
	for _, y := range doc.Years {
		if seen[y] {
			errs = append(errs, ValidationError{
				Invariant:   1,
				Location:    "document",
				Description: fmt.Sprintf("duplicate year %d", y),
			})
		}
		seen[y] = true
	}

	for _, acct := range doc.Accounts {
		sides := []struct {
			way   *model.Way
			label string
			side  model.Side
		}{
			{acct.Resources, labels.Resources, model.SideResources},
			{acct.Uses, labels.Uses, model.SideUses},
		}
		for _, s := range sides {
			loc := acct.Type + "/" + s.label

			// Invariant 4: Ways carry the configured labels.
			if s.way == nil {
				errs = append(errs, ValidationError{Invariant: 4, Location: loc, Description: "missing way"})
				continue
			}
			if s.way.Name != s.label || s.way.Side != s.side {
				errs = append(errs, ValidationError{
					Invariant:   4,
					Location:    loc,
					Description: fmt.Sprintf("way %q (%s) where %q (%s) expected", s.way.Name, s.way.Side, s.label, s.side),
				})
			}

			errs = append(errs, checkRecords(s.way, loc, doc.Years)...)
			errs = append(errs, checkTotal(s.way, loc, labels.Total)...)
			errs = append(errs, checkCodes(s.way, loc)...)
		}
	}

	return errs
}

// checkRecords enforces invariants 2 and 3 on every record of a way.
func checkRecords(way *model.Way, loc string, years []int) []ValidationError {
	var errs []ValidationError
	_ = model.Walk(way.Records, func(r *model.Record, _ int) error {
		at := loc + "/" + label(r)

		// Invariant 2: One value per year, in year order.
		if !slices.Equal(r.Values.Years(), years) {
			errs = append(errs, ValidationError{
				Invariant:   2,
				Location:    at,
				Description: fmt.Sprintf("values keyed %v, years are %v", r.Values.Years(), years),
			})
		}

		// Invariant 3: Records carry at least one non-zero value.
		if r.Values.AllFalsy() {
			errs = append(errs, ValidationError{
				Invariant:   3,
				Location:    at,
				Description: "record has no non-zero value",
			})
		}
		return nil
	})
	return errs
}

// Invariant 5: A total row, when present, is the last top-level record.
func checkTotal(way *model.Way, loc, total string) []ValidationError {
	var errs []ValidationError
	for i, r := range way.Records {
		if r.Name == total && i != len(way.Records)-1 {
			errs = append(errs, ValidationError{
				Invariant:   5,
				Location:    loc,
				Description: fmt.Sprintf("total row at position %d of %d", i+1, len(way.Records)),
			})
		}
	}
	return errs
}

// Invariant 6: Top-level codes are unique, so prefix attachment is unambiguous.
func checkCodes(way *model.Way, loc string) []ValidationError {
	var errs []ValidationError
	counts := make(map[string]int)
	var order []string
	for _, r := range way.Records {
		if r.Code == "" {
			continue
		}
		if counts[r.Code] == 0 {
			order = append(order, r.Code)
		}
		counts[r.Code]++
	}
	for _, code := range order {
		if counts[code] > 1 {
			errs = append(errs, ValidationError{
				Invariant:   6,
				Location:    loc,
				Description: fmt.Sprintf("code %q appears %d times at top level", code, counts[code]),
			})
		}
	}
	return errs
}

func label(r *model.Record) string {
	if r.Code != "" {
		return r.Code
	}
	return r.Name
}
