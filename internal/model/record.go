package model

import (
	"encoding/json"
	"errors"
)

// Record is one line item of a Way. Only Children changes after creation.
type Record struct {
	Name     string    `json:"name" yaml:"name"`
	Code     string    `json:"code" yaml:"code"`
	Values   Values    `json:"values" yaml:"values"`
	Children []*Record `json:"children" yaml:"children"`
}

// NewRecord creates a Record with no children.
func NewRecord(name, code string, values Values) *Record {
	return &Record{Name: name, Code: code, Values: values, Children: []*Record{}}
}

// AddChild appends c to the record's children.
func (r *Record) AddChild(c *Record) {
	r.Children = append(r.Children, c)
}

// ErrSkipChildren may be returned by a WalkFunc to skip a record's subtree.
var ErrSkipChildren = errors.New("skip children")

// WalkFunc is called for every record visited by Walk. Depth is 0 for top-level records.
type WalkFunc func(r *Record, depth int) error

// Walk visits records depth-first in document order.
func Walk(records []*Record, fn WalkFunc) error {
	return walk(records, 0, fn)
}

func walk(records []*Record, depth int, fn WalkFunc) error {
	for _, r := range records {
		err := fn(r, depth)
		if errors.Is(err, ErrSkipChildren) {
			continue
		}
		if err != nil {
			return err
		}
		if err := walk(r.Children, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

func marshalRecords(records []*Record) ([]byte, error) {
	if records == nil {
		records = []*Record{}
	}
	return json.Marshal(records)
}
