package model

import (
	"bytes"
	"strconv"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Value is the amount reported for one year. Amount is invalid for an empty cell.
type Value struct {
	Year   int
	Amount decimal.NullDecimal
}

// Falsy reports whether the value carries no information (empty or zero).
func (v Value) Falsy() bool {
	return !v.Amount.Valid || v.Amount.Decimal.IsZero()
}

// Values maps years to amounts in year-axis order.
type Values []Value

// Get returns the amount for year.
func (vs Values) Get(year int) (decimal.NullDecimal, bool) {
	for _, v := range vs {
		if v.Year == year {
			return v.Amount, true
		}
	}
	return decimal.NullDecimal{}, false
}

// Years returns the keys in order.
func (vs Values) Years() []int {
	years := make([]int, len(vs))
	for i, v := range vs {
		years[i] = v.Year
	}
	return years
}

// AllFalsy reports whether every value is empty or zero.
func (vs Values) AllFalsy() bool {
	for _, v := range vs {
		if !v.Falsy() {
			return false
		}
	}
	return true
}

// MarshalJSON encodes Values as an object keyed by year, preserving order.
// Empty cells encode as null.
func (vs Values) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, v := range vs {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strconv.Itoa(v.Year))
		buf.WriteString(`":`)
		if v.Amount.Valid {
			buf.WriteString(v.Amount.Decimal.String())
		} else {
			buf.WriteString("null")
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML encodes Values as an ordered mapping keyed by year.
func (vs Values) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, v := range vs {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(v.Year)}
		val := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
		if v.Amount.Valid {
			val = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: v.Amount.Decimal.String()}
			if v.Amount.Decimal.IsInteger() {
				val.Tag = "!!int"
			}
		}
		node.Content = append(node.Content, key, val)
	}
	return node, nil
}
