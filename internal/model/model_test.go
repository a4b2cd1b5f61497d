package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func amount(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

func TestValuesAllFalsy(t *testing.T) {
	tests := []struct {
		name   string
		values Values
		want   bool
	}{
		{"empty mapping", Values{}, true},
		{"zeros", Values{{2015, amount(0)}, {2016, amount(0)}}, true},
		{"empty cells", Values{{2015, decimal.NullDecimal{}}}, true},
		{"one number", Values{{2015, amount(0)}, {2016, amount(3)}}, false},
		{"negative", Values{{2015, amount(-1)}}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.values.AllFalsy(), tt.name)
	}
}

func TestValuesGet(t *testing.T) {
	vs := Values{{2015, amount(10)}, {2016, amount(20)}}

	got, ok := vs.Get(2016)
	require.True(t, ok)
	assert.Equal(t, "20", got.Decimal.String())

	_, ok = vs.Get(2020)
	assert.False(t, ok)
	assert.Equal(t, []int{2015, 2016}, vs.Years())
}

func TestValuesMarshalJSON_KeepsYearOrder(t *testing.T) {
	vs := Values{{2016, amount(20)}, {2015, decimal.NullDecimal{}}, {2017, decimal.NewNullDecimal(decimal.RequireFromString("1.5"))}}

	data, err := json.Marshal(vs)
	require.NoError(t, err)
	assert.Equal(t, `{"2016":20,"2015":null,"2017":1.5}`, string(data))
}

func TestValuesMarshalYAML(t *testing.T) {
	vs := Values{{2015, amount(10)}, {2016, decimal.NullDecimal{}}}

	data, err := yaml.Marshal(vs)
	require.NoError(t, err)
	assert.Equal(t, "2015: 10\n2016: null\n", string(data))
}

func TestAccountJSONShape(t *testing.T) {
	acct := NewAccount("Account A", ResourcesLabel, UsesLabel)
	parent := NewRecord("Item X", "A.1", Values{{2015, amount(10)}})
	parent.AddChild(NewRecord("Item X detail", "A.11", Values{{2015, amount(4)}}))
	acct.Resources.Append(parent)

	doc := NewDocument()
	doc.Years = []int{2015}
	doc.Accounts = append(doc.Accounts, acct)

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `[{
		"type": "Account A",
		"uses": [],
		"resources": [{
			"name": "Item X", "code": "A.1", "values": {"2015": 10},
			"children": [{"name": "Item X detail", "code": "A.11", "values": {"2015": 4}, "children": []}]
		}]
	}]`, string(data))
}

func TestEmptyDocumentJSON(t *testing.T) {
	data, err := json.Marshal(NewDocument())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestWalk(t *testing.T) {
	a := NewRecord("a", "A", nil)
	b := NewRecord("b", "A1", nil)
	c := NewRecord("c", "B", nil)
	a.AddChild(b)

	var visited []string
	var depths []int
	err := Walk([]*Record{a, c}, func(r *Record, depth int) error {
		visited = append(visited, r.Name)
		depths = append(depths, depth)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, visited)
	assert.Equal(t, []int{0, 1, 0}, depths)

	visited = nil
	err = Walk([]*Record{a, c}, func(r *Record, _ int) error {
		visited = append(visited, r.Name)
		return ErrSkipChildren
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, visited)
}

func TestDocumentCounts(t *testing.T) {
	doc := NewDocument()
	assert.Nil(t, doc.Current())

	acct := NewAccount("S.1", ResourcesLabel, UsesLabel)
	doc.Accounts = append(doc.Accounts, acct)
	parent := NewRecord("x", "D.3", nil)
	parent.AddChild(NewRecord("y", "D.39", nil))
	acct.Resources.Append(parent)
	acct.Uses.Append(NewRecord("z", "D.4", nil))

	assert.Same(t, acct, doc.Current())
	assert.Equal(t, 3, doc.RecordCount())
	assert.Same(t, parent, acct.Resources.Last())
	assert.Equal(t, SideUses, acct.Uses.Side)
	assert.Equal(t, "resources", SideResources.String())
}
