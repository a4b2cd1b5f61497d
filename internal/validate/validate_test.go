package validate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openstat-dev/snatree/internal/model"
	"github.com/openstat-dev/snatree/internal/parser"
	"github.com/openstat-dev/snatree/internal/sheet"
)

var labels = LabelsFrom(parser.DefaultOptions())

func values(amounts ...int64) model.Values {
	vs := make(model.Values, len(amounts))
	for i, a := range amounts {
		vs[i] = model.Value{Year: 2015 + i, Amount: decimal.NewNullDecimal(decimal.NewFromInt(a))}
	}
	return vs
}

func validDocument() *model.Document {
	doc := model.NewDocument()
	doc.Years = []int{2015, 2016}
	acct := model.NewAccount("A", model.ResourcesLabel, model.UsesLabel)
	p := model.NewRecord("x", "A.1", values(1, 2))
	p.AddChild(model.NewRecord("y", "A.11", values(1, 0)))
	acct.Resources.Append(p)
	acct.Resources.Append(model.NewRecord("Всего", "", values(1, 2)))
	acct.Uses.Append(model.NewRecord("Всего", "", values(1, 2)))
	doc.Accounts = append(doc.Accounts, acct)
	return doc
}

func invariants(errs []ValidationError) []int {
	var out []int
	for _, e := range errs {
		out = append(out, e.Invariant)
	}
	return out
}

func TestValidDocument(t *testing.T) {
	assert.Empty(t, Document(validDocument(), labels))
}

func TestParsedDocumentIsValid(t *testing.T) {
	p := parser.New(parser.DefaultOptions())
	for _, row := range []sheet.Row{
		sheet.R("", "", "коды", 2015, 2016),
		sheet.R("", "", "A"),
		sheet.R("", "", "Ресурсы"),
		sheet.R("x", "A.1", 1, 2),
		sheet.R("zero", "A.2", 0, 0),
		sheet.R("в том числе y", "Q", 1, 0),
		sheet.R("Всего", "", 1, 2),
		sheet.R("", "", "Использование"),
		sheet.R("Всего", "", 1, 2),
	} {
		require.NoError(t, p.Process(row))
	}
	doc, err := p.Finish()
	require.NoError(t, err)
	assert.Empty(t, Document(doc, labels))
}

func TestInvariant1_AccountsWithoutYears(t *testing.T) {
	doc := validDocument()
	doc.Years = nil
	errs := Document(doc, labels)
	assert.Contains(t, invariants(errs), 1)
}

func TestInvariant1_DuplicateYears(t *testing.T) {
	doc := model.NewDocument()
	doc.Years = []int{2015, 2015}
	errs := Document(doc, labels)
	require.Len(t, errs, 1)
	assert.Equal(t, 1, errs[0].Invariant)
	assert.Contains(t, errs[0].Error(), "duplicate year 2015")
}

func TestInvariant2_ValuesMismatch(t *testing.T) {
	doc := validDocument()
	doc.Accounts[0].Uses.Records[0].Values = values(5)
	errs := Document(doc, labels)
	require.Len(t, errs, 1)
	assert.Equal(t, 2, errs[0].Invariant)
	assert.Equal(t, "A/Использование/Всего", errs[0].Location)
}

func TestInvariant3_AllFalsy(t *testing.T) {
	doc := validDocument()
	doc.Accounts[0].Resources.Records[0].Children[0].Values = values(0, 0)
	errs := Document(doc, labels)
	require.Len(t, errs, 1)
	assert.Equal(t, 3, errs[0].Invariant)
	assert.Equal(t, "A/Ресурсы/A.11", errs[0].Location)
}

func TestInvariant4_WayLabels(t *testing.T) {
	doc := validDocument()
	doc.Accounts[0].Uses.Name = "Uses"
	errs := Document(doc, labels)
	assert.Equal(t, []int{4}, invariants(errs))

	doc.Accounts[0].Uses = nil
	errs = Document(doc, labels)
	assert.Equal(t, []int{4}, invariants(errs))
}

func TestInvariant5_TotalNotLast(t *testing.T) {
	doc := validDocument()
	doc.Accounts[0].Uses.Append(model.NewRecord("after", "Z", values(1, 1)))
	errs := Document(doc, labels)
	require.Len(t, errs, 1)
	assert.Equal(t, 5, errs[0].Invariant)
}

func TestInvariant6_DuplicateCodes(t *testing.T) {
	doc := validDocument()
	res := doc.Accounts[0].Resources
	res.Records = append([]*model.Record{model.NewRecord("dup", "A.1", values(1, 1))}, res.Records...)
	errs := Document(doc, labels)
	require.Len(t, errs, 1)
	assert.Equal(t, 6, errs[0].Invariant)
	assert.Contains(t, errs[0].Description, `"A.1" appears 2 times`)
}
