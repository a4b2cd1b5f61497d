package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openstat-dev/snatree/internal/parser"
	"github.com/openstat-dev/snatree/internal/sheet"
)

const reportCSV = `Счета,,,,
,,коды,2015,2016 1)
,,Счет производства,,
,,Ресурсы,,
Выпуск,P.1,100,110
в том числе рыночный,X,90,95
Всего,,100,110
,,Использование,,
Промежуточное потребление,P.2,40,44
Всего,,40,44
`

func TestRun(t *testing.T) {
	src := sheet.NewRows(
		sheet.R("", "", "коды", 2015),
		sheet.R("", "", "A"),
		sheet.R("", "", "Ресурсы"),
		sheet.R("x", "X", 1),
	)
	res, err := Run(context.Background(), src, parser.DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, res.Document.Accounts, 1)
	assert.Equal(t, 4, res.Stats.Rows)
	assert.Equal(t, 1, res.Stats.Records)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, sheet.NewRows(sheet.R("a")), parser.DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

type failingSource struct{}

func (failingSource) Next() (sheet.Row, error) { return nil, errors.New("disk gone") }
func (failingSource) Close() error             { return nil }

func TestRun_SourceError(t *testing.T) {
	_, err := Run(context.Background(), failingSource{}, parser.DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading rows")
}

func TestRun_ParseErrorDiscardsDocument(t *testing.T) {
	src := sheet.NewRows(sheet.R("", "", "коды", "year"))
	res, err := Run(context.Background(), src, parser.DefaultOptions())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, parser.ErrMalformedHeader)
}

func TestReader_CSV(t *testing.T) {
	res, err := Reader(context.Background(), strings.NewReader(reportCSV), &sheet.CSV{}, sheet.OpenOptions{}, parser.DefaultOptions())
	require.NoError(t, err)

	doc := res.Document
	assert.Equal(t, []int{2015, 2016}, doc.Years)
	require.Len(t, doc.Accounts, 1)
	acct := doc.Accounts[0]
	assert.Equal(t, "Счет производства", acct.Type)
	require.Len(t, acct.Resources.Records, 2)
	assert.Equal(t, "рыночный", acct.Resources.Records[0].Children[0].Name)
	assert.Len(t, acct.Uses.Records, 2)
	assert.Equal(t, 1, res.Stats.Skipped)
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.csv")
	require.NoError(t, os.WriteFile(path, []byte(reportCSV), 0o644))

	res, err := File(context.Background(), path, sheet.DefaultRegistry(), sheet.OpenOptions{}, parser.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 5, res.Document.RecordCount())

	_, err = File(context.Background(), filepath.Join(dir, "report.pdf"), sheet.DefaultRegistry(), sheet.OpenOptions{}, parser.DefaultOptions())
	assert.Error(t, err)

	_, err = File(context.Background(), filepath.Join(dir, "missing.csv"), sheet.DefaultRegistry(), sheet.OpenOptions{}, parser.DefaultOptions())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
