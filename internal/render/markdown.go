package render

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	md "github.com/nao1215/markdown"

	"github.com/openstat-dev/snatree/internal/model"
)

// Markdown writes one section per account and one table per way.
type Markdown struct{}

func (m *Markdown) Name() string        { return "markdown" }
func (m *Markdown) Extension() string   { return ".md" }
func (m *Markdown) ContentType() string { return "text/markdown; charset=utf-8" }

func (m *Markdown) Write(w io.Writer, doc *model.Document) error {
	if _, err := io.WriteString(w, DocumentMarkdown(doc)); err != nil {
		return fmt.Errorf("writing markdown: %w", err)
	}
	return nil
}

// DocumentMarkdown renders doc as Markdown text.
func DocumentMarkdown(doc *model.Document) string {
	var buf bytes.Buffer
	out := md.NewMarkdown(&buf)

	out.H1("National accounts")
	years := make([]string, len(doc.Years))
	for i, y := range doc.Years {
		years[i] = strconv.Itoa(y)
	}
	out.PlainText(fmt.Sprintf("Accounts: %d. Years: %s.", len(doc.Accounts), strings.Join(years, ", ")))

	for _, acct := range doc.Accounts {
		out.H2(acct.Type)
		for _, way := range []*model.Way{acct.Resources, acct.Uses} {
			out.H3(way.Name)
			if len(way.Records) == 0 {
				out.PlainText("No records.")
				continue
			}
			out.Table(wayTable(way, doc.Years, years))
		}
	}
	return out.String()
}

func wayTable(way *model.Way, years []int, yearHeaders []string) md.TableSet {
	align := []md.TableAlignment{md.AlignLeft, md.AlignLeft}
	for range years {
		align = append(align, md.AlignRight)
	}
	table := md.TableSet{
		Alignment: align,
		Header:    append([]string{md.Bold("Code"), md.Bold("Name")}, yearHeaders...),
	}
	_ = model.Walk(way.Records, func(r *model.Record, depth int) error {
		name := r.Name
		if depth > 0 {
			name = strings.Repeat("· ", depth) + name
		}
		row := []string{r.Code, name}
		for _, y := range years {
			v, _ := r.Values.Get(y)
			if v.Valid {
				row = append(row, v.Decimal.String())
			} else {
				row = append(row, "")
			}
		}
		table.Rows = append(table.Rows, row)
		return nil
	})
	return table
}

// Terminal renders Markdown for display in a terminal. Style is a glamour
// standard style name, or "auto" to follow the terminal background.
func Terminal(markdown, style string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" || style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("creating renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}
