package export

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/nao1215/markdown"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/blackbird/internal/model"
)

// uncategorized is the heading for sites without a category.
const uncategorized = "other"

// MarkdownWriter writes a GitHub flavored Markdown report.
type MarkdownWriter struct{}

// Write implements Writer.
func (m *MarkdownWriter) Write(w io.Writer, rs *model.ResultSet) error {
	md := markdown.NewMarkdown(w)

	m.writeHeader(md, rs)
	m.writeAccounts(md, rs)
	m.writeFooter(md)

	return md.Build()
}

func (m *MarkdownWriter) writeHeader(md *markdown.Markdown, rs *model.ResultSet) {
	counts := rs.Counts()

	md.H1("Blackbird Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Username", "`" + rs.Username + "`"},
			{"Date", rs.PrettyDate()},
			{"Sites checked", strconv.Itoa(counts.Total)},
			{"Accounts found", strconv.Itoa(counts.Found)},
			{"Errors", strconv.Itoa(counts.Error)},
			{"Elapsed", fmt.Sprintf("%.2f seconds", rs.Elapsed.Seconds())},
		},
	})
	md.PlainText("")
	md.Warningf("Blackbird can make mistakes. Consider checking the information.")
	md.PlainText("")
}

func (m *MarkdownWriter) writeAccounts(md *markdown.Markdown, rs *model.ResultSet) {
	found := rs.Found()
	md.H2(fmt.Sprintf("Results (%d)", len(found)))
	md.PlainText("")

	if len(found) == 0 {
		md.PlainText("No accounts were found for the given username.")
		md.PlainText("")
		return
	}

	title := cases.Title(language.English)
	for _, group := range groupByCategory(found) {
		md.PlainText("### " + title.String(group.category))
		md.PlainText("")

		rows := make([][]string, len(group.outcomes))
		for i, o := range group.outcomes {
			rows[i] = []string{o.Site, fmt.Sprintf("[%s](%s)", o.Link(), o.Link())}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Site", "URL"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

func (m *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [Blackbird](https://github.com/nao1215/blackbird). Site data from [WhatsMyName](https://github.com/WebBreacher/WhatsMyName) (CC BY-SA 4.0).*")
}

type categoryGroup struct {
	category string
	outcomes []model.Outcome
}

// groupByCategory groups outcomes by category, categories sorted by name
// and outcomes kept in result set order.
func groupByCategory(outcomes []model.Outcome) []categoryGroup {
	index := make(map[string]int)
	var groups []categoryGroup
	for _, o := range outcomes {
		cat := o.Category
		if cat == "" {
			cat = uncategorized
		}
		i, ok := index[cat]
		if !ok {
			i = len(groups)
			index[cat] = i
			groups = append(groups, categoryGroup{category: cat})
		}
		groups[i].outcomes = append(groups[i].outcomes, o)
	}
	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].category < groups[b].category
	})
	return groups
}
