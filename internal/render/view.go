package render

import (
	"fmt"
	"html"
	"strings"

	"nlucompare/internal/compare"
	"nlucompare/internal/report"
)

// Format renders one cell for display: support-style counts without decimals,
// other numbers with two, categorical text verbatim, missing as N/A. Diff
// values keep full precision underneath; this is display rounding only.
func Format(v report.Value, metric string) string {
	if n, ok := v.Number(); ok {
		if strings.Contains(metric, "support") {
			return fmt.Sprintf("%.0f", n)
		}
		return fmt.Sprintf("%.2f", n)
	}
	if s, ok := v.Text(); ok {
		return s
	}
	return "N/A"
}

// ViewTable renders the view as a terminal table. ASCII mode gets the
// two-level header (metric row merged over its sub-columns); Markdown
// collapses both levels into one row since Markdown tables have a single
// header line.
func ViewTable(v *compare.View, mode Mode) string {
	t := NewTable(mode)

	if mode == Markdown {
		cols := []string{v.LabelField}
		for _, c := range v.Columns {
			cols = append(cols, c.Metric+" "+c.Set)
		}
		t.Header(cols...)
	} else {
		metricRow := []string{""}
		setRow := []string{v.LabelField}
		for _, c := range v.Columns {
			metricRow = append(metricRow, c.Metric)
			setRow = append(setRow, c.Set)
		}
		t.HeaderMerged(metricRow...)
		t.Header(setRow...)
	}

	for _, label := range v.Labels {
		row := []any{label}
		for _, c := range v.Columns {
			row = append(row, Format(v.Cell(label, c), c.Metric))
		}
		t.Row(row...)
	}

	cfgs := []ColumnConfig{{Number: 1, Align: AlignLeft}}
	for i := range v.Columns {
		cfgs = append(cfgs, ColumnConfig{Number: i + 2, Align: AlignRight})
	}
	t.Columns(cfgs...)

	return t.String()
}

// tableCSS mirrors the styling of the original report tables: collapsed
// black borders, row hover, centered value cells, and bold green/red for
// positive/negative diff cells.
const tableCSS = `<style>
table.go-pretty-table { border-collapse: collapse; }
table.go-pretty-table th, table.go-pretty-table td {
  border-style: solid; border-width: 1px; border-color: black; padding: 5px;
}
table.go-pretty-table tr:hover { background-color: gainsboro; }
table.go-pretty-table th { text-align: center; }
table.go-pretty-table td { text-align: center; }
table.go-pretty-table span.diff-pos { color: green; font-weight: bold; }
table.go-pretty-table span.diff-neg { color: red; font-weight: bold; }
</style>
`

// HTMLDocument renders the view as an HTML fragment: a title heading, an
// explanatory line when the diff filter is active, and the table. With styled
// set, a CSS block is included and diff cells are wrapped in colored spans;
// plain output carries no styling markup at all.
func HTMLDocument(v *compare.View, title string, styled bool) string {
	var b strings.Builder

	b.WriteString("<h1>" + html.EscapeString(title) + "</h1>\n")
	if v.OnlyDiffs {
		b.WriteString(fmt.Sprintf(
			"<body>Only averages and the %s(s) that show differences in at least one of the following metrics: %s are displayed.</body>\n",
			html.EscapeString(v.LabelField), html.EscapeString(strings.Join(v.DiffMetrics, ", "))))
	}
	if styled {
		b.WriteString(tableCSS)
	}

	var t TableBuilder
	if styled {
		t = NewStyledHTMLTable()
	} else {
		t = NewTable(HTML)
	}

	diffCol := map[compare.Column]bool{}
	for _, c := range v.DiffColumns {
		diffCol[c] = true
	}

	metricRow := []string{""}
	setRow := []string{v.LabelField}
	for _, c := range v.Columns {
		metricRow = append(metricRow, headerCell(c.Metric, styled))
		setRow = append(setRow, headerCell(c.Set, styled))
	}
	t.HeaderMerged(metricRow...)
	t.Header(setRow...)

	for _, label := range v.Labels {
		row := []any{headerCell(label, styled)}
		for _, c := range v.Columns {
			row = append(row, htmlCell(v.Cell(label, c), c, diffCol[c], styled))
		}
		t.Row(row...)
	}

	b.WriteString(t.String())
	b.WriteString("\n")
	return b.String()
}

// headerCell escapes header text only when the builder has escaping off.
func headerCell(s string, styled bool) string {
	if styled {
		return html.EscapeString(s)
	}
	return s
}

// htmlCell formats a cell; in styled mode non-zero diff values are wrapped in
// a colored span.
func htmlCell(v report.Value, col compare.Column, isDiff, styled bool) string {
	formatted := Format(v, col.Metric)
	if !styled {
		return formatted
	}
	escaped := html.EscapeString(formatted)
	if !isDiff {
		return escaped
	}
	if n, ok := v.Number(); ok {
		if n > 0 {
			return `<span class="diff-pos">` + escaped + `</span>`
		}
		if n < 0 {
			return `<span class="diff-neg">` + escaped + `</span>`
		}
	}
	return escaped
}
