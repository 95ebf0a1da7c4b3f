// Package render turns presented comparison views into terminal tables
// (ASCII, Markdown) and HTML documents. All functions return strings; file
// writing stays with the caller.
package render

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Mode controls the output format.
type Mode int

const (
	ASCII    Mode = iota // Fixed-width terminal tables
	Markdown             // GitHub-flavoured Markdown tables
	HTML                 // <table> markup for the HTML outfile
)

// ColumnAlign specifies the horizontal alignment for a column.
type ColumnAlign int

const (
	AlignDefault ColumnAlign = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// ColumnConfig controls per-column formatting.
type ColumnConfig struct {
	Number   int         // 1-based column index
	Align    ColumnAlign // horizontal alignment
	MaxWidth int         // truncate or wrap content beyond this width (0 = unlimited)
}

// TableBuilder is the project-owned table abstraction.
// Build a table once; render it in the Mode set at creation.
type TableBuilder interface {
	// Header appends a header row.
	Header(cols ...string)
	// HeaderMerged appends a header row with identical adjacent cells merged,
	// used for the metric level of the two-level column header.
	HeaderMerged(cols ...string)
	// Row appends a data row.
	Row(vals ...any)
	// Columns applies per-column configuration (alignment, max width).
	Columns(cfgs ...ColumnConfig)
	// String renders the table in the configured Mode.
	String() string
}

// NewTable returns a TableBuilder that renders in the given Mode.
func NewTable(m Mode) TableBuilder {
	w := table.NewWriter()

	switch m {
	case ASCII:
		w.SetStyle(table.StyleLight)
		// StyleLight uppercases header text by default; keep it as given.
		w.Style().Format.Header = text.FormatDefault
	case Markdown:
		// go-pretty's RenderMarkdown uses its own formatting; no style needed.
	case HTML:
		// Default HTML options escape cell text; see NewStyledHTMLTable.
	}

	return &prettyAdapter{writer: w, mode: m}
}

// NewStyledHTMLTable returns an HTML builder with cell escaping disabled so
// callers can inject styling spans. Callers own escaping of cell content.
func NewStyledHTMLTable() TableBuilder {
	w := table.NewWriter()
	style := w.Style()
	style.HTML.EscapeText = false
	// ConvertColorsToSpans escapes text on its own path; it must be off too
	// for EscapeText=false to take effect.
	style.HTML.ConvertColorsToSpans = false
	return &prettyAdapter{writer: w, mode: HTML}
}

// prettyAdapter wraps go-pretty/v6/table.Writer behind the TableBuilder interface.
type prettyAdapter struct {
	writer table.Writer
	mode   Mode
}

func (a *prettyAdapter) Header(cols ...string) {
	a.writer.AppendHeader(toRow(cols))
}

func (a *prettyAdapter) HeaderMerged(cols ...string) {
	a.writer.AppendHeader(toRow(cols), table.RowConfig{AutoMerge: true})
}

func (a *prettyAdapter) Row(vals ...any) {
	row := make(table.Row, len(vals))
	copy(row, vals)
	a.writer.AppendRow(row)
}

func (a *prettyAdapter) Columns(cfgs ...ColumnConfig) {
	goCfgs := make([]table.ColumnConfig, len(cfgs))
	for i, c := range cfgs {
		goCfgs[i] = table.ColumnConfig{
			Number:   c.Number,
			Align:    toTextAlign(c.Align),
			WidthMax: c.MaxWidth,
		}
	}
	a.writer.SetColumnConfigs(goCfgs)
}

func (a *prettyAdapter) String() string {
	switch a.mode {
	case Markdown:
		return a.writer.RenderMarkdown()
	case HTML:
		return a.writer.RenderHTML()
	default:
		return a.writer.Render()
	}
}

func toRow(cols []string) table.Row {
	row := make(table.Row, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	return row
}

func toTextAlign(a ColumnAlign) text.Align {
	switch a {
	case AlignLeft:
		return text.AlignLeft
	case AlignRight:
		return text.AlignRight
	case AlignCenter:
		return text.AlignCenter
	default:
		return text.AlignDefault
	}
}
