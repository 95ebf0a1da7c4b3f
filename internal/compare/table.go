// Package compare aligns multiple named evaluation reports into one
// two-level table keyed by label, annotates it with per-metric diffs against
// a baseline result set, and applies display policy (projection, diff
// filtering, sorting). Every stage is a pure function: tables are built once
// and later stages return new tables or views, never mutating their input.
package compare

import (
	"nlucompare/internal/report"
)

// Aggregate pseudo-labels, pinned first in this fixed order whenever present.
var aggregateLabels = []string{"micro avg", "macro avg", "weighted avg"}

// Column addresses one cell column by the composite (metric, result-set) key.
// Diff columns use the synthetic set name produced by DiffColumn.
type Column struct {
	Metric string
	Set    string
}

// DiffColumn names the diff column of metric for other against baseline,
// e.g. {f1-score, (candidate - stable)}.
func DiffColumn(metric, other, baseline string) Column {
	return Column{Metric: metric, Set: "(" + other + " - " + baseline + ")"}
}

// Table is the combined, union-aligned table. Labels, Metrics, Sets and
// Columns carry the canonical orders used by all later stages; every
// (label, column) cell is populated with a value or the explicit Missing
// marker, never absent.
type Table struct {
	LabelField string
	Sets       []string // result-set names, baseline first
	Labels     []string // aggregates pinned, then first-seen order
	Metrics    []string // first-seen order

	// Columns groups per metric: its result-set columns, then its diff
	// columns (present only after Annotate).
	Columns []Column

	// DiffMetrics and DiffColumns record what Annotate actually diffed.
	DiffMetrics []string
	DiffColumns []Column

	cells map[Column]map[string]report.Value
}

// Cell returns the value at (label, col); unknown coordinates read as Missing.
func (t *Table) Cell(label string, col Column) report.Value {
	rows, ok := t.cells[col]
	if !ok {
		return report.Missing()
	}
	v, ok := rows[label]
	if !ok {
		return report.Missing()
	}
	return v
}

func (t *Table) hasSet(name string) bool {
	for _, s := range t.Sets {
		if s == name {
			return true
		}
	}
	return false
}

func (t *Table) hasMetric(name string) bool {
	for _, m := range t.Metrics {
		if m == name {
			return true
		}
	}
	return false
}

func isAggregate(label string) bool {
	for _, a := range aggregateLabels {
		if a == label {
			return true
		}
	}
	return false
}

// Combine merges the named result sets into one table. The label universe is
// the union of all input labels (aggregate rows pinned first in fixed order,
// the rest in first-seen order across the input sequence) and the metric
// universe follows the same union/first-seen rule. Cells absent from a set's
// report are filled with the explicit Missing marker, distinguishable from a
// true zero in all downstream logic.
//
// Result-set names must be unique within one combination request.
func Combine(sets []*report.ResultSet, labelField string) (*Table, error) {
	seen := map[string]bool{}
	for _, rs := range sets {
		if seen[rs.Name] {
			return nil, report.NewLoadError("result set names must be unique: %q appears more than once", rs.Name)
		}
		seen[rs.Name] = true
	}

	t := &Table{
		LabelField: labelField,
		cells:      map[Column]map[string]report.Value{},
	}

	for _, agg := range aggregateLabels {
		for _, rs := range sets {
			if rs.Table.HasLabel(agg) {
				t.Labels = append(t.Labels, agg)
				break
			}
		}
	}
	haveLabel := map[string]bool{}
	for _, l := range t.Labels {
		haveLabel[l] = true
	}

	for _, rs := range sets {
		t.Sets = append(t.Sets, rs.Name)
		for _, label := range rs.Table.Labels {
			if !haveLabel[label] && !isAggregate(label) {
				t.Labels = append(t.Labels, label)
				haveLabel[label] = true
			}
		}
		for _, metric := range rs.Table.Metrics {
			if !t.hasMetric(metric) {
				t.Metrics = append(t.Metrics, metric)
			}
		}
	}

	for _, metric := range t.Metrics {
		for i, rs := range sets {
			col := Column{Metric: metric, Set: t.Sets[i]}
			t.Columns = append(t.Columns, col)
			rows := make(map[string]report.Value, len(t.Labels))
			for _, label := range t.Labels {
				rows[label] = rs.Table.Cell(label, metric)
			}
			t.cells[col] = rows
		}
	}

	return t, nil
}

// clone copies the table shallowly enough for non-destructive annotation:
// slices and the column map are fresh, cell row maps are shared (cells are
// never overwritten, only new columns added).
func (t *Table) clone() *Table {
	out := &Table{
		LabelField:  t.LabelField,
		Sets:        append([]string(nil), t.Sets...),
		Labels:      append([]string(nil), t.Labels...),
		Metrics:     append([]string(nil), t.Metrics...),
		Columns:     append([]Column(nil), t.Columns...),
		DiffMetrics: append([]string(nil), t.DiffMetrics...),
		DiffColumns: append([]Column(nil), t.DiffColumns...),
		cells:       make(map[Column]map[string]report.Value, len(t.cells)),
	}
	for col, rows := range t.cells {
		out.cells[col] = rows
	}
	return out
}
