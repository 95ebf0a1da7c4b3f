package compare

import (
	"sort"
	"strings"

	"nlucompare/internal/report"
)

// Options controls presentation policy.
type Options struct {
	// MetricsToDisplay restricts columns to these metrics (plus their diff
	// columns). Empty means all metrics.
	MetricsToDisplay []string
	// SortMetric orders rows descending by its baseline value. Empty means
	// "support".
	SortMetric string
	// OnlyDiffs keeps only labels with at least one non-zero, non-missing
	// diff. Aggregate rows are always kept.
	OnlyDiffs bool
	// Baseline is the result set diffs were computed against.
	Baseline string
}

// DefaultSortMetric is used when Options.SortMetric is empty.
const DefaultSortMetric = "support"

// View is an ordered, filtered projection of a combined table. It shares the
// table's cells; building a view never mutates the canonical table.
type View struct {
	LabelField  string
	Labels      []string
	Columns     []Column
	DiffColumns []Column
	DiffMetrics []string
	OnlyDiffs   bool

	table *Table
}

// Cell reads a cell through the view.
func (v *View) Cell(label string, col Column) report.Value {
	return v.table.Cell(label, col)
}

// Present applies column projection, diff filtering and sort policy to the
// annotated table and returns the ordered view together with the JSON export
// payload. Aggregate rows stay first in their fixed relative order; all other
// rows are sorted descending by the baseline value of the sort metric, with
// missing values last and ties kept in canonical order.
func Present(t *Table, opts Options) (*View, Export, error) {
	if opts.Baseline != "" && !t.hasSet(opts.Baseline) {
		return nil, Export{}, configErrorf("baseline %q does not match any result set (have: %s)",
			opts.Baseline, strings.Join(t.Sets, ", "))
	}
	baseline := opts.Baseline
	if baseline == "" && len(t.Sets) > 0 {
		baseline = t.Sets[0]
	}

	sortMetric := opts.SortMetric
	if sortMetric == "" {
		sortMetric = DefaultSortMetric
	}
	if !t.hasMetric(sortMetric) {
		return nil, Export{}, configErrorf("sort metric %q is not a column of the combined table (have: %s)",
			sortMetric, strings.Join(t.Metrics, ", "))
	}

	display := opts.MetricsToDisplay
	if len(display) == 0 {
		display = t.Metrics
	} else {
		for _, m := range display {
			if !t.hasMetric(m) {
				return nil, Export{}, configErrorf("metric to display %q is not present in any result set (have: %s)",
					m, strings.Join(t.Metrics, ", "))
			}
		}
	}
	displayed := map[string]bool{}
	for _, m := range display {
		displayed[m] = true
	}

	view := &View{
		LabelField:  t.LabelField,
		DiffMetrics: t.DiffMetrics,
		OnlyDiffs:   opts.OnlyDiffs,
		table:       t,
	}

	for _, col := range t.Columns {
		if !displayed[col.Metric] {
			continue
		}
		view.Columns = append(view.Columns, col)
	}
	for _, col := range t.DiffColumns {
		if displayed[col.Metric] {
			view.DiffColumns = append(view.DiffColumns, col)
		}
	}

	changed := map[string]bool{}
	for _, label := range ChangedLabels(t) {
		changed[label] = true
	}

	var rest []string
	for _, label := range t.Labels {
		if isAggregate(label) {
			view.Labels = append(view.Labels, label)
			continue
		}
		if opts.OnlyDiffs && !changed[label] {
			continue
		}
		rest = append(rest, label)
	}

	sortCol := Column{Metric: sortMetric, Set: baseline}
	sort.SliceStable(rest, func(i, j int) bool {
		a, aok := t.Cell(rest[i], sortCol).Number()
		b, bok := t.Cell(rest[j], sortCol).Number()
		switch {
		case aok && bok:
			return a > b
		case aok:
			return true // numbers before missing/text
		default:
			return false
		}
	})
	view.Labels = append(view.Labels, rest...)

	return view, Export{table: t}, nil
}
