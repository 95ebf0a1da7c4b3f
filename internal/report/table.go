package report

// Table is one report in normalized form: labels in first-seen order, metrics
// in first-seen order, and a fully populated cell for every (label, metric)
// pair. Cells for metrics a label never declared hold the explicit Missing
// marker rather than being absent.
type Table struct {
	Labels  []string
	Metrics []string

	cells map[string]map[string]Value
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{cells: map[string]map[string]Value{}}
}

// AddRow appends a label row. Metrics unseen so far extend the table's metric
// set; duplicate labels are rejected by the loader before reaching here, so a
// repeated label simply overwrites its cells.
func (t *Table) AddRow(label string, metrics map[string]Value, order []string) {
	if _, ok := t.cells[label]; !ok {
		t.Labels = append(t.Labels, label)
		t.cells[label] = map[string]Value{}
	}
	for _, m := range order {
		if !t.hasMetric(m) {
			t.Metrics = append(t.Metrics, m)
		}
		t.cells[label][m] = metrics[m]
	}
}

func (t *Table) hasMetric(name string) bool {
	for _, m := range t.Metrics {
		if m == name {
			return true
		}
	}
	return false
}

// HasLabel reports whether the table has a row for label.
func (t *Table) HasLabel(label string) bool {
	_, ok := t.cells[label]
	return ok
}

// Cell returns the value at (label, metric). Unknown coordinates read as
// Missing, which keeps the population invariant observable without a separate
// fill pass.
func (t *Table) Cell(label, metric string) Value {
	row, ok := t.cells[label]
	if !ok {
		return Missing()
	}
	v, ok := row[metric]
	if !ok {
		return Missing()
	}
	return v
}

// ResultSet is a named, immutable report table. Metadata holds the top-level
// scalar entries (e.g. "accuracy") that do not fit the label→metric shape and
// are passed through outside the table.
type ResultSet struct {
	Name     string
	Table    *Table
	Metadata map[string]Value
}

// Report reconstructs the raw report shape: label → metric → value, with
// Missing cells omitted and metadata scalars restored at the top level.
func (rs *ResultSet) Report() map[string]any {
	out := make(map[string]any, len(rs.Table.Labels)+len(rs.Metadata))
	for _, label := range rs.Table.Labels {
		row := map[string]any{}
		for _, metric := range rs.Table.Metrics {
			v := rs.Table.Cell(label, metric)
			if v.IsMissing() {
				continue
			}
			row[metric] = v
		}
		out[label] = row
	}
	for key, v := range rs.Metadata {
		out[key] = v
	}
	return out
}
