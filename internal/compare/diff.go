package compare

import (
	"fmt"
	"strings"

	"nlucompare/internal/report"
)

// ConfigError reports a reference to an unknown metric or result-set name.
// Like LoadError it is detected eagerly and propagates uncaught.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return e.Msg }

func configErrorf(format string, args ...any) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// metricNumeric classifies a metric across all result-set columns of t.
// hasNumber: at least one Number cell anywhere; hasText: at least one Text
// cell anywhere.
func (t *Table) metricNumeric(metric string) (hasNumber, hasText bool) {
	for _, set := range t.Sets {
		col := Column{Metric: metric, Set: set}
		for _, label := range t.Labels {
			switch t.Cell(label, col).Kind() {
			case report.KindNumber:
				hasNumber = true
			case report.KindText:
				hasText = true
			}
		}
	}
	return hasNumber, hasText
}

// numericMetrics returns the metrics diffed by default: numeric wherever
// present (no categorical cells) with at least one numeric value, in
// canonical order.
func (t *Table) numericMetrics() []string {
	var out []string
	for _, m := range t.Metrics {
		hasNumber, hasText := t.metricNumeric(m)
		if hasNumber && !hasText {
			out = append(out, m)
		}
	}
	return out
}

// Annotate returns a new table extended with one diff column per diffed
// metric and non-baseline result set, holding other minus baseline per label.
// If either side of a pair is missing or non-numeric the diff cell is the
// Missing marker, never a synthetic zero. The subtraction result is kept at
// full precision; rounding is a presentation concern.
//
// metricsToDiff defaults to every metric numeric in all input tables. An
// explicitly named metric that is unknown, or present but never numeric in
// any result set, is a ConfigError.
func Annotate(t *Table, baseline string, metricsToDiff []string) (*Table, error) {
	if !t.hasSet(baseline) {
		return nil, configErrorf("baseline %q does not match any result set (have: %s)",
			baseline, strings.Join(t.Sets, ", "))
	}

	var diffed []string
	if len(metricsToDiff) == 0 {
		diffed = t.numericMetrics()
	} else {
		requested := map[string]bool{}
		for _, m := range metricsToDiff {
			if !t.hasMetric(m) {
				return nil, configErrorf("metric to diff %q is not present in any result set (have: %s)",
					m, strings.Join(t.Metrics, ", "))
			}
			if hasNumber, _ := t.metricNumeric(m); !hasNumber {
				return nil, configErrorf("metric to diff %q is never numeric in any result set", m)
			}
			requested[m] = true
		}
		for _, m := range t.Metrics {
			if requested[m] {
				diffed = append(diffed, m)
			}
		}
	}

	out := t.clone()
	out.DiffMetrics = diffed
	out.DiffColumns = nil

	isDiffed := map[string]bool{}
	for _, m := range diffed {
		isDiffed[m] = true
	}

	// Rebuild column order: per metric, the set columns then its diff columns.
	out.Columns = nil
	for _, metric := range out.Metrics {
		for _, set := range out.Sets {
			out.Columns = append(out.Columns, Column{Metric: metric, Set: set})
		}
		if !isDiffed[metric] {
			continue
		}
		baseCol := Column{Metric: metric, Set: baseline}
		for _, set := range out.Sets {
			if set == baseline {
				continue
			}
			diffCol := DiffColumn(metric, set, baseline)
			otherCol := Column{Metric: metric, Set: set}
			rows := make(map[string]report.Value, len(out.Labels))
			for _, label := range out.Labels {
				rows[label] = report.Sub(t.Cell(label, otherCol), t.Cell(label, baseCol))
			}
			out.cells[diffCol] = rows
			out.Columns = append(out.Columns, diffCol)
			out.DiffColumns = append(out.DiffColumns, diffCol)
		}
	}

	return out, nil
}

// ChangedLabels returns the non-aggregate labels with at least one non-zero,
// non-missing diff cell among the diffed metrics.
func ChangedLabels(t *Table) []string {
	var out []string
	for _, label := range t.Labels {
		if isAggregate(label) {
			continue
		}
		for _, col := range t.DiffColumns {
			if v, ok := t.Cell(label, col).Number(); ok && v != 0 {
				out = append(out, label)
				break
			}
		}
	}
	return out
}
