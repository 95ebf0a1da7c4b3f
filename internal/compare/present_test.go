package compare

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"nlucompare/internal/report"
)

func sortScenario(t *testing.T) *Table {
	t.Helper()
	first := mustParse(t, `{
		"micro avg": {"support": 20, "f1-score": 0.9},
		"language": {"support": 5, "f1-score": 0.8},
		"company": {"support": 3, "f1-score": 0.7},
		"product": {"support": 12, "f1-score": 0.95}
	}`, "first")
	second := mustParse(t, `{
		"micro avg": {"support": 20, "f1-score": 0.91},
		"language": {"support": 5, "f1-score": 0.8},
		"company": {"support": 3, "f1-score": 0.7},
		"product": {"support": 14, "f1-score": 0.95}
	}`, "second")
	tbl, err := Combine([]*report.ResultSet{first, second}, "label")
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	tbl, err = Annotate(tbl, "first", nil)
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	return tbl
}

func TestPresent_SortsDescendingByBaseline(t *testing.T) {
	view, _, err := Present(sortScenario(t), Options{SortMetric: "support", Baseline: "first"})
	if err != nil {
		t.Fatalf("Present: %v", err)
	}

	want := []string{"micro avg", "product", "language", "company"}
	if diff := cmp.Diff(want, view.Labels); diff != "" {
		t.Errorf("row order mismatch (-want +got):\n%s", diff)
	}
}

func TestPresent_AggregatesPinnedUnderOnlyDiffs(t *testing.T) {
	view, _, err := Present(sortScenario(t), Options{OnlyDiffs: true, Baseline: "first"})
	if err != nil {
		t.Fatalf("Present: %v", err)
	}

	// micro avg changed too (f1 0.9 -> 0.91) but is pinned regardless; of the
	// rest only product has a non-zero diff.
	want := []string{"micro avg", "product"}
	if diff := cmp.Diff(want, view.Labels); diff != "" {
		t.Errorf("filtered rows mismatch (-want +got):\n%s", diff)
	}
}

func TestPresent_OnlyDiffsExcludesMissingDiffRows(t *testing.T) {
	first := mustParse(t, `{"product": {"support": 10}, "company": {"support": 3}}`, "first")
	second := mustParse(t, `{"product": {"support": 10}}`, "second")
	tbl, err := Combine([]*report.ResultSet{first, second}, "label")
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	tbl, err = Annotate(tbl, "first", nil)
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}

	view, _, err := Present(tbl, Options{OnlyDiffs: true, Baseline: "first"})
	if err != nil {
		t.Fatalf("Present: %v", err)
	}

	// company's only diff is Missing: a missing diff is not a change.
	if len(view.Labels) != 0 {
		t.Errorf("labels = %v, want none retained", view.Labels)
	}
}

func TestPresent_TiesKeepCanonicalOrder(t *testing.T) {
	first := mustParse(t, `{"alpha": {"support": 5}, "beta": {"support": 5}, "gamma": {"support": 5}}`, "first")
	tbl, err := Combine([]*report.ResultSet{first}, "label")
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}

	view, _, err := Present(tbl, Options{Baseline: "first"})
	if err != nil {
		t.Fatalf("Present: %v", err)
	}
	if diff := cmp.Diff([]string{"alpha", "beta", "gamma"}, view.Labels); diff != "" {
		t.Errorf("tie order mismatch (-want +got):\n%s", diff)
	}
}

func TestPresent_MissingSortValuesLast(t *testing.T) {
	first := mustParse(t, `{"unseen": {"precision": 0.5}, "seen": {"support": 1, "precision": 0.9}}`, "first")
	second := mustParse(t, `{"unseen": {"support": 99, "precision": 0.5}, "seen": {"support": 1, "precision": 0.9}}`, "second")
	tbl, err := Combine([]*report.ResultSet{first, second}, "label")
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}

	// unseen comes first in canonical order but has no baseline support
	// value; rows with a number sort ahead of it.
	view, _, err := Present(tbl, Options{Baseline: "first"})
	if err != nil {
		t.Fatalf("Present: %v", err)
	}
	if diff := cmp.Diff([]string{"seen", "unseen"}, view.Labels); diff != "" {
		t.Errorf("row order mismatch (-want +got):\n%s", diff)
	}
}

func TestPresent_ColumnProjection(t *testing.T) {
	view, _, err := Present(sortScenario(t), Options{
		MetricsToDisplay: []string{"f1-score"},
		SortMetric:       "support",
		Baseline:         "first",
	})
	if err != nil {
		t.Fatalf("Present: %v", err)
	}

	want := []Column{
		{Metric: "f1-score", Set: "first"},
		{Metric: "f1-score", Set: "second"},
		DiffColumn("f1-score", "second", "first"),
	}
	if diff := cmp.Diff(want, view.Columns); diff != "" {
		t.Errorf("projected columns mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Column{DiffColumn("f1-score", "second", "first")}, view.DiffColumns); diff != "" {
		t.Errorf("projected diff columns mismatch (-want +got):\n%s", diff)
	}
}

func TestPresent_ConfigErrors(t *testing.T) {
	tbl := sortScenario(t)

	cases := []struct {
		name string
		opts Options
	}{
		{"unknown sort metric", Options{SortMetric: "recall", Baseline: "first"}},
		{"unknown baseline", Options{Baseline: "third"}},
		{"unknown display metric", Options{MetricsToDisplay: []string{"recall"}, Baseline: "first"}},
	}
	for _, c := range cases {
		_, _, err := Present(tbl, c.opts)
		if err == nil {
			t.Errorf("%s: Present should fail", c.name)
			continue
		}
		var ce *ConfigError
		if !errors.As(err, &ce) {
			t.Errorf("%s: error %v is not a ConfigError", c.name, err)
		}
	}
}

// Re-loading the export as a fresh input set must reproduce the identical
// combined table.
func TestExport_RoundTripIsIdempotent(t *testing.T) {
	first := mustParse(t, `{
		"micro avg": {"precision": 0.9, "support": 15, "confused_with": null},
		"greet": {"precision": 1.0, "support": 10, "confused_with": "goodbye"},
		"company": {"precision": 0.5, "support": 5}
	}`, "stable")
	second := mustParse(t, `{
		"micro avg": {"precision": 0.92, "support": 16},
		"greet": {"precision": 0.95, "support": 11}
	}`, "candidate")

	combined, err := Combine([]*report.ResultSet{first, second}, "label")
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	annotated, err := Annotate(combined, "stable", nil)
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	_, export, err := Present(annotated, Options{SortMetric: "support", Baseline: "stable"})
	if err != nil {
		t.Fatalf("Present: %v", err)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		t.Fatalf("marshal export: %v", err)
	}
	reloaded, err := ParseExport(data)
	if err != nil {
		t.Fatalf("reload export: %v", err)
	}

	recombined, err := Combine(reloaded, "label")
	if err != nil {
		t.Fatalf("re-Combine: %v", err)
	}

	if diff := cmp.Diff(combined.Labels, recombined.Labels); diff != "" {
		t.Errorf("labels changed across round trip (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(combined.Metrics, recombined.Metrics); diff != "" {
		t.Errorf("metrics changed across round trip (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(combined.Sets, recombined.Sets); diff != "" {
		t.Errorf("sets changed across round trip (-first +second):\n%s", diff)
	}
	for _, col := range combined.Columns {
		for _, label := range combined.Labels {
			want := combined.Cell(label, col)
			got := recombined.Cell(label, col)
			if want != got {
				t.Errorf("cell %s/%v = %v after round trip, want %v", label, col, got, want)
			}
		}
	}
}

// The export omits diff columns: they are derived data, recomputed on load.
func TestExport_ExcludesDiffColumns(t *testing.T) {
	tbl, err := Annotate(supportScenario(t), "first", nil)
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	_, export, err := Present(tbl, Options{Baseline: "first"})
	if err != nil {
		t.Fatalf("Present: %v", err)
	}

	data, err := json.Marshal(export)
	if err != nil {
		t.Fatalf("marshal export: %v", err)
	}

	var decoded map[string]map[string]map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal export: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("export has %d result sets, want 2", len(decoded))
	}
	for set := range decoded {
		if set != "first" && set != "second" {
			t.Errorf("unexpected export key %q", set)
		}
	}
}
