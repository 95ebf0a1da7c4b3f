package mcpserve

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"nlucompare/internal/config"
	"nlucompare/internal/pipeline"
)

func writeReport(t *testing.T, dir, name, doc string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testDefaults(t *testing.T) (config.Options, string) {
	t.Helper()
	dir := t.TempDir()
	opts := config.Default()
	opts.JSONOutfile = filepath.Join(dir, "combined_results.json")
	opts.HTMLOutfile = filepath.Join(dir, "formatted_compared_results.html")
	opts.HistoryDB = filepath.Join(dir, "history.db")
	return opts, dir
}

func testFiles(t *testing.T, dir string) []pipeline.NamedFile {
	t.Helper()
	stable := writeReport(t, dir, "stable.json", `{
		"greet": {"f1-score": 0.91, "support": 10},
		"goodbye": {"f1-score": 0.72, "support": 5}
	}`)
	candidate := writeReport(t, dir, "candidate.json", `{
		"greet": {"f1-score": 0.88, "support": 10},
		"goodbye": {"f1-score": 0.72, "support": 5}
	}`)
	return []pipeline.NamedFile{
		{Path: stable, Name: "stable"},
		{Path: candidate, Name: "candidate"},
	}
}

func TestCompareReportsTool(t *testing.T) {
	opts, dir := testDefaults(t)
	srv := NewServer("test", opts)

	_, out, err := srv.handleCompareReports(context.Background(), nil, compareReportsInput{
		Files: testFiles(t, dir),
	})
	if err != nil {
		t.Fatalf("compare_reports: %v", err)
	}

	if out.Baseline != "stable" {
		t.Errorf("baseline = %q", out.Baseline)
	}
	if diff := cmp.Diff([]string{"greet"}, out.ChangedLabels); diff != "" {
		t.Errorf("changed labels mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(out.JSONOutfile); err != nil {
		t.Errorf("json outfile not written: %v", err)
	}
	if out.RunID == 0 {
		t.Error("run not recorded in history db")
	}
}

func TestCompareReportsTool_OptionOverrides(t *testing.T) {
	opts, dir := testDefaults(t)
	srv := NewServer("test", opts)

	override := config.Options{
		JSONOutfile:     filepath.Join(dir, "other.json"),
		DisplayOnlyDiff: true,
	}
	_, out, err := srv.handleCompareReports(context.Background(), nil, compareReportsInput{
		Files:   testFiles(t, dir),
		Options: &override,
	})
	if err != nil {
		t.Fatalf("compare_reports: %v", err)
	}

	if out.JSONOutfile != override.JSONOutfile {
		t.Errorf("json outfile = %q, want override", out.JSONOutfile)
	}
	// display_only_diff keeps aggregates plus changed rows only.
	if diff := cmp.Diff([]string{"greet"}, out.Labels); diff != "" {
		t.Errorf("filtered labels mismatch (-want +got):\n%s", diff)
	}
	// Unset override fields fall back to the server defaults.
	if out.HTMLOutfile != opts.HTMLOutfile {
		t.Errorf("html outfile = %q, want default %q", out.HTMLOutfile, opts.HTMLOutfile)
	}
}

func TestCompareReportsTool_Errors(t *testing.T) {
	opts, dir := testDefaults(t)
	srv := NewServer("test", opts)

	_, _, err := srv.handleCompareReports(context.Background(), nil, compareReportsInput{
		Files: testFiles(t, dir)[:1],
	})
	if err == nil {
		t.Error("compare_reports should fail with a single file")
	}
}

func TestListRunsTool(t *testing.T) {
	opts, dir := testDefaults(t)
	srv := NewServer("test", opts)

	for range 3 {
		if _, _, err := srv.handleCompareReports(context.Background(), nil, compareReportsInput{
			Files: testFiles(t, dir),
		}); err != nil {
			t.Fatalf("compare_reports: %v", err)
		}
	}

	_, out, err := srv.handleListRuns(context.Background(), nil, listRunsInput{Limit: 2})
	if err != nil {
		t.Fatalf("list_runs: %v", err)
	}
	if len(out.Runs) != 2 {
		t.Errorf("got %d runs, want 2", len(out.Runs))
	}
	for _, r := range out.Runs {
		if r.Baseline != "stable" {
			t.Errorf("run %d baseline = %q", r.ID, r.Baseline)
		}
	}
}

func TestListRunsTool_NoHistoryDB(t *testing.T) {
	opts, _ := testDefaults(t)
	opts.HistoryDB = ""
	srv := NewServer("test", opts)

	if _, _, err := srv.handleListRuns(context.Background(), nil, listRunsInput{}); err == nil {
		t.Error("list_runs should fail without a history database")
	}
}

func TestWatchParent_StopsWhenContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	WatchParent(ctx, cancel)

	cancel()

	// Verify the goroutine doesn't panic or block after context cancel.
	time.Sleep(50 * time.Millisecond)
}
