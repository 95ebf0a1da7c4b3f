// Package pipeline runs a full comparison: load the report files, combine
// them, compute diffs against the baseline, and write the JSON and HTML
// outputs. All inputs and options are validated before anything is written.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"nlucompare/internal/compare"
	"nlucompare/internal/config"
	"nlucompare/internal/logging"
	"nlucompare/internal/render"
	"nlucompare/internal/report"
	"nlucompare/internal/store"
)

// NamedFile pairs a report file path with the result set name it is
// registered under. The first file is the baseline.
type NamedFile struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// Request describes one comparison run.
type Request struct {
	Files   []NamedFile
	Options config.Options
}

// Summary reports what a completed run produced.
type Summary struct {
	Baseline      string   `json:"baseline"`
	ResultSets    []string `json:"result_sets"`
	Labels        []string `json:"labels"`
	ChangedLabels []string `json:"changed_labels"`
	JSONOutfile   string   `json:"json_outfile,omitempty"`
	HTMLOutfile   string   `json:"html_outfile,omitempty"`
	RunID         int64    `json:"run_id,omitempty"`
}

// Result carries the run summary plus the presented view for callers that
// render to a terminal.
type Result struct {
	Summary Summary
	View    *compare.View
}

// Run executes the comparison described by req. Load and configuration
// problems surface before any output file is touched.
func Run(ctx context.Context, req Request) (*Result, error) {
	logger := logging.New("pipeline")

	if len(req.Files) < 2 {
		return nil, report.NewLoadError("need at least two report files, got %d", len(req.Files))
	}

	sets, err := loadFiles(ctx, req.Files)
	if err != nil {
		return nil, err
	}

	baseline := sets[0].Name
	combined, err := compare.Combine(sets, req.Options.LabelName)
	if err != nil {
		return nil, err
	}
	annotated, err := compare.Annotate(combined, baseline, req.Options.MetricsToDiff)
	if err != nil {
		return nil, err
	}
	view, export, err := compare.Present(annotated, compare.Options{
		MetricsToDisplay: req.Options.MetricsToDisplay,
		SortMetric:       req.Options.MetricToSortBy,
		OnlyDiffs:        req.Options.DisplayOnlyDiff,
		Baseline:         baseline,
	})
	if err != nil {
		return nil, err
	}

	changed := compare.ChangedLabels(annotated)
	logger.Info("reports combined",
		"sets", len(sets), "labels", len(annotated.Labels), "changed", len(changed))

	summary := Summary{
		Baseline:      baseline,
		ResultSets:    annotated.Sets,
		Labels:        view.Labels,
		ChangedLabels: changed,
	}

	if req.Options.JSONOutfile != "" {
		if err := writeJSON(req.Options.JSONOutfile, export); err != nil {
			return nil, err
		}
		summary.JSONOutfile = req.Options.JSONOutfile
		logger.Info("wrote combined results", "path", req.Options.JSONOutfile)
	}
	if req.Options.HTMLOutfile != "" {
		doc := render.HTMLDocument(view, req.Options.TableTitle, req.Options.StyleTable)
		if err := writeHTML(req.Options.HTMLOutfile, doc, req.Options.AppendTable); err != nil {
			return nil, err
		}
		summary.HTMLOutfile = req.Options.HTMLOutfile
		logger.Info("wrote html table", "path", req.Options.HTMLOutfile, "append", req.Options.AppendTable)
	}

	if req.Options.HistoryDB != "" {
		id, err := saveRun(req.Options, summary)
		if err != nil {
			return nil, err
		}
		summary.RunID = id
		logger.Info("recorded run", "db", req.Options.HistoryDB, "run_id", id)
	}

	return &Result{Summary: summary, View: view}, nil
}

// loadFiles reads and parses all report files concurrently, preserving the
// request order. Duplicate names are rejected here so the error points at the
// file list rather than surfacing later from the combine step.
func loadFiles(ctx context.Context, files []NamedFile) ([]*report.ResultSet, error) {
	seen := map[string]bool{}
	for _, f := range files {
		if f.Name == "" {
			return nil, report.NewLoadError("report file %s has no result set name", f.Path)
		}
		if seen[f.Name] {
			return nil, report.NewLoadError("duplicate result set name %q", f.Name)
		}
		seen[f.Name] = true
	}

	sets := make([]*report.ResultSet, len(files))
	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(f.Path)
			if err != nil {
				return report.NewLoadError("read report %s: %v", f.Path, err)
			}
			rs, err := report.Parse(data, f.Name)
			if err != nil {
				return fmt.Errorf("%s: %w", f.Path, err)
			}
			sets[i] = rs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sets, nil
}

func writeJSON(path string, export compare.Export) error {
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("encode combined results: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write combined results: %w", err)
	}
	return nil
}

func writeHTML(path, doc string, appendTable bool) error {
	if !appendTable {
		if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
			return fmt.Errorf("write html table: %w", err)
		}
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open html table: %w", err)
	}
	if _, err := f.WriteString(doc); err != nil {
		_ = f.Close()
		return fmt.Errorf("append html table: %w", err)
	}
	return f.Close()
}

func saveRun(opts config.Options, summary Summary) (int64, error) {
	st, err := store.Open(opts.HistoryDB)
	if err != nil {
		return 0, err
	}
	defer st.Close()

	return st.SaveRun(store.Run{
		Baseline:      summary.Baseline,
		ResultSets:    summary.ResultSets,
		Labels:        summary.Labels,
		ChangedLabels: summary.ChangedLabels,
		SortMetric:    opts.MetricToSortBy,
		OnlyDiff:      opts.DisplayOnlyDiff,
		JSONOutfile:   summary.JSONOutfile,
		HTMLOutfile:   summary.HTMLOutfile,
	})
}
