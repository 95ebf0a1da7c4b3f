package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"nlucompare/internal/config"
	"nlucompare/internal/pipeline"
	"nlucompare/internal/render"
	"nlucompare/internal/report"
)

var compareFlags struct {
	jsonOutfile      string
	htmlOutfile      string
	tableTitle       string
	labelName        string
	metricsToDiff    []string
	metricsToDisplay []string
	metricToSortBy   string
	displayOnlyDiff  bool
	appendTable      bool
	styleTable       bool
	configPath       string
	historyDB        string
	markdown         bool
}

var compareCmd = &cobra.Command{
	Use:   "compare <path=name> <path=name> [path=name ...]",
	Short: "Combine and diff report files; the first is the baseline",
	Long: `Compare reads two or more evaluation report files, each given as a
path=name token where name is the display name of that result set. The first
token is the baseline every other set is diffed against.

Names containing whitespace must be double-quoted inside the token:

  nlucompare compare stable.json=stable results.json="release candidate"

On success the combined reports are written as JSON and the rendered table as
HTML; on any load or configuration error nothing is written.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runCompare,
}

func init() {
	f := compareCmd.Flags()
	f.StringVar(&compareFlags.jsonOutfile, "json-outfile", "combined_results.json", "Output path for the combined reports JSON")
	f.StringVar(&compareFlags.htmlOutfile, "html-outfile", "formatted_compared_results.html", "Output path for the rendered HTML table")
	f.StringVar(&compareFlags.tableTitle, "table-title", "Compared NLU Evaluation Results", "Heading above the HTML table")
	f.StringVar(&compareFlags.labelName, "label-name", "label", "Name of the label column (e.g. intent, entity)")
	f.StringSliceVar(&compareFlags.metricsToDiff, "metrics-to-diff", nil, "Metrics to diff against the baseline (default: all numeric metrics)")
	f.StringSliceVar(&compareFlags.metricsToDisplay, "metrics-to-display", nil, "Metrics to include in the table (default: all)")
	f.StringVar(&compareFlags.metricToSortBy, "metric-to-sort-by", "support", "Baseline metric to sort rows by, descending")
	f.BoolVar(&compareFlags.displayOnlyDiff, "display-only-diff", false, "Show only averages and rows with at least one changed metric")
	f.BoolVar(&compareFlags.appendTable, "append-table", false, "Append to the HTML outfile instead of overwriting")
	f.BoolVar(&compareFlags.styleTable, "style-table", false, "Include CSS styling and colored diff cells in the HTML")
	f.StringVar(&compareFlags.configPath, "config", "", "YAML options file; explicit flags take precedence")
	f.StringVar(&compareFlags.historyDB, "history-db", "", "SQLite database to record this run in (empty = no recording)")
	f.BoolVar(&compareFlags.markdown, "markdown", false, "Print the table to stdout as Markdown instead of ASCII")
}

func runCompare(cmd *cobra.Command, args []string) error {
	files, err := parseFileTokens(args)
	if err != nil {
		return err
	}

	opts, err := resolveOptions(cmd)
	if err != nil {
		return err
	}

	res, err := pipeline.Run(cmd.Context(), pipeline.Request{Files: files, Options: opts})
	if err != nil {
		return err
	}

	mode := render.ASCII
	if compareFlags.markdown {
		mode = render.Markdown
	}
	fmt.Fprintln(cmd.OutOrStdout(), render.ViewTable(res.View, mode))
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s and %s\n",
		res.Summary.JSONOutfile, res.Summary.HTMLOutfile)
	return nil
}

// resolveOptions layers defaults, the YAML options file, and explicit flags,
// in that order of precedence (later wins).
func resolveOptions(cmd *cobra.Command) (config.Options, error) {
	opts := config.Default()
	if compareFlags.configPath != "" {
		loaded, err := config.Load(compareFlags.configPath)
		if err != nil {
			return opts, err
		}
		opts = loaded
	}

	f := cmd.Flags()
	if f.Changed("json-outfile") {
		opts.JSONOutfile = compareFlags.jsonOutfile
	}
	if f.Changed("html-outfile") {
		opts.HTMLOutfile = compareFlags.htmlOutfile
	}
	if f.Changed("table-title") {
		opts.TableTitle = compareFlags.tableTitle
	}
	if f.Changed("label-name") {
		opts.LabelName = compareFlags.labelName
	}
	if f.Changed("metrics-to-diff") {
		opts.MetricsToDiff = compareFlags.metricsToDiff
	}
	if f.Changed("metrics-to-display") {
		opts.MetricsToDisplay = compareFlags.metricsToDisplay
	}
	if f.Changed("metric-to-sort-by") {
		opts.MetricToSortBy = compareFlags.metricToSortBy
	}
	if f.Changed("display-only-diff") {
		opts.DisplayOnlyDiff = compareFlags.displayOnlyDiff
	}
	if f.Changed("append-table") {
		opts.AppendTable = compareFlags.appendTable
	}
	if f.Changed("style-table") {
		opts.StyleTable = compareFlags.styleTable
	}
	if f.Changed("history-db") {
		opts.HistoryDB = compareFlags.historyDB
	}
	return opts, nil
}

// parseFileTokens turns path=name arguments into named files. The name part
// may be double-quoted to carry whitespace. Malformed tokens and duplicate
// names fail here, before anything is read.
func parseFileTokens(args []string) ([]pipeline.NamedFile, error) {
	files := make([]pipeline.NamedFile, 0, len(args))
	seen := map[string]bool{}
	for _, arg := range args {
		path, name, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, report.NewLoadError("malformed token %q: expected path=name", arg)
		}
		name = strings.TrimSpace(name)
		if strings.HasPrefix(name, `"`) && strings.HasSuffix(name, `"`) && len(name) >= 2 {
			name = name[1 : len(name)-1]
		}
		if path == "" || name == "" {
			return nil, report.NewLoadError("malformed token %q: empty path or name", arg)
		}
		if seen[name] {
			return nil, report.NewLoadError("duplicate result set name %q", name)
		}
		seen[name] = true
		files = append(files, pipeline.NamedFile{Path: path, Name: name})
	}
	return files, nil
}
