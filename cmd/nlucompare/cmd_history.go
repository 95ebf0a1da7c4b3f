package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"nlucompare/internal/render"
	"nlucompare/internal/store"
)

var historyFlags struct {
	db    string
	limit int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded comparison runs",
	RunE:  runHistory,
}

func init() {
	f := historyCmd.Flags()
	f.StringVar(&historyFlags.db, "history-db", "", "SQLite history database (required)")
	f.IntVar(&historyFlags.limit, "limit", 20, "Maximum runs to show (0 = all)")
	_ = historyCmd.MarkFlagRequired("history-db")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(historyFlags.db)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(historyFlags.limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
		return nil
	}

	t := render.NewTable(render.ASCII)
	t.Header("ID", "Created", "Baseline", "Sets", "Labels", "Changed", "Sort", "Outputs")
	for _, r := range runs {
		outputs := r.JSONOutfile
		if r.HTMLOutfile != "" {
			outputs += " " + r.HTMLOutfile
		}
		t.Row(r.ID, r.CreatedAt, r.Baseline,
			strings.Join(r.ResultSets, ", "), len(r.Labels), len(r.ChangedLabels),
			r.SortMetric, strings.TrimSpace(outputs))
	}
	t.Columns(render.ColumnConfig{Number: 8, MaxWidth: 60})

	fmt.Fprintln(cmd.OutOrStdout(), t.String())
	return nil
}
