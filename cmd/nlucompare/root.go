// nlucompare compares NLU evaluation reports: it combines per-label metric
// tables from multiple runs into one table, computes diffs against a baseline,
// and writes JSON and HTML outputs.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nlucompare/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	logLevel  string
	logFormat string
}

var rootCmd = &cobra.Command{
	Use:   "nlucompare",
	Short: "Compare NLU evaluation reports against a baseline",
	Long: "nlucompare combines per-label evaluation reports from multiple NLU runs\ninto a single table, diffs each run against the baseline, and writes the\ncombined JSON and a rendered HTML table.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		level, err := logging.ParseLevel(rootFlags.logLevel)
		if err != nil {
			return err
		}
		logging.Init(level, rootFlags.logFormat)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.StringVar(&rootFlags.logFormat, "log-format", "text", "Log format (text, json)")

	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
