// Package config holds the comparison options shared by the CLI flags, the
// YAML options file, and the MCP tools.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Options controls one comparison run. Zero values mean "use the default";
// Default returns the fully populated baseline that flags and YAML overlay.
type Options struct {
	JSONOutfile      string   `yaml:"json_outfile" json:"json_outfile,omitempty"`
	HTMLOutfile      string   `yaml:"html_outfile" json:"html_outfile,omitempty"`
	TableTitle       string   `yaml:"table_title" json:"table_title,omitempty"`
	LabelName        string   `yaml:"label_name" json:"label_name,omitempty"`
	MetricsToDiff    []string `yaml:"metrics_to_diff" json:"metrics_to_diff,omitempty"`
	MetricsToDisplay []string `yaml:"metrics_to_display" json:"metrics_to_display,omitempty"`
	MetricToSortBy   string   `yaml:"metric_to_sort_by" json:"metric_to_sort_by,omitempty"`
	DisplayOnlyDiff  bool     `yaml:"display_only_diff" json:"display_only_diff,omitempty"`
	AppendTable      bool     `yaml:"append_table" json:"append_table,omitempty"`
	StyleTable       bool     `yaml:"style_table" json:"style_table,omitempty"`
	HistoryDB        string   `yaml:"history_db" json:"history_db,omitempty"`
}

// Default returns the options used when neither a flag nor the YAML file
// sets a value.
func Default() Options {
	return Options{
		JSONOutfile:    "combined_results.json",
		HTMLOutfile:    "formatted_compared_results.html",
		TableTitle:     "Compared NLU Evaluation Results",
		LabelName:      "label",
		MetricToSortBy: "support",
	}
}

// Load reads a YAML options file and overlays it on Default.
func Load(path string) (Options, error) {
	opts := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("read options file: %w", err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("parse options yaml: %w", err)
	}
	return opts, nil
}
