// Package mcpserve exposes report comparison over the Model Context Protocol
// so agent frontends can run comparisons and browse run history without
// shelling out to the CLI.
package mcpserve

import (
	"context"
	"fmt"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"nlucompare/internal/config"
	"nlucompare/internal/logging"
	"nlucompare/internal/pipeline"
	"nlucompare/internal/store"
)

// Server wraps the MCP SDK server with the comparison tools registered.
type Server struct {
	MCPServer *sdkmcp.Server

	defaults config.Options
	log      *slog.Logger
}

// NewServer creates an MCP server with the comparison tools registered.
// defaults supplies the options used when a tool call leaves them unset,
// including the history database path for list_runs.
func NewServer(version string, defaults config.Options) *Server {
	s := &Server{
		defaults: defaults,
		log:      logging.New("mcp"),
	}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "nlucompare", Version: version},
		nil,
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "compare_reports",
		Description: "Compare two or more NLU evaluation report files. The first file is the baseline. Writes the combined JSON and HTML outputs and returns a summary of what changed.",
	}, s.handleCompareReports)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_runs",
		Description: "List recorded comparison runs from the history database, newest first.",
	}, s.handleListRuns)
}

type compareReportsInput struct {
	Files   []pipeline.NamedFile `json:"files" jsonschema:"report files to compare; the first is the baseline"`
	Options *config.Options      `json:"options,omitempty" jsonschema:"comparison options; unset fields use the server defaults"`
}

type compareReportsOutput struct {
	pipeline.Summary
}

func (s *Server) handleCompareReports(ctx context.Context, _ *sdkmcp.CallToolRequest, input compareReportsInput) (*sdkmcp.CallToolResult, compareReportsOutput, error) {
	opts := s.defaults
	if input.Options != nil {
		opts = mergeOptions(s.defaults, *input.Options)
	}

	res, err := pipeline.Run(ctx, pipeline.Request{Files: input.Files, Options: opts})
	if err != nil {
		return nil, compareReportsOutput{}, err
	}

	s.log.Info("comparison served",
		"baseline", res.Summary.Baseline, "changed", len(res.Summary.ChangedLabels))
	return nil, compareReportsOutput{Summary: res.Summary}, nil
}

type listRunsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum runs to return; 0 means all"`
}

type listRunsOutput struct {
	Runs []store.Run `json:"runs"`
}

func (s *Server) handleListRuns(_ context.Context, _ *sdkmcp.CallToolRequest, input listRunsInput) (*sdkmcp.CallToolResult, listRunsOutput, error) {
	if s.defaults.HistoryDB == "" {
		return nil, listRunsOutput{}, fmt.Errorf("no history database configured")
	}

	st, err := store.Open(s.defaults.HistoryDB)
	if err != nil {
		return nil, listRunsOutput{}, err
	}
	defer st.Close()

	runs, err := st.ListRuns(input.Limit)
	if err != nil {
		return nil, listRunsOutput{}, err
	}
	return nil, listRunsOutput{Runs: runs}, nil
}

// mergeOptions overlays the non-zero fields of override on base. Boolean
// options come through as-is: a tool call owns all three display flags once
// it supplies options at all.
func mergeOptions(base, override config.Options) config.Options {
	merged := override
	if merged.JSONOutfile == "" {
		merged.JSONOutfile = base.JSONOutfile
	}
	if merged.HTMLOutfile == "" {
		merged.HTMLOutfile = base.HTMLOutfile
	}
	if merged.TableTitle == "" {
		merged.TableTitle = base.TableTitle
	}
	if merged.LabelName == "" {
		merged.LabelName = base.LabelName
	}
	if merged.MetricToSortBy == "" {
		merged.MetricToSortBy = base.MetricToSortBy
	}
	if merged.HistoryDB == "" {
		merged.HistoryDB = base.HistoryDB
	}
	return merged
}
