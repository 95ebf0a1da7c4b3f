package main

import (
	"context"

	"github.com/spf13/cobra"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"nlucompare/internal/config"
	"nlucompare/internal/logging"
	"nlucompare/internal/mcpserve"
)

var serveFlags struct {
	configPath string
	historyDB  string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Starts an MCP server over stdin/stdout exposing compare_reports and
list_runs tools, so agent frontends can drive comparisons directly.

The server monitors for parent process death and self-terminates when the
client that spawned it is gone.`,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveFlags.configPath, "config", "", "YAML options file supplying tool defaults")
	f.StringVar(&serveFlags.historyDB, "history-db", "", "SQLite database for run recording and list_runs")
}

func runServe(cmd *cobra.Command, _ []string) error {
	opts := config.Default()
	if serveFlags.configPath != "" {
		loaded, err := config.Load(serveFlags.configPath)
		if err != nil {
			return err
		}
		opts = loaded
	}
	if serveFlags.historyDB != "" {
		opts.HistoryDB = serveFlags.historyDB
	}

	srv := mcpserve.NewServer(version, opts)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	mcpserve.WatchParent(ctx, cancel)

	logging.New("mcp").Info("starting nlucompare MCP server over stdio (parent watchdog active)")
	return srv.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}
