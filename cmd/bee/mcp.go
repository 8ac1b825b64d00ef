package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/beemnet-bee/BeeSmartToDo/internal/mcp"
	"github.com/beemnet-bee/BeeSmartToDo/parse"
)

// bee mcp
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the task list as MCP tools on stdio",
	Args:  cobra.NoArgs,
	RunE:  runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	parser, err := parse.New(parse.Options{
		Mode:   a.cfg.Parser.Mode,
		Model:  a.cfg.Parser.Model,
		Host:   a.cfg.Parser.Host,
		Logger: newLogger(cmd, "parse: "),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return mcp.Serve(ctx, mcp.NewServer(a.store, parser), cmd.InOrStdin(), cmd.OutOrStdout())
}
