package main

import (
	"context"
	"errors"
	"flag"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/tabsync/internal/mcp"
)

var version = "dev"

type mcpCmd struct{}

func (*mcpCmd) Name() string             { return "mcp" }
func (*mcpCmd) Synopsis() string         { return "serve the workspace as MCP tools over stdio" }
func (*mcpCmd) Usage() string            { return "tabsync mcp\n" }
func (*mcpCmd) SetFlags(f *flag.FlagSet) {}

func (*mcpCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return run(ctx, args, func(a *app) error {
		server := mcp.NewServer(mcp.Config{
			Workspace: a.ws,
			Version:   version,
			Logger:    a.logger,
		})
		a.logger.Info("starting stdio transport", "family", a.ws.Scope().Family)
		// Run blocks until stdin closes or ctx is canceled.
		err := server.Run(ctx, &sdkmcp.StdioTransport{})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
}
