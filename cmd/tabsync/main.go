// Command tabsync manages tabs, orphans and new-entry drafts against a tabsync
// server, and serves the same workspace to agents over MCP.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	g := &globals{}
	flag.StringVar(&g.family, "family", "", "resource family (transaction, portfolio); overrides TABSYNC_FAMILY")
	flag.StringVar(&g.username, "user", "", "username; overrides TABSYNC_USERNAME")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	for _, c := range commands {
		commander.Register(c, "")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background(), g)))
}

var commands = []subcommands.Command{
	&tabsCmd{},
	&tabCreateCmd{},
	&tabRenameCmd{},
	&tabDeleteCmd{},
	&useCmd{},
	&orphansCmd{},
	&adoptCmd{},
	&recordsCmd{},
	&summaryCmd{},
	&draftSetCmd{},
	&draftShowCmd{},
	&draftDiscardCmd{},
	&addCmd{},
	&mcpCmd{},
}
