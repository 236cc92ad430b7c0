package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/subcommands"

	"github.com/rpggio/tabsync/internal/api"
	"github.com/rpggio/tabsync/internal/config"
	"github.com/rpggio/tabsync/internal/domain/partition"
	"github.com/rpggio/tabsync/internal/logging"
	"github.com/rpggio/tabsync/internal/sqlite"
	"github.com/rpggio/tabsync/internal/workspace"
)

// globals are the flags shared by every subcommand.
type globals struct {
	family   string
	username string
}

// app is an opened workspace plus what it needs to be closed.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	ws      *workspace.Workspace
	records *api.Records
	closers []func() error
}

func globalsFrom(args []interface{}) *globals {
	for _, a := range args {
		if g, ok := a.(*globals); ok {
			return g
		}
	}
	return &globals{}
}

// openApp loads config, opens the local store and restores the workspace.
// Logs go to stderr so stdout stays usable for output and MCP.
func openApp(ctx context.Context, g *globals) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if g.family != "" {
		cfg.Client.Family = g.family
	}
	if g.username != "" {
		cfg.Client.Username = g.username
	}
	if cfg.Client.Username == "" {
		return nil, fmt.Errorf("username is required: set TABSYNC_USERNAME or -user")
	}

	a := &app{cfg: cfg}
	logger, closeLog, err := logging.New(cfg.Log.Level, cfg.Log.File, io.Writer(os.Stderr))
	if err != nil {
		return nil, err
	}
	a.logger = logger
	a.closers = append(a.closers, closeLog)

	db, err := sqlite.New(cfg.Client.StorePath)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, db.Close)
	if err := db.Migrate(sqlite.SchemaLocal); err != nil {
		a.Close()
		return nil, err
	}

	client, err := api.NewClient(api.Options{
		BaseURL: cfg.Client.BaseURL,
		Token:   cfg.Client.Token,
		Role:    cfg.Client.Role,
		Timeout: cfg.Client.Timeout,
		Logger:  logger,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	family := partition.Family(cfg.Client.Family)
	a.records = client.Records(family, cfg.Client.Username)
	a.ws, err = workspace.New(workspace.Options{
		Family:           family,
		Username:         cfg.Client.Username,
		Remote:           client.Tabs(),
		Records:          a.records,
		Store:            sqlite.NewKVStore(db),
		Logger:           logger,
		AutosaveInterval: cfg.Client.AutosaveInterval,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	if err := a.ws.Open(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}

// run opens the app, runs fn and reports any error as a notice.
func run(ctx context.Context, args []interface{}, fn func(a *app) error) subcommands.ExitStatus {
	a, err := openApp(ctx, globalsFrom(args))
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	if err := fn(a); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

func fail(err error) subcommands.ExitStatus {
	n := workspace.MapError(err)
	if n == nil {
		return subcommands.ExitSuccess
	}
	fmt.Fprintf(os.Stderr, "error: %s\n", n.Message)
	if detail := err.Error(); detail != n.Message {
		fmt.Fprintf(os.Stderr, "  %s\n", detail)
	}
	return subcommands.ExitFailure
}
