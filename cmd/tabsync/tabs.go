package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/rpggio/tabsync/internal/domain/partition"
)

var errNotConfirmed = errors.New("destructive action not confirmed: pass -yes")

type tabsCmd struct{}

func (*tabsCmd) Name() string             { return "tabs" }
func (*tabsCmd) Synopsis() string         { return "list the tabs of the family; * marks the active one" }
func (*tabsCmd) Usage() string            { return "tabsync tabs\n" }
func (*tabsCmd) SetFlags(f *flag.FlagSet) {}

func (*tabsCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return run(ctx, args, func(a *app) error {
		tabs := a.ws.Partitions()
		if len(tabs) == 0 {
			fmt.Fprintln(stdout, "No tabs yet. Create one with: tabsync tab-create <name>")
			return nil
		}
		active := a.ws.Active()
		tw := newTable(stdout)
		for _, p := range tabs {
			mark := " "
			if p.ID == active {
				mark = "*"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", mark, p.ID, p.Name, p.CreatedAt.Format("2006-01-02"))
		}
		return tw.Flush()
	})
}

type tabCreateCmd struct{}

func (*tabCreateCmd) Name() string             { return "tab-create" }
func (*tabCreateCmd) Synopsis() string         { return "create a tab and make it active" }
func (*tabCreateCmd) Usage() string            { return "tabsync tab-create <name>\n" }
func (*tabCreateCmd) SetFlags(f *flag.FlagSet) {}

func (*tabCreateCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return run(ctx, args, func(a *app) error {
		p, err := a.ws.Create(ctx, f.Arg(0))
		if p == nil {
			return err
		}
		fmt.Fprintf(stdout, "Created tab %q (%s); it is now active.\n", p.Name, p.ID)
		return err
	})
}

type tabRenameCmd struct{}

func (*tabRenameCmd) Name() string             { return "tab-rename" }
func (*tabRenameCmd) Synopsis() string         { return "rename a tab" }
func (*tabRenameCmd) Usage() string            { return "tabsync tab-rename <id> <name>\n" }
func (*tabRenameCmd) SetFlags(f *flag.FlagSet) {}

func (*tabRenameCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return run(ctx, args, func(a *app) error {
		if err := a.ws.Rename(ctx, f.Arg(0), f.Arg(1)); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "Renamed.")
		return nil
	})
}

type tabDeleteCmd struct {
	policy string
	yes    bool
}

func (*tabDeleteCmd) Name() string     { return "tab-delete" }
func (*tabDeleteCmd) Synopsis() string { return "delete a tab" }
func (*tabDeleteCmd) Usage() string {
	return `tabsync tab-delete [-policy delete|detach|restrict] -yes <id>

  Deletes a tab. With -policy delete its records go too; detach keeps them as
  orphans; restrict refuses while the tab has records.
`
}

func (c *tabDeleteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.policy, "policy", string(partition.PolicyDetach), "what happens to the tab's records")
	f.BoolVar(&c.yes, "yes", false, "confirm the deletion")
}

func (c *tabDeleteCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	if !c.yes {
		return fail(errNotConfirmed)
	}
	return run(ctx, args, func(a *app) error {
		if err := a.ws.Delete(ctx, f.Arg(0), partition.DeletePolicy(c.policy)); err != nil {
			return err
		}
		if active := a.ws.Active(); active != "" {
			fmt.Fprintf(stdout, "Deleted. Active tab is now %s.\n", active)
		} else {
			fmt.Fprintln(stdout, "Deleted. No tab is selected.")
		}
		return nil
	})
}

type useCmd struct{}

func (*useCmd) Name() string             { return "use" }
func (*useCmd) Synopsis() string         { return "make a tab the active one" }
func (*useCmd) Usage() string            { return "tabsync use <id>\n" }
func (*useCmd) SetFlags(f *flag.FlagSet) {}

func (*useCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return run(ctx, args, func(a *app) error {
		if err := a.ws.Switch(ctx, f.Arg(0)); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Active tab is now %s.\n", f.Arg(0))
		return nil
	})
}

type orphansCmd struct{}

func (*orphansCmd) Name() string             { return "orphans" }
func (*orphansCmd) Synopsis() string         { return "count records that belong to no tab" }
func (*orphansCmd) Usage() string            { return "tabsync orphans\n" }
func (*orphansCmd) SetFlags(f *flag.FlagSet) {}

func (*orphansCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return run(ctx, args, func(a *app) error {
		n, err := a.ws.CountOrphans(ctx)
		if err != nil {
			return err
		}
		if n == 0 {
			fmt.Fprintln(stdout, "No orphaned records.")
			return nil
		}
		fmt.Fprintf(stdout, "%d orphaned records. Move them with: tabsync adopt -yes <tab-id>\n", n)
		return nil
	})
}

type adoptCmd struct {
	yes bool
}

func (*adoptCmd) Name() string     { return "adopt" }
func (*adoptCmd) Synopsis() string { return "move every orphaned record into a tab" }
func (*adoptCmd) Usage() string    { return "tabsync adopt -yes <tab-id>\n" }

func (c *adoptCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "yes", false, "confirm the move")
}

func (c *adoptCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	if !c.yes {
		return fail(errNotConfirmed)
	}
	return run(ctx, args, func(a *app) error {
		res, err := a.ws.Adopt(ctx, f.Arg(0))
		if res == nil {
			return err
		}
		fmt.Fprintf(stdout, "Moved %d records into %s.\n", res.AdoptedCount, f.Arg(0))
		return err
	})
}
