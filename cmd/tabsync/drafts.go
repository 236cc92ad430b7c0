package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/rpggio/tabsync/internal/domain/draft"
	"github.com/rpggio/tabsync/internal/workspace"
)

func draftKey(a *app) (string, error) {
	active := a.ws.Active()
	if active == "" {
		return "", workspace.ErrNoActivePartition
	}
	return draft.NewEntryKey(a.ws.Scope().Family, active), nil
}

type draftSetCmd struct{}

func (*draftSetCmd) Name() string     { return "draft-set" }
func (*draftSetCmd) Synopsis() string { return "save fields into the new-entry draft of the active tab" }
func (*draftSetCmd) Usage() string {
	return `tabsync draft-set field=value...

  Fields: name, amount, currency, occurred_at, note. An empty value clears
  nothing; use draft-discard to start over.
`
}
func (*draftSetCmd) SetFlags(f *flag.FlagSet) {}

func (*draftSetCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	fields, err := parseAssignments(f.Args())
	if err != nil || len(fields) == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return run(ctx, args, func(a *app) error {
		form, existing, err := a.ws.OpenNewEntry(ctx)
		if err != nil {
			return err
		}
		autosaver := form.Autosaver()
		defer autosaver.Stop()

		current := merge(existing, fields)
		if err := form.Update(current); err != nil {
			return err
		}
		if err := autosaver.Flush(ctx); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "Draft saved:")
		printForm(stdout, draft.Sanitize(current))
		return nil
	})
}

type draftShowCmd struct{}

func (*draftShowCmd) Name() string             { return "draft-show" }
func (*draftShowCmd) Synopsis() string         { return "show the new-entry draft of the active tab" }
func (*draftShowCmd) Usage() string            { return "tabsync draft-show\n" }
func (*draftShowCmd) SetFlags(f *flag.FlagSet) {}

func (*draftShowCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return run(ctx, args, func(a *app) error {
		key, err := draftKey(a)
		if err != nil {
			return err
		}
		d, err := a.ws.Drafts().Load(ctx, key)
		if err != nil {
			return err
		}
		if d == nil {
			fmt.Fprintln(stdout, "No draft.")
			return nil
		}
		fmt.Fprintf(stdout, "Draft saved %s:\n", d.SavedAt.Local().Format("2006-01-02 15:04:05"))
		printForm(stdout, d.Payload)
		return nil
	})
}

type draftDiscardCmd struct{}

func (*draftDiscardCmd) Name() string             { return "draft-discard" }
func (*draftDiscardCmd) Synopsis() string         { return "discard the new-entry draft of the active tab" }
func (*draftDiscardCmd) Usage() string            { return "tabsync draft-discard\n" }
func (*draftDiscardCmd) SetFlags(f *flag.FlagSet) {}

func (*draftDiscardCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return run(ctx, args, func(a *app) error {
		key, err := draftKey(a)
		if err != nil {
			return err
		}
		if err := a.ws.Drafts().Discard(ctx, key); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "Draft discarded.")
		return nil
	})
}
