package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/rpggio/tabsync/internal/domain/draft"
	"github.com/rpggio/tabsync/internal/domain/record"
)

type recordsCmd struct{}

func (*recordsCmd) Name() string             { return "records" }
func (*recordsCmd) Synopsis() string         { return "list the records of the active tab" }
func (*recordsCmd) Usage() string            { return "tabsync records\n" }
func (*recordsCmd) SetFlags(f *flag.FlagSet) {}

func (*recordsCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return run(ctx, args, func(a *app) error {
		view := a.ws.View()
		if view.Err != nil {
			return view.Err
		}
		recs, _ := view.List.([]record.Record)
		if len(recs) == 0 {
			fmt.Fprintln(stdout, "No records.")
			return nil
		}
		tw := newTable(stdout)
		for _, rec := range recs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				rec.OccurredAt.Format("2006-01-02"), rec.Name, formatMoney(rec.Amount, rec.Currency), rec.ID)
		}
		return tw.Flush()
	})
}

type summaryCmd struct{}

func (*summaryCmd) Name() string             { return "summary" }
func (*summaryCmd) Synopsis() string         { return "show totals and stats of the active tab" }
func (*summaryCmd) Usage() string            { return "tabsync summary\n" }
func (*summaryCmd) SetFlags(f *flag.FlagSet) {}

func (*summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return run(ctx, args, func(a *app) error {
		view := a.ws.View()
		if view.Err != nil {
			return view.Err
		}

		summary, _ := view.Summary.(*record.Summary)
		if summary == nil || summary.Count == 0 {
			fmt.Fprintln(stdout, "No records.")
			return nil
		}
		tw := newTable(stdout)
		fmt.Fprintln(tw, "currency\tcount\tin\tout\ttotal")
		for _, t := range summary.Totals {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", t.Currency, t.Count,
				formatMoney(t.Inflow, t.Currency), formatMoney(t.Outflow, t.Currency), formatMoney(t.Total, t.Currency))
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		if stats, _ := view.Stats.(*record.Stats); stats != nil && stats.Count > 0 {
			fmt.Fprintf(stdout, "\n%d records from %s to %s; average %s, largest %s, smallest %s\n",
				stats.Count,
				stats.FirstAt.Format("2006-01-02"), stats.LastAt.Format("2006-01-02"),
				stats.Average, stats.Largest, stats.Smallest)
		}
		return nil
	})
}

type addCmd struct {
	name     string
	amount   string
	currency string
	date     string
	note     string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "add a record to the active tab, completing the saved draft" }
func (*addCmd) Usage() string {
	return `tabsync add [-name <name>] [-amount <amount>] [-currency <code>] [-date <YYYY-MM-DD>] [-note <text>]

  Flags are merged over the saved new-entry draft of the active tab. If the
  record is rejected, the merged input is kept as the draft.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "record name")
	f.StringVar(&c.amount, "amount", "", "signed amount, e.g. -12.50")
	f.StringVar(&c.currency, "currency", "", "ISO currency code")
	f.StringVar(&c.date, "date", "", "date the record occurred; defaults to now")
	f.StringVar(&c.note, "note", "", "free text")
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return run(ctx, args, func(a *app) error {
		form, existing, err := a.ws.OpenNewEntry(ctx)
		if err != nil {
			return err
		}
		defer form.Autosaver().Stop()

		input := merge(existing, draft.FormShape{
			"name":        c.name,
			"amount":      c.amount,
			"currency":    c.currency,
			"occurred_at": c.date,
			"note":        c.note,
		})
		if err := form.Update(input); err != nil {
			return err
		}

		rec, err := a.ws.SubmitNewEntry(ctx, form)
		if rec == nil {
			// Keep what was typed for the next attempt.
			if flushErr := form.Autosaver().Flush(ctx); flushErr != nil {
				a.logger.Warn("failed to keep draft", "error", flushErr)
			}
			return err
		}
		fmt.Fprintf(stdout, "Added %s %s (%s).\n", rec.Name, formatMoney(rec.Amount, rec.Currency), rec.ID)
		return err
	})
}

