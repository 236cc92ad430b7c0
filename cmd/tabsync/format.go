package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/rpggio/tabsync/internal/domain/draft"
)

var stdout io.Writer = os.Stdout

// formatMoney renders amount in the currency's own notation, e.g. "$1,234.50".
// Codes unknown to go-money fall back to "1234.50 XYZ".
func formatMoney(amount decimal.Decimal, code string) string {
	cur := money.GetCurrency(strings.ToUpper(code))
	if cur == nil {
		return amount.StringFixed(2) + " " + code
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// parseAssignments turns ["name=Coffee", "amount=3.20"] into form fields.
func parseAssignments(args []string) (draft.FormShape, error) {
	form := draft.FormShape{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("expected field=value, got %q", arg)
		}
		form[key] = value
	}
	return form, nil
}

// merge overlays the non-empty fields of update on base.
func merge(base, update draft.FormShape) draft.FormShape {
	out := draft.FormShape{}
	for k, v := range base {
		out[k] = v
	}
	for k, v := range update {
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		out[k] = v
	}
	return out
}

func printForm(w io.Writer, form draft.FormShape) {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, k := range keys {
		fmt.Fprintf(tw, "  %s\t%v\n", k, form[k])
	}
	tw.Flush()
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}
