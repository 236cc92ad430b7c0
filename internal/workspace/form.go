package workspace

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rpggio/tabsync/internal/api"
	"github.com/rpggio/tabsync/internal/domain/draft"
	"github.com/rpggio/tabsync/internal/domain/record"
)

// OpenNewEntry opens the create form of the active tab. A stored draft is
// returned alongside; the caller asks whether to resume it.
func (w *Workspace) OpenNewEntry(ctx context.Context) (*draft.Form, draft.FormShape, error) {
	active := w.Active()
	if active == "" {
		return nil, nil, ErrNoActivePartition
	}
	return w.drafts.OpenNewEntry(ctx, w.scope.Family, active, w.required, w.interval)
}

// OpenEdit opens an edit form for rec. Edits are never drafted.
func (w *Workspace) OpenEdit(rec record.Record) *draft.Form {
	return w.drafts.OpenEdit(FormFromRecord(rec))
}

// Drafts exposes the draft service of the workspace.
func (w *Workspace) Drafts() *draft.Service {
	return w.drafts
}

// SubmitNewEntry creates a record in the tab the form was opened for and closes
// the form as submitted. On failure the form stays open and its draft is kept.
func (w *Workspace) SubmitNewEntry(ctx context.Context, form *draft.Form) (*record.Record, error) {
	if err := submittable(form); err != nil {
		return nil, err
	}
	tabID := form.PartitionID()
	if tabID == "" {
		return nil, ErrNoActivePartition
	}
	in, err := InputFromForm(form.Current())
	if err != nil {
		return nil, err
	}
	rec, err := w.addRecord(ctx, tabID, in)
	if err != nil && rec == nil {
		return nil, err
	}
	if _, closeErr := form.Submitted(ctx); closeErr != nil {
		return rec, closeErr
	}
	return rec, err
}

// SubmitEdit applies the form to record id and closes it as submitted.
func (w *Workspace) SubmitEdit(ctx context.Context, id string, form *draft.Form) (*record.Record, error) {
	if err := submittable(form); err != nil {
		return nil, err
	}
	in, err := InputFromForm(form.Current())
	if err != nil {
		return nil, err
	}
	rec, err := w.UpdateRecord(ctx, id, in)
	if err != nil && rec == nil {
		return nil, err
	}
	if _, closeErr := form.Submitted(ctx); closeErr != nil {
		return rec, closeErr
	}
	return rec, err
}

func submittable(form *draft.Form) error {
	switch state := form.State(); {
	case state.Closed():
		return draft.ErrFormClosed
	case state != draft.StateEditing:
		return draft.ErrInvalidTransition
	}
	return nil
}

// FormFromRecord is the edit-form snapshot of a record.
func FormFromRecord(rec record.Record) draft.FormShape {
	return draft.FormShape{
		"name":        rec.Name,
		"amount":      rec.Amount.String(),
		"currency":    rec.Currency,
		"occurred_at": rec.OccurredAt.Format(time.RFC3339),
		"note":        rec.Note,
	}
}

// InputFromForm converts form fields into a record request. Blank fields are left unset.
func InputFromForm(form draft.FormShape) (api.RecordInput, error) {
	var in api.RecordInput

	if s, ok := stringField(form, "name"); ok {
		in.Name = &s
	}
	if s, ok := stringField(form, "currency"); ok {
		s = strings.ToUpper(s)
		in.Currency = &s
	}
	if s, ok := stringField(form, "note"); ok {
		in.Note = &s
	}

	switch v := form["amount"].(type) {
	case nil:
	case string:
		if strings.TrimSpace(v) != "" {
			d, err := decimal.NewFromString(strings.TrimSpace(v))
			if err != nil {
				return in, fmt.Errorf("%w: amount %q", ErrInvalidForm, v)
			}
			in.Amount = &d
		}
	case float64:
		d := decimal.NewFromFloat(v)
		in.Amount = &d
	case int:
		d := decimal.NewFromInt(int64(v))
		in.Amount = &d
	default:
		return in, fmt.Errorf("%w: amount %v", ErrInvalidForm, v)
	}

	if s, ok := stringField(form, "occurred_at"); ok {
		t, err := parseDate(s)
		if err != nil {
			return in, fmt.Errorf("%w: occurred_at %q", ErrInvalidForm, s)
		}
		in.OccurredAt = &t
	}
	return in, nil
}

func stringField(form draft.FormShape, key string) (string, bool) {
	s, ok := form[key].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return strings.TrimSpace(s), true
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}
