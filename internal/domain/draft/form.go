package draft

import (
	"context"
	"sync"
	"time"

	"github.com/rpggio/tabsync/internal/domain/partition"
)

// State is the close-flow state of an open form
type State string

const (
	StateEditing         State = "editing"
	StateConfirmingExit  State = "confirming_exit"
	StateClosedDiscarded State = "closed_discarded"
	StateClosedDraftKept State = "closed_draft_kept"
	StateClosedSubmitted State = "closed_submitted"
)

// Closed reports whether s is terminal.
func (s State) Closed() bool {
	switch s {
	case StateClosedDiscarded, StateClosedDraftKept, StateClosedSubmitted:
		return true
	}
	return false
}

// Choice is the user's answer to the exit confirmation.
type Choice string

const (
	ChoiceContinue  Choice = "continue"
	ChoiceDiscard   Choice = "discard"
	ChoiceKeepDraft Choice = "keep_draft"
)

// Form tracks one open form instance. New-entry forms autosave a draft;
// edit forms compare against their baseline and are never drafted.
type Form struct {
	drafts      *Service
	key         string
	partitionID string
	required  []string
	baseline  FormShape
	autosaver *Autosaver

	mu      sync.Mutex
	state   State
	current FormShape
}

// OpenNewEntry opens the create form for the partition and returns any stored
// draft alongside it. The caller asks the user whether to Resume or StartFresh.
func (s *Service) OpenNewEntry(ctx context.Context, family partition.Family, partitionID string, required []string, interval time.Duration) (*Form, FormShape, error) {
	key := NewEntryKey(family, partitionID)
	existing, err := s.LoadIfAny(ctx, key)
	if err != nil {
		return nil, nil, err
	}

	return &Form{
		drafts:      s,
		key:         key,
		partitionID: partitionID,
		required:    append([]string(nil), required...),
		autosaver:   s.NewAutosaver(key, interval),
		state:       StateEditing,
		current:     FormShape{},
	}, existing, nil
}

// OpenEdit opens a form editing an existing record, snapshotting baseline.
func (s *Service) OpenEdit(baseline FormShape) *Form {
	return &Form{
		drafts:   s,
		baseline: Sanitize(baseline),
		state:    StateEditing,
		current:  Sanitize(baseline),
	}
}

// Key returns the draft key, "" for edit forms.
func (f *Form) Key() string {
	return f.key
}

// PartitionID returns the partition a new-entry form was opened for, "" for edit forms.
func (f *Form) PartitionID() string {
	return f.partitionID
}

// State returns the current close-flow state.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Current returns a copy of the latest form content, in the shape a stored
// draft of it would load back as.
func (f *Form) Current() FormShape {
	f.mu.Lock()
	defer f.mu.Unlock()
	return clone(f.current)
}

// Autosaver exposes the form's autosaver, nil for edit forms.
func (f *Form) Autosaver() *Autosaver {
	return f.autosaver
}

// Resume continues from a stored draft.
func (f *Form) Resume(payload FormShape) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateEditing {
		return ErrFormClosed
	}
	f.current = Sanitize(payload)
	return nil
}

// StartFresh drops any stored draft and clears the form.
func (f *Form) StartFresh(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateEditing {
		return ErrFormClosed
	}
	f.current = FormShape{}
	if f.key == "" {
		return nil
	}
	return f.drafts.Discard(ctx, f.key)
}

// Update replaces the form content and schedules an autosave for new-entry forms.
func (f *Form) Update(current FormShape) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state.Closed() {
		return ErrFormClosed
	}
	f.current = Sanitize(current)
	if f.autosaver != nil {
		f.autosaver.Update(current)
	}
	return nil
}

// Dirty reports whether closing should prompt the user.
func (f *Form) Dirty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dirtyLocked()
}

func (f *Form) dirtyLocked() bool {
	if f.key != "" {
		return HasContent(f.current, f.required)
	}
	return IsDirty(f.current, f.baseline)
}

// AttemptClose closes a clean form straight away or moves a dirty one to ConfirmingExit.
func (f *Form) AttemptClose(ctx context.Context) (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateEditing {
		return f.state, ErrInvalidTransition
	}
	if !f.dirtyLocked() {
		return f.closeDiscarded(ctx)
	}
	f.state = StateConfirmingExit
	return f.state, nil
}

// Resolve applies the user's answer to the exit confirmation.
func (f *Form) Resolve(ctx context.Context, choice Choice) (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateConfirmingExit {
		return f.state, ErrInvalidTransition
	}

	switch choice {
	case ChoiceContinue:
		f.state = StateEditing
		return f.state, nil
	case ChoiceDiscard:
		return f.closeDiscarded(ctx)
	case ChoiceKeepDraft:
		if f.autosaver == nil {
			return f.state, ErrInvalidTransition
		}
		// The latest keystrokes may still be waiting on the debounce.
		f.autosaver.Update(f.current)
		if err := f.autosaver.Flush(ctx); err != nil {
			return f.state, err
		}
		f.autosaver.Stop()
		f.state = StateClosedDraftKept
		return f.state, nil
	}
	return f.state, ErrInvalidTransition
}

// Submitted records a successful submit and clears the draft unconditionally.
func (f *Form) Submitted(ctx context.Context) (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateEditing {
		return f.state, ErrInvalidTransition
	}
	if f.autosaver != nil {
		f.autosaver.Stop()
	}
	if f.key != "" {
		if err := f.drafts.Discard(ctx, f.key); err != nil {
			return f.state, err
		}
	}
	f.state = StateClosedSubmitted
	return f.state, nil
}

func (f *Form) closeDiscarded(ctx context.Context) (State, error) {
	if f.autosaver != nil {
		f.autosaver.Stop()
	}
	if f.key != "" {
		if err := f.drafts.Discard(ctx, f.key); err != nil {
			return f.state, err
		}
	}
	f.state = StateClosedDiscarded
	return f.state, nil
}
