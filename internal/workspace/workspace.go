// Package workspace drives one resource family for one user: the tab list,
// the active tab, orphan adoption, new-entry drafts and the dependent views.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rpggio/tabsync/internal/api"
	"github.com/rpggio/tabsync/internal/domain/draft"
	"github.com/rpggio/tabsync/internal/domain/orphan"
	"github.com/rpggio/tabsync/internal/domain/partition"
	"github.com/rpggio/tabsync/internal/domain/record"
	"github.com/rpggio/tabsync/internal/domain/viewsync"
	"github.com/rpggio/tabsync/internal/repository"
)

var (
	// ErrNoActivePartition indicates an operation that needs a selected tab.
	ErrNoActivePartition = errors.New("no tab selected")
	// ErrInvalidForm indicates form content that cannot become a record.
	ErrInvalidForm = errors.New("invalid form content")
)

// DefaultRequired are the new-entry fields whose content makes a form dirty.
var DefaultRequired = []string{"name", "amount"}

// Records is the record API of one family and user.
type Records interface {
	Create(ctx context.Context, in api.RecordInput) (*record.Record, error)
	Update(ctx context.Context, id string, in api.RecordInput) (*record.Record, error)
	Delete(ctx context.Context, id string) error
	Fetchers() viewsync.Fetchers
}

// Remote is what a workspace needs from the server.
type Remote interface {
	partition.Repository
	orphan.Repository
}

// Options configures a Workspace.
type Options struct {
	Family   partition.Family
	Username string
	Remote   Remote
	Records  Records
	Store    partition.LocalStore
	Logger   *slog.Logger
	// AutosaveInterval bounds draft writes; zero means draft.DefaultAutosaveInterval.
	AutosaveInterval time.Duration
	// Required overrides DefaultRequired.
	Required []string
	// OnChange receives every published ViewState.
	OnChange func(viewsync.ViewState)
}

// Workspace is the client-side state of one family for one user.
type Workspace struct {
	scope      partition.Scope
	partitions *partition.Service
	orphans    *orphan.Service
	drafts     *draft.Service
	coord      *viewsync.Coordinator
	records    Records
	fetchers   viewsync.Fetchers
	logger     *slog.Logger
	interval   time.Duration
	required   []string
}

// New creates a workspace. Call Open before anything else.
func New(opts Options) (*Workspace, error) {
	scope := partition.Scope{Family: opts.Family, UserID: opts.Username}
	if !scope.Family.Valid() || scope.UserID == "" {
		return nil, partition.ErrInvalidScope
	}
	if opts.Remote == nil || opts.Records == nil || opts.Store == nil {
		return nil, fmt.Errorf("workspace: remote, records and store are required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("family", scope.Family, "username", scope.UserID)

	required := opts.Required
	if required == nil {
		required = DefaultRequired
	}

	w := &Workspace{
		scope:      scope,
		partitions: partition.NewService(opts.Remote, opts.Store, logger),
		orphans:    orphan.NewService(opts.Remote, logger),
		drafts:     draft.NewService(opts.Store, logger),
		records:    opts.Records,
		fetchers:   opts.Records.Fetchers(),
		logger:     logger,
		interval:   opts.AutosaveInterval,
		required:   required,
	}

	var coordOpts []viewsync.Option
	if opts.OnChange != nil {
		coordOpts = append(coordOpts, viewsync.WithOnChange(opts.OnChange))
	}
	pointer := viewsync.PointerFunc(func(ctx context.Context, id string) error {
		return w.partitions.SetActive(ctx, w.scope, id)
	})
	w.coord = viewsync.NewCoordinator(pointer, logger, coordOpts...)
	return w, nil
}

// Scope returns the family and user of the workspace.
func (w *Workspace) Scope() partition.Scope {
	return w.scope
}

// Open restores the active tab against the live list and loads its views.
func (w *Workspace) Open(ctx context.Context) error {
	active, err := w.partitions.RestoreActive(ctx, w.scope)
	if err != nil {
		return err
	}
	return w.show(ctx, active)
}

// Partitions returns the tab list as last fetched.
func (w *Workspace) Partitions() []partition.Partition {
	return w.partitions.Partitions(w.scope)
}

// Active returns the active tab ID, "" if none is selected.
func (w *Workspace) Active() string {
	return w.partitions.Active(w.scope)
}

// View returns what should currently be rendered.
func (w *Workspace) View() viewsync.ViewState {
	return w.coord.View()
}

// Relist refetches the tab list, repairs the active pointer and reloads the views.
func (w *Workspace) Relist(ctx context.Context) error {
	return w.Open(ctx)
}

// Create creates a tab, selects it and loads its (empty) views.
func (w *Workspace) Create(ctx context.Context, name string) (*partition.Partition, error) {
	p, err := w.partitions.Create(ctx, w.scope, name)
	if err != nil {
		return nil, err
	}
	if err := w.coord.AfterPartitionSwitch(ctx, p.ID, w.fetchers); err != nil {
		return p, err
	}
	return p, nil
}

// Rename renames a tab.
func (w *Workspace) Rename(ctx context.Context, id, name string) error {
	err := w.partitions.Rename(ctx, w.scope, id, name)
	if errors.Is(err, partition.ErrPartitionNotFound) {
		w.relistAfter(ctx, err)
	}
	return err
}

// Delete deletes a tab. The caller must have confirmed with the user. When the
// active tab goes, the first remaining tab is selected, or none.
func (w *Workspace) Delete(ctx context.Context, id string, policy partition.DeletePolicy) error {
	wasActive := w.Active() == id
	next, err := w.partitions.Delete(ctx, w.scope, id, policy)
	if err != nil {
		if errors.Is(err, partition.ErrPartitionNotFound) {
			w.relistAfter(ctx, err)
		}
		return err
	}
	if !wasActive {
		return nil
	}
	return w.show(ctx, next)
}

// Switch makes id the active tab and loads its views. Only listed tabs can be selected.
func (w *Workspace) Switch(ctx context.Context, id string) error {
	if _, ok := w.partitions.Get(w.scope, id); !ok {
		return partition.ErrPartitionNotFound
	}
	return w.coord.AfterPartitionSwitch(ctx, id, w.fetchers)
}

// CountOrphans counts records without a tab.
func (w *Workspace) CountOrphans(ctx context.Context) (int, error) {
	return w.orphans.CountOrphans(ctx, w.scope)
}

// Adopt moves every orphan into targetID, then refetches the active views. The
// caller must have confirmed with the user.
func (w *Workspace) Adopt(ctx context.Context, targetID string) (*orphan.AdoptResult, error) {
	res, err := w.orphans.Adopt(ctx, w.scope, targetID)
	if err != nil {
		if errors.Is(err, orphan.ErrTargetNotFound) {
			w.relistAfter(ctx, err)
		}
		return nil, err
	}
	if err := w.refresh(ctx); err != nil {
		return res, err
	}
	return res, nil
}

// AddRecord creates a record in the active tab and refetches the views.
func (w *Workspace) AddRecord(ctx context.Context, in api.RecordInput) (*record.Record, error) {
	active := w.Active()
	if active == "" {
		return nil, ErrNoActivePartition
	}
	return w.addRecord(ctx, active, in)
}

func (w *Workspace) addRecord(ctx context.Context, tabID string, in api.RecordInput) (*record.Record, error) {
	in.TabID = &tabID

	rec, err := w.records.Create(ctx, in)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			w.relistAfter(ctx, err)
		}
		return nil, err
	}
	return rec, w.refresh(ctx)
}

// UpdateRecord updates a record and refetches the views.
func (w *Workspace) UpdateRecord(ctx context.Context, id string, in api.RecordInput) (*record.Record, error) {
	rec, err := w.records.Update(ctx, id, in)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			w.relistAfter(ctx, err)
		}
		return nil, err
	}
	return rec, w.refresh(ctx)
}

// DeleteRecord deletes a record and refetches the views.
func (w *Workspace) DeleteRecord(ctx context.Context, id string) error {
	if err := w.records.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			w.relistAfter(ctx, err)
		}
		return err
	}
	return w.refresh(ctx)
}

// show loads the views of id, or clears them when id is "".
func (w *Workspace) show(ctx context.Context, id string) error {
	if id == "" {
		w.coord.Clear()
		return nil
	}
	return w.coord.AfterPartitionSwitch(ctx, id, w.fetchers)
}

// refresh refetches the views of the active tab.
func (w *Workspace) refresh(ctx context.Context) error {
	active := w.Active()
	if active == "" {
		return nil
	}
	if w.coord.Active() != active {
		return w.coord.AfterPartitionSwitch(ctx, active, w.fetchers)
	}
	return w.coord.AfterMutation(ctx, active, w.fetchers)
}

// relistAfter recovers from a vanished target. Its own failure is logged; the
// caller reports the original error.
func (w *Workspace) relistAfter(ctx context.Context, cause error) {
	w.logger.Info("target vanished, relisting tabs", "cause", cause)
	if err := w.Relist(ctx); err != nil && !errors.Is(err, viewsync.ErrSuperseded) {
		w.logger.Warn("relist failed", "error", err)
	}
}
