package workspace_test

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rpggio/tabsync/internal/api"
	"github.com/rpggio/tabsync/internal/domain/draft"
	"github.com/rpggio/tabsync/internal/domain/partition"
	"github.com/rpggio/tabsync/internal/domain/record"
	"github.com/rpggio/tabsync/internal/domain/viewsync"
	"github.com/rpggio/tabsync/internal/localstore"
	"github.com/rpggio/tabsync/internal/sqlite"
	"github.com/rpggio/tabsync/internal/testserver"
	"github.com/rpggio/tabsync/internal/workspace"
)

const family = partition.FamilyTransaction

type env struct {
	server *testserver.TestServer
	client *api.Client
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ts := testserver.New(t, "token", "alice")
	return &env{server: ts, client: ts.Client(t)}
}

func (e *env) open(t *testing.T, store partition.LocalStore) *workspace.Workspace {
	t.Helper()
	ws, err := workspace.New(workspace.Options{
		Family:           family,
		Username:         "alice",
		Remote:           e.client.Tabs(),
		Records:          e.client.Records(family, "alice"),
		Store:            store,
		AutosaveInterval: 20 * time.Millisecond,
	})
	require.NoError(t, err)
	require.NoError(t, ws.Open(context.Background()))
	return ws
}

func listed(t *testing.T, view viewsync.ViewState) []record.Record {
	t.Helper()
	recs, ok := view.List.([]record.Record)
	require.True(t, ok, "list view holds %T", view.List)
	return recs
}

func str(s string) *string { return &s }

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestNew_Validation(t *testing.T) {
	_, err := workspace.New(workspace.Options{Family: "bogus", Username: "alice"})
	require.ErrorIs(t, err, partition.ErrInvalidScope)

	_, err = workspace.New(workspace.Options{Family: family, Username: "alice"})
	require.Error(t, err)
}

func TestWorkspace_FirstTabFromEmpty(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ws := e.open(t, localstore.NewMemory())

	require.Empty(t, ws.Partitions())
	require.Empty(t, ws.Active())
	require.True(t, ws.View().Empty())

	p, err := ws.Create(ctx, "Household")
	require.NoError(t, err)
	require.Equal(t, p.ID, ws.Active())
	require.Len(t, ws.Partitions(), 1)

	view := ws.View()
	require.Equal(t, p.ID, view.PartitionID)
	require.False(t, view.Loading)
	require.Empty(t, listed(t, view))

	_, err = ws.Create(ctx, "   ")
	require.ErrorIs(t, err, partition.ErrInvalidName)
	notice := workspace.MapError(err)
	require.Equal(t, workspace.NoticeInline, notice.Kind)
}

func TestWorkspace_AdoptOrphans(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	records := e.client.Records(family, "alice")
	for i := 0; i < 5; i++ {
		_, err := records.Create(ctx, api.RecordInput{Name: str("Coffee"), Amount: amount("-3.20"), Currency: str("EUR")})
		require.NoError(t, err)
	}

	ws := e.open(t, localstore.NewMemory())
	n, err := ws.CountOrphans(ctx)
	require.NoError(t, err)
	require.Equal(t, 5, n)

	p, err := ws.Create(ctx, "Daily")
	require.NoError(t, err)
	require.Empty(t, listed(t, ws.View()))

	res, err := ws.Adopt(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 5, res.AdoptedCount)
	require.Len(t, listed(t, ws.View()), 5)

	n, err = ws.CountOrphans(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestWorkspace_AdoptIntoVanishedTab(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ws := e.open(t, localstore.NewMemory())

	keep, err := ws.Create(ctx, "Keep")
	require.NoError(t, err)
	gone, err := ws.Create(ctx, "Gone")
	require.NoError(t, err)

	// Another session deletes the tab behind our back.
	require.NoError(t, e.client.Tabs().Delete(ctx, family, "alice", gone.ID, partition.PolicyDelete))

	_, err = ws.Adopt(ctx, gone.ID)
	require.Error(t, err)
	notice := workspace.MapError(err)
	require.Equal(t, workspace.NoticeBanner, notice.Kind)
	require.True(t, notice.Relist)

	require.Len(t, ws.Partitions(), 1)
	require.Equal(t, keep.ID, ws.Active())
	require.Equal(t, keep.ID, ws.View().PartitionID)
}

func TestWorkspace_DraftSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	path := filepath.Join(t.TempDir(), "local.db")
	openStore := func() (*sqlite.DB, *sqlite.KVStore) {
		db, err := sqlite.New(path)
		require.NoError(t, err)
		require.NoError(t, db.Migrate(sqlite.SchemaLocal))
		return db, sqlite.NewKVStore(db)
	}

	db, store := openStore()
	ws := e.open(t, store)
	p, err := ws.Create(ctx, "Trip")
	require.NoError(t, err)

	form, existing, err := ws.OpenNewEntry(ctx)
	require.NoError(t, err)
	require.Nil(t, existing)
	require.NoError(t, form.Update(draft.FormShape{"name": "Museum", "amount": "12.50", "currency": "eur"}))
	require.NoError(t, form.Autosaver().Flush(ctx))
	form.Autosaver().Stop()
	require.NoError(t, db.Close())

	db, store = openStore()
	t.Cleanup(func() { _ = db.Close() })
	ws = e.open(t, store)
	require.Equal(t, p.ID, ws.Active())

	form, existing, err = ws.OpenNewEntry(ctx)
	require.NoError(t, err)
	require.Equal(t, "Museum", existing["name"])
	require.NoError(t, form.Resume(existing))

	rec, err := ws.SubmitNewEntry(ctx, form)
	require.NoError(t, err)
	require.Equal(t, "EUR", rec.Currency)
	require.True(t, rec.Amount.Equal(decimal.RequireFromString("12.50")))
	require.Equal(t, draft.StateClosedSubmitted, form.State())
	require.Len(t, listed(t, ws.View()), 1)

	_, existing, err = ws.OpenNewEntry(ctx)
	require.NoError(t, err)
	require.Nil(t, existing)
}

func TestWorkspace_SubmitFailureKeepsDraft(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ws := e.open(t, localstore.NewMemory())
	_, err := ws.Create(ctx, "Bills")
	require.NoError(t, err)

	form, _, err := ws.OpenNewEntry(ctx)
	require.NoError(t, err)
	require.NoError(t, form.Update(draft.FormShape{"name": "Power"}))

	// Missing amount and currency: the server rejects the request.
	_, err = ws.SubmitNewEntry(ctx, form)
	require.Error(t, err)
	require.Equal(t, workspace.NoticeInline, workspace.MapError(err).Kind)
	require.Equal(t, draft.StateEditing, form.State())

	require.NoError(t, form.Update(draft.FormShape{"name": "Power", "amount": "abc"}))
	_, err = ws.SubmitNewEntry(ctx, form)
	require.ErrorIs(t, err, workspace.ErrInvalidForm)
}

func TestWorkspace_SwitchShowsOnlyTargetData(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	var mu sync.Mutex
	var published []viewsync.ViewState
	ws, err := workspace.New(workspace.Options{
		Family:   family,
		Username: "alice",
		Remote:   e.client.Tabs(),
		Records:  e.client.Records(family, "alice"),
		Store:    localstore.NewMemory(),
		OnChange: func(v viewsync.ViewState) {
			mu.Lock()
			published = append(published, v)
			mu.Unlock()
		},
	})
	require.NoError(t, err)
	require.NoError(t, ws.Open(ctx))

	a, err := ws.Create(ctx, "A")
	require.NoError(t, err)
	_, err = ws.AddRecord(ctx, api.RecordInput{Name: str("Only in A"), Amount: amount("1"), Currency: str("USD")})
	require.NoError(t, err)

	b, err := ws.Create(ctx, "B")
	require.NoError(t, err)
	_, err = ws.AddRecord(ctx, api.RecordInput{Name: str("Only in B"), Amount: amount("2"), Currency: str("USD")})
	require.NoError(t, err)

	require.NoError(t, ws.Switch(ctx, a.ID))
	require.NoError(t, ws.Switch(ctx, b.ID))

	view := ws.View()
	require.Equal(t, b.ID, view.PartitionID)
	recs := listed(t, view)
	require.Len(t, recs, 1)
	require.Equal(t, "Only in B", recs[0].Name)

	mu.Lock()
	defer mu.Unlock()
	for _, v := range published {
		if v.List == nil {
			continue
		}
		for _, rec := range v.List.([]record.Record) {
			require.Equal(t, v.PartitionID, *rec.TabID, "view labelled %s showed a record of %s", v.PartitionID, *rec.TabID)
		}
	}

	require.ErrorIs(t, ws.Switch(ctx, "missing"), partition.ErrPartitionNotFound)
}

func TestWorkspace_DeleteActive(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ws := e.open(t, localstore.NewMemory())

	first, err := ws.Create(ctx, "First")
	require.NoError(t, err)
	second, err := ws.Create(ctx, "Second")
	require.NoError(t, err)
	require.Equal(t, second.ID, ws.Active())

	require.NoError(t, ws.Delete(ctx, second.ID, partition.PolicyDelete))
	require.Equal(t, first.ID, ws.Active())
	require.Equal(t, first.ID, ws.View().PartitionID)

	_, err = ws.AddRecord(ctx, api.RecordInput{Name: str("Keep"), Amount: amount("5"), Currency: str("USD")})
	require.NoError(t, err)
	err = ws.Delete(ctx, first.ID, partition.PolicyRestrict)
	require.ErrorIs(t, err, partition.ErrPartitionInUse)
	require.Equal(t, "IN_USE", workspace.MapError(err).Code)

	require.NoError(t, ws.Delete(ctx, first.ID, partition.PolicyDetach))
	require.Empty(t, ws.Active())
	require.True(t, ws.View().Empty())

	n, err := ws.CountOrphans(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	_, err = ws.AddRecord(ctx, api.RecordInput{Name: str("x")})
	require.ErrorIs(t, err, workspace.ErrNoActivePartition)
}

func TestWorkspace_OpenRepairsStalePointer(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	store := localstore.NewMemory()

	ws := e.open(t, store)
	first, err := ws.Create(ctx, "First")
	require.NoError(t, err)
	second, err := ws.Create(ctx, "Second")
	require.NoError(t, err)
	require.Equal(t, second.ID, ws.Active())

	require.NoError(t, e.client.Tabs().Delete(ctx, family, "alice", second.ID, partition.PolicyDelete))

	ws = e.open(t, store)
	require.Equal(t, first.ID, ws.Active())
	require.Equal(t, first.ID, ws.View().PartitionID)
}

func TestWorkspace_RecordMutations(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ws := e.open(t, localstore.NewMemory())
	_, err := ws.Create(ctx, "Main")
	require.NoError(t, err)

	rec, err := ws.AddRecord(ctx, api.RecordInput{Name: str("Lunch"), Amount: amount("-11"), Currency: str("USD")})
	require.NoError(t, err)

	form := ws.OpenEdit(*rec)
	require.False(t, form.Dirty())
	current := form.Current()
	current["name"] = "Dinner"
	require.NoError(t, form.Update(current))
	require.True(t, form.Dirty())

	updated, err := ws.SubmitEdit(ctx, rec.ID, form)
	require.NoError(t, err)
	require.Equal(t, "Dinner", updated.Name)
	require.Equal(t, "Dinner", listed(t, ws.View())[0].Name)

	require.NoError(t, ws.DeleteRecord(ctx, rec.ID))
	require.Empty(t, listed(t, ws.View()))

	err = ws.DeleteRecord(ctx, rec.ID)
	notice := workspace.MapError(err)
	require.Equal(t, "NOT_FOUND", notice.Code)
	require.True(t, notice.Relist)
}

// gatedStore holds back the write of one chosen value until released.
type gatedStore struct {
	*localstore.Memory

	mu      sync.Mutex
	block   []byte
	reached chan struct{}
	release chan struct{}
}

func newGatedStore() *gatedStore {
	return &gatedStore{Memory: localstore.NewMemory()}
}

func (g *gatedStore) gate(value []byte) (reached, release chan struct{}) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.block = value
	g.reached = make(chan struct{})
	g.release = make(chan struct{})
	return g.reached, g.release
}

func (g *gatedStore) Set(ctx context.Context, key string, value []byte) error {
	g.mu.Lock()
	hit := g.block != nil && bytes.Equal(g.block, value)
	reached, release := g.reached, g.release
	if hit {
		g.block = nil
	}
	g.mu.Unlock()

	if hit {
		close(reached)
		<-release
	}
	return g.Memory.Set(ctx, key, value)
}

func TestWorkspace_OverlappingSwitchesKeepTheLast(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	store := newGatedStore()
	ws := e.open(t, store)

	a, err := ws.Create(ctx, "A")
	require.NoError(t, err)
	b, err := ws.Create(ctx, "B")
	require.NoError(t, err)

	pointerA, err := json.Marshal(a.ID)
	require.NoError(t, err)
	pointerB, err := json.Marshal(b.ID)
	require.NoError(t, err)

	reached, release := store.gate(pointerA)
	errA := make(chan error, 1)
	go func() { errA <- ws.Switch(ctx, a.ID) }()
	<-reached

	errB := make(chan error, 1)
	go func() { errB <- ws.Switch(ctx, b.ID) }()
	// Let the second switch run while the first is stuck persisting.
	time.Sleep(50 * time.Millisecond)
	close(release)

	require.NoError(t, <-errB)
	if err := <-errA; err != nil {
		require.ErrorIs(t, err, viewsync.ErrSuperseded)
	}

	require.Equal(t, b.ID, ws.View().PartitionID)
	require.Equal(t, b.ID, ws.Active())
	stored, err := store.Get(ctx, ws.Scope().ActiveKey())
	require.NoError(t, err)
	require.Equal(t, pointerB, stored)

	rec, err := ws.AddRecord(ctx, api.RecordInput{Name: str("Shown in B"), Amount: amount("4"), Currency: str("USD")})
	require.NoError(t, err)
	require.Equal(t, b.ID, *rec.TabID)
	require.Equal(t, b.ID, ws.View().PartitionID)
	require.Len(t, listed(t, ws.View()), 1)
}

func TestWorkspace_ClosedFormsDoNotSubmit(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ws := e.open(t, localstore.NewMemory())
	_, err := ws.Create(ctx, "Bills")
	require.NoError(t, err)

	form, _, err := ws.OpenNewEntry(ctx)
	require.NoError(t, err)
	require.NoError(t, form.Update(draft.FormShape{"name": "Water", "amount": "30", "currency": "EUR"}))
	_, err = ws.SubmitNewEntry(ctx, form)
	require.NoError(t, err)

	_, err = ws.SubmitNewEntry(ctx, form)
	require.ErrorIs(t, err, draft.ErrFormClosed)
	require.Len(t, listed(t, ws.View()), 1)

	empty, _, err := ws.OpenNewEntry(ctx)
	require.NoError(t, err)
	state, err := empty.AttemptClose(ctx)
	require.NoError(t, err)
	require.Equal(t, draft.StateClosedDiscarded, state)
	_, err = ws.SubmitNewEntry(ctx, empty)
	require.ErrorIs(t, err, draft.ErrFormClosed)

	rec := listed(t, ws.View())[0]
	edit := ws.OpenEdit(rec)
	require.NoError(t, edit.Update(draft.FormShape{"name": "Water", "amount": "35", "currency": "EUR"}))
	state, err = edit.AttemptClose(ctx)
	require.NoError(t, err)
	require.Equal(t, draft.StateConfirmingExit, state)

	_, err = ws.SubmitEdit(ctx, rec.ID, edit)
	require.ErrorIs(t, err, draft.ErrInvalidTransition)

	_, err = edit.Resolve(ctx, draft.ChoiceContinue)
	require.NoError(t, err)
	updated, err := ws.SubmitEdit(ctx, rec.ID, edit)
	require.NoError(t, err)
	require.True(t, updated.Amount.Equal(decimal.RequireFromString("35")))

	_, err = ws.SubmitEdit(ctx, rec.ID, edit)
	require.ErrorIs(t, err, draft.ErrFormClosed)
	require.Len(t, listed(t, ws.View()), 1)
}

func TestWorkspace_SubmitAfterSwitchUsesFormTab(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ws := e.open(t, localstore.NewMemory())

	a, err := ws.Create(ctx, "A")
	require.NoError(t, err)
	form, _, err := ws.OpenNewEntry(ctx)
	require.NoError(t, err)
	require.Equal(t, a.ID, form.PartitionID())
	require.NoError(t, form.Update(draft.FormShape{"name": "Lunch", "amount": "-12", "currency": "USD"}))

	b, err := ws.Create(ctx, "B")
	require.NoError(t, err)
	require.Equal(t, b.ID, ws.Active())

	rec, err := ws.SubmitNewEntry(ctx, form)
	require.NoError(t, err)
	require.Equal(t, a.ID, *rec.TabID)
	require.Equal(t, b.ID, ws.View().PartitionID)
	require.Empty(t, listed(t, ws.View()))

	left, err := ws.Drafts().LoadIfAny(ctx, draft.NewEntryKey(family, a.ID))
	require.NoError(t, err)
	require.Nil(t, left)

	require.NoError(t, ws.Switch(ctx, a.ID))
	recs := listed(t, ws.View())
	require.Len(t, recs, 1)
	require.Equal(t, "Lunch", recs[0].Name)
}
