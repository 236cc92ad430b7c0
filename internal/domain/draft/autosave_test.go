package draft_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rpggio/tabsync/internal/domain/draft"
	"github.com/rpggio/tabsync/internal/localstore"
)

func TestAutosaver_CoalescesAndKeepsLatest(t *testing.T) {
	ctx := context.Background()
	svc := draft.NewService(localstore.NewMemory(), nil)
	key := "draft:transaction:new:p1"

	a := svc.NewAutosaver(key, 50*time.Millisecond)
	defer a.Stop()

	for _, name := range []string{"R", "Re", "Ren", "Rent"} {
		a.Update(draft.FormShape{"name": name})
	}

	require.Eventually(t, func() bool { return a.Writes() == 1 }, time.Second, 5*time.Millisecond)

	got, err := svc.LoadIfAny(ctx, key)
	require.NoError(t, err)
	require.Equal(t, "Rent", got["name"])

	// No further writes without further updates.
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, 1, a.Writes())
}

func TestAutosaver_FlushAndStop(t *testing.T) {
	ctx := context.Background()
	svc := draft.NewService(localstore.NewMemory(), nil)
	key := "draft:transaction:new:p1"

	a := svc.NewAutosaver(key, time.Hour)
	a.Update(draft.FormShape{"name": "Rent"})
	require.NoError(t, a.Flush(ctx))
	require.Equal(t, 1, a.Writes())

	// Nothing pending, nothing written.
	require.NoError(t, a.Flush(ctx))
	require.Equal(t, 1, a.Writes())

	a.Update(draft.FormShape{"name": "Dropped"})
	a.Stop()
	a.Update(draft.FormShape{"name": "Ignored"})
	require.NoError(t, a.Flush(ctx))

	got, err := svc.LoadIfAny(ctx, key)
	require.NoError(t, err)
	require.Equal(t, "Rent", got["name"])
	require.NoError(t, a.Err())
}

// The form is filled in, the autosave fires, and the process goes away without
// closing the form. A fresh service over the same store finds the draft.
func TestAutosaver_SurvivesRestart(t *testing.T) {
	ctx := context.Background()
	store := localstore.NewMemory()

	svc := draft.NewService(store, nil)
	form, existing, err := svc.OpenNewEntry(ctx, "transaction", "p1", []string{"name"}, 20*time.Millisecond)
	require.NoError(t, err)
	require.Nil(t, existing)

	require.NoError(t, form.Update(draft.FormShape{"name": "Groceries"}))
	require.Eventually(t, func() bool { return form.Autosaver().Writes() == 1 }, time.Second, 5*time.Millisecond)

	restarted := draft.NewService(store, nil)
	_, existing, err = restarted.OpenNewEntry(ctx, "transaction", "p1", []string{"name"}, 0)
	require.NoError(t, err)
	require.Equal(t, "Groceries", existing["name"])
}
