package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rpggio/tabsync/internal/api"
	"github.com/rpggio/tabsync/internal/domain/partition"
	"github.com/rpggio/tabsync/internal/localstore"
	"github.com/rpggio/tabsync/internal/testserver"
	"github.com/rpggio/tabsync/internal/workspace"
)

type harness struct {
	client  *api.Client
	session *sdkmcp.ClientSession
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()

	ts := testserver.New(t, "token", "alice")
	client := ts.Client(t)
	ws, err := workspace.New(workspace.Options{
		Family:   partition.FamilyTransaction,
		Username: "alice",
		Remote:   client.Tabs(),
		Records:  client.Records(partition.FamilyTransaction, "alice"),
		Store:    localstore.NewMemory(),
	})
	require.NoError(t, err)
	require.NoError(t, ws.Open(ctx))

	server := NewServer(Config{Workspace: ws})
	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	mcpClient := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test", Version: "v0"}, nil)
	session, err := mcpClient.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()
		_ = serverSession.Wait()
	})
	return &harness{client: client, session: session}
}

// call invokes a tool and decodes its structured output into out.
func (h *harness) call(t *testing.T, name string, args map[string]any, out any) *sdkmcp.CallToolResult {
	t.Helper()
	if args == nil {
		args = map[string]any{}
	}
	res, err := h.session.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	if out != nil && !res.IsError {
		data, err := json.Marshal(res.StructuredContent)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, out))
	}
	return res
}

func resultText(res *sdkmcp.CallToolResult) string {
	var parts []string
	for _, c := range res.Content {
		if text, ok := c.(*sdkmcp.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func TestTools_Listed(t *testing.T) {
	h := newHarness(t)
	res, err := h.session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	require.ElementsMatch(t, []string{
		"list_tabs", "create_tab", "rename_tab", "switch_tab", "count_orphans", "adopt_orphans", "get_view",
	}, names)
}

func TestTools_TabLifecycle(t *testing.T) {
	h := newHarness(t)

	var list ListTabsResponse
	h.call(t, "list_tabs", nil, &list)
	require.Equal(t, "transaction", list.Family)
	require.Empty(t, list.Tabs)
	require.Empty(t, list.Active)

	var created TabResponse
	h.call(t, "create_tab", map[string]any{"name": "  Groceries "}, &created)
	require.Equal(t, "Groceries", created.Tab.Name)
	require.True(t, created.Tab.Active)

	var other TabResponse
	h.call(t, "create_tab", map[string]any{"name": "Travel"}, &other)

	var renamed TabResponse
	h.call(t, "rename_tab", map[string]any{"id": created.Tab.ID, "name": "Food"}, &renamed)
	require.Equal(t, "Food", renamed.Tab.Name)

	var view ViewResponse
	h.call(t, "switch_tab", map[string]any{"id": created.Tab.ID}, &view)
	require.Equal(t, created.Tab.ID, view.TabID)
	require.Empty(t, view.Records)

	h.call(t, "list_tabs", nil, &list)
	require.Len(t, list.Tabs, 2)
	require.Equal(t, created.Tab.ID, list.Active)

	res := h.call(t, "create_tab", map[string]any{"name": "   "}, nil)
	require.True(t, res.IsError)
	require.Contains(t, resultText(res), "VALIDATION")

	res = h.call(t, "switch_tab", map[string]any{"id": "missing"}, nil)
	require.True(t, res.IsError)
	require.Contains(t, resultText(res), "NOT_FOUND")
}

func TestTools_OrphansAndView(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	records := h.client.Records(partition.FamilyTransaction, "alice")
	for _, amount := range []string{"-4.50", "-2.25", "100"} {
		name, currency := "Coffee", "USD"
		d := decimal.RequireFromString(amount)
		_, err := records.Create(ctx, api.RecordInput{Name: &name, Amount: &d, Currency: &currency})
		require.NoError(t, err)
	}

	var count CountOrphansResponse
	h.call(t, "count_orphans", nil, &count)
	require.Equal(t, 3, count.Count)

	var created TabResponse
	h.call(t, "create_tab", map[string]any{"name": "Cafe"}, &created)

	var adopted AdoptOrphansResponse
	h.call(t, "adopt_orphans", map[string]any{"tab_id": created.Tab.ID}, &adopted)
	require.Equal(t, 3, adopted.Adopted)

	var view ViewResponse
	h.call(t, "get_view", nil, &view)
	require.Equal(t, created.Tab.ID, view.TabID)
	require.False(t, view.Loading)
	require.Len(t, view.Records, 3)
	require.Len(t, view.Totals, 1)
	require.Equal(t, "93.25", view.Totals[0].Total)
	require.NotNil(t, view.Stats)
	require.Equal(t, 3, view.Stats.Count)
	require.Equal(t, []string{"Coffee"}, view.Names)

	h.call(t, "count_orphans", nil, &count)
	require.Zero(t, count.Count)
}
