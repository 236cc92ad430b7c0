package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/tabsync/internal/workspace"
)

func registerTools(server *sdkmcp.Server, ws Workspace) {
	t := &tools{ws: ws}

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_tabs",
		Description: "List the tabs and the active one. Refetches from the server.",
	}, t.listTabs)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_tab",
		Description: "Create a tab and make it active",
	}, t.createTab)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "rename_tab",
		Description: "Rename a tab",
	}, t.renameTab)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "switch_tab",
		Description: "Make a listed tab active and reload its view",
	}, t.switchTab)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "count_orphans",
		Description: "Count records that belong to no tab",
		Annotations: &sdkmcp.ToolAnnotations{ReadOnlyHint: true},
	}, t.countOrphans)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "adopt_orphans",
		Description: "Move every orphan record into a tab. Confirm with the user first.",
	}, t.adoptOrphans)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_view",
		Description: "Get the records, totals, stats and names of the active tab",
		Annotations: &sdkmcp.ToolAnnotations{ReadOnlyHint: true},
	}, t.getView)
}

type tools struct {
	ws Workspace
}

// toolError reports err as a coded notice.
func toolError(err error) error {
	if n := workspace.MapError(err); n != nil {
		return n
	}
	return nil
}

func (t *tools) listTabs(ctx context.Context, _ *sdkmcp.CallToolRequest, _ ListTabsParams) (*sdkmcp.CallToolResult, ListTabsResponse, error) {
	if err := toolError(t.ws.Relist(ctx)); err != nil {
		return nil, ListTabsResponse{}, err
	}

	active := t.ws.Active()
	resp := ListTabsResponse{
		Family: string(t.ws.Scope().Family),
		Tabs:   []TabInfo{},
		Active: active,
	}
	for _, p := range t.ws.Partitions() {
		resp.Tabs = append(resp.Tabs, tabInfo(p, active))
	}
	return nil, resp, nil
}

func (t *tools) createTab(ctx context.Context, _ *sdkmcp.CallToolRequest, in CreateTabParams) (*sdkmcp.CallToolResult, TabResponse, error) {
	p, err := t.ws.Create(ctx, in.Name)
	if p == nil {
		return nil, TabResponse{}, toolError(err)
	}
	// The tab exists even when loading its view failed; get_view shows that error.
	return nil, TabResponse{Tab: tabInfo(*p, t.ws.Active())}, nil
}

func (t *tools) renameTab(ctx context.Context, _ *sdkmcp.CallToolRequest, in RenameTabParams) (*sdkmcp.CallToolResult, TabResponse, error) {
	if err := toolError(t.ws.Rename(ctx, in.ID, in.Name)); err != nil {
		return nil, TabResponse{}, err
	}
	for _, p := range t.ws.Partitions() {
		if p.ID == in.ID {
			return nil, TabResponse{Tab: tabInfo(p, t.ws.Active())}, nil
		}
	}
	return nil, TabResponse{Tab: TabInfo{ID: in.ID, Name: in.Name}}, nil
}

func (t *tools) switchTab(ctx context.Context, _ *sdkmcp.CallToolRequest, in SwitchTabParams) (*sdkmcp.CallToolResult, ViewResponse, error) {
	if err := toolError(t.ws.Switch(ctx, in.ID)); err != nil {
		return nil, ViewResponse{}, err
	}
	return nil, viewResponse(t.ws.View()), nil
}

func (t *tools) countOrphans(ctx context.Context, _ *sdkmcp.CallToolRequest, _ CountOrphansParams) (*sdkmcp.CallToolResult, CountOrphansResponse, error) {
	n, err := t.ws.CountOrphans(ctx)
	if err != nil {
		return nil, CountOrphansResponse{}, toolError(err)
	}
	return nil, CountOrphansResponse{Count: n}, nil
}

func (t *tools) adoptOrphans(ctx context.Context, _ *sdkmcp.CallToolRequest, in AdoptOrphansParams) (*sdkmcp.CallToolResult, AdoptOrphansResponse, error) {
	res, err := t.ws.Adopt(ctx, in.TabID)
	if res == nil {
		return nil, AdoptOrphansResponse{}, toolError(err)
	}
	return nil, AdoptOrphansResponse{TabID: in.TabID, Adopted: res.AdoptedCount}, nil
}

func (t *tools) getView(_ context.Context, _ *sdkmcp.CallToolRequest, _ GetViewParams) (*sdkmcp.CallToolResult, ViewResponse, error) {
	return nil, viewResponse(t.ws.View()), nil
}
