package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `tabsync keeps named tabs over one resource family (transactions or portfolio holdings).

Core concepts:
- Tab: a named partition of records. Exactly one tab is active, or none.
- Orphan: a record that belongs to no tab (its tab was deleted with the detach policy).
- View: the active tab's record list, summary, stats and name index. It always belongs to the active tab.

Default workflow:
1) list_tabs to see the tabs and which one is active.
2) switch_tab or create_tab to change the active tab; both reload the view.
3) get_view to read the records, totals and stats of the active tab.
4) count_orphans, then adopt_orphans into a tab after the user agrees.

Docs: tabsync://docs/index
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "tabsync://docs/index",
		Name:        "docs_index",
		Title:       "tabsync tools",
		Description: "What each tool does and which errors to expect.",
		Content: `# tabsync tools

## Tools

- ` + "`list_tabs`" + ` refetches the tab list and repairs the active tab if it vanished.
- ` + "`create_tab`" + ` creates a tab and makes it active. Names are trimmed and must not be empty; they need not be unique.
- ` + "`rename_tab`" + ` renames a tab. Renaming to the current name does nothing.
- ` + "`switch_tab`" + ` activates a listed tab and reloads the view.
- ` + "`count_orphans`" + ` counts records without a tab. Read only.
- ` + "`adopt_orphans`" + ` moves every orphan into a tab in one request. Ask the user first.
- ` + "`get_view`" + ` returns the view of the active tab.

## Errors

Tool errors start with a code:

- ` + "`VALIDATION`" + `: fix the input; nothing was sent.
- ` + "`NOT_FOUND`" + `: the tab or record is gone; the tab list was refreshed, call ` + "`list_tabs`" + `.
- ` + "`NETWORK`" + `: the server did not answer; nothing changed. Nothing is retried automatically.
- ` + "`UNAUTHORIZED`" + `: the configured token was rejected.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
