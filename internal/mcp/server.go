package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/tabsync/internal/domain/orphan"
	"github.com/rpggio/tabsync/internal/domain/partition"
	"github.com/rpggio/tabsync/internal/domain/viewsync"
)

// Workspace is the client state the tools drive.
type Workspace interface {
	Scope() partition.Scope
	Partitions() []partition.Partition
	Active() string
	View() viewsync.ViewState
	Relist(ctx context.Context) error
	Create(ctx context.Context, name string) (*partition.Partition, error)
	Rename(ctx context.Context, id, name string) error
	Switch(ctx context.Context, id string) error
	CountOrphans(ctx context.Context) (int, error)
	Adopt(ctx context.Context, targetID string) (*orphan.AdoptResult, error)
}

// Config contains server configuration.
type Config struct {
	Workspace Workspace
	Version   string
	Logger    *slog.Logger
}

// NewServer creates an MCP server exposing the workspace as tools.
func NewServer(cfg Config) *sdkmcp.Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "tabsync",
		Version: cfg.Version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	scope := cfg.Workspace.Scope()
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, scope, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, scope, "outbound"))

	registerTools(server, cfg.Workspace)
	return server
}
