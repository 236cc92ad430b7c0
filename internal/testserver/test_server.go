package testserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rpggio/tabsync/internal/api"
	"github.com/rpggio/tabsync/internal/domain/record"
	"github.com/rpggio/tabsync/internal/domain/tab"
	"github.com/rpggio/tabsync/internal/sqlite"
	"github.com/rpggio/tabsync/internal/transport"
)

// TestServer is an in-process reference server backed by an in-memory database.
type TestServer struct {
	Server *httptest.Server
	DB     *sqlite.DB
	Token  string
	Owner  string
	Keys   *sqlite.APIKeyRepository
}

// New starts a server. With a non-empty token, bearer auth is enforced and the
// token is registered for owner.
func New(t *testing.T, token, owner string) *TestServer {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(sqlite.SchemaServer))

	tabRepo := sqlite.NewTabRepository(db)
	recordRepo := sqlite.NewRecordRepository(db)
	keys := sqlite.NewAPIKeyRepository(db)

	tabSvc := tab.NewService(tabRepo, nil)
	recordSvc := record.NewService(recordRepo, tabRepo, nil)

	var auth func(http.Handler) http.Handler
	if token != "" {
		auth = transport.AuthMiddleware(keys)
	}
	server := httptest.NewServer(transport.NewServer(transport.Services{
		Tabs:    tabSvc,
		Records: recordSvc,
	}, auth, nil))

	ts := &TestServer{
		Server: server,
		DB:     db,
		Token:  token,
		Owner:  owner,
		Keys:   keys,
	}

	if token != "" {
		require.NoError(t, ts.AddAPIKey(token, owner))
	}

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return ts
}

// AddAPIKey registers another token.
func (ts *TestServer) AddAPIKey(token, owner string) error {
	return ts.Keys.AddKey(context.Background(), token, owner, "test")
}

// Client returns an API client authenticated with the server's token.
func (ts *TestServer) Client(t *testing.T) *api.Client {
	t.Helper()
	c, err := api.NewClient(api.Options{
		BaseURL: ts.Server.URL,
		Token:   ts.Token,
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)
	return c
}
