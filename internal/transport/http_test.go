package transport_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rpggio/tabsync/internal/domain/partition"
	"github.com/rpggio/tabsync/internal/testserver"
	"github.com/rpggio/tabsync/internal/transport"
)

func do(t *testing.T, ts *testserver.TestServer, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.Server.URL+path, &buf)
	require.NoError(t, err)
	if ts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+ts.Token)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHTTPServer_Health(t *testing.T) {
	ts := testserver.New(t, "token", "alice")

	resp, err := http.Get(ts.Server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPServer_TabLifecycle(t *testing.T) {
	ts := testserver.New(t, "token", "alice")

	resp := do(t, ts, http.MethodPost, "/transaction-tabs", map[string]string{"name": "Household"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[partition.Partition](t, resp)
	require.Equal(t, "Household", created.Name)
	require.Equal(t, "alice", created.OwnerID)

	resp = do(t, ts, http.MethodGet, "/transaction-tabs", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, decode[[]partition.Partition](t, resp), 1)

	// Families are independent.
	resp = do(t, ts, http.MethodGet, "/portfolio-tabs", nil)
	require.Empty(t, decode[[]partition.Partition](t, resp))

	resp = do(t, ts, http.MethodPut, "/transaction-tabs/"+created.ID, map[string]string{"name": "Home"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Home", decode[partition.Partition](t, resp).Name)

	resp = do(t, ts, http.MethodDelete, "/transaction-tabs/"+created.ID, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, ts, http.MethodDelete, "/transaction-tabs/"+created.ID, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "TAB_NOT_FOUND", decode[transport.ErrorBody](t, resp).Code)
}

func TestHTTPServer_Validation(t *testing.T) {
	ts := testserver.New(t, "token", "alice")

	resp := do(t, ts, http.MethodPost, "/transaction-tabs", map[string]string{"name": "  "})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, ts, http.MethodPost, "/transaction-tabs", map[string]any{"name": "X", "color": "red"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, ts, http.MethodPost, "/transaction-tabs", map[string]string{"name": "X", "username": "mallory"})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = do(t, ts, http.MethodDelete, "/transaction-tabs/any?policy=cascade", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTPServer_OrphansAndRecords(t *testing.T) {
	ts := testserver.New(t, "token", "alice")

	for _, name := range []string{"Coffee", "Rent"} {
		resp := do(t, ts, http.MethodPost, "/transactions", map[string]any{
			"name": name, "amount": "-10.25", "currency": "EUR",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := do(t, ts, http.MethodGet, "/transaction-tabs/orphaned", nil)
	require.Equal(t, map[string]int{"count": 2}, decode[map[string]int](t, resp))

	resp = do(t, ts, http.MethodPost, "/transaction-tabs", map[string]string{"name": "Main"})
	created := decode[partition.Partition](t, resp)

	resp = do(t, ts, http.MethodPost, "/transaction-tabs/"+created.ID+"/adopt", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, map[string]int{"adopted": 2}, decode[map[string]int](t, resp))

	resp = do(t, ts, http.MethodGet, "/transactions?tab_id="+created.ID, nil)
	require.Len(t, decode[[]map[string]any](t, resp), 2)

	resp = do(t, ts, http.MethodGet, "/transactions/summary?tab_id="+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summary := decode[map[string]any](t, resp)
	require.EqualValues(t, 2, summary["count"])

	resp = do(t, ts, http.MethodGet, "/transactions/names?q=co&tab_id="+created.ID, nil)
	names := decode[map[string]any](t, resp)
	require.Equal(t, []any{"Coffee"}, names["names"])

	resp = do(t, ts, http.MethodPost, "/transaction-tabs/missing/adopt", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, ts, http.MethodDelete, "/transaction-tabs/"+created.ID+"?policy=restrict", nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestHTTPServer_Unauthorized(t *testing.T) {
	ts := testserver.New(t, "token", "alice")

	resp, err := http.Get(ts.Server.URL + "/transaction-tabs")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHTTPServer_UsernameWithoutAuth(t *testing.T) {
	ts := testserver.New(t, "", "")

	resp := do(t, ts, http.MethodGet, "/portfolio-tabs", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, ts, http.MethodPost, "/portfolio-tabs", map[string]string{"name": "ETFs", "username": "bob"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, ts, http.MethodGet, "/portfolio-tabs?username=bob", nil)
	require.Len(t, decode[[]partition.Partition](t, resp), 1)

	resp = do(t, ts, http.MethodGet, "/portfolio-tabs?username=carol&role=admin", nil)
	require.Len(t, decode[[]partition.Partition](t, resp), 1)
}
