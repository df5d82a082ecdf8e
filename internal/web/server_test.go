package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"resource-cards/internal/model"
	"resource-cards/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, basePath string) (http.Handler, *store.Store) {
	t.Helper()
	st, err := store.Open(context.Background(), t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	srv, err := NewServer(ServerConfig{Addr: "127.0.0.1:0", BasePath: basePath, Store: st, CORSOrigins: []string{"http://localhost:3000"}})
	require.NoError(t, err)
	return srv.Handler(), st
}

func do(t *testing.T, h http.Handler, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var env struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env.Data
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env.Error.Code
}

func TestNewServer_Validates(t *testing.T) {
	t.Parallel()
	_, err := NewServer(ServerConfig{Addr: " "})
	require.Error(t, err)
	_, err = NewServer(ServerConfig{Addr: "127.0.0.1:0"})
	require.Error(t, err)
}

func TestHealth(t *testing.T) {
	t.Parallel()
	h, _ := newTestServer(t, "")
	rec := do(t, h, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok\n", rec.Body.String())
}

func TestCards_SaveAndLoad(t *testing.T) {
	t.Parallel()
	h, _ := newTestServer(t, "/api")

	rec := do(t, h, http.MethodPost, "/api/cards/c1", "application/json", `{"cardid":"c1","name":"Card A","cards":[],"nodes":[],"widgets":[]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	saved := decodeData[map[string]any](t, rec)
	require.Equal(t, "Card A", saved["name"])

	rec = do(t, h, http.MethodGet, "/api/cards/c1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var payload model.CardPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.JSONEq(t, `"c1"`, string(payload.Data["cardid"]))
	require.NotEmpty(t, payload.Datatypes)

	rec = do(t, h, http.MethodGet, "/api/cards", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decodeData[[]model.CardSummary](t, rec), 1)

	rec = do(t, h, http.MethodDelete, "/api/cards/c1", "", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/cards/c1", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "not_found", errorCode(t, rec))
}

func TestCards_HTML(t *testing.T) {
	t.Parallel()
	h, _ := newTestServer(t, "")

	body := `{"cardid":"c1","name":"Site <b>","instructions":"Some **markdown** :smile:","cards":[{"cardid":"c2","name":"Phase"}]}`
	rec := do(t, h, http.MethodPost, "/cards/c1", "application/json", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/cards/c1/html", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	page := rec.Body.String()
	require.Contains(t, page, "<title>Site &lt;b&gt;</title>")
	require.Contains(t, page, "<strong>markdown</strong>")
	require.Contains(t, page, "<h2>Phase</h2>")
	require.NotContains(t, page, "<h1>Site <b></h1>")

	rec = do(t, h, http.MethodGet, "/cards/missing/html", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCards_SaveRejects(t *testing.T) {
	t.Parallel()
	h, _ := newTestServer(t, "")

	tests := []struct {
		name, body, code string
	}{
		{name: "empty", body: "", code: "invalid_body"},
		{name: "not json", body: "{", code: "invalid_request"},
		{name: "mismatch", body: `{"cardid":"other"}`, code: "invalid_request"},
	}
	for _, tc := range tests {
		rec := do(t, h, http.MethodPost, "/cards/c1", "application/json", tc.body)
		require.Equal(t, http.StatusBadRequest, rec.Code, tc.name)
		require.Equal(t, tc.code, errorCode(t, rec), tc.name)
	}
}

func TestRelatedResources_FormAndJSON(t *testing.T) {
	t.Parallel()
	h, st := newTestServer(t, "")
	ctx := context.Background()

	add := func(name string) string {
		r, err := st.AddResource(ctx, model.Resource{Name: name})
		require.NoError(t, err)
		return r.ResourceInstanceID
	}
	root, a, b := add("root"), add("a"), add("b")

	form := url.Values{}
	form.Set("relationship_type", "a9deade8-54c2-4683-8d76-a031c7301a47")
	form.Set("root_resourceinstanceid", root)
	form.Add("instances_to_relate[]", a)
	form.Add("instances_to_relate[]", b)
	rec := do(t, h, http.MethodPost, "/related_resources", "application/x-www-form-urlencoded", form.Encode())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, decodeData[[]model.Relationship](t, rec), 2)

	c := add("c")
	body, _ := json.Marshal(model.RelationshipRequest{RelationshipType: "t", InstancesToRelate: []string{c}, RootResourceInstanceID: root})
	rec = do(t, h, http.MethodPost, "/related_resources", "application/json", string(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, decodeData[[]model.Relationship](t, rec), 1)

	rec = do(t, h, http.MethodGet, "/related_resources/"+root, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decodeData[[]model.Relationship](t, rec), 3)

	rec = do(t, h, http.MethodPost, "/related_resources", "application/x-www-form-urlencoded", "relationship_type=x")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_request", errorCode(t, rec))

	rec = do(t, h, http.MethodGet, "/related_resources/ghost", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGraphs(t *testing.T) {
	t.Parallel()
	h, _ := newTestServer(t, "")

	rec := do(t, h, http.MethodPost, "/graphs", "application/json", `{"name":"Person","slug":"person"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/graphs", "application/json", `{"name":"Again","slug":"person"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "slug_taken", errorCode(t, rec))

	rec = do(t, h, http.MethodPost, "/graphs", "application/json", `{"name":"Bad","slug":"no spaces"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_slug", errorCode(t, rec))

	rec = do(t, h, http.MethodGet, "/graphs/person", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Person", decodeData[model.Graph](t, rec).Name)

	rec = do(t, h, http.MethodGet, "/graphs", "", "")
	require.Len(t, decodeData[[]model.Graph](t, rec), 1)
}

func TestResourcesAndSearch(t *testing.T) {
	t.Parallel()
	h, _ := newTestServer(t, "")

	for _, name := range []string{"Ada Lovelace", "Grace Hopper", "Alan Turing"} {
		rec := do(t, h, http.MethodPost, "/resources", "application/json", `{"displayname":"`+name+`"}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	rec := do(t, h, http.MethodPost, "/resources", "application/json", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/resources", "", "")
	require.Len(t, decodeData[[]model.Resource](t, rec), 3)

	rec = do(t, h, http.MethodGet, "/search?q=hopper", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	hits := decodeData[[]struct {
		Resource model.Resource `json:"resource"`
	}](t, rec)
	require.Len(t, hits, 1)
	require.Equal(t, "Grace Hopper", hits[0].Resource.Name)

	rec = do(t, h, http.MethodGet, "/search?q=a&limit=x", "", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORS(t *testing.T) {
	t.Parallel()
	h, _ := newTestServer(t, "")
	req := httptest.NewRequest(http.MethodGet, "/datatypes", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
