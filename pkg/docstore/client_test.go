package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  map[string]string
	Auth   string
	Body   map[string]any
}

type recorder struct {
	mu   sync.Mutex
	reqs []recordedRequest
}

func (r *recorder) all() []recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedRequest{}, r.reqs...)
}

func newTestServer(t *testing.T, status int, response string) (*httptest.Server, *recorder) {
	t.Helper()
	rc := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  map[string]string{},
			Auth:   r.Header.Get("Authorization"),
		}
		for k := range r.URL.Query() {
			rec.Query[k] = r.URL.Query().Get(k)
		}
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			assert.NoError(t, json.Unmarshal(b, &rec.Body))
		}
		rc.mu.Lock()
		rc.reqs = append(rc.reqs, rec)
		rc.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv, rc
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := map[string]string{
		"http://gp.local":                "http://gp.local/api/store",
		"http://gp.local/":               "http://gp.local/api/store",
		"  http://gp.local/api/store/  ": "http://gp.local/api/store",
		"http://gp.local/api/store":      "http://gp.local/api/store",
		"http://gp.local/portal//":       "http://gp.local/portal/api/store",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeBaseURL(in), in)
	}
}

func TestGetDocs_EncodesQuery(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusOK, `[{"_id":"b","title":"B"},{"_id":"a","title":"A"}]`)
	c := NewClient(srv.URL, WithTokenSource(StaticToken("tok")))

	q := Query(Collection(Seg("notices")),
		Where("ward", OpIn, []int{1, 2}),
		OrderBy("title", Desc),
		Limit(2),
	)
	snap, err := c.GetDocs(context.Background(), q)
	require.NoError(t, err)

	require.Len(t, reqs.all(), 1)
	req := reqs.all()[0]
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/store/", req.Path)
	assert.Equal(t, "Bearer tok", req.Auth)
	assert.Equal(t, "notices", req.Query["path"])
	assert.JSONEq(t, `[{"field":"ward","op":"in","value":[1,2]}]`, req.Query["filters"])
	assert.JSONEq(t, `[{"field":"title","direction":"desc"}]`, req.Query["sorts"])
	assert.Equal(t, "2", req.Query["limit"])

	require.Equal(t, 2, snap.Size())
	assert.Equal(t, "b", snap.Docs[0].ID())
	assert.Equal(t, "notices/b", snap.Docs[0].Ref().Path())
	assert.Equal(t, map[string]any{"id": "b", "title": "B"}, snap.Docs[0].Data())
}

func TestGetDocs_OmitsEmptyParamsAndToken(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusOK, `null`)
	c := NewClient(srv.URL)

	snap, err := c.GetDocs(context.Background(), Collection(Seg("notices")))
	require.NoError(t, err)
	require.NotNil(t, snap.Docs)
	assert.True(t, snap.Empty())

	req := reqs.all()[0]
	assert.Equal(t, map[string]string{"path": "notices"}, req.Query)
	assert.Empty(t, req.Auth)
}

func TestGetDoc_NormalizesIDs(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantID   string
	}{
		{"stored id field", `{"id":"ward-code","_id":"backend","n":1}`, "backend"},
		{"stored id field after backend id", `{"_id":"backend","id":"ward-code","n":1}`, "backend"},
		{"id field only", `{"id":"explicit","n":1}`, "explicit"},
		{"backend id", `{"_id":"backend","n":1}`, "backend"},
		{"extended json", `{"_id":{"$oid":"65a1b2c3d4e5f60718293a4b"},"n":1}`, "65a1b2c3d4e5f60718293a4b"},
		{"no id", `{"n":1}`, "m1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, reqs := newTestServer(t, http.StatusOK, tt.response)
			c := NewClient(srv.URL)

			snap, err := c.GetDoc(context.Background(), Doc(Seg("members/m1")))
			require.NoError(t, err)
			assert.Equal(t, "/api/store/doc", reqs.all()[0].Path)
			assert.Equal(t, "members/m1", reqs.all()[0].Query["path"])

			assert.True(t, snap.Exists())
			assert.Equal(t, tt.wantID, snap.ID())
			data := snap.Data()
			assert.Equal(t, tt.wantID, data["id"])
			assert.Equal(t, 1.0, data["n"])
			assert.NotContains(t, data, "_id")
		})
	}
}

func TestGetDoc_MissingIsNotAnError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusNotFound, `{"error":"NOT_FOUND_ERROR","message":"document not found"}`)
	c := NewClient(srv.URL)

	snap, err := c.GetDoc(context.Background(), Doc(Seg("members/ghost")))
	require.NoError(t, err)
	assert.False(t, snap.Exists())
	assert.Nil(t, snap.Data())
	assert.Nil(t, snap.Object())
	assert.Equal(t, "ghost", snap.ID())
	assert.Error(t, snap.DataTo(&struct{}{}))
}

func TestWrites_SendPathAndData(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusOK, `{"_id":"m1"}`)
	c := NewClient(srv.URL + "/api/store/")
	ctx := context.Background()
	ref := Doc(Seg("members"), Seg("m1"))

	require.NoError(t, c.SetDoc(ctx, ref, map[string]any{"name": "Asha"}))
	require.NoError(t, c.UpdateDoc(ctx, ref, map[string]any{"ward": 4}))
	require.NoError(t, c.DeleteDoc(ctx, ref))

	require.Len(t, reqs.all(), 3)
	assert.Equal(t, http.MethodPut, reqs.all()[0].Method)
	assert.Equal(t, map[string]any{"path": "members/m1", "data": map[string]any{"name": "Asha"}}, reqs.all()[0].Body)
	assert.Equal(t, http.MethodPatch, reqs.all()[1].Method)
	assert.Equal(t, map[string]any{"path": "members/m1", "data": map[string]any{"ward": 4.0}}, reqs.all()[1].Body)
	assert.Equal(t, http.MethodDelete, reqs.all()[2].Method)
	assert.Equal(t, map[string]any{"path": "members/m1"}, reqs.all()[2].Body)
	for _, r := range reqs.all() {
		assert.Equal(t, "/api/store/", r.Path)
	}
}

func TestAddDoc_ReturnsGeneratedRef(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusCreated, `{"_id":"gen-1","id":"gen-1","title":"Gram Sabha"}`)
	c := NewClient(srv.URL)

	ref, err := c.AddDoc(context.Background(), Collection(Seg("notices")), map[string]any{"title": "Gram Sabha"})
	require.NoError(t, err)
	assert.Equal(t, "notices/gen-1", ref.Path())
	assert.Equal(t, http.MethodPost, reqs.all()[0].Method)
}

func TestAddDoc_IDWithoutBackendID(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusCreated, `{"id":"gen-2","title":"Gram Sabha"}`)
	c := NewClient(srv.URL)

	ref, err := c.AddDoc(context.Background(), Collection(Seg("notices")), map[string]any{"title": "Gram Sabha"})
	require.NoError(t, err)
	assert.Equal(t, "notices/gen-2", ref.Path())
}

func TestAPIError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusForbidden, `{"error":"AUTHORIZATION_ERROR","message":"write denied"}`)
	c := NewClient(srv.URL)

	err := c.DeleteDoc(context.Background(), Doc(Seg("members/m1")))
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "AUTHORIZATION_ERROR", apiErr.Code)
	assert.Equal(t, "write denied", apiErr.Message)
	assert.True(t, IsUnauthorized(err))
	assert.False(t, IsNotFound(err))
}

func TestTransportFailurePropagates(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `[]`)
	srv.Close()

	c := NewClient(srv.URL)
	_, err := c.GetDocs(context.Background(), Collection(Seg("notices")))
	assert.Error(t, err)
}

type failingTokens struct{}

func (failingTokens) Token() (string, error) { return "", errors.New("keychain locked") }

func TestTokenFailure_SendsUnauthenticated(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusOK, `[]`)
	c := NewClient(srv.URL, WithTokenSource(failingTokens{}))

	_, err := c.GetDocs(context.Background(), Collection(Seg("notices")))
	require.NoError(t, err)
	assert.Empty(t, reqs.all()[0].Auth)
}

func TestFileTokenStore(t *testing.T) {
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "nested", "token"))

	tok, err := store.Token()
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, store.SetToken("abc.def.ghi"))
	tok, err = store.Token()
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", tok)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	tok, _ = store.Token()
	assert.Empty(t, tok)
}
