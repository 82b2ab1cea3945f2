package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGistStore(t *testing.T, handler http.HandlerFunc) *GistStore {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := NewGistStore("abc123", "secret")
	store.baseURL = srv.URL
	return store
}

func gistResponse(content string) string {
	body, _ := json.Marshal(gistPayload{
		Files: map[string]gistFile{ledgerFile: {Content: content}},
	})
	return string(body)
}

func TestGistStoreLoadEmptyInitializesDefault(t *testing.T) {
	store := newTestGistStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/gists/abc123", r.URL.Path)
		assert.Equal(t, "token secret", r.Header.Get("Authorization"))
		fmt.Fprint(w, gistResponse(""))
	})

	l, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, l.Total)
	assert.Len(t, l.Categories, 4)
}

func TestGistStoreLoadExistingDocument(t *testing.T) {
	doc := `{"total":120,"categories":{"mental":100,"physical":20},"tag_points":{"Math":50},"last_deductions":{},"history":[]}`
	store := newTestGistStore(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, gistResponse(doc))
	})

	l, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 120, l.Total)
	assert.Equal(t, 100, l.Categories["mental"])
	assert.Equal(t, 50, l.TagPoints["Math"])
	// Missing category buckets are filled in.
	assert.Contains(t, l.Categories, "social")
	assert.Contains(t, l.Categories, "financial")
}

func TestGistStoreLoadAPIError(t *testing.T) {
	store := newTestGistStore(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	})

	_, err := store.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestGistStoreSaveOverwritesDocument(t *testing.T) {
	var got gistPayload
	store := newTestGistStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/gists/abc123", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	})

	l := New()
	l.Total = 77
	l.Categories["social"] = 77

	require.NoError(t, store.Save(context.Background(), l))

	content := got.Files[ledgerFile].Content
	require.NotEmpty(t, content)

	var saved Ledger
	require.NoError(t, json.Unmarshal([]byte(content), &saved))
	assert.Equal(t, 77, saved.Total)
	assert.Equal(t, 77, saved.Categories["social"])
}
