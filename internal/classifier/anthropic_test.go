package classifier

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

func TestParsePaths(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			"plain array",
			`["Math/Calculus", "Math/Algebra"]`,
			[]string{"Math/Calculus", "Math/Algebra"},
		},
		{
			"array embedded in prose",
			"Here are my suggestions:\n[\"Fitness/Running\"]\nLet me know!",
			[]string{"Fitness/Running"},
		},
		{"no array", "I could not come up with tags.", nil},
		{"malformed array", `[not json]`, nil},
		{"empty text", "", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParsePaths(tc.text))
		})
	}
}

func TestSuggest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		var req messagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		assert.Contains(t, req.Messages[0].Content, `Task: "write blog post"`)
		assert.Contains(t, req.Messages[0].Content, "MENTAL:")

		fmt.Fprint(w, `{"content":[{"type":"text","text":"[\"Writing/Blogging\"]"}]}`)
	}))
	defer srv.Close()

	c := New("test-key")
	c.baseURL = srv.URL

	paths, err := c.Suggest(context.Background(), "write blog post", "weekly post", "mental", "MENTAL:\n  - Writing")
	require.NoError(t, err)
	assert.Equal(t, []string{"Writing/Blogging"}, paths)
}

func TestSuggestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"type":"rate_limit_error","message":"slow down"}}`)
	}))
	defer srv.Close()

	c := New("test-key")
	c.baseURL = srv.URL

	_, err := c.Suggest(context.Background(), "t", "", "mental", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slow down")
}

func TestSuggestEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"content":[]}`)
	}))
	defer srv.Close()

	c := New("test-key")
	c.baseURL = srv.URL

	paths, err := c.Suggest(context.Background(), "t", "", "mental", "")
	require.NoError(t, err)
	assert.Nil(t, paths)
}
