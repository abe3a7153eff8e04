package devto

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newArticlesServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != PublishedArticlesPath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Method != http.MethodGet {
			t.Errorf("unexpected method %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestPublishedArticles(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		want        []Article
		errContains string
	}{
		{
			name:   "single article",
			status: http.StatusOK,
			body:   `[{"slug":"hello-world","body_markdown":"# Hi"}]`,
			want:   []Article{{Slug: "hello-world", BodyMarkdown: "# Hi"}},
		},
		{
			name:   "extra fields decoded",
			status: http.StatusOK,
			body:   `[{"id":42,"title":"Hello","slug":"hello-42","body_markdown":"body","tag_list":["go"],"url":"https://dev.to/u/hello-42","comments_count":3}]`,
			want: []Article{{
				ID: 42, Title: "Hello", Slug: "hello-42", BodyMarkdown: "body",
				TagList: []string{"go"}, URL: "https://dev.to/u/hello-42",
			}},
		},
		{
			name:   "empty collection",
			status: http.StatusOK,
			body:   `[]`,
			want:   []Article{},
		},
		{
			name:        "unauthorized",
			status:      http.StatusUnauthorized,
			body:        `{"error":"unauthorized","status":401}`,
			errContains: "API error (HTTP 401)",
		},
		{
			name:        "malformed json",
			status:      http.StatusOK,
			body:        `[{"slug":`,
			errContains: "failed to parse response",
		},
		{
			name:        "missing body_markdown",
			status:      http.StatusOK,
			body:        `[{"slug":"hello-world"}]`,
			errContains: "unexpected article list payload",
		},
		{
			name:        "object instead of array",
			status:      http.StatusOK,
			body:        `{"slug":"hello-world","body_markdown":"# Hi"}`,
			errContains: "unexpected article list payload",
		},
		{
			name:        "empty slug",
			status:      http.StatusOK,
			body:        `[{"slug":"","body_markdown":"# Hi"}]`,
			errContains: "unexpected article list payload",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newArticlesServer(t, tt.status, tt.body)
			client := NewClient(server.URL, staticKey("abcdefghij"))

			got, err := client.PublishedArticles(context.Background())
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPublishedArticlesJSONUnmodified(t *testing.T) {
	body := `[{"slug":"a","body_markdown":"x","unknown_field":{"nested":true}}]`
	server := newArticlesServer(t, http.StatusOK, body)
	client := NewClient(server.URL, staticKey("k"))

	got, err := client.PublishedArticlesJSON(context.Background())
	require.NoError(t, err)
	assert.Equal(t, body, string(got))
}

func TestPublishedArticlesAPIError(t *testing.T) {
	server := newArticlesServer(t, http.StatusInternalServerError, "boom")
	client := NewClient(server.URL, staticKey("k"))

	_, err := client.PublishedArticlesJSON(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "boom", apiErr.Body)
}

func TestValidateArticleList(t *testing.T) {
	assert.NoError(t, ValidateArticleList([]byte(`[{"slug":"s","body_markdown":""}]`)))
	assert.Error(t, ValidateArticleList([]byte(`[{"slug":1,"body_markdown":""}]`)))
	assert.Error(t, ValidateArticleList([]byte(`not json`)))
}
