package github_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prradar/pipeline/internal/adapter/github"
)

func TestClient_FetchPR(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/widgets/pulls/42", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"number": 42,
			"title":  "add widgets",
			"body":   "description",
			"user":   map[string]any{"login": "octocat", "name": "The Octocat"},
			"state":  "open",
			"head":   map[string]any{"ref": "feature", "sha": "abc123"},
		})
	}))
	defer server.Close()

	client := github.NewClient("test-token")
	client.BaseURL = server.URL

	pr, err := client.FetchPR(context.Background(), "acme", "widgets", 42)
	require.NoError(t, err)
	assert.Equal(t, 42, pr.Number)
	assert.Equal(t, "add widgets", pr.Title)
	assert.Equal(t, "octocat", pr.Author.Login)
	assert.Equal(t, "feature", pr.HeadRefName)
	assert.Equal(t, "abc123", pr.HeadRefOID)
}

func TestClient_FetchComments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/widgets/pulls/42/comments", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": 1, "body": "looks good", "path": "main.go", "user": map[string]any{"login": "reviewer"}},
		})
	}))
	defer server.Close()

	client := github.NewClient("test-token")
	client.BaseURL = server.URL

	comments, err := client.FetchComments(context.Background(), "acme", "widgets", 42)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "looks good", comments[0].Body)
	assert.Equal(t, "reviewer", comments[0].Author)
}

func TestClient_FetchRepo_PropagatesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := github.NewClient("test-token")
	client.BaseURL = server.URL

	_, err := client.FetchRepo(context.Background(), "acme", "missing")
	assert.Error(t, err)
}
