// Package github fetches the pull request context (metadata, posted review
// comments, repository info) that phase-1 snapshots alongside the diff,
// grounded on bkyoung's internal/adapter/github/client.go HTTP conventions
// but trimmed to the read-only GET endpoints this pipeline needs — posting
// reviews is out of scope here; the report's comment bodies are handed to
// an external poster per §6.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prradar/pipeline/internal/domain"
)

const defaultBaseURL = "https://api.github.com"

// Client is a minimal REST client for the pull request read endpoints.
type Client struct {
	Token      string
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient builds a Client authenticated with a GitHub personal access
// token or the Actions-provided GITHUB_TOKEN.
func NewClient(token string) *Client {
	return &Client{
		Token:      token,
		BaseURL:    defaultBaseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type pullResponse struct {
	Number int `json:"number"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	User   struct {
		Login string `json:"login"`
		Name  string `json:"name"`
	} `json:"user"`
	State string `json:"state"`
	Head  struct {
		Ref string `json:"ref"`
		SHA string `json:"sha"`
	} `json:"head"`
	CreatedAt time.Time `json:"created_at"`
}

// FetchPR retrieves GET /repos/{owner}/{repo}/pulls/{number}.
func (c *Client) FetchPR(ctx context.Context, owner, repo string, number int) (domain.PRMetadata, error) {
	var resp pullResponse
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d", c.baseURL(), owner, repo, number)
	if err := c.get(ctx, url, &resp); err != nil {
		return domain.PRMetadata{}, err
	}
	return domain.PRMetadata{
		Number:      resp.Number,
		Title:       resp.Title,
		Body:        resp.Body,
		Author:      domain.PRAuthor{Login: resp.User.Login, Name: resp.User.Name},
		State:       resp.State,
		HeadRefName: resp.Head.Ref,
		HeadRefOID:  resp.Head.SHA,
		CreatedAt:   resp.CreatedAt,
	}, nil
}

type reviewCommentResponse struct {
	ID        int64     `json:"id"`
	Body      string    `json:"body"`
	Path      string    `json:"path"`
	Line      *int      `json:"line"`
	StartLine *int      `json:"start_line"`
	User      struct {
		Login string `json:"login"`
	} `json:"user"`
	CreatedAt time.Time `json:"created_at"`
	HTMLURL   string    `json:"html_url"`
}

// FetchComments retrieves GET /repos/{owner}/{repo}/pulls/{number}/comments,
// the review comments already posted to the pull request.
func (c *Client) FetchComments(ctx context.Context, owner, repo string, number int) ([]domain.ReviewComment, error) {
	var raw []reviewCommentResponse
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/comments", c.baseURL(), owner, repo, number)
	if err := c.get(ctx, url, &raw); err != nil {
		return nil, err
	}
	out := make([]domain.ReviewComment, 0, len(raw))
	for _, r := range raw {
		out = append(out, domain.ReviewComment{
			ID:        r.ID,
			Body:      r.Body,
			Path:      r.Path,
			Line:      r.Line,
			StartLine: r.StartLine,
			Author:    r.User.Login,
			CreatedAt: r.CreatedAt,
			URL:       r.HTMLURL,
		})
	}
	return out, nil
}

type repoResponse struct {
	Owner struct {
		Login string `json:"login"`
	} `json:"owner"`
	Name          string `json:"name"`
	DefaultBranch string `json:"default_branch"`
}

// FetchRepo retrieves GET /repos/{owner}/{repo}.
func (c *Client) FetchRepo(ctx context.Context, owner, repo string) (domain.RepoInfo, error) {
	var resp repoResponse
	url := fmt.Sprintf("%s/repos/%s/%s", c.baseURL(), owner, repo)
	if err := c.get(ctx, url, &resp); err != nil {
		return domain.RepoInfo{}, err
	}
	return domain.RepoInfo{
		Owner:         resp.Owner.Login,
		Name:          resp.Name,
		DefaultBranch: resp.DefaultBranch,
	}, nil
}

func (c *Client) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return defaultBaseURL
}

func (c *Client) get(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("github request %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("github request %s: status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
