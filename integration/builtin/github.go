package builtin

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ryan12324/OpenAssistant-sub003/capability"
	"github.com/ryan12324/OpenAssistant-sub003/integration"
)

const githubDefaultBaseURL = "https://api.github.com"

func GitHubSchema() *capability.Schema {
	return &capability.Schema{
		ID:       "github",
		Name:     "GitHub",
		Category: capability.CategoryProductivity,
		ConfigFields: []capability.ConfigField{
			{Key: "token", Type: capability.FieldSecret, Required: true},
			{Key: "base_url", Type: capability.FieldString, Default: githubDefaultBaseURL},
		},
		Skills: []capability.Skill{
			{
				ID:          "github_create_issue",
				Name:        "Create Issue",
				Description: "Open an issue in a repository.",
				Params: []capability.Param{
					{Name: "repo", Type: "string", Required: true, Description: "owner/name repository."},
					{Name: "title", Type: "string", Required: true, Description: "Issue title."},
					{Name: "body", Type: "string", Description: "Issue body."},
				},
			},
			{
				ID:          "github_search_issues",
				Name:        "Search Issues",
				Description: "Search issues and pull requests.",
				Params: []capability.Param{
					{Name: "query", Type: "string", Required: true, Description: "GitHub search query."},
					{Name: "limit", Type: "number", Description: "Max results (default 5)."},
				},
			},
		},
	}
}

type GitHubIntegration struct {
	*integration.Base

	token   string
	baseURL string
	http    *http.Client
}

func NewGitHub(cfg map[string]any, timeout time.Duration) *GitHubIntegration {
	it := &GitHubIntegration{
		token:   stringConfig(cfg, "token"),
		baseURL: strings.TrimRight(stringConfig(cfg, "base_url"), "/"),
		http:    newHTTPClient(timeout),
	}
	if it.baseURL == "" {
		it.baseURL = githubDefaultBaseURL
	}
	it.Base = integration.NewBase(GitHubSchema(), it.verify)
	it.Handle("github_create_issue", it.createIssue)
	it.Handle("github_search_issues", it.searchIssues)
	return it
}

func (it *GitHubIntegration) verify(ctx context.Context) (string, error) {
	if it.token == "" {
		return "", integration.Connectf("github", nil, "missing token")
	}
	var out struct {
		Login string `json:"login"`
	}
	err := httpJSON(ctx, it.http, http.MethodGet, it.baseURL+"/user", it.authHeaders(), nil, &out)
	if err != nil {
		if se, ok := err.(*httpStatusError); ok && se.Status == http.StatusUnauthorized {
			return "", integration.Connectf("github", nil, "invalid token (http 401)")
		}
		return "", integration.Connectf("github", err, "upstream unreachable")
	}
	if strings.TrimSpace(out.Login) == "" {
		return "", integration.Connectf("github", nil, "invalid user response: missing login")
	}
	return "", nil
}

func (it *GitHubIntegration) createIssue(ctx context.Context, args map[string]any) integration.Result {
	repo := stringParam(args, "repo")
	title := stringParam(args, "title")
	if repo == "" || title == "" {
		return integration.Failf("Missing required parameter: repo and title are required")
	}
	if strings.Count(repo, "/") != 1 {
		return integration.Failf("Invalid repo %q: expected owner/name", repo)
	}

	payload := map[string]any{"title": title}
	if body := stringParam(args, "body"); body != "" {
		payload["body"] = body
	}

	var out struct {
		Number  int    `json:"number"`
		HTMLURL string `json:"html_url"`
	}
	u := fmt.Sprintf("%s/repos/%s/issues", it.baseURL, repo)
	if err := httpJSON(ctx, it.http, http.MethodPost, u, it.authHeaders(), payload, &out); err != nil {
		return integration.Failf("Failed to create issue: %v", err)
	}
	if out.Number == 0 {
		return integration.Failf("Invalid response from GitHub: missing issue number")
	}
	return integration.TextData(fmt.Sprintf("Created issue #%d: %s", out.Number, out.HTMLURL), out)
}

func (it *GitHubIntegration) searchIssues(ctx context.Context, args map[string]any) integration.Result {
	query := stringParam(args, "query")
	if query == "" {
		return integration.Failf("Missing required parameter: query")
	}
	limit := intParam(args, "limit", 5, 50)

	var out struct {
		TotalCount *int `json:"total_count"`
		Items      []struct {
			Number  int    `json:"number"`
			Title   string `json:"title"`
			State   string `json:"state"`
			HTMLURL string `json:"html_url"`
		} `json:"items"`
	}
	u := fmt.Sprintf("%s/search/issues?q=%s&per_page=%d", it.baseURL, url.QueryEscape(query), limit)
	if err := httpJSON(ctx, it.http, http.MethodGet, u, it.authHeaders(), nil, &out); err != nil {
		return integration.Failf("Failed to search issues: %v", err)
	}
	if out.TotalCount == nil {
		return integration.Failf("Invalid response from GitHub: missing total_count")
	}
	if *out.TotalCount == 0 || len(out.Items) == 0 {
		return integration.Text("No results")
	}

	lines := make([]string, 0, len(out.Items))
	for _, item := range out.Items {
		lines = append(lines, fmt.Sprintf("#%d [%s] %s (%s)", item.Number, item.State, item.Title, item.HTMLURL))
	}
	return integration.TextData(strings.Join(lines, "\n"), out.Items)
}

func (it *GitHubIntegration) authHeaders() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + it.token,
		"Accept":        "application/vnd.github+json",
	}
}
