package builtin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ryan12324/OpenAssistant-sub003/integration"
)

func newGitHubServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer ghp-test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"login":"octocat"}`))
	})
	mux.HandleFunc("/repos/octocat/hello/issues", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Title string `json:"title"`
			Body  string `json:"body"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Title == "" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"number":42,"html_url":"https://github.com/octocat/hello/issues/42"}`))
	})
	mux.HandleFunc("/search/issues", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "nothing" {
			_, _ = w.Write([]byte(`{"total_count":0,"items":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"total_count":1,"items":[{"number":7,"title":"Bug","state":"open","html_url":"https://github.com/octocat/hello/issues/7"}]}`))
	})
	return httptest.NewServer(mux)
}

func githubConfig(baseURL string) map[string]any {
	return map[string]any{"token": "ghp-test", "base_url": baseURL}
}

func TestGitHubConnect(t *testing.T) {
	srv := newGitHubServer(t)
	defer srv.Close()

	it := NewGitHub(githubConfig(srv.URL), 5*time.Second)
	if err := it.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if it.Status() != integration.StatusConnected {
		t.Fatalf("status = %s", it.Status())
	}
}

func TestGitHubConnectInvalidToken(t *testing.T) {
	srv := newGitHubServer(t)
	defer srv.Close()

	cfg := githubConfig(srv.URL)
	cfg["token"] = "bad"
	it := NewGitHub(cfg, 5*time.Second)

	err := it.Connect(context.Background())
	var cerr *integration.ConnectError
	if err == nil || !errors.As(err, &cerr) {
		t.Fatalf("expected ConnectError, got %v", err)
	}
	if !strings.Contains(cerr.Reason, "invalid token") {
		t.Fatalf("reason = %q", cerr.Reason)
	}
}

func TestGitHubCreateIssue(t *testing.T) {
	srv := newGitHubServer(t)
	defer srv.Close()

	it := NewGitHub(githubConfig(srv.URL), 5*time.Second)
	if err := it.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	res := it.ExecuteSkill(context.Background(), "github_create_issue", map[string]any{
		"repo":  "octocat/hello",
		"title": "Something broke",
		"body":  "details",
	})
	if !res.Success || !strings.Contains(res.Output, "#42") {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestGitHubCreateIssueBadRepo(t *testing.T) {
	it := NewGitHub(githubConfig("http://unused"), time.Second)
	res := it.ExecuteSkill(context.Background(), "github_create_issue", map[string]any{
		"repo":  "not-a-repo",
		"title": "x",
	})
	if res.Success || !strings.Contains(res.Output, "Invalid repo") {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestGitHubSearchIssues(t *testing.T) {
	srv := newGitHubServer(t)
	defer srv.Close()

	it := NewGitHub(githubConfig(srv.URL), 5*time.Second)
	if err := it.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	res := it.ExecuteSkill(context.Background(), "github_search_issues", map[string]any{"query": "bug"})
	if !res.Success || !strings.Contains(res.Output, "#7 [open] Bug") {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestGitHubSearchIssuesEmpty(t *testing.T) {
	srv := newGitHubServer(t)
	defer srv.Close()

	it := NewGitHub(githubConfig(srv.URL), 5*time.Second)
	if err := it.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	res := it.ExecuteSkill(context.Background(), "github_search_issues", map[string]any{"query": "nothing"})
	if !res.Success || res.Output != "No results" {
		t.Fatalf("unexpected result: %+v", res)
	}
}
