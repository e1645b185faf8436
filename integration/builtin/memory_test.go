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

func newMemoryServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	auth := func(r *http.Request) bool {
		return r.Header.Get("Authorization") == "Bearer mem-test"
	}
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if !auth(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok","service":"rag-server"}`))
	})
	mux.HandleFunc("/memory/store", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			UserID     string `json:"user_id"`
			Content    string `json:"content"`
			MemoryType string `json:"memory_type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.UserID == "" || payload.Content == "" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		_, _ = w.Write([]byte(`{"status":"stored","doc_id":"mem-abc123","memory_type":"` + payload.MemoryType + `"}`))
	})
	mux.HandleFunc("/memory/query", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Query string `json:"query"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		switch payload.Query {
		case "nothing":
			_, _ = w.Write([]byte(`{"status":"ok","memories":""}`))
		case "broken":
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		default:
			_, _ = w.Write([]byte(`{"status":"ok","memories":"likes coffee","query":"` + payload.Query + `"}`))
		}
	})
	mux.HandleFunc("/ingest", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ingested","doc_id":"doc-42"}`))
	})
	mux.HandleFunc("/query", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Mode string `json:"mode"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		_, _ = w.Write([]byte(`{"status":"ok","result":"the answer","mode":"` + payload.Mode + `"}`))
	})
	return httptest.NewServer(mux)
}

func memoryConfig(baseURL string) map[string]any {
	return map[string]any{"base_url": baseURL, "api_key": "mem-test"}
}

func TestMemoryConnect(t *testing.T) {
	srv := newMemoryServer(t)
	defer srv.Close()

	it := NewMemory(memoryConfig(srv.URL), 5*time.Second)
	if err := it.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if it.Status() != integration.StatusConnected {
		t.Fatalf("status = %s", it.Status())
	}
}

func TestMemoryConnectInvalidKey(t *testing.T) {
	srv := newMemoryServer(t)
	defer srv.Close()

	cfg := memoryConfig(srv.URL)
	cfg["api_key"] = "bad"
	it := NewMemory(cfg, 5*time.Second)

	err := it.Connect(context.Background())
	var cerr *integration.ConnectError
	if err == nil || !errors.As(err, &cerr) {
		t.Fatalf("expected ConnectError, got %v", err)
	}
	if !strings.Contains(cerr.Reason, "invalid API key") {
		t.Fatalf("reason = %q", cerr.Reason)
	}
}

func TestMemoryConnectBadHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"degraded"}`))
	}))
	defer srv.Close()

	it := NewMemory(map[string]any{"base_url": srv.URL}, 5*time.Second)
	err := it.Connect(context.Background())
	var cerr *integration.ConnectError
	if err == nil || !errors.As(err, &cerr) {
		t.Fatalf("expected ConnectError, got %v", err)
	}
	if !strings.Contains(cerr.Reason, "invalid health response") {
		t.Fatalf("reason = %q", cerr.Reason)
	}
}

func TestMemoryStore(t *testing.T) {
	srv := newMemoryServer(t)
	defer srv.Close()

	it := NewMemory(memoryConfig(srv.URL), 5*time.Second)
	res := it.ExecuteSkill(context.Background(), "memory_store", map[string]any{
		"user_id": "u1",
		"content": "likes coffee",
		"tags":    "prefs, coffee",
	})
	if !res.Success || !strings.Contains(res.Output, "mem-abc123") {
		t.Fatalf("unexpected result: %+v", res)
	}
	// Defaults to long_term when memory_type is omitted.
	if !strings.Contains(res.Output, "long_term") {
		t.Fatalf("output = %q", res.Output)
	}
}

func TestMemoryStoreInvalidType(t *testing.T) {
	it := NewMemory(map[string]any{"base_url": "http://unused"}, time.Second)
	res := it.ExecuteSkill(context.Background(), "memory_store", map[string]any{
		"user_id":     "u1",
		"content":     "x",
		"memory_type": "eternal",
	})
	if res.Success || !strings.Contains(res.Output, "Invalid memory_type") {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestMemoryRecall(t *testing.T) {
	srv := newMemoryServer(t)
	defer srv.Close()

	it := NewMemory(memoryConfig(srv.URL), 5*time.Second)
	res := it.ExecuteSkill(context.Background(), "memory_recall", map[string]any{
		"user_id": "u1",
		"query":   "coffee",
	})
	if !res.Success || res.Output != "likes coffee" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestMemoryRecallEmpty(t *testing.T) {
	srv := newMemoryServer(t)
	defer srv.Close()

	it := NewMemory(memoryConfig(srv.URL), 5*time.Second)
	res := it.ExecuteSkill(context.Background(), "memory_recall", map[string]any{
		"user_id": "u1",
		"query":   "nothing",
	})
	if !res.Success || res.Output != "No results" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestMemoryRecallMissingField(t *testing.T) {
	srv := newMemoryServer(t)
	defer srv.Close()

	it := NewMemory(memoryConfig(srv.URL), 5*time.Second)
	res := it.ExecuteSkill(context.Background(), "memory_recall", map[string]any{
		"user_id": "u1",
		"query":   "broken",
	})
	if res.Success || !strings.Contains(res.Output, "missing memories") {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestMemoryRagIngest(t *testing.T) {
	srv := newMemoryServer(t)
	defer srv.Close()

	it := NewMemory(memoryConfig(srv.URL), 5*time.Second)
	res := it.ExecuteSkill(context.Background(), "rag_ingest", map[string]any{"content": "doc text"})
	if !res.Success || !strings.Contains(res.Output, "doc-42") {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestMemoryRagQuery(t *testing.T) {
	srv := newMemoryServer(t)
	defer srv.Close()

	it := NewMemory(memoryConfig(srv.URL), 5*time.Second)
	res := it.ExecuteSkill(context.Background(), "rag_query", map[string]any{"query": "what is up"})
	if !res.Success || res.Output != "the answer" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestMemoryRagQueryInvalidMode(t *testing.T) {
	it := NewMemory(map[string]any{"base_url": "http://unused"}, time.Second)
	res := it.ExecuteSkill(context.Background(), "rag_query", map[string]any{
		"query": "x",
		"mode":  "sideways",
	})
	if res.Success || !strings.Contains(res.Output, "Invalid mode") {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestMemorySchemaRegistered(t *testing.T) {
	schema := MemorySchema()
	if _, ok := schema.SkillByID("memory_store"); !ok {
		t.Fatalf("memory_store missing from schema")
	}
	for _, id := range []string{"memory_store", "memory_recall"} {
		sk, _ := schema.SkillByID(id)
		if sk.AuditAction != id {
			t.Fatalf("%s audit action = %q", id, sk.AuditAction)
		}
	}
}
