package builtin

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ryan12324/OpenAssistant-sub003/capability"
	"github.com/ryan12324/OpenAssistant-sub003/integration"
)

const memoryDefaultBaseURL = "http://localhost:8020"

func MemorySchema() *capability.Schema {
	return &capability.Schema{
		ID:       "memory",
		Name:     "Memory (RAG)",
		Category: capability.CategoryProductivity,
		ConfigFields: []capability.ConfigField{
			{Key: "base_url", Type: capability.FieldString, Default: memoryDefaultBaseURL},
			{Key: "api_key", Type: capability.FieldSecret},
		},
		Skills: []capability.Skill{
			{
				ID:          "memory_store",
				Name:        "Store Memory",
				Description: "Store a memory entry for a user.",
				AuditAction: "memory_store",
				Params: []capability.Param{
					{Name: "user_id", Type: "string", Required: true, Description: "User the memory belongs to."},
					{Name: "content", Type: "string", Required: true, Description: "Memory content."},
					{Name: "memory_type", Type: "string", Description: "short_term, long_term or episodic (default long_term)."},
					{Name: "tags", Type: "string", Description: "Comma-separated tags."},
				},
			},
			{
				ID:          "memory_recall",
				Name:        "Recall Memories",
				Description: "Retrieve memories for a user matching a query.",
				AuditAction: "memory_recall",
				Params: []capability.Param{
					{Name: "user_id", Type: "string", Required: true, Description: "User whose memories to search."},
					{Name: "query", Type: "string", Required: true, Description: "What to recall."},
					{Name: "memory_type", Type: "string", Description: "Restrict to one memory type."},
					{Name: "top_k", Type: "number", Description: "Max memories (default 5)."},
				},
			},
			{
				ID:          "rag_ingest",
				Name:        "Ingest Document",
				Description: "Ingest text into the knowledge graph.",
				Params: []capability.Param{
					{Name: "content", Type: "string", Required: true, Description: "Document text."},
					{Name: "doc_id", Type: "string", Description: "Optional stable document id."},
				},
			},
			{
				ID:          "rag_query",
				Name:        "Query Knowledge",
				Description: "Query the knowledge graph.",
				Params: []capability.Param{
					{Name: "query", Type: "string", Required: true, Description: "Question to answer."},
					{Name: "mode", Type: "string", Description: "local, global, hybrid, naive or mix (default hybrid)."},
					{Name: "top_k", Type: "number", Description: "Max chunks (default 5)."},
				},
			},
		},
	}
}

// MemoryIntegration fronts the RAG memory server. Connect probes /health;
// every other endpoint carries the configured API key as a bearer token.
type MemoryIntegration struct {
	*integration.Base

	baseURL string
	apiKey  string
	http    *http.Client
}

func NewMemory(cfg map[string]any, timeout time.Duration) *MemoryIntegration {
	it := &MemoryIntegration{
		baseURL: strings.TrimRight(stringConfig(cfg, "base_url"), "/"),
		apiKey:  stringConfig(cfg, "api_key"),
		http:    newHTTPClient(timeout),
	}
	if it.baseURL == "" {
		it.baseURL = memoryDefaultBaseURL
	}
	it.Base = integration.NewBase(MemorySchema(), it.probe)
	it.Handle("memory_store", it.store)
	it.Handle("memory_recall", it.recall)
	it.Handle("rag_ingest", it.ingest)
	it.Handle("rag_query", it.query)
	return it
}

func (it *MemoryIntegration) probe(ctx context.Context) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	err := httpJSON(ctx, it.http, http.MethodGet, it.baseURL+"/health", it.authHeaders(), nil, &out)
	if err != nil {
		if se, ok := err.(*httpStatusError); ok && se.Status == http.StatusUnauthorized {
			return "", integration.Connectf("memory", nil, "invalid API key (http 401)")
		}
		return "", integration.Connectf("memory", err, "memory server unreachable")
	}
	if out.Status != "ok" {
		return "", integration.Connectf("memory", nil, "invalid health response: status %q", out.Status)
	}
	return "", nil
}

func (it *MemoryIntegration) store(ctx context.Context, args map[string]any) integration.Result {
	userID := stringParam(args, "user_id")
	content := stringParam(args, "content")
	if userID == "" || content == "" {
		return integration.Failf("Missing required parameter: user_id and content are required")
	}
	memoryType := stringParam(args, "memory_type")
	if memoryType == "" {
		memoryType = "long_term"
	}
	switch memoryType {
	case "short_term", "long_term", "episodic":
	default:
		return integration.Failf("Invalid memory_type %q: expected short_term, long_term or episodic", memoryType)
	}

	payload := map[string]any{
		"user_id":     userID,
		"content":     content,
		"memory_type": memoryType,
	}
	if tags := splitTags(stringParam(args, "tags")); len(tags) > 0 {
		payload["tags"] = tags
	}

	var out struct {
		Status     string `json:"status"`
		DocID      string `json:"doc_id"`
		MemoryType string `json:"memory_type"`
	}
	if err := httpJSON(ctx, it.http, http.MethodPost, it.baseURL+"/memory/store", it.authHeaders(), payload, &out); err != nil {
		return integration.Failf("Memory store failed: %v", err)
	}
	if out.DocID == "" {
		return integration.Failf("Invalid response from memory server: missing doc_id")
	}
	return integration.TextData(fmt.Sprintf("Stored %s memory %s", out.MemoryType, out.DocID), out)
}

func (it *MemoryIntegration) recall(ctx context.Context, args map[string]any) integration.Result {
	userID := stringParam(args, "user_id")
	query := stringParam(args, "query")
	if userID == "" || query == "" {
		return integration.Failf("Missing required parameter: user_id and query are required")
	}

	payload := map[string]any{
		"user_id": userID,
		"query":   query,
		"top_k":   intParam(args, "top_k", 5, 20),
	}
	if mt := stringParam(args, "memory_type"); mt != "" {
		payload["memory_type"] = mt
	}

	var out struct {
		Status   string  `json:"status"`
		Memories *string `json:"memories"`
	}
	if err := httpJSON(ctx, it.http, http.MethodPost, it.baseURL+"/memory/query", it.authHeaders(), payload, &out); err != nil {
		return integration.Failf("Memory recall failed: %v", err)
	}
	if out.Memories == nil {
		return integration.Failf("Invalid response from memory server: missing memories")
	}
	memories := strings.TrimSpace(*out.Memories)
	if memories == "" {
		return integration.Text("No results")
	}
	return integration.TextData(memories, map[string]string{"memories": memories, "user_id": userID})
}

func (it *MemoryIntegration) ingest(ctx context.Context, args map[string]any) integration.Result {
	content := stringParam(args, "content")
	if content == "" {
		return integration.Failf("Missing required parameter: content")
	}

	payload := map[string]any{"content": content}
	if docID := stringParam(args, "doc_id"); docID != "" {
		payload["doc_id"] = docID
	}

	var out struct {
		Status string `json:"status"`
		DocID  string `json:"doc_id"`
	}
	if err := httpJSON(ctx, it.http, http.MethodPost, it.baseURL+"/ingest", it.authHeaders(), payload, &out); err != nil {
		return integration.Failf("Ingest failed: %v", err)
	}
	if out.DocID == "" {
		return integration.Failf("Invalid response from memory server: missing doc_id")
	}
	return integration.TextData("Ingested document "+out.DocID, out)
}

func (it *MemoryIntegration) query(ctx context.Context, args map[string]any) integration.Result {
	query := stringParam(args, "query")
	if query == "" {
		return integration.Failf("Missing required parameter: query")
	}
	mode := stringParam(args, "mode")
	if mode == "" {
		mode = "hybrid"
	}
	switch mode {
	case "local", "global", "hybrid", "naive", "mix":
	default:
		return integration.Failf("Invalid mode %q: expected local, global, hybrid, naive or mix", mode)
	}

	payload := map[string]any{
		"query": query,
		"mode":  mode,
		"top_k": intParam(args, "top_k", 5, 50),
	}

	var out struct {
		Status string  `json:"status"`
		Result *string `json:"result"`
		Mode   string  `json:"mode"`
	}
	if err := httpJSON(ctx, it.http, http.MethodPost, it.baseURL+"/query", it.authHeaders(), payload, &out); err != nil {
		return integration.Failf("Query failed: %v", err)
	}
	if out.Result == nil {
		return integration.Failf("Invalid response from memory server: missing result")
	}
	answer := strings.TrimSpace(*out.Result)
	if answer == "" {
		return integration.Text("No results")
	}
	return integration.TextData(answer, map[string]string{"result": answer, "mode": out.Mode})
}

func (it *MemoryIntegration) authHeaders() map[string]string {
	if it.apiKey == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + it.apiKey}
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
