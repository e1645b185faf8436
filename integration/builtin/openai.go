// Package builtin holds the concrete integrations shipped with the
// harness. Each one declares its capability schema, verifies upstream
// reachability on connect and registers one handler per skill.
package builtin

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ryan12324/OpenAssistant-sub003/capability"
	"github.com/ryan12324/OpenAssistant-sub003/integration"
	"github.com/ryan12324/OpenAssistant-sub003/llm"
)

const openaiDefaultBaseURL = "https://api.openai.com"

func OpenAISchema() *capability.Schema {
	return &capability.Schema{
		ID:       "openai",
		Name:     "OpenAI",
		Category: capability.CategoryAIModel,
		ConfigFields: []capability.ConfigField{
			{Key: "api_key", Type: capability.FieldSecret, Required: true},
			{Key: "base_url", Type: capability.FieldString, Default: openaiDefaultBaseURL},
			{Key: "model", Type: capability.FieldString, Default: "gpt-4o-mini"},
		},
		Skills: []capability.Skill{
			{
				ID:          "openai_complete",
				Name:        "Complete Text",
				Description: "Generate a completion for a prompt.",
				Params: []capability.Param{
					{Name: "prompt", Type: "string", Required: true, Description: "Prompt to complete."},
					{Name: "system", Type: "string", Description: "Optional system instruction."},
				},
			},
			{
				ID:          "openai_list_models",
				Name:        "List Models",
				Description: "List model ids available to the configured key.",
			},
		},
	}
}

// OpenAIIntegration fronts an OpenAI-compatible API. Text generation goes
// through the externally supplied completion client; connect probes the
// models endpoint with the configured key.
type OpenAIIntegration struct {
	*integration.Base

	baseURL string
	apiKey  string
	model   string
	client  llm.Client
	http    *http.Client
}

func NewOpenAI(cfg map[string]any, completion llm.Client, timeout time.Duration) *OpenAIIntegration {
	schema := OpenAISchema()
	it := &OpenAIIntegration{
		baseURL: strings.TrimRight(stringConfig(cfg, "base_url"), "/"),
		apiKey:  stringConfig(cfg, "api_key"),
		model:   stringConfig(cfg, "model"),
		client:  completion,
		http:    newHTTPClient(timeout),
	}
	if it.baseURL == "" {
		it.baseURL = openaiDefaultBaseURL
	}
	it.Base = integration.NewBase(schema, it.verify)
	it.Handle("openai_complete", it.complete)
	it.Handle("openai_list_models", it.listModels)
	return it
}

func (it *OpenAIIntegration) verify(ctx context.Context) (string, error) {
	if it.apiKey == "" {
		return "", integration.Connectf("openai", nil, "missing API key")
	}
	var out struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	err := httpJSON(ctx, it.http, http.MethodGet, it.baseURL+"/v1/models", it.authHeaders(), nil, &out)
	if err != nil {
		if se, ok := err.(*httpStatusError); ok && (se.Status == http.StatusUnauthorized || se.Status == http.StatusForbidden) {
			return "", integration.Connectf("openai", nil, "invalid API key (http %d)", se.Status)
		}
		return "", integration.Connectf("openai", err, "upstream unreachable")
	}
	if len(out.Data) == 0 {
		return "", integration.Connectf("openai", nil, "invalid models response: empty model list")
	}
	return "", nil
}

func (it *OpenAIIntegration) complete(ctx context.Context, args map[string]any) integration.Result {
	prompt := stringParam(args, "prompt")
	if prompt == "" {
		return integration.Failf("Missing required parameter: prompt")
	}

	messages := []llm.Message{}
	if sys := stringParam(args, "system"); sys != "" {
		messages = append(messages, llm.Message{Role: "system", Content: sys})
	}
	messages = append(messages, llm.Message{Role: "user", Content: prompt})

	res, err := it.client.Chat(ctx, llm.Request{Model: it.model, Messages: messages})
	if err != nil {
		return integration.Failf("Completion failed: %v", err)
	}
	text := strings.TrimSpace(res.Text)
	if text == "" {
		return integration.Failf("Invalid completion response: empty text")
	}
	return integration.TextData(text, map[string]any{
		"model":         it.model,
		"input_tokens":  res.Usage.InputTokens,
		"output_tokens": res.Usage.OutputTokens,
	})
}

func (it *OpenAIIntegration) listModels(ctx context.Context, args map[string]any) integration.Result {
	var out struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	err := httpJSON(ctx, it.http, http.MethodGet, it.baseURL+"/v1/models", it.authHeaders(), nil, &out)
	if err != nil {
		return integration.Failf("Failed to list models: %v", err)
	}
	if len(out.Data) == 0 {
		return integration.Text("No results")
	}
	ids := make([]string, 0, len(out.Data))
	for _, m := range out.Data {
		ids = append(ids, m.ID)
	}
	return integration.TextData(fmt.Sprintf("%d models: %s", len(ids), strings.Join(ids, ", ")), ids)
}

func (it *OpenAIIntegration) authHeaders() map[string]string {
	return map[string]string{"Authorization": "Bearer " + it.apiKey}
}
