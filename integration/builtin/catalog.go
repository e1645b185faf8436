package builtin

import (
	"time"

	"github.com/ryan12324/OpenAssistant-sub003/capability"
	"github.com/ryan12324/OpenAssistant-sub003/integration"
	"github.com/ryan12324/OpenAssistant-sub003/llm"
	"github.com/ryan12324/OpenAssistant-sub003/providers/openai"
)

// Deps carries the collaborators builtin integrations need beyond their
// resolved configuration.
type Deps struct {
	// Completion is the externally supplied completion provider for
	// ai-model integrations. When nil, an OpenAI-compatible client is
	// built from the integration's own configuration.
	Completion llm.Client
	// UpstreamTimeout bounds every upstream call (default 30s).
	UpstreamTimeout time.Duration
}

// Schemas returns every builtin capability schema, for registration at
// startup.
func Schemas() []*capability.Schema {
	return []*capability.Schema{
		OpenAISchema(),
		SpotifySchema(),
		ITunesSchema(),
		GitHubSchema(),
		WebSearchSchema(),
		ShellSchema(),
		MemorySchema(),
	}
}

// Builders returns the constructor for each builtin integration, keyed by
// schema id. The dispatcher calls these with the resolver's effective
// per-integration configuration.
func Builders(deps Deps) map[string]func(cfg map[string]any) integration.Instance {
	timeout := deps.UpstreamTimeout
	if timeout <= 0 {
		timeout = defaultUpstreamTimeout
	}
	return map[string]func(cfg map[string]any) integration.Instance{
		"openai": func(cfg map[string]any) integration.Instance {
			// A per-integration api_key overrides the shared provider so
			// one instance can point at a different account or endpoint.
			completion := deps.Completion
			if completion == nil || stringConfig(cfg, "api_key") != "" {
				completion = openai.New(stringConfig(cfg, "base_url"), stringConfig(cfg, "api_key"), stringConfig(cfg, "model"))
			}
			return NewOpenAI(cfg, completion, timeout)
		},
		"spotify": func(cfg map[string]any) integration.Instance {
			return NewSpotify(cfg, timeout)
		},
		"itunes": func(cfg map[string]any) integration.Instance {
			return NewITunes(cfg, timeout)
		},
		"github": func(cfg map[string]any) integration.Instance {
			return NewGitHub(cfg, timeout)
		},
		"websearch": func(cfg map[string]any) integration.Instance {
			return NewWebSearch(cfg, timeout)
		},
		"shell": func(cfg map[string]any) integration.Instance {
			return NewShell(cfg)
		},
		"memory": func(cfg map[string]any) integration.Instance {
			return NewMemory(cfg, timeout)
		},
	}
}
