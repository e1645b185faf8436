package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/ryan12324/OpenAssistant-sub003/audit"
	"github.com/ryan12324/OpenAssistant-sub003/capability"
	"github.com/ryan12324/OpenAssistant-sub003/db"
	"github.com/ryan12324/OpenAssistant-sub003/dispatch"
	"github.com/ryan12324/OpenAssistant-sub003/integration"
	"github.com/ryan12324/OpenAssistant-sub003/integration/builtin"
	"github.com/ryan12324/OpenAssistant-sub003/internal/logutil"
	"github.com/ryan12324/OpenAssistant-sub003/providers/openai"
	"github.com/ryan12324/OpenAssistant-sub003/settings"
)

// harness is the wired-up core shared by the subcommands.
type harness struct {
	logger     *slog.Logger
	registry   *capability.Registry
	dispatcher *dispatch.Dispatcher
	recorder   *audit.AsyncRecorder
	store      *audit.Store
}

func buildHarness() (*harness, error) {
	logger, err := logutil.LoggerFromViper()
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	registry := capability.NewRegistry()
	for _, s := range builtin.Schemas() {
		if err := registry.Register(s); err != nil {
			return nil, fmt.Errorf("register schema: %w", err)
		}
	}
	if path := strings.TrimSpace(viper.GetString("capability.catalog")); path != "" {
		if _, err := capability.LoadCatalog(path, registry); err != nil {
			return nil, err
		}
	}

	dbCfg := db.DefaultConfig()
	dbCfg.DSN = viper.GetString("db.dsn")
	gdb, err := db.Open(dbCfg)
	if err != nil {
		return nil, err
	}
	store, err := audit.NewStore(gdb, viper.GetInt("audit.max_field_len"))
	if err != nil {
		return nil, err
	}
	recorder := audit.NewAsyncRecorder(store, logger)

	resolver := settings.NewViperResolver(viper.GetViper())
	eff := resolver.GetEffectiveConfig()
	deps := builtin.Deps{UpstreamTimeout: viper.GetDuration("dispatch.upstream_timeout")}
	if eff.APIKey != "" {
		// The shared completion provider doubles as the default credentials
		// for the openai integration, so a single llm.api_key is enough to
		// connect it. SetDefault keeps per-integration overrides winning.
		deps.Completion = openai.New(eff.BaseURL, eff.APIKey, eff.Model)
		viper.SetDefault("integrations.openai.api_key", eff.APIKey)
		if eff.BaseURL != "" {
			viper.SetDefault("integrations.openai.base_url", eff.BaseURL)
		}
		viper.SetDefault("integrations.openai.model", eff.Model)
	}
	builders := make(map[string]dispatch.Builder)
	for id, build := range builtin.Builders(deps) {
		fn := build
		builders[id] = func(cfg map[string]any) integration.Instance { return fn(cfg) }
	}

	dispatcher := dispatch.New(dispatch.Options{
		Registry:       registry,
		Settings:       resolver,
		Builders:       builders,
		Recorder:       recorder,
		Logger:         logger,
		ConnectTimeout: viper.GetDuration("dispatch.connect_timeout"),
	})

	return &harness{
		logger:     logger,
		registry:   registry,
		dispatcher: dispatcher,
		recorder:   recorder,
		store:      store,
	}, nil
}
