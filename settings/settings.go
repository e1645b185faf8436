// Package settings produces effective configuration by layering persisted
// values over environment defaults. Handlers never read ambient globals;
// everything flows through a Resolver constructed here.
package settings

import (
	"strconv"
	"strings"

	"github.com/ryan12324/OpenAssistant-sub003/capability"
	"github.com/spf13/viper"
)

const EnvPrefix = "OPENASSISTANT"

// Config is the effective model-provider configuration consumed when
// constructing ai-model integrations and their completion clients.
type Config struct {
	Provider         string
	Model            string
	APIKey           string
	BaseURL          string
	EmbeddingModel   string
	EmbeddingAPIKey  string
	EmbeddingBaseURL string
}

// Resolver is the read-only settings contract the dispatcher consumes.
type Resolver interface {
	GetEffectiveConfig() Config
	// IntegrationConfig resolves the schema's declared config fields:
	// persisted value if present and non-empty, else environment, else the
	// field default, else the type's zero value.
	IntegrationConfig(schema *capability.Schema) map[string]any
}

// ViperResolver resolves settings from a viper instance whose layering
// (explicit sets, flags, env with the OPENASSISTANT prefix, config file,
// defaults) already encodes the persisted-over-environment chain.
type ViperResolver struct {
	v *viper.Viper
}

func NewViperResolver(v *viper.Viper) *ViperResolver {
	if v == nil {
		v = viper.GetViper()
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &ViperResolver{v: v}
}

func (r *ViperResolver) GetEffectiveConfig() Config {
	return Config{
		Provider:         r.stringOr("llm.provider", "openai"),
		Model:            r.stringOr("llm.model", "gpt-4o-mini"),
		APIKey:           r.stringOr("llm.api_key", ""),
		BaseURL:          r.stringOr("llm.base_url", ""),
		EmbeddingModel:   r.stringOr("llm.embedding_model", "text-embedding-3-small"),
		EmbeddingAPIKey:  r.stringOr("llm.embedding_api_key", ""),
		EmbeddingBaseURL: r.stringOr("llm.embedding_base_url", ""),
	}
}

func (r *ViperResolver) IntegrationConfig(schema *capability.Schema) map[string]any {
	out := make(map[string]any, len(schema.ConfigFields))
	for _, f := range schema.ConfigFields {
		key := "integrations." + schema.ID + "." + f.Key
		switch f.Type {
		case capability.FieldBoolean:
			if r.v.IsSet(key) {
				out[f.Key] = r.v.GetBool(key)
			} else {
				out[f.Key] = f.Default == "true"
			}
		case capability.FieldNumber:
			if r.v.IsSet(key) {
				out[f.Key] = r.v.GetFloat64(key)
			} else {
				n, _ := strconv.ParseFloat(strings.TrimSpace(f.Default), 64)
				out[f.Key] = n
			}
		default: // string and secret
			out[f.Key] = r.stringOr(key, f.Default)
		}
	}
	return out
}

func (r *ViperResolver) stringOr(key, fallback string) string {
	if s := strings.TrimSpace(r.v.GetString(key)); s != "" {
		return s
	}
	return fallback
}

// MissingRequired reports which required config fields resolved empty.
func MissingRequired(schema *capability.Schema, cfg map[string]any) []string {
	var missing []string
	for _, f := range schema.ConfigFields {
		if !f.Required {
			continue
		}
		v, ok := cfg[f.Key]
		if !ok {
			missing = append(missing, f.Key)
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			missing = append(missing, f.Key)
		}
	}
	return missing
}
