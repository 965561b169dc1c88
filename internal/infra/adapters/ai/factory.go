package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ai-storefront-builder/internal/config"
	"ai-storefront-builder/internal/domain/ports/adapter"
)

// Providers is what Build hands to the use cases.
type Providers struct {
	Generator   adapter.TextGenerator
	Transcriber adapter.Transcriber
}

type provider interface {
	adapter.TextGenerator
	adapter.Transcriber
}

// providerOrder is the preference when ai.provider is empty and several keys are set.
var providerOrder = []string{"openai", "gemini", "huggingface"}

// Build selects adapters from configuration. A missing credential is not fatal:
// the affected provider is replaced by Unconfigured and fails on first use.
func Build(ctx context.Context, cfg config.AIConfig, log *zerolog.Logger) (Providers, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))

	switch name {
	case "noop":
		noop := NewNoopAIAdapter(500 * time.Millisecond)
		log.Warn().Msg("AI adapter: noop (canned output)")
		return Providers{Generator: noop, Transcriber: noop}, nil
	case "openai", "gemini", "huggingface":
		p, err := buildProvider(ctx, name, cfg)
		if err != nil {
			return Providers{}, err
		}
		if p == nil {
			log.Warn().Str("provider", name).Msg("AI credential missing; generation will fail until configured")
			u := Unconfigured{Provider: name}
			return Providers{Generator: u, Transcriber: u}, nil
		}
		log.Info().Str("provider", name).Str("model", cfg.Model).Msg("AI adapter selected")
		return limited(p, p, cfg.ConcurrentLimit), nil
	case "":
	default:
		return Providers{}, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	byProvider := map[string]adapter.TextGenerator{}
	var first provider
	firstName := ""
	for _, n := range providerOrder {
		p, err := buildProvider(ctx, n, cfg)
		if err != nil {
			return Providers{}, err
		}
		if p == nil {
			continue
		}
		byProvider[n] = p
		if first == nil {
			first, firstName = p, n
		}
	}

	switch len(byProvider) {
	case 0:
		log.Warn().Msg("no AI credential configured; generation will fail until one is set")
		u := Unconfigured{}
		return Providers{Generator: u, Transcriber: u}, nil
	case 1:
		log.Info().Str("provider", firstName).Str("model", cfg.Model).Msg("AI adapter selected")
		return limited(first, first, cfg.ConcurrentLimit), nil
	default:
		log.Info().Str("default_provider", firstName).Int("providers", len(byProvider)).Msg("AI adapter: multi-provider routing")
		return limited(NewMultiGenerator(firstName, byProvider), first, cfg.ConcurrentLimit), nil
	}
}

// buildProvider returns nil, nil when the provider has no credential.
func buildProvider(ctx context.Context, name string, cfg config.AIConfig) (provider, error) {
	switch name {
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, nil
		}
		return NewOpenAIAdapter(cfg.OpenAIKey, modelFor(name, cfg.Model), cfg.OpenAIBaseURL, cfg.TranscribeModel, nil)
	case "gemini":
		if cfg.GeminiKey == "" {
			return nil, nil
		}
		return NewGeminiAdapter(ctx, cfg.GeminiKey, cfg.GeminiURL, modelFor(name, cfg.Model))
	case "huggingface":
		if cfg.HuggingFaceKey == "" {
			return nil, nil
		}
		return NewHuggingFaceAdapter(cfg.HuggingFaceKey, modelFor(name, cfg.Model), cfg.HuggingFaceURL, "")
	}
	return nil, fmt.Errorf("unsupported ai provider: %s", name)
}

// modelFor drops a configured model that clearly names another provider.
func modelFor(provider, model string) string {
	if model == "" {
		return ""
	}
	switch NewMultiGenerator("", nil).resolveProvider(model) {
	case "", provider:
		return model
	default:
		return ""
	}
}

func limited(g adapter.TextGenerator, t adapter.Transcriber, n int) Providers {
	return Providers{
		Generator:   NewLimitedGenerator(g, n),
		Transcriber: NewLimitedTranscriber(t, n),
	}
}
