package ai

import (
	"context"
	"strings"

	"ai-storefront-builder/internal/domain"
	"ai-storefront-builder/internal/domain/ports/adapter"
)

var _ adapter.TextGenerator = (*MultiGenerator)(nil)

// MultiGenerator routes a request to a provider based on the requested model name.
type MultiGenerator struct {
	defaultProvider string
	byProvider      map[string]adapter.TextGenerator
}

// NewMultiGenerator does not inject any default model; it only knows a default provider.
// Each provider adapter is responsible for its own default model.
func NewMultiGenerator(defaultProvider string, byProvider map[string]adapter.TextGenerator) *MultiGenerator {
	return &MultiGenerator{
		defaultProvider: strings.ToLower(defaultProvider),
		byProvider:      byProvider,
	}
}

func (m *MultiGenerator) Name() string { return "multi" }

func (m *MultiGenerator) resolveProvider(model string) string {
	l := strings.ToLower(strings.TrimSpace(model))
	switch {
	case l == "":
		return m.defaultProvider
	case strings.HasPrefix(l, "gemini"):
		return "gemini"
	case strings.HasPrefix(l, "gpt"), strings.HasPrefix(l, "o1"), strings.HasPrefix(l, "o3"), strings.HasPrefix(l, "o4"):
		return "openai"
	case strings.Contains(l, "/"):
		// hub ids look like owner/model
		return "huggingface"
	default:
		return m.defaultProvider
	}
}

func (m *MultiGenerator) pick(model string) adapter.TextGenerator {
	if a := m.byProvider[m.resolveProvider(model)]; a != nil {
		return a
	}
	return m.byProvider[m.defaultProvider]
}

func (m *MultiGenerator) Generate(ctx context.Context, req adapter.GenerateRequest) (adapter.GenerateResult, error) {
	a := m.pick(req.Model)
	if a == nil {
		return adapter.GenerateResult{}, domain.ErrMissingCredential
	}
	// A model name meant for another provider must not leak into the fallback.
	if a != m.byProvider[m.resolveProvider(req.Model)] {
		req.Model = ""
	}
	return a.Generate(ctx, req)
}
