package ai

import (
	"context"

	"ai-storefront-builder/internal/domain"
	"ai-storefront-builder/internal/domain/ports/adapter"
)

var (
	_ adapter.TextGenerator = Unconfigured{}
	_ adapter.Transcriber   = Unconfigured{}
)

// Unconfigured stands in when no credential is present so the process still
// boots; every call fails with ErrMissingCredential.
type Unconfigured struct {
	Provider string
}

func (u Unconfigured) Name() string {
	if u.Provider == "" {
		return "unconfigured"
	}
	return u.Provider
}

func (u Unconfigured) Generate(context.Context, adapter.GenerateRequest) (adapter.GenerateResult, error) {
	return adapter.GenerateResult{}, domain.ErrMissingCredential
}

func (u Unconfigured) Transcribe(context.Context, adapter.Audio) (string, error) {
	return "", domain.ErrMissingCredential
}
