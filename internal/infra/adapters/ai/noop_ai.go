package ai

import (
	"context"
	"fmt"
	"html"
	"io"
	"time"

	"ai-storefront-builder/internal/domain/ports/adapter"
)

var (
	_ adapter.TextGenerator = (*NoopAIAdapter)(nil)
	_ adapter.Transcriber   = (*NoopAIAdapter)(nil)
)

// NoopAIAdapter is for local/dev runs without credentials.
// It returns a fixed page that echoes the prompt.
type NoopAIAdapter struct {
	delay time.Duration
}

func NewNoopAIAdapter(delay time.Duration) *NoopAIAdapter {
	return &NoopAIAdapter{delay: delay}
}

func (a *NoopAIAdapter) Name() string { return "noop" }

func (a *NoopAIAdapter) Generate(ctx context.Context, req adapter.GenerateRequest) (adapter.GenerateResult, error) {
	if err := a.wait(ctx); err != nil {
		return adapter.GenerateResult{}, err
	}
	title := html.EscapeString(req.Prompt)
	page := fmt.Sprintf("```html\n<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n<script src=\"https://cdn.tailwindcss.com\"></script>\n<title>%s</title>\n</head>\n<body class=\"bg-gray-50 text-gray-900\">\n<header class=\"p-8 text-center\"><h1 class=\"text-4xl font-bold\">%s</h1></header>\n<main class=\"grid grid-cols-1 md:grid-cols-3 gap-6 p-8\">\n<div class=\"rounded-lg bg-white p-6 shadow\">Product one</div>\n<div class=\"rounded-lg bg-white p-6 shadow\">Product two</div>\n<div class=\"rounded-lg bg-white p-6 shadow\">Product three</div>\n</main>\n</body>\n</html>\n```", title, title)
	return adapter.GenerateResult{Text: page, Model: "noop", Provider: a.Name()}, nil
}

func (a *NoopAIAdapter) Transcribe(ctx context.Context, audio adapter.Audio) (string, error) {
	if err := a.wait(ctx); err != nil {
		return "", err
	}
	if audio.Body != nil {
		_, _ = io.Copy(io.Discard, audio.Body)
	}
	return "", nil
}

func (a *NoopAIAdapter) wait(ctx context.Context) error {
	if a.delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(a.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
