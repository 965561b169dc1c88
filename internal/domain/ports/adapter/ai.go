package adapter

import (
	"context"
	"io"
)

// GenerateRequest is a single instruction + task prompt.
type GenerateRequest struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Usage for a single generation call. Zero when the provider does not report it.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// GenerateResult is the raw model output.
type GenerateResult struct {
	Text     string
	Model    string
	Provider string
	Usage    Usage
}

// TextGenerator is the port for the text-generation inference endpoint.
type TextGenerator interface {
	Name() string
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)
}

// Audio is an uploaded recording.
type Audio struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// Transcriber is the port for speech-to-text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio Audio) (string, error)
}
