package ai

import (
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/genai"

	"ai-storefront-builder/internal/domain"
	"ai-storefront-builder/internal/domain/ports/adapter"
)

var (
	_ adapter.TextGenerator = (*GeminiAdapter)(nil)
	_ adapter.Transcriber   = (*GeminiAdapter)(nil)
)

const (
	defaultGeminiModel = "gemini-2.0-flash"
	transcribePrompt   = "Transcribe this audio recording verbatim. Reply with the transcript only."
)

type GeminiAdapter struct {
	client       *genai.Client
	defaultModel string
}

// NewGeminiAdapter creates a Gemini adapter using the official SDK.
// An empty baseURL uses the SDK default endpoint.
func NewGeminiAdapter(ctx context.Context, apiKey, baseURL, defaultModel string) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, domain.ErrMissingCredential
	}
	if defaultModel == "" {
		defaultModel = defaultGeminiModel
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{client: c, defaultModel: defaultModel}, nil
}

func (g *GeminiAdapter) Name() string { return "gemini" }

func (g *GeminiAdapter) Generate(ctx context.Context, req adapter.GenerateRequest) (adapter.GenerateResult, error) {
	model := modelOrDefault(req.Model, g.defaultModel)

	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		// Gemini takes the instruction out of band rather than as a history turn.
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.Temperature > 0 {
		cfg.Temperature = genai.Ptr(float32(req.Temperature))
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return adapter.GenerateResult{}, fmt.Errorf("%w: gemini: %v", domain.ErrExternalService, err)
	}

	text := responseText(resp)
	if strings.TrimSpace(text) == "" {
		return adapter.GenerateResult{}, domain.ErrEmptyCompletion
	}

	u := adapter.Usage{}
	if resp.UsageMetadata != nil {
		u.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		u.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		u.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return adapter.GenerateResult{Text: text, Model: model, Provider: g.Name(), Usage: u}, nil
}

// Transcribe sends the recording inline with a transcription instruction.
func (g *GeminiAdapter) Transcribe(ctx context.Context, audio adapter.Audio) (string, error) {
	if audio.Body == nil {
		return "", domain.ErrNoAudio
	}
	data, err := io.ReadAll(audio.Body)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", domain.ErrNoAudio
	}
	mime := audio.ContentType
	if mime == "" {
		mime = "audio/webm"
	}
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(transcribePrompt),
			genai.NewPartFromBytes(data, mime),
		}, genai.RoleUser),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.defaultModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %v", domain.ErrExternalService, err)
	}
	return strings.TrimSpace(responseText(resp)), nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil && p.Text != "" {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

func modelOrDefault(model, def string) string {
	if strings.TrimSpace(model) != "" {
		return model
	}
	return def
}

func filenameOrDefault(name string) string {
	if strings.TrimSpace(name) == "" {
		return "recording.webm"
	}
	return name
}
