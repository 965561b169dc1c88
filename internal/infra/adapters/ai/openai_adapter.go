package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"ai-storefront-builder/internal/domain"
	"ai-storefront-builder/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the ports
var (
	_ adapter.TextGenerator = (*OpenAIAdapter)(nil)
	_ adapter.Transcriber   = (*OpenAIAdapter)(nil)
)

const (
	defaultOpenAIModel      = "gpt-4o"
	defaultOpenAITranscribe = "whisper-1"
)

// OpenAIAdapter implements generation via Chat Completions and transcription via Whisper.
// baseURL may point at any OpenAI-compatible gateway.
type OpenAIAdapter struct {
	client          openai.Client
	model           string
	transcribeModel string
}

func NewOpenAIAdapter(apiKey, model, baseURL, transcribeModel string, httpClient *http.Client) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, domain.ErrMissingCredential
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	if transcribeModel == "" {
		transcribeModel = defaultOpenAITranscribe
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// generation is never retried; a failed call fails the site
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(baseURL, "/")+"/"))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	return &OpenAIAdapter{
		client:          openai.NewClient(opts...),
		model:           model,
		transcribeModel: transcribeModel,
	}, nil
}

func (o *OpenAIAdapter) Name() string { return "openai" }

func (o *OpenAIAdapter) Generate(ctx context.Context, req adapter.GenerateRequest) (adapter.GenerateResult, error) {
	model := modelOrDefault(req.Model, o.model)

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.Prompt),
		},
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return adapter.GenerateResult{}, wrapOpenAIError(err)
	}

	text := ""
	for _, c := range resp.Choices {
		if c.Message.Content != "" {
			text = c.Message.Content
			break
		}
	}
	if text == "" {
		return adapter.GenerateResult{}, domain.ErrEmptyCompletion
	}
	return adapter.GenerateResult{
		Text:     text,
		Model:    model,
		Provider: o.Name(),
		Usage: adapter.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

func (o *OpenAIAdapter) Transcribe(ctx context.Context, audio adapter.Audio) (string, error) {
	if audio.Body == nil {
		return "", domain.ErrNoAudio
	}
	res, err := o.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  openai.File(audio.Body, filenameOrDefault(audio.Filename), audio.ContentType),
		Model: openai.AudioModel(o.transcribeModel),
	})
	if err != nil {
		return "", wrapOpenAIError(err)
	}
	return res.Text, nil
}

func wrapOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: openai http %d: %v", domain.ErrExternalService, apiErr.StatusCode, err)
	}
	return fmt.Errorf("%w: openai: %v", domain.ErrExternalService, err)
}
