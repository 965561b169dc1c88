package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-storefront-builder/internal/domain"
	"ai-storefront-builder/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the ports
var (
	_ adapter.TextGenerator = (*HuggingFaceAdapter)(nil)
	_ adapter.Transcriber   = (*HuggingFaceAdapter)(nil)
)

const (
	defaultHFBase       = "https://api-inference.huggingface.co/models"
	defaultHFModel      = "mistralai/Mistral-7B-Instruct-v0.1"
	defaultHFTranscribe = "openai/whisper-small"
)

// HuggingFaceAdapter talks to the Hugging Face Inference API.
// Models are addressed as {base}/{owner}/{model}.
// Authorization: Bearer <HUGGINGFACE_API_KEY>
type HuggingFaceAdapter struct {
	apiKey          string
	base            string
	model           string
	transcribeModel string
	client          *http.Client
}

func NewHuggingFaceAdapter(apiKey, model, base, transcribeModel string) (*HuggingFaceAdapter, error) {
	if apiKey == "" {
		return nil, domain.ErrMissingCredential
	}
	if model == "" {
		model = defaultHFModel
	}
	if base == "" {
		base = defaultHFBase
	}
	if transcribeModel == "" {
		transcribeModel = defaultHFTranscribe
	}
	return &HuggingFaceAdapter{
		apiKey:          apiKey,
		base:            strings.TrimRight(base, "/"),
		model:           model,
		transcribeModel: transcribeModel,
		client:          &http.Client{Timeout: 2 * time.Minute},
	}, nil
}

func (h *HuggingFaceAdapter) Name() string { return "huggingface" }

type hfParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens,omitempty"`
	Temperature    float64 `json:"temperature,omitempty"`
	ReturnFullText bool    `json:"return_full_text"`
}

type hfGeneration struct {
	GeneratedText string `json:"generated_text"`
}

func (h *HuggingFaceAdapter) Generate(ctx context.Context, req adapter.GenerateRequest) (adapter.GenerateResult, error) {
	model := modelOrDefault(req.Model, h.model)

	// The inference endpoint takes a single input string, so the instruction is inlined.
	reqBody := struct {
		Inputs     string       `json:"inputs"`
		Parameters hfParameters `json:"parameters"`
	}{
		Inputs: req.System + "\n\nRequest: " + req.Prompt,
		Parameters: hfParameters{
			MaxNewTokens: req.MaxTokens,
			Temperature:  req.Temperature,
		},
	}
	b, err := json.Marshal(reqBody)
	if err != nil {
		return adapter.GenerateResult{}, err
	}

	body, err := h.post(ctx, model, "application/json", bytes.NewReader(b))
	if err != nil {
		return adapter.GenerateResult{}, err
	}

	text, err := decodeHFGeneration(body)
	if err != nil {
		return adapter.GenerateResult{}, err
	}
	if strings.TrimSpace(text) == "" {
		return adapter.GenerateResult{}, domain.ErrEmptyCompletion
	}
	return adapter.GenerateResult{Text: text, Model: model, Provider: h.Name()}, nil
}

func (h *HuggingFaceAdapter) Transcribe(ctx context.Context, audio adapter.Audio) (string, error) {
	if audio.Body == nil {
		return "", domain.ErrNoAudio
	}
	ct := audio.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	body, err := h.post(ctx, h.transcribeModel, ct, audio.Body)
	if err != nil {
		return "", err
	}
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("%w: huggingface whisper: decode: %v", domain.ErrExternalService, err)
	}
	return payload.Text, nil
}

func (h *HuggingFaceAdapter) post(ctx context.Context, model, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.base+"/"+model, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+h.apiKey)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: huggingface: %v", domain.ErrExternalService, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: huggingface: read body: %v", domain.ErrExternalService, err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: huggingface http %d: %s", domain.ErrExternalService, resp.StatusCode, truncate(string(raw), 200))
	}
	return raw, nil
}

// decodeHFGeneration accepts both the array form and the single-object form.
func decodeHFGeneration(raw []byte) (string, error) {
	var list []hfGeneration
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return "", domain.ErrEmptyCompletion
		}
		return list[0].GeneratedText, nil
	}
	var single hfGeneration
	if err := json.Unmarshal(raw, &single); err != nil {
		return "", fmt.Errorf("%w: huggingface: decode: %v", domain.ErrExternalService, err)
	}
	return single.GeneratedText, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
