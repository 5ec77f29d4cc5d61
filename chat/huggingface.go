package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"smartagro/models"
)

// HFCredential is the environment variable holding the Hugging Face token.
const HFCredential = "HUGGING_FACE_API_KEY"

// VoiceModels maps each chat language to its Hugging Face TTS model.
var VoiceModels = map[models.Language]string{
	models.English: "facebook/mms-tts-eng",
	models.Telugu:  "facebook/mms-tts-tel",
	models.Hindi:   "facebook/mms-tts-hin",
}

// HuggingFace calls the Hugging Face Inference API for text generation and
// speech. Model loading is left to the API through wait_for_model.
type HuggingFace struct {
	APIKey    string
	BaseURL   string
	TextModel string
	Client    *http.Client
}

type hfOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type hfTextRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Options    hfOptions      `json:"options"`
}

func (h *HuggingFace) Generate(ctx context.Context, system, message string, lang models.Language) (string, error) {
	body := hfTextRequest{
		Inputs:     ComposePrompt(system, lang, message),
		Parameters: map[string]any{"max_new_tokens": 256, "temperature": 0.7},
		Options:    hfOptions{WaitForModel: true},
	}
	raw, err := h.post(ctx, h.TextModel, body)
	if err != nil {
		return "", err
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		// Not JSON at all: nothing to extract.
		return FallbackReply, nil
	}
	return ExtractText(payload), nil
}

func (h *HuggingFace) Synthesize(ctx context.Context, text string, lang models.Language) ([]byte, error) {
	model, ok := VoiceModels[lang]
	if !ok {
		return nil, fmt.Errorf("no voice model for language %q", lang)
	}
	return h.post(ctx, model, hfTextRequest{Inputs: text, Options: hfOptions{WaitForModel: true}})
}

func (h *HuggingFace) post(ctx context.Context, model string, body any) ([]byte, error) {
	if h.APIKey == "" {
		return nil, &MissingCredentialError{Name: HFCredential}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	url := strings.TrimRight(h.BaseURL, "/") + "/" + model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+h.APIKey)
	req.Header.Set("Content-Type", "application/json")

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to %s: %w", model, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ProviderError{Provider: "HF " + model, Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return data, nil
}
