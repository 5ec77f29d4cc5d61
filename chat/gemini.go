package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"smartagro/models"

	"google.golang.org/genai"
)

// GeminiCredential is the environment variable holding the Gemini API key.
const GeminiCredential = "GEMINI_API_KEY"

// Gemini generates answers through the Google GenAI SDK. The client is built
// on first use so a missing key only fails requests that select this mode.
// A failed build is retried on the next request.
type Gemini struct {
	APIKey string
	Model  string

	mu        sync.Mutex
	client    *genai.Client
	newClient func(context.Context, *genai.ClientConfig) (*genai.Client, error)
}

func (g *Gemini) init(ctx context.Context) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client != nil {
		return g.client, nil
	}

	newClient := g.newClient
	if newClient == nil {
		newClient = genai.NewClient
	}
	client, err := newClient(ctx, &genai.ClientConfig{
		APIKey:  g.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	g.client = client
	return client, nil
}

func (g *Gemini) Generate(ctx context.Context, system, message string, lang models.Language) (string, error) {
	if g.APIKey == "" {
		return "", &MissingCredentialError{Name: GeminiCredential}
	}
	client, err := g.init(ctx)
	if err != nil {
		return "", err
	}

	contents := []*genai.Content{
		genai.NewContentFromText(fmt.Sprintf("(%s) %s", lang, message), genai.RoleUser),
	}
	resp, err := client.Models.GenerateContent(ctx, g.Model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	})
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}
	return geminiText(resp), nil
}

// geminiText joins the text parts of the first candidate that has any.
func geminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return FallbackReply
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		var b strings.Builder
		for _, part := range cand.Content.Parts {
			if part != nil && part.Text != "" {
				b.WriteString(part.Text)
			}
		}
		if text := strings.TrimSpace(b.String()); text != "" {
			return text
		}
	}
	return FallbackReply
}
