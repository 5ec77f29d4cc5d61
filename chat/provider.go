package chat

import (
	"context"

	"smartagro/models"
)

// Provider modes selectable per request.
const (
	ModeHuggingFace = "hf"
	ModeGemini      = "gemini"
)

// TextGenerator produces an answer from a system instruction and the user's
// message. A missing credential is reported as *MissingCredentialError and a
// non-2xx provider answer as *ProviderError.
type TextGenerator interface {
	Generate(ctx context.Context, system, message string, lang models.Language) (string, error)
}

// Speaker turns text into audio bytes in the given language.
type Speaker interface {
	Synthesize(ctx context.Context, text string, lang models.Language) ([]byte, error)
}
