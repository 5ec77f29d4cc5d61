package chat

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyMessage        = errors.New("message is required")
	ErrUnsupportedLanguage = errors.New("language must be one of en, te, hi")
	ErrUnknownMode         = errors.New("unknown AI mode")
)

// MissingCredentialError names a provider credential that is not configured.
type MissingCredentialError struct {
	Name string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("%s not configured", e.Name)
}

// ProviderError wraps a non-2xx answer from an external provider.
type ProviderError struct {
	Provider string
	Status   int
	Body     string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s error: %d %s", e.Provider, e.Status, e.Body)
}

// IsBadRequest reports whether err was caused by the caller's input.
func IsBadRequest(err error) bool {
	return errors.Is(err, ErrEmptyMessage) || errors.Is(err, ErrUnsupportedLanguage) || errors.Is(err, ErrUnknownMode)
}
