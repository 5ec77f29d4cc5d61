package models

// Language is one of the chat languages the assistant answers in.
type Language string

const (
	English Language = "en"
	Telugu  Language = "te"
	Hindi   Language = "hi"
)

// SupportedLanguages lists the chat languages in display order.
var SupportedLanguages = []Language{English, Telugu, Hindi}

// Valid reports whether l is a supported chat language.
func (l Language) Valid() bool {
	for _, s := range SupportedLanguages {
		if s == l {
			return true
		}
	}
	return false
}

// ChatRequest is the body accepted by the chat proxy.
type ChatRequest struct {
	Message  string   `json:"message"`
	Language Language `json:"language"`
	Mode     string   `json:"mode,omitempty"`
}

// ChatResponse is the body returned by the chat proxy on success.
type ChatResponse struct {
	Response    string         `json:"response"`
	SensorData  *SensorReading `json:"sensorData"`
	AudioBase64 *string        `json:"audioBase64"`
}

// ErrorResponse is the body returned on any non-2xx chat proxy answer.
type ErrorResponse struct {
	Error string `json:"error"`
}
