package chat

import "strings"

// extractor pulls generated text out of a decoded provider payload.
type extractor func(payload any) string

// Tried in order; the first non-empty result wins.
var textExtractors = []extractor{
	firstElementField("generated_text"),
	objectField("generated_text"),
	firstElementField("summary_text"),
	firstElementField("text"),
	objectField("text"),
}

// ExtractText returns the generated text in payload, or FallbackReply.
func ExtractText(payload any) string {
	for _, ex := range textExtractors {
		if text := strings.TrimSpace(ex(payload)); text != "" {
			return text
		}
	}
	return FallbackReply
}

func objectField(name string) extractor {
	return func(payload any) string {
		obj, ok := payload.(map[string]any)
		if !ok {
			return ""
		}
		s, _ := obj[name].(string)
		return s
	}
}

func firstElementField(name string) extractor {
	field := objectField(name)
	return func(payload any) string {
		arr, ok := payload.([]any)
		if !ok || len(arr) == 0 {
			return ""
		}
		return field(arr[0])
	}
}
