package chat

import (
	"testing"

	"smartagro/models"

	"github.com/stretchr/testify/assert"
)

func TestBuildContextEmbedsValues(t *testing.T) {
	ctx := BuildContext(&models.SensorReading{Temperature: 25.5, Humidity: 65.0, SoilMoisture: 50.0})
	assert.Contains(t, ctx, "Temperature: 25.5°C")
	assert.Contains(t, ctx, "Humidity: 65%")
	assert.Contains(t, ctx, "Soil Moisture: 50%")
	assert.NotContains(t, ctx, "Pests")
	assert.NotContains(t, ctx, "undefined")

	pest := false
	ctx = BuildContext(&models.SensorReading{Temperature: 1, PestDetected: &pest})
	assert.Contains(t, ctx, "Pests detected: no.")
}

func TestBuildContextWithoutReading(t *testing.T) {
	assert.Equal(t, NoDataContext, BuildContext(nil))
}

func TestSystemInstruction(t *testing.T) {
	s := SystemInstruction("ctx here")
	assert.Contains(t, s, "English, Telugu, Hindi")
	assert.Contains(t, s, "Context: ctx here")

	p := ComposePrompt(s, models.Hindi, "when to irrigate?")
	assert.Contains(t, p, "\n\nUser (hi): when to irrigate?")
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name    string
		payload any
		want    string
	}{
		{"array generated_text", []any{map[string]any{"generated_text": "water at dawn"}}, "water at dawn"},
		{"object generated_text", map[string]any{"generated_text": "mulch the beds"}, "mulch the beds"},
		{"summary_text", []any{map[string]any{"summary_text": "all fine"}}, "all fine"},
		{"text", []any{map[string]any{"text": "rotate crops"}}, "rotate crops"},
		{"blank generated_text falls through", []any{map[string]any{"generated_text": "  ", "text": "second"}}, "second"},
		{"unknown shape", map[string]any{"error": "loading"}, FallbackReply},
		{"empty array", []any{}, FallbackReply},
		{"scalar", "just a string", FallbackReply},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractText(tt.payload))
		})
	}
}

func TestGreetingAndPlaceholder(t *testing.T) {
	assert.Contains(t, Greeting(models.English), "Smart Agro assistant")
	assert.Equal(t, Greeting(models.English), Greeting("fr"))
	assert.NotEqual(t, Placeholder(models.English), Placeholder(models.Telugu))
}

func TestLocalReply(t *testing.T) {
	pest := true
	r := &models.SensorReading{Temperature: 25.5, Humidity: 65, SoilMoisture: 20, PestDetected: &pest}

	en := LocalReply(models.English, r)
	assert.Contains(t, en, "temperature 25.5°C")
	assert.Contains(t, en, "check your irrigation")
	assert.Contains(t, en, "Pests were detected")
	assert.Contains(t, en, "AI features are temporarily limited")

	hi := LocalReply(models.Hindi, r)
	assert.Contains(t, hi, "25.5")
	assert.Contains(t, hi, "नमस्ते")

	assert.Contains(t, LocalReply(models.Telugu, nil), "సెన్సార్ డేటా అందుబాటులో లేదు")
	assert.Equal(t, LocalReply(models.English, r), LocalReply(models.English, r))
}
