package chat

import (
	"fmt"
	"strconv"
	"strings"

	"smartagro/models"
)

// NoDataContext replaces the reading summary when the table is empty.
const NoDataContext = "No recent sensor data available."

// FallbackReply is used when a provider answers without any extractable text.
const FallbackReply = "I could not process your request."

const persona = "You are a multilingual agricultural assistant"

var languageNames = map[models.Language]string{
	models.English: "English",
	models.Telugu:  "Telugu",
	models.Hindi:   "Hindi",
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// BuildContext summarises the latest reading for the prompt.
func BuildContext(r *models.SensorReading) string {
	if r == nil {
		return NoDataContext
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Latest field data: Temperature: %s°C, Humidity: %s%%, Soil Moisture: %s%%.",
		formatValue(r.Temperature), formatValue(r.Humidity), formatValue(r.SoilMoisture))
	if r.PestDetected != nil {
		if *r.PestDetected {
			b.WriteString(" Pests detected: yes.")
		} else {
			b.WriteString(" Pests detected: no.")
		}
	}
	return b.String()
}

// SystemInstruction combines the persona, the supported languages and the
// field context.
func SystemInstruction(context string) string {
	names := make([]string, 0, len(models.SupportedLanguages))
	for _, l := range models.SupportedLanguages {
		names = append(names, languageNames[l])
	}
	return fmt.Sprintf("%s (%s).\nUse the farm context to give concise, helpful advice.\nContext: %s",
		persona, strings.Join(names, ", "), context)
}

// ComposePrompt is the single text input sent to providers that take one
// combined prompt.
func ComposePrompt(system string, lang models.Language, message string) string {
	return fmt.Sprintf("%s\n\nUser (%s): %s", system, lang, message)
}
