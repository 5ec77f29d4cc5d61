package chat

import (
	"fmt"
	"strings"

	"smartagro/models"
	"smartagro/utils"
)

var greetings = map[models.Language]string{
	models.English: "Hello! I'm your Smart Agro assistant. How can I help you today?",
	models.Telugu:  "నమస్కారం! నేను మీ స్మార్ట్ అగ్రో సహాయకుడిని. ఈరోజు నేను మీకు ఎలా సహాయం చేయగలను?",
	models.Hindi:   "नमस्ते! मैं आपका स्मार्ट एग्रो सहायक हूं। आज मैं आपकी कैसे मदद कर सकता हूं?",
}

var placeholders = map[models.Language]string{
	models.English: "Ask about soil, temperature, humidity...",
	models.Telugu:  "మట్టి, ఉష్ణోగ్రత, తేమ గురించి అడగండి...",
	models.Hindi:   "मिट्टी, तापमान, नमी के बारे में पूछें...",
}

// Greeting is the assistant's opening line in lang, English when unknown.
func Greeting(lang models.Language) string {
	if g, ok := greetings[lang]; ok {
		return g
	}
	return greetings[models.English]
}

// Placeholder is the input hint shown in the chat box.
func Placeholder(lang models.Language) string {
	if p, ok := placeholders[lang]; ok {
		return p
	}
	return placeholders[models.English]
}

type fallbackText struct {
	hello    string
	summary  string // temperature, humidity, soil moisture
	noData   string
	pest     string
	advice   map[string]string
	help     string
	degraded string
}

var fallbackTexts = map[models.Language]fallbackText{
	models.English: {
		hello:   "Hello! I'm your Smart Agro assistant.",
		summary: "Current field readings: temperature %s°C, humidity %s%%, soil moisture %s%%.",
		noData:  "No recent sensor data is available right now.",
		pest:    "Pests were detected in the latest reading, please inspect your crops.",
		advice: map[string]string{
			"temperature":   "Temperature is outside the 20-28°C comfort range.",
			"humidity":      "Humidity is outside the 60-80% range.",
			"soil_moisture": "Soil moisture is outside the 40-70% range, check your irrigation.",
		},
		help:     "I can help with irrigation, fertilizer timing, pest checks and crop health.",
		degraded: "Note: AI features are temporarily limited, so this is an automatic summary.",
	},
	models.Telugu: {
		hello:   "నమస్కారం! నేను మీ స్మార్ట్ అగ్రో సహాయకుడిని.",
		summary: "ప్రస్తుత పొలం రీడింగ్‌లు: ఉష్ణోగ్రత %s°C, తేమ %s%%, మట్టి తేమ %s%%.",
		noData:  "ప్రస్తుతం ఇటీవలి సెన్సార్ డేటా అందుబాటులో లేదు.",
		pest:    "తాజా రీడింగ్‌లో పురుగులు గుర్తించబడ్డాయి, దయచేసి మీ పంటలను పరిశీలించండి.",
		advice: map[string]string{
			"temperature":   "ఉష్ణోగ్రత 20-28°C పరిధికి వెలుపల ఉంది.",
			"humidity":      "గాలి తేమ 60-80% పరిధికి వెలుపల ఉంది.",
			"soil_moisture": "మట్టి తేమ 40-70% పరిధికి వెలుపల ఉంది, నీటిపారుదలను తనిఖీ చేయండి.",
		},
		help:     "నీటిపారుదల, ఎరువుల సమయం, పురుగుల తనిఖీ మరియు పంట ఆరోగ్యంలో నేను సహాయం చేయగలను.",
		degraded: "గమనిక: AI సేవలు తాత్కాలికంగా పరిమితంగా ఉన్నాయి, ఇది స్వయంచాలక సారాంశం.",
	},
	models.Hindi: {
		hello:   "नमस्ते! मैं आपका स्मार्ट एग्रो सहायक हूं।",
		summary: "वर्तमान खेत रीडिंग: तापमान %s°C, नमी %s%%, मिट्टी की नमी %s%%।",
		noData:  "अभी कोई हालिया सेंसर डेटा उपलब्ध नहीं है।",
		pest:    "नवीनतम रीडिंग में कीट पाए गए हैं, कृपया अपनी फसलों की जांच करें।",
		advice: map[string]string{
			"temperature":   "तापमान 20-28°C की सीमा से बाहर है।",
			"humidity":      "नमी 60-80% की सीमा से बाहर है।",
			"soil_moisture": "मिट्टी की नमी 40-70% की सीमा से बाहर है, सिंचाई की जांच करें।",
		},
		help:     "मैं सिंचाई, उर्वरक के समय, कीट जांच और फसल स्वास्थ्य में मदद कर सकता हूं।",
		degraded: "नोट: AI सुविधाएं अस्थायी रूप से सीमित हैं, यह एक स्वचालित सारांश है।",
	},
}

// LocalReply builds the deterministic answer used when the chat proxy cannot
// be reached: greeting, reading summary with any alerts, help text and a note
// that AI features are degraded.
func LocalReply(lang models.Language, r *models.SensorReading) string {
	t, ok := fallbackTexts[lang]
	if !ok {
		t = fallbackTexts[models.English]
	}

	parts := []string{t.hello}
	if r == nil {
		parts = append(parts, t.noData)
	} else {
		parts = append(parts, fmt.Sprintf(t.summary,
			formatValue(r.Temperature), formatValue(r.Humidity), formatValue(r.SoilMoisture)))
		for _, alert := range utils.CheckAbnormality(*r) {
			if alert.Field == "pest_detected" {
				parts = append(parts, t.pest)
				continue
			}
			if advice, ok := t.advice[alert.Field]; ok {
				parts = append(parts, advice)
			}
		}
	}
	parts = append(parts, t.help, t.degraded)
	return strings.Join(parts, " ")
}
