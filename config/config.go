package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Realtime modes.
const (
	RealtimeLocal  = "local"  // ingestion publishes straight to the in-process hub
	RealtimeNotify = "notify" // a postgres trigger publishes through LISTEN/NOTIFY
)

// Config holds every setting read from the environment.
type Config struct {
	Port         string
	DatabaseURL  string
	RealtimeMode string

	HuggingFaceKey string
	HFTextModel    string
	HFBaseURL      string
	GeminiKey      string
	GeminiModel    string
	TTSEnabled     bool

	ProviderTimeout time.Duration
	IngestSecret    string

	ServerURL    string
	ChatProxyURL string

	LogLevel  string
	LogFormat string
}

// Load reads an optional .env file and then the environment.
func Load() Config {
	// Missing .env is normal outside development.
	_ = godotenv.Load()

	cfg := Config{
		Port:            getenv("PORT", "8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RealtimeMode:    strings.ToLower(getenv("REALTIME_MODE", RealtimeLocal)),
		HuggingFaceKey:  os.Getenv("HUGGING_FACE_API_KEY"),
		HFTextModel:     getenv("HF_TEXT_MODEL", "mosaicml/mpt-7b-chat"),
		HFBaseURL:       getenv("HF_BASE_URL", "https://api-inference.huggingface.co/models"),
		GeminiKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     getenv("GEMINI_MODEL", "gemini-2.0-flash"),
		TTSEnabled:      getbool("TTS_ENABLED", true),
		ProviderTimeout: getduration("PROVIDER_TIMEOUT", 60*time.Second),
		IngestSecret:    os.Getenv("INGEST_SECRET"),
		ServerURL:       getenv("SERVER_URL", "http://localhost:8080"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogFormat:       getenv("LOG_FORMAT", "console"),
	}
	cfg.ChatProxyURL = getenv("CHAT_PROXY_URL", strings.TrimRight(cfg.ServerURL, "/")+"/ai-chat")
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getbool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getduration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
