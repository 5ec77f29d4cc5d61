// Package chat answers farmer questions with an LLM grounded on the latest
// sensor reading, and degrades to a templated local answer when the LLM path
// is unavailable.
package chat

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"smartagro/models"
	"smartagro/store"

	"go.uber.org/zap"
)

// Proxy handles one chat turn: it loads the latest reading, asks the selected
// provider, and optionally attaches speech. It never writes to the store.
type Proxy struct {
	readings    store.Querier
	generators  map[string]TextGenerator
	defaultMode string
	speaker     Speaker
	timeout     time.Duration
	log         *zap.Logger
}

// ProxyConfig wires a Proxy.
type ProxyConfig struct {
	Readings    store.Querier
	Generators  map[string]TextGenerator
	DefaultMode string
	// Speaker is optional; nil disables audio.
	Speaker Speaker
	// Timeout bounds each provider call; zero means no extra bound.
	Timeout time.Duration
	Log     *zap.Logger
}

// NewProxy builds a Proxy from cfg.
func NewProxy(cfg ProxyConfig) *Proxy {
	mode := cfg.DefaultMode
	if mode == "" {
		mode = ModeHuggingFace
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Proxy{
		readings:    cfg.Readings,
		generators:  cfg.Generators,
		defaultMode: mode,
		speaker:     cfg.Speaker,
		timeout:     cfg.Timeout,
		log:         log,
	}
}

// Normalize validates req and fills in the default language and mode.
func (p *Proxy) Normalize(req models.ChatRequest) (models.ChatRequest, error) {
	if strings.TrimSpace(req.Message) == "" {
		return req, ErrEmptyMessage
	}
	if req.Language == "" {
		req.Language = models.English
	}
	if !req.Language.Valid() {
		return req, ErrUnsupportedLanguage
	}
	if req.Mode == "" {
		req.Mode = p.defaultMode
	}
	if _, ok := p.generators[req.Mode]; !ok {
		return req, fmt.Errorf("%w %q", ErrUnknownMode, req.Mode)
	}
	return req, nil
}

// Answer runs one chat turn. Input errors satisfy IsBadRequest; every other
// error is an infrastructure or provider failure.
func (p *Proxy) Answer(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	req, err := p.Normalize(req)
	if err != nil {
		return nil, err
	}

	reading, err := p.readings.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sensor context: %w", err)
	}

	system := SystemInstruction(BuildContext(reading))

	genCtx, cancel := p.bound(ctx)
	text, err := p.generators[req.Mode].Generate(genCtx, system, req.Message, req.Language)
	cancel()
	if err != nil {
		p.log.Error("text generation failed", zap.String("mode", req.Mode), zap.Error(err))
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		text = FallbackReply
	}

	return &models.ChatResponse{
		Response:    text,
		SensorData:  reading,
		AudioBase64: p.speak(ctx, text, req.Language),
	}, nil
}

// speak returns base64 audio, or nil when speech is disabled or fails.
func (p *Proxy) speak(ctx context.Context, text string, lang models.Language) *string {
	if p.speaker == nil {
		return nil
	}
	if _, ok := VoiceModels[lang]; !ok {
		return nil
	}
	ttsCtx, cancel := p.bound(ctx)
	defer cancel()

	audio, err := p.speaker.Synthesize(ttsCtx, text, lang)
	if err != nil {
		p.log.Info("speech synthesis skipped", zap.String("language", string(lang)), zap.Error(err))
		return nil
	}
	if len(audio) == 0 {
		return nil
	}
	encoded := base64.StdEncoding.EncodeToString(audio)
	return &encoded
}

func (p *Proxy) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.timeout)
}
