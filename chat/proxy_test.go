package chat

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"smartagro/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReadings struct {
	reading *models.SensorReading
	err     error
}

func (f *fakeReadings) Latest(context.Context) (*models.SensorReading, error) {
	return f.reading, f.err
}

func (f *fakeReadings) Range(context.Context, time.Time, int) ([]models.SensorReading, error) {
	return nil, f.err
}

type fakeGenerator struct {
	mu      sync.Mutex
	calls   int
	system  string
	message string
	reply   string
	err     error
}

func (g *fakeGenerator) Generate(_ context.Context, system, message string, _ models.Language) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.system, g.message = system, message
	return g.reply, g.err
}

type fakeSpeaker struct {
	audio []byte
	err   error
}

func (s *fakeSpeaker) Synthesize(context.Context, string, models.Language) ([]byte, error) {
	return s.audio, s.err
}

func newTestProxy(r *fakeReadings, g *fakeGenerator, sp Speaker) *Proxy {
	return NewProxy(ProxyConfig{
		Readings:   r,
		Generators: map[string]TextGenerator{ModeHuggingFace: g, ModeGemini: g},
		Speaker:    sp,
		Timeout:    time.Second,
	})
}

var sample = &models.SensorReading{ID: 1, Temperature: 25.5, Humidity: 65.0, SoilMoisture: 50.0}

func TestProxyRejectsEmptyMessage(t *testing.T) {
	g := &fakeGenerator{reply: "unused"}
	p := newTestProxy(&fakeReadings{reading: sample}, g, nil)

	for _, msg := range []string{"", "   "} {
		_, err := p.Answer(context.Background(), models.ChatRequest{Message: msg, Language: models.English})
		require.ErrorIs(t, err, ErrEmptyMessage)
		assert.True(t, IsBadRequest(err))
	}
	assert.Zero(t, g.calls)
}

func TestProxyValidatesLanguageAndMode(t *testing.T) {
	g := &fakeGenerator{reply: "ok"}
	p := newTestProxy(&fakeReadings{reading: sample}, g, nil)

	_, err := p.Answer(context.Background(), models.ChatRequest{Message: "hi", Language: "fr"})
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)

	_, err = p.Answer(context.Background(), models.ChatRequest{Message: "hi", Mode: "openai"})
	assert.ErrorIs(t, err, ErrUnknownMode)
	assert.True(t, IsBadRequest(err))
	assert.Zero(t, g.calls)
}

func TestProxyEmbedsReadingInContext(t *testing.T) {
	g := &fakeGenerator{reply: "Soil is fine."}
	p := newTestProxy(&fakeReadings{reading: sample}, g, nil)

	resp, err := p.Answer(context.Background(), models.ChatRequest{Message: "How is my field?"})
	require.NoError(t, err)

	assert.Contains(t, g.system, "25.5")
	assert.Contains(t, g.system, "65")
	assert.Contains(t, g.system, "50")
	assert.NotContains(t, g.system, "undefined")
	assert.Equal(t, "How is my field?", g.message)

	assert.Equal(t, "Soil is fine.", resp.Response)
	assert.Equal(t, sample, resp.SensorData)
	assert.Nil(t, resp.AudioBase64)
}

func TestProxyWithoutReading(t *testing.T) {
	g := &fakeGenerator{reply: "Add a sensor."}
	p := newTestProxy(&fakeReadings{}, g, nil)

	resp, err := p.Answer(context.Background(), models.ChatRequest{Message: "status?"})
	require.NoError(t, err)
	assert.Contains(t, g.system, NoDataContext)
	assert.Nil(t, resp.SensorData)
}

func TestProxyProviderFailure(t *testing.T) {
	g := &fakeGenerator{err: &ProviderError{Provider: "HF m", Status: http.StatusBadGateway, Body: "upstream"}}
	p := newTestProxy(&fakeReadings{reading: sample}, g, nil)

	resp, err := p.Answer(context.Background(), models.ChatRequest{Message: "hi"})
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.False(t, IsBadRequest(err))
}

func TestProxyBackendFailure(t *testing.T) {
	g := &fakeGenerator{reply: "x"}
	p := newTestProxy(&fakeReadings{err: errors.New("connection refused")}, g, nil)

	_, err := p.Answer(context.Background(), models.ChatRequest{Message: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sensor context")
	assert.Zero(t, g.calls)
}

func TestProxyBlankGenerationDegrades(t *testing.T) {
	p := newTestProxy(&fakeReadings{reading: sample}, &fakeGenerator{reply: " "}, nil)
	resp, err := p.Answer(context.Background(), models.ChatRequest{Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, FallbackReply, resp.Response)
}

func TestProxyAudio(t *testing.T) {
	g := &fakeGenerator{reply: "ok"}

	p := newTestProxy(&fakeReadings{reading: sample}, g, &fakeSpeaker{audio: []byte("RIFF")})
	resp, err := p.Answer(context.Background(), models.ChatRequest{Message: "hi", Language: models.Telugu})
	require.NoError(t, err)
	require.NotNil(t, resp.AudioBase64)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("RIFF")), *resp.AudioBase64)

	p = newTestProxy(&fakeReadings{reading: sample}, g, &fakeSpeaker{err: errors.New("tts down")})
	resp, err = p.Answer(context.Background(), models.ChatRequest{Message: "hi", Language: models.Hindi})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Response)
	assert.Nil(t, resp.AudioBase64)
}
