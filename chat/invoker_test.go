package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"smartagro/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInvokerSuccess(t *testing.T) {
	audio := "UklGRg=="
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req models.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, models.Telugu, req.Language)
		json.NewEncoder(w).Encode(models.ChatResponse{Response: "remote answer", SensorData: sample, AudioBase64: &audio})
	}))
	defer srv.Close()

	inv := NewInvoker(srv.URL, srv.Client(), &fakeReadings{err: errors.New("must not be called")}, zap.NewNop())
	resp, err := inv.Send(context.Background(), models.ChatRequest{Message: "hi", Language: models.Telugu})
	require.NoError(t, err)
	assert.Equal(t, "remote answer", resp.Response)
	require.NotNil(t, resp.AudioBase64)
	assert.Equal(t, audio, *resp.AudioBase64)
}

func TestInvokerFallsBackOnNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	inv := NewInvoker(url, nil, &fakeReadings{reading: sample}, zap.NewNop())
	resp, err := inv.Send(context.Background(), models.ChatRequest{Message: "hi", Language: models.English})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Response)
	assert.Contains(t, resp.Response, "25.5")
	assert.Equal(t, sample, resp.SensorData)
	assert.Nil(t, resp.AudioBase64)
}

func TestInvokerFallsBackOnBadAnswers(t *testing.T) {
	handlers := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(models.ErrorResponse{Error: "HUGGING_FACE_API_KEY not configured"})
		},
		"empty body": func(w http.ResponseWriter, r *http.Request) {},
		"empty response": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"response":"","sensorData":null,"audioBase64":null}`))
		},
	}
	for name, h := range handlers {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()

			inv := NewInvoker(srv.URL, srv.Client(), &fakeReadings{reading: sample}, zap.NewNop())
			resp, err := inv.Send(context.Background(), models.ChatRequest{Message: "hi", Language: models.Hindi})
			require.NoError(t, err)
			assert.Contains(t, resp.Response, "25.5")
			assert.Contains(t, resp.Response, "नमस्ते")
			assert.Nil(t, resp.AudioBase64)
		})
	}
}

func TestInvokerErrorsWhenFallbackFails(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	inv := NewInvoker(srv.URL, srv.Client(), &fakeReadings{err: errors.New("database offline")}, zap.NewNop())
	resp, err := inv.Send(context.Background(), models.ChatRequest{Message: "hi"})
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database offline")
	assert.Contains(t, err.Error(), "404")
}
