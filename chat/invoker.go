package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"smartagro/models"
	"smartagro/store"

	"go.uber.org/zap"
)

// Invoker calls the chat proxy over HTTP. When the proxy is unreachable or
// answers badly it answers locally from the latest reading instead.
type Invoker struct {
	url      string
	client   *http.Client
	readings store.Querier
	log      *zap.Logger
}

// NewInvoker returns an Invoker posting to proxyURL. readings is queried
// directly for the local fallback.
func NewInvoker(proxyURL string, client *http.Client, readings store.Querier, log *zap.Logger) *Invoker {
	if client == nil {
		client = &http.Client{Timeout: 90 * time.Second}
	}
	return &Invoker{url: proxyURL, client: client, readings: readings, log: log}
}

// Send returns the proxy's answer, or the local fallback when the proxy call
// fails. It errors only when the fallback's own query fails too.
func (i *Invoker) Send(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	resp, err := i.call(ctx, req)
	if err == nil {
		return resp, nil
	}
	i.log.Warn("chat proxy unavailable, answering locally", zap.Error(err))

	fb, fbErr := i.Fallback(ctx, req.Language)
	if fbErr != nil {
		return nil, errors.Join(err, fbErr)
	}
	return fb, nil
}

// Fallback builds the templated answer from the latest reading.
func (i *Invoker) Fallback(ctx context.Context, lang models.Language) (*models.ChatResponse, error) {
	reading, err := i.readings.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("local fallback: %w", err)
	}
	return &models.ChatResponse{
		Response:    LocalReply(lang, reading),
		SensorData:  reading,
		AudioBase64: nil,
	}, nil
}

func (i *Invoker) call(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, i.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := i.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke AI chat function: %w", err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		var e models.ErrorResponse
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			return nil, fmt.Errorf("chat proxy returned %d: %s", httpResp.StatusCode, e.Error)
		}
		return nil, fmt.Errorf("chat proxy returned %d", httpResp.StatusCode)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("no response from AI")
	}

	var out models.ChatResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if strings.TrimSpace(out.Response) == "" {
		return nil, errors.New("no response from AI")
	}
	return &out, nil
}
