package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"smartagro/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Remote is a Backend served by a running smartagro server: queries go over
// REST and change events arrive on the /ws websocket.
type Remote struct {
	baseURL     string
	client      *http.Client
	dialer      *websocket.Dialer
	dialTimeout time.Duration
	log         *zap.Logger
}

// NewRemote returns a Backend for the server at baseURL.
func NewRemote(baseURL string, client *http.Client, log *zap.Logger) *Remote {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Remote{
		baseURL:     strings.TrimRight(baseURL, "/"),
		client:      client,
		dialer:      websocket.DefaultDialer,
		dialTimeout: 10 * time.Second,
		log:         log,
	}
}

type latestEnvelope struct {
	Data  *models.SensorReading `json:"data"`
	Error string                `json:"error"`
}

type rangeEnvelope struct {
	Data  []models.SensorReading `json:"data"`
	Error string                 `json:"error"`
}

func (r *Remote) Latest(ctx context.Context) (*models.SensorReading, error) {
	var env latestEnvelope
	if err := r.get(ctx, "/sensor-data/latest", nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (r *Remote) Range(ctx context.Context, since time.Time, limit int) ([]models.SensorReading, error) {
	q := url.Values{}
	q.Set("since", since.UTC().Format(time.RFC3339Nano))
	q.Set("limit", strconv.Itoa(limit))

	var env rangeEnvelope
	if err := r.get(ctx, "/sensor-data", q, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		env.Data = []models.SensorReading{}
	}
	return env.Data, nil
}

func (r *Remote) get(ctx context.Context, path string, q url.Values, out any) error {
	u := r.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var e models.ErrorResponse
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, e.Error)
		}
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// StreamURL converts the server base URL into its websocket endpoint.
func StreamURL(baseURL string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/ws")
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	}
	return u.String(), nil
}

// Subscribe dials the websocket in the background. A dial that exceeds the
// timeout is reported as TIMED_OUT, any other failure as CHANNEL_ERROR.
func (r *Remote) Subscribe(filter models.SubscriptionFilter, onEvent EventFunc, onStatus StatusFunc) Subscription {
	ctx, cancel := context.WithCancel(context.Background())
	sub := &remoteSubscription{cancel: cancel}
	go sub.run(ctx, r, filter, onEvent, onStatus)
	return sub
}

type remoteSubscription struct {
	cancel context.CancelFunc

	mu   sync.Mutex
	conn *websocket.Conn
	once sync.Once
}

func (s *remoteSubscription) Cancel() {
	s.once.Do(func() {
		s.cancel()
		s.mu.Lock()
		if s.conn != nil {
			s.conn.Close()
		}
		s.mu.Unlock()
	})
}

func (s *remoteSubscription) run(ctx context.Context, r *Remote, filter models.SubscriptionFilter, onEvent EventFunc, onStatus StatusFunc) {
	report := func(status models.SubscriptionStatus, err error) {
		if ctx.Err() == nil && onStatus != nil {
			onStatus(status, err)
		}
	}

	wsURL, err := StreamURL(r.baseURL)
	if err != nil {
		report(models.StatusChannelError, err)
		return
	}

	dialCtx, cancelDial := context.WithTimeout(ctx, r.dialTimeout)
	conn, _, err := r.dialer.DialContext(dialCtx, wsURL, nil)
	cancelDial()
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			report(models.StatusTimedOut, err)
		} else {
			report(models.StatusChannelError, err)
		}
		return
	}

	s.mu.Lock()
	if ctx.Err() != nil {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.conn = conn
	s.mu.Unlock()
	defer conn.Close()

	r.log.Debug("realtime stream connected", zap.String("url", wsURL))

	for {
		var msg models.StreamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			report(models.StatusChannelError, err)
			return
		}
		if ctx.Err() != nil {
			return
		}
		switch msg.Type {
		case "status":
			report(msg.Status, nil)
		case "change":
			if msg.Event != nil && filter.Matches(msg.Event.Kind) && onEvent != nil {
				onEvent(*msg.Event)
			}
		}
	}
}
