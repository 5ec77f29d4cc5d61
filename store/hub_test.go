package store

import (
	"sync"
	"testing"
	"time"

	"smartagro/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

type recorder struct {
	mu       sync.Mutex
	events   []models.ChangeEvent
	statuses []models.SubscriptionStatus
}

func (r *recorder) onEvent(ev models.ChangeEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) onStatus(s models.SubscriptionStatus, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, s)
}

func (r *recorder) snapshot() ([]models.ChangeEvent, []models.SubscriptionStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.ChangeEvent(nil), r.events...), append([]models.SubscriptionStatus(nil), r.statuses...)
}

func reading(temp float64) *models.SensorReading {
	return &models.SensorReading{Temperature: temp, MonitoredAt: time.Now()}
}

func TestHubDeliversInOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := NewHub(zap.NewNop())
	rec := &recorder{}
	sub := h.Subscribe(models.SubscriptionFilter{Table: DefaultTable}, rec.onEvent, rec.onStatus)

	for i := 0; i < 10; i++ {
		h.Publish(models.ChangeEvent{Kind: models.EventInsert, New: reading(float64(i))})
	}

	require.Eventually(t, func() bool {
		evs, _ := rec.snapshot()
		return len(evs) == 10
	}, time.Second, 5*time.Millisecond)

	evs, statuses := rec.snapshot()
	for i, ev := range evs {
		assert.Equal(t, float64(i), ev.New.Temperature)
	}
	assert.Equal(t, []models.SubscriptionStatus{models.StatusSubscribed}, statuses)

	sub.Cancel()
	sub.Cancel()
	assert.Equal(t, 0, h.Subscribers())
}

func TestHubFilter(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := NewHub(zap.NewNop())
	rec := &recorder{}
	sub := h.Subscribe(models.SubscriptionFilter{Events: []models.EventKind{models.EventUpdate}}, rec.onEvent, nil)
	defer sub.Cancel()

	h.Publish(models.ChangeEvent{Kind: models.EventInsert, New: reading(1)})
	h.Publish(models.ChangeEvent{Kind: models.EventUpdate, New: reading(2)})

	require.Eventually(t, func() bool {
		evs, _ := rec.snapshot()
		return len(evs) == 1
	}, time.Second, 5*time.Millisecond)
	evs, _ := rec.snapshot()
	assert.Equal(t, models.EventUpdate, evs[0].Kind)
}

func TestHubNoDeliveryAfterCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := NewHub(zap.NewNop())
	rec := &recorder{}
	sub := h.Subscribe(models.SubscriptionFilter{}, rec.onEvent, rec.onStatus)
	sub.Cancel()

	h.Publish(models.ChangeEvent{Kind: models.EventInsert, New: reading(1)})
	time.Sleep(20 * time.Millisecond)

	evs, _ := rec.snapshot()
	assert.Empty(t, evs)
}

func TestHubCloseReportsClosed(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := NewHub(zap.NewNop())
	rec := &recorder{}
	h.Subscribe(models.SubscriptionFilter{}, rec.onEvent, rec.onStatus)
	h.Close()

	require.Eventually(t, func() bool {
		_, st := rec.snapshot()
		return len(st) > 0 && st[len(st)-1] == models.StatusClosed
	}, time.Second, 5*time.Millisecond)

	late := &recorder{}
	h.Subscribe(models.SubscriptionFilter{}, late.onEvent, late.onStatus)
	require.Eventually(t, func() bool {
		_, st := late.snapshot()
		return len(st) == 1 && st[0] == models.StatusChannelError
	}, time.Second, 5*time.Millisecond)
}

func TestDecodeNotification(t *testing.T) {
	ev, err := DecodeNotification(`{"eventType":"INSERT","new":{"id":7,"temperature":25.5,"humidity":65,"soil_moisture":50,"pest_detected":null,"monitored_at":"2026-10-17T09:30:00.123456+00:00"},"old":null}`)
	require.NoError(t, err)
	assert.Equal(t, models.EventInsert, ev.Kind)
	require.NotNil(t, ev.New)
	assert.Equal(t, uint(7), ev.New.ID)
	assert.Equal(t, 25.5, ev.New.Temperature)
	assert.Nil(t, ev.New.PestDetected)
	assert.Nil(t, ev.Old)

	_, err = DecodeNotification(`{"eventType":"TRUNCATE"}`)
	assert.Error(t, err)
	_, err = DecodeNotification(`not json`)
	assert.Error(t, err)
}
