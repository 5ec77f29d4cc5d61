package store

import (
	"errors"
	"sync"

	"smartagro/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// subscriberBuffer is how many undelivered events a subscriber may lag behind
// before it is dropped with CHANNEL_ERROR.
const subscriberBuffer = 64

// ErrSlowSubscriber is reported to a subscriber that fell too far behind.
var ErrSlowSubscriber = errors.New("subscriber fell behind, events dropped")

// ErrHubClosed is reported to subscribers when the hub shuts down.
var ErrHubClosed = errors.New("realtime hub closed")

// Hub fans change events out to subscribers. Each subscriber has its own
// delivery goroutine, so events reach it in publish order.
type Hub struct {
	log *zap.Logger

	mu     sync.Mutex
	subs   map[string]*hubSubscription
	closed bool
}

// NewHub returns an empty hub.
func NewHub(log *zap.Logger) *Hub {
	return &Hub{log: log, subs: make(map[string]*hubSubscription)}
}

type hubMessage struct {
	event  *models.ChangeEvent
	status models.SubscriptionStatus
	err    error
}

type hubSubscription struct {
	id       string
	hub      *Hub
	filter   models.SubscriptionFilter
	onEvent  EventFunc
	onStatus StatusFunc
	queue    chan hubMessage
	done     chan struct{}
	once     sync.Once
}

// Subscribe registers observers. SUBSCRIBED is reported asynchronously once
// the delivery goroutine is running.
func (h *Hub) Subscribe(filter models.SubscriptionFilter, onEvent EventFunc, onStatus StatusFunc) Subscription {
	sub := &hubSubscription{
		id:       uuid.NewString(),
		hub:      h,
		filter:   filter,
		onEvent:  onEvent,
		onStatus: onStatus,
		queue:    make(chan hubMessage, subscriberBuffer),
		done:     make(chan struct{}),
	}

	sub.queue <- hubMessage{status: models.StatusSubscribed}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		sub.fail(models.StatusChannelError, ErrHubClosed)
		return sub
	}
	h.subs[sub.id] = sub
	h.mu.Unlock()

	h.log.Debug("realtime subscriber added", zap.String("subscription", sub.id), zap.String("table", filter.Table))
	go sub.run()
	return sub
}

// Publish delivers event to every matching subscriber.
func (h *Hub) Publish(event models.ChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, sub := range h.subs {
		if !sub.filter.Matches(event.Kind) {
			continue
		}
		ev := event
		select {
		case sub.queue <- hubMessage{event: &ev}:
		default:
			h.log.Warn("dropping slow realtime subscriber", zap.String("subscription", id))
			delete(h.subs, id)
			sub.fail(models.StatusChannelError, ErrSlowSubscriber)
		}
	}
}

// Broadcast reports a status to every subscriber, used when an upstream
// change feed fails or recovers.
func (h *Hub) Broadcast(status models.SubscriptionStatus, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs {
		select {
		case sub.queue <- hubMessage{status: status, err: err}:
		default:
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close reports CLOSED to every subscriber and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subs {
		delete(h.subs, id)
		sub.fail(models.StatusClosed, nil)
	}
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	delete(h.subs, id)
	h.mu.Unlock()
}

func (s *hubSubscription) Cancel() {
	s.once.Do(func() {
		close(s.done)
		s.hub.remove(s.id)
	})
}

// fail stops delivery after a final status. Safe to call with the hub lock held.
func (s *hubSubscription) fail(status models.SubscriptionStatus, err error) {
	s.once.Do(func() {
		close(s.done)
		go s.report(status, err)
	})
}

func (s *hubSubscription) report(status models.SubscriptionStatus, err error) {
	if s.onStatus != nil {
		s.onStatus(status, err)
	}
}

func (s *hubSubscription) run() {
	for {
		select {
		case <-s.done:
			return
		case msg := <-s.queue:
			// Cancel may race with a queued message; done wins.
			select {
			case <-s.done:
				return
			default:
			}
			if msg.event != nil {
				if s.onEvent != nil {
					s.onEvent(*msg.event)
				}
				continue
			}
			s.report(msg.status, msg.err)
		}
	}
}
