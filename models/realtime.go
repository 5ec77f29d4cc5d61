package models

import "time"

// EventKind tags a row change delivered by a subscription.
type EventKind string

const (
	EventInsert EventKind = "INSERT"
	EventUpdate EventKind = "UPDATE"
	EventDelete EventKind = "DELETE"
	// EventAll is only valid in a SubscriptionFilter.
	EventAll EventKind = "*"
)

// ChangeEvent carries a changed row. New is nil for deletes, Old is nil for inserts.
type ChangeEvent struct {
	Kind EventKind      `json:"eventType"`
	New  *SensorReading `json:"new,omitempty"`
	Old  *SensorReading `json:"old,omitempty"`
}

// SubscriptionStatus is reported through the status callback of a subscription.
type SubscriptionStatus string

const (
	StatusSubscribed   SubscriptionStatus = "SUBSCRIBED"
	StatusChannelError SubscriptionStatus = "CHANNEL_ERROR"
	StatusTimedOut     SubscriptionStatus = "TIMED_OUT"
	StatusClosed       SubscriptionStatus = "CLOSED"
)

// SubscriptionFilter selects which change events a subscriber receives.
type SubscriptionFilter struct {
	Table  string
	Events []EventKind
}

// Matches reports whether kind passes the filter. An empty event list accepts everything.
func (f SubscriptionFilter) Matches(kind EventKind) bool {
	if len(f.Events) == 0 {
		return true
	}
	for _, k := range f.Events {
		if k == EventAll || k == kind {
			return true
		}
	}
	return false
}

// ConnectionState is the live view a sync client keeps of its subscription.
type ConnectionState struct {
	Connected   bool       `json:"connected"`
	LastUpdated *time.Time `json:"last_updated"`
	LastError   string     `json:"last_error,omitempty"`
}

// StreamMessage is the websocket frame pushed to realtime clients.
type StreamMessage struct {
	Type   string             `json:"type"` // "change" or "status"
	Event  *ChangeEvent       `json:"event,omitempty"`
	Status SubscriptionStatus `json:"status,omitempty"`
	Alerts []Alert            `json:"alerts,omitempty"`
}
