// Package store is the narrow interface the rest of the backend uses to read
// sensor rows and to follow changes to them.
package store

import (
	"context"
	"time"

	"smartagro/models"
)

// DefaultTable is the table every subscription follows.
const DefaultTable = "soil_data"

// Querier answers point and range queries over sensor readings.
type Querier interface {
	// Latest returns the row with the greatest MonitoredAt, or nil when the
	// table is empty.
	Latest(ctx context.Context) (*models.SensorReading, error)
	// Range returns rows with MonitoredAt >= since in ascending order, at
	// most limit of them.
	Range(ctx context.Context, since time.Time, limit int) ([]models.SensorReading, error)
}

// EventFunc receives change events in delivery order.
type EventFunc func(models.ChangeEvent)

// StatusFunc receives subscription status transitions. err is set for
// CHANNEL_ERROR and TIMED_OUT.
type StatusFunc func(status models.SubscriptionStatus, err error)

// Subscriber registers observers for row changes.
type Subscriber interface {
	Subscribe(filter models.SubscriptionFilter, onEvent EventFunc, onStatus StatusFunc) Subscription
}

// Subscription is the handle returned by Subscribe. Cancel stops all future
// deliveries and may be called any number of times.
type Subscription interface {
	Cancel()
}

// Backend is everything a sync client needs from the data store.
type Backend interface {
	Querier
	Subscriber
}

// Local pairs a database store with an in-process hub.
type Local struct {
	*SensorStore
	*Hub
}

// NewLocal returns a Backend reading from s and subscribing through h.
func NewLocal(s *SensorStore, h *Hub) *Local {
	return &Local{SensorStore: s, Hub: h}
}
