// Package sensors keeps consumers in step with the sensor table: a live view of
// the latest reading and windowed history queries for charts.
package sensors

import (
	"context"
	"sync"
	"time"

	"smartagro/models"
	"smartagro/store"

	"go.uber.org/zap"
)

// ErrConnectionLost is the error text shown when the realtime channel fails.
const ErrConnectionLost = "Real-time connection lost"

const fetchFailed = "Failed to fetch sensor data"

// Snapshot is what a sync client exposes to its consumer.
type Snapshot struct {
	Reading *models.SensorReading
	Loading bool
	Error   string
	State   models.ConnectionState
}

// SyncClient holds the latest sensor reading and follows row changes.
//
// Events replace the held reading in delivery order without comparing
// MonitoredAt, so an out-of-order event can move the displayed value
// backwards. The initial query and early events may race; whichever is
// applied last wins.
type SyncClient struct {
	backend  store.Backend
	log      *zap.Logger
	onChange func(Snapshot)
	now      func() time.Time

	// emitMu serialises apply+notify against Stop so no callback runs after
	// Stop returns. onChange must not call Stop or Start.
	emitMu sync.Mutex

	mu     sync.Mutex
	snap   Snapshot
	gen    uint64
	active bool
	sub    store.Subscription
	cancel context.CancelFunc
}

// NewSyncClient returns an inactive client. onChange, if set, is called with
// every new snapshot.
func NewSyncClient(backend store.Backend, log *zap.Logger, onChange func(Snapshot)) *SyncClient {
	return &SyncClient{
		backend:  backend,
		log:      log,
		onChange: onChange,
		now:      time.Now,
	}
}

// Start resets the connection state, subscribes to inserts and updates, and
// fetches the latest reading in the background. Calling Start on an active
// client restarts it.
func (c *SyncClient) Start(ctx context.Context) {
	c.Stop()

	c.emitMu.Lock()
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.active = true
	c.snap = Snapshot{Reading: c.snap.Reading, Loading: true}
	fetchCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	snap := c.snap
	c.mu.Unlock()
	c.notify(snap)
	c.emitMu.Unlock()

	filter := models.SubscriptionFilter{
		Table:  store.DefaultTable,
		Events: []models.EventKind{models.EventInsert, models.EventUpdate},
	}
	sub := c.backend.Subscribe(filter,
		func(ev models.ChangeEvent) { c.handleEvent(gen, ev) },
		func(st models.SubscriptionStatus, err error) { c.handleStatus(gen, st, err) },
	)

	c.mu.Lock()
	if c.gen != gen || !c.active {
		// Stopped while subscribing.
		c.mu.Unlock()
		sub.Cancel()
		return
	}
	c.sub = sub
	c.mu.Unlock()

	go c.fetchLatest(fetchCtx, gen)
}

// Stop cancels the subscription and any in-flight query. After Stop returns
// the snapshot is frozen and onChange is not called again. Stop is idempotent.
func (c *SyncClient) Stop() {
	c.emitMu.Lock()
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		c.emitMu.Unlock()
		return
	}
	c.active = false
	c.gen++
	sub, cancel := c.sub, c.cancel
	c.sub, c.cancel = nil, nil
	c.mu.Unlock()
	c.emitMu.Unlock()

	if sub != nil {
		sub.Cancel()
	}
	if cancel != nil {
		cancel()
	}
}

// Snapshot returns the current view.
func (c *SyncClient) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

func (c *SyncClient) fetchLatest(ctx context.Context, gen uint64) {
	reading, err := c.backend.Latest(ctx)
	c.apply(gen, func(s *Snapshot) {
		s.Loading = false
		if err != nil {
			c.log.Warn("initial sensor query failed", zap.Error(err))
			s.Error = err.Error()
			if s.Error == "" {
				s.Error = fetchFailed
			}
			s.State.Connected = false
			s.State.LastError = s.Error
			return
		}
		s.Reading = reading
		s.Error = ""
		s.State.Connected = true
		s.State.LastError = ""
		c.touch(s)
	})
}

func (c *SyncClient) handleEvent(gen uint64, ev models.ChangeEvent) {
	if ev.Kind != models.EventInsert && ev.Kind != models.EventUpdate {
		return
	}
	if ev.New == nil {
		return
	}
	row := *ev.New
	c.apply(gen, func(s *Snapshot) {
		s.Reading = &row
		s.State.Connected = true
		c.touch(s)
	})
}

func (c *SyncClient) handleStatus(gen uint64, status models.SubscriptionStatus, err error) {
	switch status {
	case models.StatusSubscribed:
		c.apply(gen, func(s *Snapshot) {
			s.State.Connected = true
		})
	case models.StatusChannelError, models.StatusTimedOut:
		c.log.Warn("realtime subscription failed", zap.String("status", string(status)), zap.Error(err))
		c.apply(gen, func(s *Snapshot) {
			s.State.Connected = false
			s.Error = ErrConnectionLost
			s.State.LastError = ErrConnectionLost
		})
	default:
		c.log.Debug("realtime subscription status", zap.String("status", string(status)))
	}
}

func (c *SyncClient) touch(s *Snapshot) {
	t := c.now()
	s.State.LastUpdated = &t
}

// apply mutates the snapshot only if gen is still the live generation.
func (c *SyncClient) apply(gen uint64, fn func(*Snapshot)) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	if !c.active || c.gen != gen {
		c.mu.Unlock()
		return
	}
	fn(&c.snap)
	snap := c.snap
	c.mu.Unlock()

	c.notify(snap)
}

func (c *SyncClient) notify(s Snapshot) {
	if c.onChange != nil {
		c.onChange(s)
	}
}
