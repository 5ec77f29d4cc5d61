package sensors

import (
	"context"
	"math"
	"sync"
	"time"

	"smartagro/models"
	"smartagro/store"

	"go.uber.org/zap"
)

// Defaults used when a history query leaves its parameters unset.
const (
	DefaultHistoryLimit = 100
	DefaultWindowHours  = 24
	MaxWindowHours      = 24 * 366 * 10
)

// ClampWindow bounds a window to [0, MaxWindowHours]. NaN becomes zero.
func ClampWindow(hours float64) float64 {
	switch {
	case math.IsNaN(hours) || hours < 0:
		return 0
	case hours > MaxWindowHours:
		return MaxWindowHours
	}
	return hours
}

const historyFailed = "Failed to fetch sensor history"

// HistoryResult is the outcome of the most recent history query.
type HistoryResult struct {
	Readings []models.SensorReading
	Loading  bool
	Error    string
}

// HistoryClient runs windowed, ascending history queries. Every Fetch and
// Refetch goes to the backend; nothing is cached.
type HistoryClient struct {
	backend store.Querier
	log     *zap.Logger
	now     func() time.Time

	mu          sync.Mutex
	windowHours float64
	limit       int
	result      HistoryResult
}

// NewHistoryClient returns a client with the default window and limit.
func NewHistoryClient(backend store.Querier, log *zap.Logger) *HistoryClient {
	return &HistoryClient{
		backend:     backend,
		log:         log,
		now:         time.Now,
		windowHours: DefaultWindowHours,
		limit:       DefaultHistoryLimit,
		result:      HistoryResult{Readings: []models.SensorReading{}},
	}
}

// Fetch queries rows monitored in the last windowHours, oldest first, at most
// limit of them. A non-positive limit falls back to DefaultHistoryLimit and the
// window is clamped with ClampWindow.
func (h *HistoryClient) Fetch(ctx context.Context, windowHours float64, limit int) HistoryResult {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	windowHours = ClampWindow(windowHours)
	h.mu.Lock()
	h.windowHours = windowHours
	h.limit = limit
	h.mu.Unlock()
	return h.run(ctx, windowHours, limit)
}

// Refetch repeats the last query with a freshly computed window start.
func (h *HistoryClient) Refetch(ctx context.Context) HistoryResult {
	h.mu.Lock()
	windowHours, limit := h.windowHours, h.limit
	h.mu.Unlock()
	return h.run(ctx, windowHours, limit)
}

// Result returns the outcome of the last query, or Loading while one runs.
func (h *HistoryClient) Result() HistoryResult {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.result
}

func (h *HistoryClient) run(ctx context.Context, windowHours float64, limit int) HistoryResult {
	h.mu.Lock()
	h.result.Loading = true
	h.result.Error = ""
	h.mu.Unlock()

	since := h.now().Add(-time.Duration(windowHours * float64(time.Hour)))
	readings, err := h.backend.Range(ctx, since, limit)

	res := HistoryResult{Readings: readings}
	if err != nil {
		h.log.Warn("history query failed", zap.Error(err), zap.Float64("window_hours", windowHours))
		res.Error = err.Error()
		if res.Error == "" {
			res.Error = historyFailed
		}
		h.mu.Lock()
		res.Readings = h.result.Readings
		h.mu.Unlock()
	}
	if res.Readings == nil {
		res.Readings = []models.SensorReading{}
	}

	h.mu.Lock()
	h.result = res
	h.mu.Unlock()
	return res
}
