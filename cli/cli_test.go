package cli

import (
	"bytes"
	"context"
	"math/rand/v2"
	"path/filepath"
	"testing"
	"time"

	"smartagro/models"
	"smartagro/sensors"
	"smartagro/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleReadings(t *testing.T) {
	end := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rs := sampleReadings(48, 30*time.Minute, end, rand.New(rand.NewPCG(1, 2)))
	require.Len(t, rs, 48)

	assert.Equal(t, end.Add(-47*30*time.Minute), rs[0].MonitoredAt)
	assert.Equal(t, end, rs[47].MonitoredAt)
	for i, r := range rs {
		if i > 0 {
			assert.True(t, r.MonitoredAt.After(rs[i-1].MonitoredAt))
		}
		assert.InDelta(t, 25, r.Temperature, 6.1)
		assert.InDelta(t, 65, r.Humidity, 17.6)
		assert.InDelta(t, 50, r.SoilMoisture, 22.6)
		require.NotNil(t, r.PestDetected)
	}
}

func TestFormatSnapshot(t *testing.T) {
	now := time.Now()
	reading := models.SensorReading{Temperature: 35, Humidity: 70, SoilMoisture: 50, MonitoredAt: now}

	assert.Equal(t, "[disconnected] loading...", formatSnapshot(sensors.Snapshot{Loading: true}))
	assert.Equal(t, "[connected] no readings yet",
		formatSnapshot(sensors.Snapshot{State: models.ConnectionState{Connected: true}}))
	assert.Equal(t, "[disconnected (Real-time connection lost)] error: boom",
		formatSnapshot(sensors.Snapshot{Error: "boom", State: models.ConnectionState{LastError: sensors.ErrConnectionLost}}))

	line := formatSnapshot(sensors.Snapshot{Reading: &reading, State: models.ConnectionState{Connected: true}})
	assert.Contains(t, line, "temp 35.0°C")
	assert.Contains(t, line, "!temperature=critical")
	assert.NotContains(t, line, "pests")
}

func withDatabase(t *testing.T) string {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "smartagro.db")
	prev := cfg
	cfg.DatabaseURL = dsn
	t.Cleanup(func() { cfg = prev })
	return dsn
}

func TestOpenQuerierUsesPlainStore(t *testing.T) {
	withDatabase(t)

	q, closeFn, err := openQuerier()
	require.NoError(t, err)
	st, ok := q.(*store.SensorStore)
	require.True(t, ok, "got %T", q)

	require.NoError(t, st.Ping(context.Background()))
	closeFn()
	assert.Error(t, st.Ping(context.Background()))
}

func TestRunSeed(t *testing.T) {
	dsn := withDatabase(t)
	seedCount, seedInterval = 48, 30*time.Minute

	var out bytes.Buffer
	seedCmd.SetOut(&out)
	seedCmd.SetContext(context.Background())
	t.Cleanup(func() { seedCmd.SetOut(nil) })

	require.NoError(t, runSeed(seedCmd, nil))
	assert.Equal(t, "Inserted 48 readings.\n", out.String())

	st, closeFn, err := openStore(dsn)
	require.NoError(t, err)
	defer closeFn()
	rows, err := st.Range(context.Background(), time.Now().Add(-25*time.Hour), 0)
	require.NoError(t, err)
	assert.Len(t, rows, 48)
}
