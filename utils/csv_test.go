package utils

import (
	"bytes"
	"testing"
	"time"

	"smartagro/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	pest := true
	at := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []models.SensorReading{
		{Temperature: 24.456, Humidity: 61, SoilMoisture: 48.5, PestDetected: &pest, MonitoredAt: at},
		{Temperature: 25, Humidity: 62, SoilMoisture: 47, MonitoredAt: at.Add(time.Hour)},
	}))
	assert.Equal(t,
		"monitored_at,temperature,humidity,soil_moisture,pest_detected\n"+
			"2026-10-17T08:00:00Z,24.46,61.00,48.50,true\n"+
			"2026-10-17T09:00:00Z,25.00,62.00,47.00,\n",
		buf.String())
}
