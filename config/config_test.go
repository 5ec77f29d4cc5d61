package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("REALTIME_MODE", "")
	t.Setenv("SERVER_URL", "http://farm.local:9000/")
	t.Setenv("CHAT_PROXY_URL", "")
	t.Setenv("PROVIDER_TIMEOUT", "bogus")
	t.Setenv("TTS_ENABLED", "false")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, RealtimeLocal, cfg.RealtimeMode)
	assert.Equal(t, "http://farm.local:9000/ai-chat", cfg.ChatProxyURL)
	assert.Equal(t, 60*time.Second, cfg.ProviderTimeout)
	assert.False(t, cfg.TTSEnabled)
}

func TestOpenDatabaseSQLite(t *testing.T) {
	db, err := OpenDatabase("file:" + t.TempDir() + "/sensors.db")
	require.NoError(t, err)
	assert.True(t, db.Migrator().HasTable("soil_data"))

	_, err = OpenDatabase("")
	assert.Error(t, err)
}

func TestIsSQLite(t *testing.T) {
	assert.True(t, IsSQLite("farm.db"))
	assert.True(t, IsSQLite("file::memory:?cache=shared"))
	assert.False(t, IsSQLite("postgres://user@localhost/farm"))
}
