package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("REMOTE_DB_URL", "")
	t.Setenv("REMOTE_DB_KEY", "")
	t.Setenv("VERCEL", "")
	t.Setenv("DATA_DIR", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.False(t, cfg.Remote.Enabled())
	assert.Equal(t, time.Second, cfg.Remote.ProbeInitial)
	assert.Equal(t, time.Minute, cfg.Remote.ProbeMax)
	assert.Equal(t, "db.json", cfg.Store.File)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestRemoteRequiresBothSecrets(t *testing.T) {
	cases := []struct {
		url, key string
		want     bool
	}{
		{"", "", false},
		{"postgres://localhost/shop", "", false},
		{"", "secret", false},
		{"postgres://localhost/shop", "secret", true},
	}

	for _, tc := range cases {
		t.Setenv("REMOTE_DB_URL", tc.url)
		t.Setenv("REMOTE_DB_KEY", tc.key)
		assert.Equal(t, tc.want, Load().Remote.Enabled(), "url=%q key=%q", tc.url, tc.key)
	}
}

func TestPlatformMarkerSelectsTempDir(t *testing.T) {
	t.Setenv("VERCEL", "1")
	t.Setenv("DATA_DIR", "project-data")

	cfg := Load()

	assert.True(t, cfg.Store.Ephemeral)
	assert.Equal(t, filepath.Join(os.TempDir(), "storefront", "db.json"), cfg.Store.DataPath())
}

func TestProjectLocalDataDir(t *testing.T) {
	t.Setenv("VERCEL", "")
	t.Setenv("DATA_DIR", "project-data")

	cfg := Load()

	assert.False(t, cfg.Store.Ephemeral)
	assert.Equal(t, filepath.Join("project-data", "db.json"), cfg.Store.DataPath())
}

func TestListSettingsAreSplit(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,,")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://shop.example.com")

	cfg := Load()

	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, []string{"https://shop.example.com"}, cfg.Server.AllowedOrigins)
}
