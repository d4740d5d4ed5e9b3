package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 10*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "mongo", cfg.Store.Driver)
	assert.Equal(t, "jwt", cfg.Auth.Provider)
	assert.Equal(t, "memory", cfg.Lock.Driver)
	assert.Equal(t, "profile.events", cfg.Kafka.Topic)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":9090")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("LOCK_DRIVER", "redis")
	t.Setenv("LOCK_TTL", "2s")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "redis", cfg.Lock.Driver)
	assert.Equal(t, 2*time.Second, cfg.Lock.TTL)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "mongo:\n  database: profiles_test\nauth:\n  provider: firebase\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "profiles_test", cfg.Mongo.Database)
	assert.Equal(t, "firebase", cfg.Auth.Provider)
}
