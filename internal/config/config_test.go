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
	cfg, err := Load(ServiceSongs, "")
	require.NoError(t, err)

	assert.Equal(t, "3002", cfg.Port)
	assert.Equal(t, "static", cfg.Locator)
	assert.Equal(t, "http://localhost:3001", cfg.Services[ServiceAuth])
	assert.Equal(t, time.Duration(0), cfg.AuthClientTimeout)
	assert.False(t, cfg.DebugErrors)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("AUTH_SERVICE_URL", "http://auth:3001")
	t.Setenv("AUTH_CLIENT_TIMEOUT", "2s")
	t.Setenv("DEBUG_ERRORS", "true")

	cfg, err := Load(ServiceAuth, "")
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, "http://auth:3001", cfg.Services[ServiceAuth])
	assert.Equal(t, 2*time.Second, cfg.AuthClientTimeout)
	assert.True(t, cfg.DebugErrors)
	assert.Equal(t, "http://localhost:9999", cfg.AdvertiseURL)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("STORAGE_LOCATION=/tmp/blobs\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("STORAGE_LOCATION") })

	cfg, err := Load(ServiceDownload, path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/blobs", cfg.StorageLocation)
}

func TestLoadMissingEnvFileIsIgnored(t *testing.T) {
	_, err := Load(ServiceGateway, filepath.Join(t.TempDir(), "nope.env"))
	assert.NoError(t, err)
}

func TestLoadErrors(t *testing.T) {
	t.Run("unknown service", func(t *testing.T) {
		_, err := Load("billing", "")
		assert.Error(t, err)
	})

	t.Run("bad timeout", func(t *testing.T) {
		t.Setenv("AUTH_CLIENT_TIMEOUT", "soon")
		_, err := Load(ServiceSongs, "")
		assert.Error(t, err)
	})

	t.Run("redis locator without url", func(t *testing.T) {
		t.Setenv("LOCATOR", "redis")
		_, err := Load(ServiceSongs, "")
		assert.Error(t, err)
	})

	t.Run("invalid locator", func(t *testing.T) {
		t.Setenv("LOCATOR", "eureka")
		_, err := Load(ServiceSongs, "")
		assert.Error(t, err)
	})
}
