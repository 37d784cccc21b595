package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setGatewayEnv(t *testing.T) {
	t.Helper()
	t.Setenv("WEBGW_URL", "https://gateway.example.com/api")
	t.Setenv("WEBGW_API_KEY", "test-key")
	t.Setenv("WEBGW_APP_ID", "test-app")
}

func TestLoadDefaults(t *testing.T) {
	setGatewayEnv(t)

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "https://gateway.example.com/api", cfg.Gateway.URL)
	assert.Equal(t, 30*time.Second, cfg.Gateway.SubmitTimeout)
	assert.Equal(t, 30*time.Second, cfg.Gateway.PollTimeout)
	assert.Equal(t, 60*time.Second, cfg.Gateway.DownloadTimeout)

	assert.Equal(t, "260203-ming-uniaudio-v4-moe-lite", cfg.Projects.Default)
	assert.Equal(t, "260113-ming-uniaudio-instruct", cfg.Projects.Instruct)
	assert.Equal(t, "251220-ming-uniaudio", cfg.Projects.Legacy)

	assert.Equal(t, "temp_audio", cfg.Scratch.Dir)
	assert.Equal(t, 10, cfg.Scratch.MaxFiles)
	assert.Equal(t, "local", cfg.Storage.Backend)
	assert.Equal(t, "output", cfg.Storage.LocalDir)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "uniaudio_ip_list.txt", cfg.Catalog.VoiceListPath)
}

func TestLoadEnvOverrides(t *testing.T) {
	setGatewayEnv(t)
	t.Setenv("WEBGW_SUBMIT_TIMEOUT_SEC", "5")
	t.Setenv("STORAGE_BACKEND", "minio")
	t.Setenv("MINIO_BUCKET", "demo-results")
	t.Setenv("HTTP_ADDR", ":9090")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Gateway.SubmitTimeout)
	assert.Equal(t, "minio", cfg.Storage.Backend)
	assert.Equal(t, "demo-results", cfg.MinIO.Bucket)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
}

func TestLoadMissingCredentials(t *testing.T) {
	t.Setenv("WEBGW_URL", "")
	t.Setenv("WEBGW_API_KEY", "")
	t.Setenv("WEBGW_APP_ID", "")

	_, err := NewLoader().Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WEBGW_URL")
}

func TestLoadUnknownBackend(t *testing.T) {
	setGatewayEnv(t)
	t.Setenv("STORAGE_BACKEND", "s3")

	_, err := NewLoader().Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_BACKEND")
}

func TestWithDefaults(t *testing.T) {
	setGatewayEnv(t)

	cfg, err := NewLoader(WithDefaults(map[string]interface{}{
		"SCRATCH_MAX_FILES": 3,
	})).Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Scratch.MaxFiles)
}

func TestWithValidator(t *testing.T) {
	setGatewayEnv(t)

	wantErr := assert.AnError
	_, err := NewLoader(WithValidator(func(*Config) error { return wantErr })).Load()
	assert.ErrorIs(t, err, wantErr)
}

func TestMinIOPublicFallback(t *testing.T) {
	setGatewayEnv(t)
	t.Setenv("MINIO_ENDPOINT", "minio.internal:9000")
	t.Setenv("MINIO_PUBLIC_ENDPOINT", "")

	cfg, err := NewLoader(WithMinIOPublicFallback()).Load()
	require.NoError(t, err)
	assert.Equal(t, "minio.internal:9000", cfg.MinIO.PublicEndpoint)

	t.Setenv("MINIO_PUBLIC_ENDPOINT", "minio.example.com")
	cfg, err = NewLoader(WithMinIOPublicFallback()).Load()
	require.NoError(t, err)
	assert.Equal(t, "minio.example.com", cfg.MinIO.PublicEndpoint)
}
