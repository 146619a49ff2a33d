package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("LLAMA_API_KEY", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.InDelta(t, 0.1, cfg.LLM.Temperature, 1e-6)
	assert.Equal(t, 3*time.Second, cfg.Cloud.PollInterval)
	assert.Equal(t, 180*time.Second, cfg.Cloud.PollTimeout)
	assert.Equal(t, "invoice_parser", cfg.Cloud.AgentName)
	assert.Equal(t, "spa+eng", cfg.OCR.Lang)
	assert.True(t, cfg.Extractor.AutoDetect)
	assert.False(t, cfg.HasCloudCredentials())
	assert.False(t, cfg.HasChatCredentials())
	assert.False(t, cfg.ArchiveEnabled())
	assert.Equal(t, 256, cfg.Server.QueueSize)
	assert.Equal(t, 4*time.Minute, cfg.Server.JobTimeout)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("LLAMA_API_KEY", "llx-test")
	t.Setenv("LLAMA_POLL_INTERVAL", "500ms")
	t.Setenv("LLAMA_POLL_TIMEOUT", "10s")
	t.Setenv("EXTRACTOR_PROVIDER", "ocr")
	t.Setenv("WORKERS", "8")
	t.Setenv("QUEUE_SIZE", "16")
	t.Setenv("JOB_TIMEOUT", "90s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.HasChatCredentials())
	assert.True(t, cfg.HasCloudCredentials())
	assert.Equal(t, 500*time.Millisecond, cfg.Cloud.PollInterval)
	assert.Equal(t, 10*time.Second, cfg.Cloud.PollTimeout)
	assert.Equal(t, "ocr", cfg.Extractor.Provider)
	assert.Equal(t, 8, cfg.Server.Workers)
	assert.Equal(t, 16, cfg.Server.QueueSize)
	assert.Equal(t, 90*time.Second, cfg.Server.JobTimeout)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoice.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rubro:\n  nomenclator_path: /data/rubros.csv\nserver:\n  workers: 2\n"), 0o600))
	t.Setenv("INVOICE_CONFIG_FILE", path)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/data/rubros.csv", cfg.Rubro.NomenclatorPath)
	assert.Equal(t, 2, cfg.Server.Workers)
}

func TestConfigValidate(t *testing.T) {
	t.Setenv("LLAMA_POLL_INTERVAL", "5s")
	t.Setenv("LLAMA_POLL_TIMEOUT", "1s")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestConfigValidateQueue(t *testing.T) {
	t.Setenv("QUEUE_SIZE", "0")
	_, err := LoadConfig()
	assert.ErrorIs(t, err, ErrConfig)
}
