package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodumbeats/etebase-go/primitive"
)

func TestLoadFromFileAppliesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `environment: production
argon2:
  policy: moderate
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o644))

	cfg, err := LoadFromFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "moderate", cfg.Argon2.Policy)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Untouched fields still get defaults.
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 1, cfg.Protocol.MaxVersion)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "roundtrip.yaml")

	cfg := &Config{
		Environment: "staging",
		Argon2:      Argon2Config{Policy: "interactive"},
		Protocol:    ProtocolConfig{MaxVersion: 2},
		Logging:     LoggingConfig{Level: "warn", Format: "text", Output: "stderr"},
		Metrics:     MetricsConfig{Enabled: true, Addr: ":8081", Path: "/custom-metrics"},
	}
	require.NoError(t, SaveToFile(cfg, path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Environment, loaded.Environment)
	assert.Equal(t, cfg.Argon2.Policy, loaded.Argon2.Policy)
	assert.Equal(t, cfg.Protocol.MaxVersion, loaded.Protocol.MaxVersion)
	assert.Equal(t, cfg.Metrics, loaded.Metrics)
}

func TestArgon2ConfigParams(t *testing.T) {
	assert.Equal(t, primitive.Argon2Interactive, Argon2Config{Policy: "interactive"}.Params())
	assert.Equal(t, primitive.Argon2Moderate, Argon2Config{Policy: "moderate"}.Params())
	assert.Equal(t, primitive.Argon2Sensitive, Argon2Config{Policy: "sensitive"}.Params())
	assert.Equal(t, primitive.Argon2Sensitive, Argon2Config{Policy: "unknown"}.Params())
}
