// ABOUTME: Tests for data directory resolution and env overrides
// ABOUTME: Uses t.Setenv so nothing leaks between tests
package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/visitlog/models"
)

func TestDataDirOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VISITLOG_DATA_DIR", dir)

	got, err := DataDir()
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	storePath, err := StorePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, CacheDirName), storePath)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("VISITLOG_GEMINI_KEY", "env-gemini")
	t.Setenv("VISITLOG_SMTP_PORT", "2525")

	s := models.Settings{
		GeminiKey:   "stored-gemini",
		DeepSeekKey: "stored-deepseek",
		SMTPPort:    587,
	}
	ApplyEnvOverrides(&s)

	assert.Equal(t, "env-gemini", s.GeminiKey)
	assert.Equal(t, 2525, s.SMTPPort)
	// Unset vars leave stored values alone.
	assert.Equal(t, "stored-deepseek", s.DeepSeekKey)
}

func TestApplyEnvOverridesBadPortIgnored(t *testing.T) {
	t.Setenv("VISITLOG_SMTP_PORT", "not-a-port")

	s := models.Settings{SMTPPort: 587}
	ApplyEnvOverrides(&s)
	assert.Equal(t, 587, s.SMTPPort)
}
