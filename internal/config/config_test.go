package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_tubesum/internal/engine/summary"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadFile_Missing(t *testing.T) {
	c, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Empty(t, c.Path)
	assert.Equal(t, summary.DefaultOptions(), c.Defaults)
	assert.Len(t, c.Providers, len(summary.Providers))
}

func TestLoadFile_Values(t *testing.T) {
	path := writeConfig(t, `
history_db: /tmp/tubesum-history.db
summary:
  provider: custom
  format: plain
  bullet: "-"
  max_tokens: 512
  temperature: 0
  include_quotes: true
providers:
  custom:
    api_key: file-key
    base_url: https://llm.example.com/v1
    model: house-model
    extra_headers:
      X-Tenant: team-a
`)
	c, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, path, c.Path)
	assert.Equal(t, "/tmp/tubesum-history.db", c.HistoryDB)
	assert.Equal(t, summary.ProviderCustom, c.Defaults.Provider)
	assert.Equal(t, summary.FormatPlain, c.Defaults.Format)
	assert.Equal(t, "-", c.Defaults.Bullet)
	assert.Equal(t, 512, c.Defaults.MaxTokens)
	assert.Zero(t, c.Defaults.Temperature)
	assert.True(t, c.Defaults.IncludeQuotes)
	assert.False(t, c.Defaults.IncludeTimestamps)

	custom := c.Providers[summary.ProviderCustom]
	assert.Equal(t, "file-key", custom.APIKey)
	assert.Equal(t, "house-model", custom.Model)
	assert.Equal(t, "team-a", custom.ExtraHeaders["X-Tenant"])
}

func TestLoadFile_EnvironmentOverride(t *testing.T) {
	path := writeConfig(t, `
providers:
  custom:
    api_key: file-key
    model: house-model
`)
	t.Setenv("CUSTOM_LLM_API_KEY", "env-key")
	t.Setenv("SUMMARY_MAX_TOKENS", "2048")

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", c.Providers[summary.ProviderCustom].APIKey)
	assert.Equal(t, "house-model", c.Providers[summary.ProviderCustom].Model)
	assert.Equal(t, 2048, c.Defaults.MaxTokens)
}

func TestLoadFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "summary: [unclosed"},
		{"unknown provider key", "providers:\n  gemini:\n    model: x\n"},
		{"unknown default provider", "summary:\n  provider: gemini\n"},
		{"bad format", "summary:\n  format: html\n"},
		{"temperature out of range", "summary:\n  temperature: 1.5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile_HistoryPathExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	c, err := LoadFile(writeConfig(t, "history_db: ~/data/h.db\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "data", "h.db"), c.HistoryDB)
}

func TestConfig_ProviderOverride(t *testing.T) {
	c := &Config{Providers: map[summary.Provider]summary.ProviderConfig{
		summary.ProviderCustom: {APIKey: "configured", BaseURL: "https://a.example", Model: "m1"},
	}}
	got := c.Provider(summary.ProviderCustom, summary.ProviderConfig{Model: "m2"})
	assert.Equal(t, "configured", got.APIKey)
	assert.Equal(t, "https://a.example", got.BaseURL)
	assert.Equal(t, "m2", got.Model)

	empty := c.Provider(summary.ProviderAnthropic, summary.ProviderConfig{})
	assert.Equal(t, summary.ProviderConfig{}, empty)
}

func TestWriteTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".go_tubesum", "config.yaml")
	require.NoError(t, WriteTemplate(path))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, summary.ProviderLocal, c.Defaults.Provider)
	assert.Equal(t, 1024, c.Defaults.MaxTokens)

	err = WriteTemplate(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}
