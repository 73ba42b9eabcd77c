package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "InfoRadarBot/0.1", cfg.Pipeline.UserAgent)
	assert.Equal(t, 20000, cfg.Pipeline.ContentCap)
	assert.Equal(t, 5000, cfg.Pipeline.PageContentCap)
	assert.Equal(t, 10, cfg.Robots.TimeoutSeconds)
	assert.InDelta(t, 0.85, cfg.Filter.SimilarityThreshold, 1e-9)
	assert.Equal(t, 20, cfg.Filter.HistoryWindow)
	assert.Equal(t, "gpt-4o-mini", cfg.Model.ChatModel)
	assert.Equal(t, "text-embedding-3-small", cfg.Model.EmbedModel)
	assert.Equal(t, "raw", cfg.Archive.Prefix)
	assert.False(t, cfg.Auth.Enabled)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("INFORADAR_SERVER_PORT", "9090")
	t.Setenv("INFORADAR_PIPELINE_USER_AGENT", "CustomBot/2.0")
	t.Setenv("INFORADAR_FILTER_SIMILARITY_THRESHOLD", "0.9")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "CustomBot/2.0", cfg.Pipeline.UserAgent)
	assert.InDelta(t, 0.9, cfg.Filter.SimilarityThreshold, 1e-9)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := Config{
		Server:   ServerConfig{Port: 8080},
		HTTP:     HTTPConfig{TimeoutSeconds: 15},
		Filter:   FilterConfig{SimilarityThreshold: 0.85, HistoryWindow: 20},
		Pipeline: PipelineConfig{RunTimeoutSeconds: 300},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"zero http timeout", func(c *Config) { c.HTTP.TimeoutSeconds = 0 }, "http.timeout_seconds"},
		{"threshold too high", func(c *Config) { c.Filter.SimilarityThreshold = 1.5 }, "similarity_threshold"},
		{"threshold zero", func(c *Config) { c.Filter.SimilarityThreshold = 0 }, "similarity_threshold"},
		{"zero window", func(c *Config) { c.Filter.HistoryWindow = 0 }, "history_window"},
		{"zero run timeout", func(c *Config) { c.Pipeline.RunTimeoutSeconds = 0 }, "run_timeout_seconds"},
		{"auth without token", func(c *Config) { c.Auth.Enabled = true }, "auth.token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDurationHelpers(t *testing.T) {
	t.Parallel()

	cfg := Config{Pipeline: PipelineConfig{RunTimeoutSeconds: 300, IntervalMinutes: 15}}
	assert.Equal(t, 5*time.Minute, cfg.RunTimeout())
	assert.Equal(t, 15*time.Minute, cfg.RunInterval())

	cfg.Pipeline.IntervalMinutes = 0
	assert.Equal(t, time.Duration(0), cfg.RunInterval())
}
