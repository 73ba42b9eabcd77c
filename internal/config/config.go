// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Robots   RobotsConfig   `mapstructure:"robots"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Filter   FilterConfig   `mapstructure:"filter"`
	Model    ModelConfig    `mapstructure:"model"`
	DB       DBConfig       `mapstructure:"db"`
	PubSub   PubSubConfig   `mapstructure:"pubsub"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// AuthConfig defines run-trigger authentication.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token"`
}

// PipelineConfig governs the ingestion run loop.
type PipelineConfig struct {
	UserAgent         string `mapstructure:"user_agent"`
	ContentCap        int    `mapstructure:"content_cap"`
	PageContentCap    int    `mapstructure:"page_content_cap"`
	IntervalMinutes   int    `mapstructure:"interval_minutes"`
	RunTimeoutSeconds int    `mapstructure:"run_timeout_seconds"`
}

// RobotsConfig controls the robots.txt gate.
type RobotsConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// HTTPConfig configures outbound fetch behavior.
type HTTPConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// FilterConfig controls the similarity filter.
type FilterConfig struct {
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	HistoryWindow       int     `mapstructure:"history_window"`
}

// ModelConfig points the analyzer at an OpenAI-compatible API.
type ModelConfig struct {
	Endpoint       string `mapstructure:"endpoint"`
	APIKey         string `mapstructure:"api_key"`
	ChatModel      string `mapstructure:"chat_model"`
	EmbedModel     string `mapstructure:"embed_model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// PubSubConfig holds metadata for publish-subscribe notifications. An empty
// topic disables notification.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// ArchiveConfig sets the raw-content archive destination. A bucket selects
// GCS, a local directory selects the filesystem; with neither, archiving is
// disabled.
type ArchiveConfig struct {
	GCSBucket string `mapstructure:"gcs_bucket"`
	LocalDir  string `mapstructure:"local_dir"`
	Prefix    string `mapstructure:"prefix"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("INFORADAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("pipeline.user_agent", "InfoRadarBot/0.1")
	v.SetDefault("pipeline.content_cap", 20000)
	v.SetDefault("pipeline.page_content_cap", 5000)
	v.SetDefault("pipeline.interval_minutes", 0)
	v.SetDefault("pipeline.run_timeout_seconds", 300)
	v.SetDefault("robots.timeout_seconds", 10)
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("filter.similarity_threshold", 0.85)
	v.SetDefault("filter.history_window", 20)
	v.SetDefault("model.chat_model", "gpt-4o-mini")
	v.SetDefault("model.embed_model", "text-embedding-3-small")
	v.SetDefault("model.timeout_seconds", 60)
	v.SetDefault("archive.prefix", "raw")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Filter.SimilarityThreshold <= 0 || c.Filter.SimilarityThreshold > 1 {
		return fmt.Errorf("filter.similarity_threshold must be in (0, 1]")
	}
	if c.Filter.HistoryWindow <= 0 {
		return fmt.Errorf("filter.history_window must be > 0")
	}
	if c.Pipeline.RunTimeoutSeconds <= 0 {
		return fmt.Errorf("pipeline.run_timeout_seconds must be > 0")
	}
	if c.Auth.Enabled && c.Auth.Token == "" {
		return fmt.Errorf("auth.token must be set when auth is enabled")
	}
	return nil
}

// RunTimeout converts the run budget into a duration.
func (c Config) RunTimeout() time.Duration {
	return time.Duration(c.Pipeline.RunTimeoutSeconds) * time.Second
}

// RunInterval converts the scheduler interval into a duration; zero disables
// the interval runner.
func (c Config) RunInterval() time.Duration {
	return time.Duration(c.Pipeline.IntervalMinutes) * time.Minute
}
