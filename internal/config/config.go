// Package config defines service configuration structures and loading hooks.
package config

import (
	"runtime"
	"time"

	"github.com/okian/goalwatch/internal/domain/engine"
	"github.com/okian/goalwatch/pkg/resilience"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	Scanner  ScannerConfig  `koanf:"scanner"`
	Provider ProviderConfig `koanf:"provider"`
	Dispatch DispatchConfig `koanf:"dispatch"`
	Tracker  TrackerConfig  `koanf:"tracker"`
	Engine   engine.Config  `koanf:"engine"`
}

// ScannerConfig drives the live scan loop.
type ScannerConfig struct {
	Interval time.Duration `koanf:"interval" validate:"gt=0"`

	// LowQuotaInterval replaces Interval once fewer than LowQuotaThreshold
	// provider requests remain for the day.
	LowQuotaInterval  time.Duration `koanf:"low_quota_interval" validate:"gt=0"`
	LowQuotaThreshold int           `koanf:"low_quota_threshold" validate:"gte=0"`

	MinMinute         int `koanf:"min_minute" validate:"gte=0"`
	MaxMinute         int `koanf:"max_minute" validate:"gtefield=MinMinute"`
	ExtendedMinMinute int `koanf:"extended_min_minute" validate:"gte=0,ltefield=MinMinute"`
	ExtendedMaxMinute int `koanf:"extended_max_minute" validate:"gtefield=MaxMinute"`
	// MinPrimaryMatches is the primary window population below which the
	// extended window is used.
	MinPrimaryMatches int `koanf:"min_primary_matches" validate:"gte=0"`
	// MaxFixturesPerScan caps how many fixtures are queued per cycle.
	MaxFixturesPerScan int `koanf:"max_fixtures_per_scan" validate:"gt=0"`
	// PriorityLeagues are queued first when a cycle is capped.
	PriorityLeagues []int64 `koanf:"priority_leagues"`

	QueueSize        int           `koanf:"queue_size" validate:"gt=0"`
	WorkerCount      int           `koanf:"worker_count" validate:"gt=0"`
	DispatchPoolSize int           `koanf:"dispatch_pool_size" validate:"gt=0"`
	CacheSize        int           `koanf:"cache_size" validate:"gte=0"`
	CleanupInterval  time.Duration `koanf:"cleanup_interval" validate:"gt=0"`
}

// ProviderConfig configures the sports data client.
type ProviderConfig struct {
	BaseURL         string            `koanf:"base_url" validate:"required,url"`
	APIKey          string            `koanf:"api_key"`
	Timeout         time.Duration     `koanf:"timeout" validate:"gt=0"`
	MaxRetries      int               `koanf:"max_retries" validate:"gte=0,lte=10"`
	BackoffFactor   float64           `koanf:"backoff_factor" validate:"gte=1"`
	BackoffUnit     time.Duration     `koanf:"backoff_unit" validate:"gte=0"`
	DailyLimit      int               `koanf:"daily_limit" validate:"gt=0"`
	HourlyLimit     int               `koanf:"hourly_limit" validate:"gt=0"`
	EmergencyBuffer int               `koanf:"emergency_buffer" validate:"gte=0,ltfield=DailyLimit"`
	CacheTTL        time.Duration     `koanf:"cache_ttl" validate:"gte=0"`
	Breaker         resilience.Config `koanf:"breaker"`
}

// DispatchConfig lists alert destinations. With nothing configured alerts
// are only logged.
type DispatchConfig struct {
	TelegramBaseURL string        `koanf:"telegram_base_url" validate:"required,url"`
	TelegramToken   string        `koanf:"telegram_token"`
	TelegramChatID  string        `koanf:"telegram_chat_id" validate:"required_with=TelegramToken"`
	Webhooks        []string      `koanf:"webhooks" validate:"dive,url"`
	Timeout         time.Duration `koanf:"timeout" validate:"gt=0"`
}

// TrackerConfig configures the alert history.
type TrackerConfig struct {
	// MemoryWindow is how long an alerted fixture is skipped.
	MemoryWindow time.Duration `koanf:"memory_window" validate:"gt=0"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel: "info",
		Addr:     ":9080",
		Scanner: ScannerConfig{
			Interval:           60 * time.Second,
			LowQuotaInterval:   10 * time.Minute,
			LowQuotaThreshold:  1000,
			MinMinute:          60,
			MaxMinute:          72,
			ExtendedMinMinute:  58,
			ExtendedMaxMinute:  75,
			MinPrimaryMatches:  5,
			MaxFixturesPerScan: 20,
			PriorityLeagues:    []int64{39, 140, 78, 135, 61, 2, 3},
			QueueSize:          256,
			WorkerCount:        runtime.NumCPU(),
			DispatchPoolSize:   8,
			CacheSize:          10_000,
			CleanupInterval:    time.Hour,
		},
		Provider: ProviderConfig{
			BaseURL:         "https://v3.football.api-sports.io",
			Timeout:         10 * time.Second,
			MaxRetries:      3,
			BackoffFactor:   2,
			BackoffUnit:     time.Second,
			DailyLimit:      7500,
			HourlyLimit:     312,
			EmergencyBuffer: 500,
			CacheTTL:        10 * time.Minute,
			Breaker:         resilience.DefaultConfig(),
		},
		Dispatch: DispatchConfig{
			TelegramBaseURL: "https://api.telegram.org",
			Timeout:         10 * time.Second,
		},
		Tracker: TrackerConfig{
			MemoryWindow: 24 * time.Hour,
		},
		Engine: engine.DefaultConfig(),
	}
}
