package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	DB     DBConfig     `mapstructure:"db"`
	Redis  RedisConfig  `mapstructure:"redis"`

	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Sources   SourcesConfig   `mapstructure:"sources"`
	Streams   StreamsConfig   `mapstructure:"streams"`
	Trades    TradesConfig    `mapstructure:"trades"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`

	// When File is set, logs are additionally written to a rolling file.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type DiscoveryConfig struct {
	RefreshInterval  time.Duration `mapstructure:"refresh_interval"`
	DisplayLimit     int           `mapstructure:"display_limit"`
	MinMarketCap     float64       `mapstructure:"min_market_cap"`
	StreamBufferSize int           `mapstructure:"stream_buffer_size"`
	SnapshotPrune    time.Duration `mapstructure:"snapshot_prune"`
	SnapshotKeep     time.Duration `mapstructure:"snapshot_keep"`
}

type SourcesConfig struct {
	HealthGate HealthGateConfig `mapstructure:"health_gate"`
	NewIssue   SourceConfig     `mapstructure:"new_issue"`
	Migrating  SourceConfig     `mapstructure:"migrating"`
	Trending   SourceConfig     `mapstructure:"trending"`
	Surging    SourceConfig     `mapstructure:"surging"`

	// Reference exchange rate applied when bonding-curve reserves are
	// denominated in the chain's native asset rather than USD.
	NativeUSDRate float64 `mapstructure:"native_usd_rate"`
}

type HealthGateConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type SourceConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Limit   int           `mapstructure:"limit"`
}

type StreamsConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	URL        string        `mapstructure:"url"`
	BackoffMin time.Duration `mapstructure:"backoff_min"`
	BackoffMax time.Duration `mapstructure:"backoff_max"`
	Heartbeat  time.Duration `mapstructure:"heartbeat"`
}

type TradesConfig struct {
	ExpirySweepInterval time.Duration `mapstructure:"expiry_sweep_interval"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 14)
	v.SetDefault("log.compress", true)

	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "24h")

	v.SetDefault("discovery.refresh_interval", "10s")
	v.SetDefault("discovery.display_limit", 20)
	v.SetDefault("discovery.min_market_cap", 0)
	v.SetDefault("discovery.stream_buffer_size", 64)
	v.SetDefault("discovery.snapshot_prune", "10m")
	v.SetDefault("discovery.snapshot_keep", "24h")

	v.SetDefault("sources.health_gate.timeout", "3s")
	v.SetDefault("sources.native_usd_rate", 150.0)
	v.SetDefault("sources.new_issue.enabled", true)
	v.SetDefault("sources.new_issue.timeout", "10s")
	v.SetDefault("sources.new_issue.limit", 50)
	v.SetDefault("sources.migrating.enabled", true)
	v.SetDefault("sources.migrating.timeout", "10s")
	v.SetDefault("sources.migrating.limit", 20)
	v.SetDefault("sources.trending.enabled", true)
	v.SetDefault("sources.trending.timeout", "10s")
	v.SetDefault("sources.trending.limit", 20)
	v.SetDefault("sources.surging.enabled", true)
	v.SetDefault("sources.surging.timeout", "10s")
	v.SetDefault("sources.surging.limit", 30)

	v.SetDefault("streams.enabled", false)
	v.SetDefault("streams.backoff_min", "1s")
	v.SetDefault("streams.backoff_max", "30s")
	v.SetDefault("streams.heartbeat", "20s")

	v.SetDefault("trades.expiry_sweep_interval", "1m")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
