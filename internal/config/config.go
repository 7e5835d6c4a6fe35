package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Store        StoreConfig        `mapstructure:"store"`
	Remote       RemoteConfig       `mapstructure:"remote"`
	Connectivity ConnectivityConfig `mapstructure:"connectivity"`
	Sync         SyncConfig         `mapstructure:"sync"`
	Server       ServerConfig       `mapstructure:"server"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

type StoreConfig struct {
	FilePath string `mapstructure:"file_path"`
}

type RemoteConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	AuthToken string `mapstructure:"auth_token"`
	Timeout   string `mapstructure:"timeout"`
}

func (r RemoteConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(r.Timeout)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

type ConnectivityConfig struct {
	ProbeURL      string `mapstructure:"probe_url"`
	ProbeInterval string `mapstructure:"probe_interval"`
	ProbeTimeout  string `mapstructure:"probe_timeout"`
	// Consecutive successful probes required before the monitor
	// reports online. Filters out captive portals and flapping links.
	SuccessThreshold int `mapstructure:"success_threshold"`
}

func (c ConnectivityConfig) GetProbeInterval() time.Duration {
	d, err := time.ParseDuration(c.ProbeInterval)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

func (c ConnectivityConfig) GetProbeTimeout() time.Duration {
	d, err := time.ParseDuration(c.ProbeTimeout)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

type SyncConfig struct {
	Scheduler   SchedulerConfig `mapstructure:"scheduler"`
	MaxAttempts int             `mapstructure:"max_attempts"`
	BaseBackoff string          `mapstructure:"base_backoff"`
	MaxBackoff  string          `mapstructure:"max_backoff"`
}

func (s SyncConfig) GetBaseBackoff() time.Duration {
	d, err := time.ParseDuration(s.BaseBackoff)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

func (s SyncConfig) GetMaxBackoff() time.Duration {
	d, err := time.ParseDuration(s.MaxBackoff)
	if err != nil || d <= 0 {
		return 30 * time.Minute
	}
	return d
}

type SchedulerConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Interval string `mapstructure:"interval"`
}

type ServerConfig struct {
	Port         int      `mapstructure:"port"`
	Host         string   `mapstructure:"host"`
	AuthToken    string   `mapstructure:"auth_token"`
	ReadTimeout  string   `mapstructure:"read_timeout"`
	WriteTimeout string   `mapstructure:"write_timeout"`
	CorsOrigins  []string `mapstructure:"cors_origins"`
}

func (s ServerConfig) GetReadTimeout() time.Duration {
	d, _ := time.ParseDuration(s.ReadTimeout)
	return d
}

func (s ServerConfig) GetWriteTimeout() time.Duration {
	d, _ := time.ParseDuration(s.WriteTimeout)
	return d
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("store.file_path", "campus-sync.db")
	v.SetDefault("remote.timeout", "15s")
	v.SetDefault("connectivity.probe_interval", "15s")
	v.SetDefault("connectivity.probe_timeout", "5s")
	v.SetDefault("connectivity.success_threshold", 2)
	v.SetDefault("sync.scheduler.enabled", true)
	v.SetDefault("sync.scheduler.interval", "@every 5m")
	v.SetDefault("sync.max_attempts", 10)
	v.SetDefault("sync.base_backoff", "30s")
	v.SetDefault("sync.max_backoff", "30m")
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8090)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
