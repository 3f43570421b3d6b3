package config

import (
	"github.com/maxviazov/racha-stats-service/internal/logger"
)

type Config struct {
	App       AppConfig           `mapstructure:"app"`
	Logger    logger.LoggerConfig `mapstructure:"logger" validate:"-"` // validated by logger.New after defaults
	Postgres  PostgresConfig      `mapstructure:"postgres"`
	Redis     RedisConfig         `mapstructure:"redis"`
	Scheduler SchedulerConfig     `mapstructure:"scheduler"`
}

// AppConfig durations are expressed in seconds.
type AppConfig struct {
	Name            string   `mapstructure:"name" validate:"required"`
	Version         string   `mapstructure:"version"`
	Env             string   `mapstructure:"env" validate:"oneof=dev test staging prod"`
	Port            int      `mapstructure:"port" validate:"min=1,max=65535"`
	ShutdownTimeout int      `mapstructure:"shutdown_timeout" validate:"min=1"`
	TrustedProxies  []string `mapstructure:"trusted_proxies"`
}

// PostgresConfig holds pool settings; credentials are expected from the environment.
// Durations are expressed in seconds.
type PostgresConfig struct {
	Host              string `mapstructure:"host" validate:"required"`
	Port              int    `mapstructure:"port" validate:"min=1,max=65535"`
	User              string `mapstructure:"user" validate:"required"`
	Password          string `mapstructure:"password" validate:"required"`
	DBName            string `mapstructure:"db" validate:"required"`
	SSLMode           string `mapstructure:"sslmode" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
	MaxConns          int32  `mapstructure:"max_conns" validate:"min=1"`
	MinConns          int32  `mapstructure:"min_conns" validate:"min=0,ltefield=MaxConns"`
	MaxConnLifetime   int    `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   int    `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod int    `mapstructure:"health_check_period"`
	QueryTimeout      int    `mapstructure:"query_timeout" validate:"min=1"`
	AutoMigrate       bool   `mapstructure:"auto_migrate"`
}

// RedisConfig controls the stats report cache. TTL is in seconds.
type RedisConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url" validate:"required_if=Enabled true"`
	TTL     int    `mapstructure:"ttl" validate:"min=1"`
	Prefix  string `mapstructure:"prefix"`
}

type SchedulerConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	WarmCron string `mapstructure:"warm_cron" validate:"required_if=Enabled true"`
}
