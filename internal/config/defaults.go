package config

import "time"

// Default value constants.
const (
	DefaultServerPort      = 8080
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultDBHost        = "localhost"
	DefaultDBPort        = 5432
	DefaultDBUser        = "wealthdesk"
	DefaultDBName        = "wealthdesk"
	DefaultDBMaxOpen     = 25
	DefaultDBMaxIdle     = 10
	DefaultMigrationsDir = "migrations"

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisTTL       = 15 * time.Minute
	DefaultRedisKeyPrefix = "wealthdesk:"

	DefaultKafkaBroker      = "localhost:9092"
	DefaultKafkaTopicPrefix = "wealthdesk"

	DefaultAssumedGrowthRate = 0.12
	DefaultSummaryCacheTTL   = 5 * time.Minute

	DefaultRateLimitRequests = 300
	DefaultRateLimitWindow   = time.Minute

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// ApplyDefaults fills every zero-value field in cfg with the service default.
// Fields already set by the caller are left unchanged so that explicit
// configuration always wins. It must run after unmarshalling and before
// Validate so that optional-but-defaulted fields are never seen as missing.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.User == "" {
		cfg.Database.User = DefaultDBUser
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = DefaultDBMaxOpen
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = DefaultDBMaxIdle
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 30 * time.Minute
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 5 * time.Minute
	}
	if cfg.Database.MigrationsDir == "" {
		cfg.Database.MigrationsDir = DefaultMigrationsDir
	}

	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultRedisTTL
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	if cfg.Kafka.Enabled {
		if len(cfg.Kafka.Brokers) == 0 {
			cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
		}
		if cfg.Kafka.TopicPrefix == "" {
			cfg.Kafka.TopicPrefix = DefaultKafkaTopicPrefix
		}
		if cfg.Kafka.BatchTimeout == 0 {
			cfg.Kafka.BatchTimeout = 100 * time.Millisecond
		}
		if cfg.Kafka.WriteTimeout == 0 {
			cfg.Kafka.WriteTimeout = 5 * time.Second
		}
	}

	if cfg.Portfolio.AssumedGrowthRate == 0 {
		cfg.Portfolio.AssumedGrowthRate = DefaultAssumedGrowthRate
	}
	if cfg.Portfolio.SummaryCacheTTL == 0 {
		cfg.Portfolio.SummaryCacheTTL = DefaultSummaryCacheTTL
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.Requests == 0 {
			cfg.RateLimit.Requests = DefaultRateLimitRequests
		}
		if cfg.RateLimit.Window == 0 {
			cfg.RateLimit.Window = DefaultRateLimitWindow
		}
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

// NewDefaultConfig returns a Config populated entirely with defaults,
// suitable for local development without a config file.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
