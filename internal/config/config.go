package config

import (
	"time"
)

type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Discord        DiscordConfig        `mapstructure:"discord"`
	Relay          RelayConfig          `mapstructure:"relay"`
	Cooldown       CooldownConfig       `mapstructure:"cooldown"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Broker         BrokerConfig         `mapstructure:"broker"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	Tracing        TracingConfig        `mapstructure:"tracing"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DiscordConfig struct {
	Token         string `mapstructure:"token"`
	GuildID       string `mapstructure:"guild_id"`
	ApplicationID string `mapstructure:"application_id"`
	// AuthorizedRoleID is the role a member must hold to use the slash command.
	AuthorizedRoleID string        `mapstructure:"authorized_role_id"`
	Activity         string        `mapstructure:"activity"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"`
	RegisterCommands bool          `mapstructure:"register_commands"`
}

type RelayConfig struct {
	CooldownWindow       time.Duration `mapstructure:"cooldown_window"`
	BroadcastConcurrency int           `mapstructure:"broadcast_concurrency"`
	ReportRetention      time.Duration `mapstructure:"report_retention"`
	MaxReports           int           `mapstructure:"max_reports"`
}

type CooldownConfig struct {
	Backend      string `mapstructure:"backend"`        // "memory" or "redis"
	OnStoreError string `mapstructure:"on_store_error"` // "allow" or "deny"
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type BrokerConfig struct {
	Type  string      `mapstructure:"type"` // "" (disabled) or "kafka"
	Kafka KafkaConfig `mapstructure:"kafka"`
}

type KafkaConfig struct {
	Brokers     []string `mapstructure:"brokers"`
	ReportTopic string   `mapstructure:"report_topic"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RateLimitConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	RPS             float64       `mapstructure:"rps"`
	Burst           int           `mapstructure:"burst"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	MaxAge          time.Duration `mapstructure:"max_age"`
}

type CircuitBreakerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
	MinRequests  uint32        `mapstructure:"min_requests"`
}

type TracingConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	ServiceName string        `mapstructure:"service_name"`
	OTLP        OTLPConfig    `mapstructure:"otlp"`
	Sampler     SamplerConfig `mapstructure:"sampler"`
}

type OTLPConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
}

type SamplerConfig struct {
	Type  string  `mapstructure:"type"`
	Param float64 `mapstructure:"param"`
}

// Load reads configFile (optional) plus environment and .env overrides.
func Load(configFile string) (*Config, error) {
	return LoadConfig(configFile)
}
