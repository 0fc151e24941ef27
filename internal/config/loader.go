package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"dmrelay/internal/constants"
)

func LoadConfig(configFile string) (*Config, error) {
	// A missing .env is normal in containers; anything else is a broken file.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	viper.Reset()

	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()
	bindEnvVariables()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := ValidateStatic(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", constants.DefaultHTTPPort)
	viper.SetDefault("server.read_timeout", constants.DefaultHTTPTimeout)
	viper.SetDefault("server.write_timeout", 3*constants.DefaultHTTPTimeout)

	viper.SetDefault("discord.activity", constants.DefaultActivity)
	viper.SetDefault("discord.request_timeout", constants.DefaultDiscordRequestTimeout)
	viper.SetDefault("discord.register_commands", true)

	viper.SetDefault("relay.cooldown_window", constants.DefaultCooldownWindow)
	viper.SetDefault("relay.broadcast_concurrency", 0)
	viper.SetDefault("relay.report_retention", constants.DefaultReportRetention)
	viper.SetDefault("relay.max_reports", constants.DefaultMaxReports)

	viper.SetDefault("cooldown.backend", constants.CooldownBackendMemory)
	viper.SetDefault("cooldown.on_store_error", constants.FallbackDeny)

	viper.SetDefault("database.redis.port", 6379)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.rps", 5.0)
	viper.SetDefault("rate_limit.burst", 10)
	viper.SetDefault("rate_limit.cleanup_interval", "5m")
	viper.SetDefault("rate_limit.max_age", "10m")

	viper.SetDefault("tracing.service_name", constants.ServiceName)
	viper.SetDefault("tracing.sampler.type", "always_on")
}

func bindEnvVariables() {
	// TOKEN, GUILD_ID and CLIENT_ID are the names older deployments use.
	viper.BindEnv("discord.token", "DISCORD_TOKEN", "TOKEN")
	viper.BindEnv("discord.guild_id", "DISCORD_GUILD_ID", "GUILD_ID")
	viper.BindEnv("discord.application_id", "DISCORD_APPLICATION_ID", "CLIENT_ID")
	viper.BindEnv("discord.authorized_role_id", "DISCORD_AUTHORIZED_ROLE_ID")
	viper.BindEnv("discord.activity", "DISCORD_ACTIVITY")
	viper.BindEnv("discord.request_timeout", "DISCORD_REQUEST_TIMEOUT")
	viper.BindEnv("discord.register_commands", "DISCORD_REGISTER_COMMANDS")

	viper.BindEnv("relay.cooldown_window", "RELAY_COOLDOWN_WINDOW")
	viper.BindEnv("relay.broadcast_concurrency", "RELAY_BROADCAST_CONCURRENCY")
	viper.BindEnv("relay.report_retention", "RELAY_REPORT_RETENTION")
	viper.BindEnv("relay.max_reports", "RELAY_MAX_REPORTS")

	viper.BindEnv("cooldown.backend", "COOLDOWN_BACKEND")
	viper.BindEnv("cooldown.on_store_error", "COOLDOWN_ON_STORE_ERROR")

	viper.BindEnv("database.redis.host", "DATABASE_REDIS_HOST")
	viper.BindEnv("database.redis.port", "DATABASE_REDIS_PORT")
	viper.BindEnv("database.redis.password", "DATABASE_REDIS_PASSWORD")
	viper.BindEnv("database.redis.db", "DATABASE_REDIS_DB")

	viper.BindEnv("broker.type", "BROKER_TYPE")
	viper.BindEnv("broker.kafka.report_topic", "BROKER_KAFKA_REPORT_TOPIC")

	viper.BindEnv("server.port", "SERVER_PORT", "PORT")
	viper.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	viper.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")

	viper.BindEnv("logging.level", "LOGGING_LEVEL")
	viper.BindEnv("logging.format", "LOGGING_FORMAT")

	viper.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	viper.BindEnv("rate_limit.rps", "RATE_LIMIT_RPS")
	viper.BindEnv("rate_limit.burst", "RATE_LIMIT_BURST")

	viper.BindEnv("circuit_breaker.enabled", "CIRCUIT_BREAKER_ENABLED")

	viper.BindEnv("tracing.otlp.endpoint", "TRACING_OTLP_ENDPOINT")
	viper.BindEnv("tracing.otlp.insecure", "TRACING_OTLP_INSECURE")
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.service_name", "TRACING_SERVICE_NAME")
}

func applyEnvOverrides(cfg *Config) {
	if brokersEnv := viper.GetString("BROKER_KAFKA_BROKERS"); brokersEnv != "" {
		brokers := strings.Split(brokersEnv, ",")
		for i := range brokers {
			brokers[i] = strings.TrimSpace(brokers[i])
		}
		if len(brokers) > 0 && brokers[0] != "" {
			cfg.Broker.Kafka.Brokers = brokers
		}
	}

	cfg.Discord.Token = strings.TrimPrefix(strings.TrimSpace(cfg.Discord.Token), "Bot ")
}
