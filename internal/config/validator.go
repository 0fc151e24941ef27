package config

import (
	"fmt"
	"strings"

	"dmrelay/internal/constants"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateStatic(cfg *Config) error {
	var errors []error

	if err := validateServer(cfg.Server); err != nil {
		errors = append(errors, err)
	}

	if err := validateDiscord(cfg.Discord); err != nil {
		errors = append(errors, err)
	}

	if err := validateRelay(cfg.Relay); err != nil {
		errors = append(errors, err)
	}

	if err := validateCooldown(cfg.Cooldown, cfg.Database.Redis); err != nil {
		errors = append(errors, err)
	}

	if err := validateBroker(cfg.Broker); err != nil {
		errors = append(errors, err)
	}

	if err := validateRateLimit(cfg.RateLimit); err != nil {
		errors = append(errors, err)
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}

func validateServer(cfg ServerConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.ReadTimeout <= 0 {
		return &ValidationError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		}
	}

	if cfg.WriteTimeout <= 0 {
		return &ValidationError{
			Field:   "server.write_timeout",
			Message: "write timeout must be positive",
		}
	}

	return nil
}

func validateDiscord(cfg DiscordConfig) error {
	required := []struct {
		field string
		value string
	}{
		{"discord.token", cfg.Token},
		{"discord.guild_id", cfg.GuildID},
		{"discord.application_id", cfg.ApplicationID},
		{"discord.authorized_role_id", cfg.AuthorizedRoleID},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &ValidationError{
				Field:   r.field,
				Message: "value is required",
			}
		}
	}

	if cfg.RequestTimeout <= 0 {
		return &ValidationError{
			Field:   "discord.request_timeout",
			Message: "request timeout must be positive",
		}
	}

	return nil
}

func validateRelay(cfg RelayConfig) error {
	if cfg.CooldownWindow <= 0 {
		return &ValidationError{
			Field:   "relay.cooldown_window",
			Message: "cooldown window must be positive",
		}
	}

	if cfg.BroadcastConcurrency < 0 {
		return &ValidationError{
			Field:   "relay.broadcast_concurrency",
			Message: "broadcast concurrency must be non-negative (0 means unbounded)",
		}
	}

	if cfg.MaxReports < 1 {
		return &ValidationError{
			Field:   "relay.max_reports",
			Message: "at least one broadcast report must be retained",
		}
	}

	if cfg.ReportRetention <= 0 {
		return &ValidationError{
			Field:   "relay.report_retention",
			Message: "report retention must be positive",
		}
	}

	return nil
}

func validateCooldown(cfg CooldownConfig, redis RedisConfig) error {
	switch strings.ToLower(cfg.Backend) {
	case constants.CooldownBackendMemory:
	case constants.CooldownBackendRedis:
		if err := validateRedis(redis); err != nil {
			return err
		}
	default:
		return &ValidationError{
			Field:   "cooldown.backend",
			Message: fmt.Sprintf("unknown cooldown backend: %s (supported: memory, redis)", cfg.Backend),
		}
	}

	validOnError := map[string]bool{
		constants.FallbackAllow: true, constants.FallbackDeny: true,
	}
	if cfg.OnStoreError != "" && !validOnError[strings.ToLower(cfg.OnStoreError)] {
		return &ValidationError{
			Field:   "cooldown.on_store_error",
			Message: fmt.Sprintf("invalid on_store_error value: %s (valid: allow, deny)", cfg.OnStoreError),
		}
	}

	return nil
}

func validateRedis(cfg RedisConfig) error {
	if cfg.Host == "" {
		return &ValidationError{
			Field:   "database.redis.host",
			Message: "Redis host is required",
		}
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "database.redis.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	return nil
}

func validateBroker(cfg BrokerConfig) error {
	switch cfg.Type {
	case "":
		return nil
	case "kafka":
		return validateKafka(cfg.Kafka)
	default:
		return &ValidationError{
			Field:   "broker.type",
			Message: fmt.Sprintf("unknown broker type: %s (supported: kafka)", cfg.Type),
		}
	}
}

func validateKafka(cfg KafkaConfig) error {
	if len(cfg.Brokers) == 0 {
		return &ValidationError{
			Field:   "broker.kafka.brokers",
			Message: "at least one Kafka broker is required",
		}
	}

	for i, broker := range cfg.Brokers {
		if broker == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("broker.kafka.brokers[%d]", i),
				Message: "broker address cannot be empty",
			}
		}
	}

	if cfg.ReportTopic == "" {
		return &ValidationError{
			Field:   "broker.kafka.report_topic",
			Message: "report topic is required",
		}
	}

	return nil
}

func validateRateLimit(cfg RateLimitConfig) error {
	if !cfg.Enabled {
		return nil
	}

	if cfg.RPS <= 0 {
		return &ValidationError{
			Field:   "rate_limit.rps",
			Message: "rps must be positive",
		}
	}

	if cfg.Burst < 1 {
		return &ValidationError{
			Field:   "rate_limit.burst",
			Message: "burst must be at least 1",
		}
	}

	if cfg.CleanupInterval <= 0 {
		return &ValidationError{
			Field:   "rate_limit.cleanup_interval",
			Message: "cleanup interval must be positive",
		}
	}

	return nil
}
