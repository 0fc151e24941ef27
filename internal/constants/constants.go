package constants

import "time"

const (
	ServiceName = "relay-service"
)

const (
	DefaultHTTPPort    = 3002
	DefaultHTTPTimeout = 10 * time.Second
	ShutdownTimeout    = 10 * time.Second
)

const (
	DefaultCooldownWindow  = 20 * time.Second
	DefaultReportRetention = 24 * time.Hour
	DefaultMaxReports      = 200
)

const (
	DefaultActivity              = "Managing your bookings"
	DefaultDiscordRequestTimeout = 15 * time.Second
	// DiscordMemberPageSize is the maximum page size of the list guild members endpoint.
	DiscordMemberPageSize = 1000
)

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
)

const (
	CacheKeyPrefixCooldown = "cooldown:"
)

const (
	CooldownBackendMemory = "memory"
	CooldownBackendRedis  = "redis"
)

const (
	FallbackAllow = "allow"
	FallbackDeny  = "deny"
)
