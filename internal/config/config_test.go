package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func setDiscordEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("DISCORD_GUILD_ID", "100")
	t.Setenv("DISCORD_APPLICATION_ID", "200")
	t.Setenv("DISCORD_AUTHORIZED_ROLE_ID", "300")
}

func TestLoadConfig_DefaultsFromEnvOnly(t *testing.T) {
	t.Chdir(t.TempDir())
	setDiscordEnv(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 3002, cfg.Server.Port)
	assert.Equal(t, 20*time.Second, cfg.Relay.CooldownWindow)
	assert.Equal(t, "memory", cfg.Cooldown.Backend)
	assert.Equal(t, "deny", cfg.Cooldown.OnStoreError)
	assert.Equal(t, "Managing your bookings", cfg.Discord.Activity)
	assert.Equal(t, "300", cfg.Discord.AuthorizedRoleID)
	assert.Equal(t, 200, cfg.Relay.MaxReports)
	assert.Equal(t, 5*time.Minute, cfg.RateLimit.CleanupInterval)
}

func TestLoadConfig_LegacyEnvNames(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TOKEN", "Bot legacy-token")
	t.Setenv("GUILD_ID", "1")
	t.Setenv("CLIENT_ID", "2")
	t.Setenv("DISCORD_AUTHORIZED_ROLE_ID", "3")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "legacy-token", cfg.Discord.Token)
	assert.Equal(t, "1", cfg.Discord.GuildID)
	assert.Equal(t, "2", cfg.Discord.ApplicationID)
}

func TestLoadConfig_FileAndEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	setDiscordEnv(t)
	t.Setenv("SERVER_PORT", "9090")

	path := writeConfig(t, `
server:
  port: 8080
relay:
  cooldown_window: 45s
  broadcast_concurrency: 8
cooldown:
  backend: redis
  on_store_error: allow
database:
  redis:
    host: localhost
    port: 6380
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 45*time.Second, cfg.Relay.CooldownWindow)
	assert.Equal(t, 8, cfg.Relay.BroadcastConcurrency)
	assert.Equal(t, "redis", cfg.Cooldown.Backend)
	assert.Equal(t, "localhost", cfg.Database.Redis.Host)
	assert.Equal(t, 6380, cfg.Database.Redis.Port)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	setDiscordEnv(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateStatic(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Port: 3002, ReadTimeout: time.Second, WriteTimeout: time.Second},
			Discord: DiscordConfig{
				Token:            "t",
				GuildID:          "g",
				ApplicationID:    "a",
				AuthorizedRoleID: "r",
				RequestTimeout:   time.Second,
			},
			Relay: RelayConfig{
				CooldownWindow:  20 * time.Second,
				ReportRetention: time.Hour,
				MaxReports:      10,
			},
			Cooldown: CooldownConfig{Backend: "memory", OnStoreError: "deny"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing role", mutate: func(c *Config) { c.Discord.AuthorizedRoleID = "" }, wantErr: "discord.authorized_role_id"},
		{name: "missing token", mutate: func(c *Config) { c.Discord.Token = " " }, wantErr: "discord.token"},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "server.port"},
		{name: "zero window", mutate: func(c *Config) { c.Relay.CooldownWindow = 0 }, wantErr: "relay.cooldown_window"},
		{name: "negative concurrency", mutate: func(c *Config) { c.Relay.BroadcastConcurrency = -1 }, wantErr: "relay.broadcast_concurrency"},
		{name: "unknown backend", mutate: func(c *Config) { c.Cooldown.Backend = "memcached" }, wantErr: "cooldown.backend"},
		{name: "redis without host", mutate: func(c *Config) { c.Cooldown.Backend = "redis" }, wantErr: "database.redis.host"},
		{name: "bad fallback", mutate: func(c *Config) { c.Cooldown.OnStoreError = "maybe" }, wantErr: "cooldown.on_store_error"},
		{name: "kafka without brokers", mutate: func(c *Config) { c.Broker.Type = "kafka" }, wantErr: "broker.kafka.brokers"},
		{name: "kafka without topic", mutate: func(c *Config) {
			c.Broker.Type = "kafka"
			c.Broker.Kafka.Brokers = []string{"localhost:9092"}
		}, wantErr: "broker.kafka.report_topic"},
		{name: "rate limit without rps", mutate: func(c *Config) { c.RateLimit.Enabled = true }, wantErr: "rate_limit.rps"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := ValidateStatic(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
