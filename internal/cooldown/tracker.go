// Package cooldown enforces a minimum interval between two direct messages
// to the same recipient.
package cooldown

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"dmrelay/internal/config"
	"dmrelay/internal/constants"
	"dmrelay/internal/logger"
)

// Tracker records the last send time per recipient.
//
// CheckAndRecord is an atomic check-then-set: it records now and returns
// true when the recipient has no entry or its entry is at least one window
// old, and otherwise returns false without mutating state.
//
// Release undoes a CheckAndRecord made at the given instant, and is a no-op
// when a newer entry has replaced it.
type Tracker interface {
	CheckAndRecord(ctx context.Context, recipientID string, now time.Time) (bool, error)
	Release(ctx context.Context, recipientID string, at time.Time) error
	Last(ctx context.Context, recipientID string) (time.Time, bool, error)
	Size(ctx context.Context) (int, error)
}

// New builds the tracker selected by cfg.Cooldown.Backend. The redis
// backend requires client and is guarded by the circuit breaker.
func New(cfg *config.Config, client *redis.Client, log logger.Logger) (Tracker, error) {
	window := cfg.Relay.CooldownWindow
	switch cfg.Cooldown.Backend {
	case "", constants.CooldownBackendMemory:
		return NewMemoryStore(window), nil
	case constants.CooldownBackendRedis:
		if client == nil {
			return nil, fmt.Errorf("cooldown backend %q requires a redis client", cfg.Cooldown.Backend)
		}
		return NewCircuitBreakerTracker(NewRedisStore(client, window), cfg.CircuitBreaker, cfg.Cooldown.OnStoreError, log), nil
	default:
		return nil, fmt.Errorf("unsupported cooldown backend: %s", cfg.Cooldown.Backend)
	}
}
