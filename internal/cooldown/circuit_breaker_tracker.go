package cooldown

import (
	"context"
	"fmt"
	"time"

	"dmrelay/internal/config"
	"dmrelay/internal/constants"
	"dmrelay/internal/logger"
	"dmrelay/pkg/circuitbreaker"
	"dmrelay/pkg/metrics"
)

const breakerName = "redis-cooldown"

// CircuitBreakerTracker guards a remote Tracker with a circuit breaker and
// resolves store failures with the configured fallback: "allow" lets the
// send through unrecorded, "deny" reports the recipient as cooling down.
type CircuitBreakerTracker struct {
	tracker  Tracker
	cb       *circuitbreaker.Wrapper
	fallback string
	logger   logger.Logger
}

func NewCircuitBreakerTracker(tracker Tracker, cbCfg config.CircuitBreakerConfig, fallback string, log logger.Logger) *CircuitBreakerTracker {
	if log == nil {
		log = logger.NopLogger()
	}
	t := &CircuitBreakerTracker{
		tracker:  tracker,
		fallback: fallback,
		logger:   log,
	}
	if cbCfg.Enabled {
		t.cb = circuitbreaker.NewWrapper(circuitbreaker.FromConfig(breakerName, cbCfg))
	}
	return t
}

func (t *CircuitBreakerTracker) execute(ctx context.Context, fn func() (interface{}, error)) (interface{}, error) {
	if t.cb == nil {
		return fn()
	}

	result, err := t.cb.ExecuteWithContext(ctx, fn)
	t.cb.RecordRequest(err == nil)

	if err != nil && t.cb.IsOpen() {
		return nil, fmt.Errorf("circuit breaker is open for %s: %w", breakerName, err)
	}
	return result, err
}

func (t *CircuitBreakerTracker) CheckAndRecord(ctx context.Context, recipientID string, now time.Time) (bool, error) {
	result, err := t.execute(ctx, func() (interface{}, error) {
		return t.tracker.CheckAndRecord(ctx, recipientID, now)
	})
	if err != nil {
		return t.handleStoreError(ctx, recipientID, err), nil
	}

	allowed, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("tracker returned invalid result type")
	}
	return allowed, nil
}

func (t *CircuitBreakerTracker) handleStoreError(ctx context.Context, recipientID string, err error) bool {
	if t.fallback == constants.FallbackDeny {
		metrics.FallbackUsageTotal.WithLabelValues("cooldown", "deny_on_error").Inc()
		t.logger.WarnwCtx(ctx, "Cooldown store error, treating recipient as cooling down (fallback: deny)",
			"recipient_id", recipientID,
			"error", err,
		)
		return false
	}

	metrics.FallbackUsageTotal.WithLabelValues("cooldown", "allow_on_error").Inc()
	t.logger.WarnwCtx(ctx, "Cooldown store error, allowing send (fallback: allow)",
		"recipient_id", recipientID,
		"error", err,
	)
	return true
}

func (t *CircuitBreakerTracker) Release(ctx context.Context, recipientID string, at time.Time) error {
	_, err := t.execute(ctx, func() (interface{}, error) {
		return nil, t.tracker.Release(ctx, recipientID, at)
	})
	return err
}

type lastEntry struct {
	at    time.Time
	found bool
}

func (t *CircuitBreakerTracker) Last(ctx context.Context, recipientID string) (time.Time, bool, error) {
	result, err := t.execute(ctx, func() (interface{}, error) {
		at, found, err := t.tracker.Last(ctx, recipientID)
		return lastEntry{at: at, found: found}, err
	})
	if err != nil {
		return time.Time{}, false, err
	}

	entry, ok := result.(lastEntry)
	if !ok {
		return time.Time{}, false, fmt.Errorf("tracker returned invalid result type")
	}
	return entry.at, entry.found, nil
}

func (t *CircuitBreakerTracker) Size(ctx context.Context) (int, error) {
	result, err := t.execute(ctx, func() (interface{}, error) {
		return t.tracker.Size(ctx)
	})
	if err != nil {
		return 0, err
	}

	size, ok := result.(int)
	if !ok {
		return 0, fmt.Errorf("tracker returned invalid result type")
	}
	return size, nil
}

func (t *CircuitBreakerTracker) State() string {
	if t.cb == nil {
		return "disabled"
	}
	return t.cb.State().String()
}

func (t *CircuitBreakerTracker) IsOpen() bool {
	if t.cb == nil {
		return false
	}
	return t.cb.IsOpen()
}
