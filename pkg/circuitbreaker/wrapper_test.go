package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dmrelay/internal/config"
)

var errUpstream = errors.New("upstream down")

func TestWrapper_TripsOnFailures(t *testing.T) {
	w := NewWrapper(DefaultConfig("test-trip"))

	for i := 0; i < 3; i++ {
		_, err := w.Execute(func() (interface{}, error) { return nil, errUpstream })
		require.ErrorIs(t, err, errUpstream)
	}

	assert.True(t, w.IsOpen())
	_, err := w.Execute(func() (interface{}, error) { return "ok", nil })
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestWrapper_IsSuccessfulKeepsClosed(t *testing.T) {
	errMissing := errors.New("missing")
	cfg := DefaultConfig("test-successful")
	cfg.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, errMissing)
	}
	w := NewWrapper(cfg)

	for i := 0; i < 5; i++ {
		_, err := w.Execute(func() (interface{}, error) { return nil, errMissing })
		require.ErrorIs(t, err, errMissing)
	}

	assert.False(t, w.IsOpen())
}

func TestWrapper_ExecuteWithCanceledContext(t *testing.T) {
	w := NewWrapper(DefaultConfig("test-ctx"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	_, err := w.ExecuteWithContext(ctx, func() (interface{}, error) {
		called = true
		return nil, nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig("test-from", config.CircuitBreakerConfig{
		MaxRequests:  7,
		Timeout:      5 * time.Second,
		FailureRatio: 0.9,
		MinRequests:  10,
	})

	assert.Equal(t, uint32(7), cfg.MaxRequests)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 60*time.Second, cfg.Interval)
	assert.False(t, cfg.ReadyToTrip(gobreaker.Counts{Requests: 9, TotalFailures: 9}))
	assert.True(t, cfg.ReadyToTrip(gobreaker.Counts{Requests: 10, TotalFailures: 9}))
}
