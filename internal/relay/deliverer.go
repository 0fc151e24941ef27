package relay

import (
	"context"
	"time"

	"dmrelay/internal/cooldown"
	"dmrelay/internal/logger"
	apperrors "dmrelay/pkg/errors"
	"dmrelay/pkg/metrics"
)

const (
	deliveryStatusDelivered   = "delivered"
	deliveryStatusRateLimited = "rate_limited"
	deliveryStatusFailed      = "failed"
	deliveryStatusError       = "error"
)

// Deliverer sends one payload to one recipient under the cooldown policy.
type Deliverer struct {
	tracker   cooldown.Tracker
	messenger Messenger
	window    time.Duration
	now       func() time.Time
	logger    logger.Logger
}

func NewDeliverer(tracker cooldown.Tracker, messenger Messenger, window time.Duration, log logger.Logger) *Deliverer {
	if log == nil {
		log = logger.NopLogger()
	}
	return &Deliverer{
		tracker:   tracker,
		messenger: messenger,
		window:    window,
		now:       time.Now,
		logger:    log,
	}
}

// Deliver reserves the recipient's cooldown slot and makes a single send
// attempt. A failed send releases the slot so the recipient can be retried
// without waiting out the window.
func (d *Deliverer) Deliver(ctx context.Context, recipientID string, payload Payload) error {
	start := time.Now()
	now := d.now()

	allowed, err := d.tracker.CheckAndRecord(ctx, recipientID, now)
	if err != nil {
		metrics.ObserveDelivery(time.Since(start), deliveryStatusError)
		return apperrors.ErrInternal.WithMessage("cooldown check failed").WithCause(err)
	}
	if !allowed {
		metrics.ObserveDelivery(time.Since(start), deliveryStatusRateLimited)
		return errRateLimited(d.window).WithDetail("recipient_id", recipientID)
	}

	if err := d.messenger.SendDirect(ctx, recipientID, payload); err != nil {
		if releaseErr := d.tracker.Release(context.WithoutCancel(ctx), recipientID, now); releaseErr != nil {
			d.logger.WarnwCtx(ctx, "Failed to release cooldown after failed send",
				"recipient_id", recipientID,
				"error", releaseErr,
			)
		}
		metrics.ObserveDelivery(time.Since(start), deliveryStatusFailed)
		return apperrors.ErrDeliveryFailed.
			WithDetail("recipient_id", recipientID).
			WithCause(err)
	}

	metrics.ObserveDelivery(time.Since(start), deliveryStatusDelivered)
	return nil
}
