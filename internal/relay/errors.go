package relay

import (
	"fmt"
	"time"

	apperrors "dmrelay/pkg/errors"
)

func errRateLimited(window time.Duration) *apperrors.Error {
	return apperrors.ErrRateLimited.WithMessage(
		fmt.Sprintf("must wait %s before sending another message to this recipient", formatWindow(window)),
	)
}

// formatWindow renders whole-second windows in seconds ("60s", not "1m0s").
func formatWindow(window time.Duration) string {
	if window%time.Second == 0 {
		return fmt.Sprintf("%ds", int64(window/time.Second))
	}
	return window.String()
}

func errRecipientNotFound(id string) *apperrors.Error {
	return apperrors.ErrNotFound.
		WithMessage("recipient not found").
		WithDetail("recipient_id", id)
}

func errRoleNotFound(group string) *apperrors.Error {
	return apperrors.ErrNotFound.
		WithMessage("role not found").
		WithDetail("role", group)
}

func errDirectory(err error) *apperrors.Error {
	return apperrors.Wrap(err, apperrors.ErrInternal.WithMessage("failed to query guild directory"))
}

func errShuttingDown() *apperrors.Error {
	return apperrors.ErrServiceUnavailable.WithMessage("relay is shutting down")
}
