package relay

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "dmrelay/pkg/errors"
)

// gatedMessenger holds every send until release is closed or the send's
// context ends.
type gatedMessenger struct {
	release chan struct{}
	started chan string
}

func newGatedMessenger() *gatedMessenger {
	return &gatedMessenger{
		release: make(chan struct{}),
		started: make(chan string, 16),
	}
}

func (m *gatedMessenger) SendDirect(ctx context.Context, recipientID string, _ Payload) error {
	m.started <- recipientID
	select {
	case <-m.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *gatedMessenger) awaitStart(t *testing.T) {
	t.Helper()
	select {
	case <-m.started:
	case <-time.After(2 * time.Second):
		t.Fatal("no delivery started")
	}
}

func TestService_ShutdownWaitsForBroadcast(t *testing.T) {
	messenger := newGatedMessenger()
	sink := &recordingSink{}
	svc := newTestService(testGuild(), messenger, sink)

	report, err := svc.Broadcast(context.Background(), Everyone(), Payload{Content: "Hi"})
	require.NoError(t, err)
	messenger.awaitStart(t)

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(messenger.release)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, svc.Shutdown(ctx))

	reports := sink.Reports()
	require.Len(t, reports, 1)
	assert.Equal(t, report.ID, reports[0].ID)
	assert.Equal(t, 4, reports[0].Delivered)
}

func TestService_ShutdownTimeoutCancelsBroadcast(t *testing.T) {
	messenger := newGatedMessenger()
	sink := &recordingSink{}
	svc := newTestService(testGuild(), messenger, sink)

	report, err := svc.Broadcast(context.Background(), Everyone(), Payload{Content: "Hi"})
	require.NoError(t, err)
	messenger.awaitStart(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, svc.Shutdown(ctx), context.DeadlineExceeded)

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()
	require.NoError(t, svc.Wait(waitCtx), "cancelled deliveries must return")

	got, ok := svc.Report(report.ID)
	require.True(t, ok)
	assert.False(t, got.Running)
	assert.Equal(t, 4, got.Failed)
	assert.Empty(t, sink.Reports(), "reports are not published after shutdown gave up")
}

func TestService_ShutdownCancelsPendingSend(t *testing.T) {
	messenger := newGatedMessenger()
	svc := newTestService(testGuild(), messenger, nil)

	errCh := make(chan error, 1)
	go func() {
		_, err := svc.Send(context.Background(), Single("1"), Payload{Content: "Hi"})
		errCh <- err
	}()
	messenger.awaitStart(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, svc.Shutdown(ctx), context.DeadlineExceeded)

	select {
	case err := <-errCh:
		require.Error(t, err)
		assert.True(t, apperrors.IsDeliveryFailed(err))
	case <-time.After(2 * time.Second):
		t.Fatal("send was not cancelled")
	}
}

func TestService_RefusesWorkAfterShutdown(t *testing.T) {
	svc := newTestService(testGuild(), newFakeMessenger(), nil)
	require.NoError(t, svc.Shutdown(context.Background()))

	_, err := svc.Send(context.Background(), Single("1"), Payload{Content: "Hi"})
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavailable)
	assert.Equal(t, 503, apperrors.ToHTTPStatus(err))

	_, err = svc.Broadcast(context.Background(), Everyone(), Payload{Content: "Hi"})
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavailable)
}
