package relay

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dmrelay/internal/cooldown"
	apperrors "dmrelay/pkg/errors"
)

type mockMessenger struct {
	mock.Mock
}

func (m *mockMessenger) SendDirect(ctx context.Context, recipientID string, payload Payload) error {
	args := m.Called(ctx, recipientID, payload)
	return args.Error(0)
}

// clock is a settable time source.
type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) set(ms int64) { c.t = time.UnixMilli(ms) }

func newTestDeliverer(messenger Messenger) (*Deliverer, *cooldown.MemoryStore, *clock) {
	store := cooldown.NewMemoryStore(20 * time.Second)
	d := NewDeliverer(store, messenger, 20*time.Second, nil)
	c := &clock{}
	d.now = c.now
	return d, store, c
}

func TestDeliverer_CooldownWindow(t *testing.T) {
	ctx := context.Background()
	payload := Payload{Content: "Hi"}
	messenger := new(mockMessenger)
	messenger.On("SendDirect", mock.Anything, "42", payload).Return(nil).Twice()

	d, store, c := newTestDeliverer(messenger)

	c.set(0)
	require.NoError(t, d.Deliver(ctx, "42", payload))

	c.set(15000)
	err := d.Deliver(ctx, "42", payload)
	require.Error(t, err)
	assert.True(t, apperrors.IsRateLimited(err))
	assert.Equal(t, "must wait 20s before sending another message to this recipient", apperrors.Describe(err))

	c.set(20000)
	require.NoError(t, d.Deliver(ctx, "42", payload))

	last, found, err := store.Last(ctx, "42")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(20000), last.UnixMilli())

	messenger.AssertExpectations(t)
}

func TestDeliverer_FailedSendReleasesCooldown(t *testing.T) {
	ctx := context.Background()
	payload := Payload{Content: "Hi"}
	messenger := new(mockMessenger)
	messenger.On("SendDirect", mock.Anything, "42", payload).Return(errDMsDisabled).Once()
	messenger.On("SendDirect", mock.Anything, "42", payload).Return(nil).Once()

	d, store, c := newTestDeliverer(messenger)

	c.set(0)
	err := d.Deliver(ctx, "42", payload)
	require.Error(t, err)
	assert.True(t, apperrors.IsDeliveryFailed(err))
	assert.ErrorIs(t, err, errDMsDisabled)

	_, found, _ := store.Last(ctx, "42")
	assert.False(t, found)

	c.set(1000)
	require.NoError(t, d.Deliver(ctx, "42", payload), "a failed attempt must not consume the window")

	messenger.AssertExpectations(t)
}

func TestDeliverer_RateLimitedSkipsSend(t *testing.T) {
	ctx := context.Background()
	messenger := newFakeMessenger()
	d, _, c := newTestDeliverer(messenger)

	c.set(0)
	require.NoError(t, d.Deliver(ctx, "42", Payload{Content: "one"}))
	c.set(19999)
	require.Error(t, d.Deliver(ctx, "42", Payload{Content: "two"}))

	assert.Equal(t, []string{"42"}, messenger.Sent())
}

func TestFormatWindow(t *testing.T) {
	assert.Equal(t, "20s", formatWindow(20*time.Second))
	assert.Equal(t, "60s", formatWindow(time.Minute))
	assert.Equal(t, "1.5s", formatWindow(1500*time.Millisecond))
}
