package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dmrelay/internal/config"
	"dmrelay/internal/cooldown"
	"dmrelay/internal/relay"
	apperrors "dmrelay/pkg/errors"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, spec relay.TargetSpec, payload relay.Payload) (int, error) {
	args := m.Called(ctx, spec, payload)
	return args.Int(0), args.Error(1)
}

func TestHandler_Authorize(t *testing.T) {
	h := NewHandler(new(mockSender), "777", nil)

	assert.True(t, h.Authorize([]string{"1", "777"}))
	assert.False(t, h.Authorize([]string{"1", "2"}))
	assert.False(t, h.Authorize(nil))

	unset := NewHandler(new(mockSender), "", nil)
	assert.False(t, unset.Authorize([]string{""}))
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		id      string
		want    relay.TargetSpec
		wantErr bool
	}{
		{name: "user", kind: "user", id: "42", want: relay.Single("42")},
		{name: "mixed case", kind: " User ", id: " 42 ", want: relay.Single("42")},
		{name: "role by id", kind: "ROLE", id: "555", want: relay.GroupWithID("555")},
		{name: "all ignores id", kind: "all", id: "123", want: relay.Everyone()},
		{name: "user without id", kind: "user", wantErr: true},
		{name: "role without id", kind: "role", wantErr: true},
		{name: "unknown kind", kind: "potato", wantErr: true},
		{name: "empty kind", kind: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTarget(tt.kind, tt.id)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsInvalidTarget(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHandler_SubmitInvalidTarget(t *testing.T) {
	sender := new(mockSender)
	h := NewHandler(sender, "777", nil)

	reply := h.Submit(context.Background(), Submission{Kind: "potato", Message: "Hi"})

	assert.False(t, reply.Success)
	assert.Equal(t, "Error", reply.Title)
	assert.Contains(t, reply.Description, "There was an error sending the message: ")
	assert.Contains(t, reply.Description, `invalid target type "potato"`)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_SubmitSuccess(t *testing.T) {
	sender := new(mockSender)
	sender.On("Send", mock.Anything, relay.GroupWithID("555"), relay.Payload{Content: "line1\nline2"}).Return(3, nil).Once()
	h := NewHandler(sender, "777", nil)

	reply := h.Submit(context.Background(), Submission{Kind: "role", TargetID: "555", Message: "line1\r\nline2"})

	assert.True(t, reply.Success)
	assert.Equal(t, "Message Sent", reply.Title)
	assert.Equal(t, "Your message has been sent successfully to 3 member(s).", reply.Description)
	sender.AssertExpectations(t)
}

func TestHandler_SubmitSurfacesSingleError(t *testing.T) {
	sender := new(mockSender)
	sender.On("Send", mock.Anything, relay.Single("42"), mock.Anything).
		Return(0, apperrors.ErrDeliveryFailed.WithCause(errors.New("Cannot send messages to this user"))).Once()
	h := NewHandler(sender, "777", nil)

	reply := h.Submit(context.Background(), Submission{Kind: "user", TargetID: "42", Message: "Hi"})

	assert.False(t, reply.Success)
	assert.Equal(t,
		"There was an error sending the message: direct message could not be delivered: Cannot send messages to this user",
		reply.Description)
}

type stubMessenger struct {
	blocked map[string]bool
}

func (m stubMessenger) SendDirect(_ context.Context, recipientID string, _ relay.Payload) error {
	if m.blocked[recipientID] {
		return errors.New("Cannot send messages to this user")
	}
	return nil
}

type stubDirectory struct {
	members []relay.Member
	roles   []relay.Role
}

func (d stubDirectory) User(_ context.Context, id string) (*relay.User, error) {
	for _, m := range d.members {
		if m.ID == id {
			u := m.User
			return &u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (d stubDirectory) Members(context.Context) ([]relay.Member, error) { return d.members, nil }

func (d stubDirectory) Roles(context.Context) ([]relay.Role, error) { return d.roles, nil }

func TestHandler_SubmitCountsGroupSuccesses(t *testing.T) {
	// N = 5 human members of the role, M = 2 with DMs disabled
	members := []relay.Member{
		{User: relay.User{ID: "1"}, RoleIDs: []string{"555"}},
		{User: relay.User{ID: "2"}, RoleIDs: []string{"555"}},
		{User: relay.User{ID: "3"}, RoleIDs: []string{"555"}},
		{User: relay.User{ID: "4"}, RoleIDs: []string{"555"}},
		{User: relay.User{ID: "5"}, RoleIDs: []string{"555"}},
		{User: relay.User{ID: "6", Bot: true}, RoleIDs: []string{"555"}},
		{User: relay.User{ID: "7"}},
	}
	directory := stubDirectory{members: members, roles: []relay.Role{{ID: "555", Name: "Members"}}}
	messenger := stubMessenger{blocked: map[string]bool{"2": true, "5": true}}
	cfg := config.RelayConfig{CooldownWindow: 20 * time.Second}
	svc := relay.NewService(directory, messenger, cooldown.NewMemoryStore(cfg.CooldownWindow), nil, cfg, nil)

	h := NewHandler(svc, "777", nil)
	reply := h.Submit(context.Background(), Submission{Kind: "role", TargetID: "555", Message: "Hi"})

	assert.True(t, reply.Success)
	assert.Equal(t, "Your message has been sent successfully to 3 member(s).", reply.Description)
}

func TestDeniedReply(t *testing.T) {
	h := NewHandler(new(mockSender), "777", nil)
	reply := h.Deny(context.Background(), "42")

	assert.False(t, reply.Success)
	assert.Equal(t, DeniedReply(), reply)
	assert.Equal(t, "You do not have permission", reply.Title)
}
