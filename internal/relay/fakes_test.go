package relay

import (
	"context"
	"errors"
	"sync"

	apperrors "dmrelay/pkg/errors"
)

var errDMsDisabled = errors.New("cannot send messages to this user")

type fakeDirectory struct {
	members []Member
	roles   []Role
	err     error
}

func (d *fakeDirectory) User(_ context.Context, id string) (*User, error) {
	if d.err != nil {
		return nil, d.err
	}
	for _, m := range d.members {
		if m.ID == id {
			u := m.User
			return &u, nil
		}
	}
	return nil, apperrors.ErrNotFound.WithDetail("user_id", id)
}

func (d *fakeDirectory) Members(context.Context) ([]Member, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.members, nil
}

func (d *fakeDirectory) Roles(context.Context) ([]Role, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.roles, nil
}

type fakeMessenger struct {
	mu       sync.Mutex
	blocked  map[string]bool
	sent     []string
	payloads []Payload
}

func newFakeMessenger(blocked ...string) *fakeMessenger {
	m := &fakeMessenger{blocked: make(map[string]bool)}
	for _, id := range blocked {
		m.blocked[id] = true
	}
	return m
}

func (m *fakeMessenger) SendDirect(_ context.Context, recipientID string, payload Payload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.blocked[recipientID] {
		return errDMsDisabled
	}
	m.sent = append(m.sent, recipientID)
	m.payloads = append(m.payloads, payload)
	return nil
}

func (m *fakeMessenger) Sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}

const guildID = "100"

// testGuild has four humans and one bot; "VIP" holds 1, 2 and the bot.
func testGuild() *fakeDirectory {
	return &fakeDirectory{
		members: []Member{
			{User: User{ID: "1", Username: "ana"}, RoleIDs: []string{"r-vip"}},
			{User: User{ID: "2", Username: "ben"}, RoleIDs: []string{"r-vip", "r-staff"}},
			{User: User{ID: "3", Username: "cam"}, RoleIDs: []string{"r-staff"}},
			{User: User{ID: "4", Username: "dee"}},
			{User: User{ID: "99", Username: "helper", Bot: true}, RoleIDs: []string{"r-vip", "r-bot"}},
		},
		roles: []Role{
			{ID: guildID, Name: "@everyone", Everyone: true},
			{ID: "r-vip", Name: "VIP"},
			{ID: "r-staff", Name: "Staff"},
			{ID: "r-bot", Name: "Helper", Managed: true},
		},
	}
}
