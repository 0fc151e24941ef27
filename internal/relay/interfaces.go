package relay

import (
	"context"
)

type User struct {
	ID       string
	Username string
	Bot      bool
}

type Member struct {
	User
	RoleIDs []string
}

func (m Member) HasRole(roleID string) bool {
	for _, id := range m.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

type Role struct {
	ID      string
	Name    string
	Managed bool
	// Everyone marks the implicit role every member holds.
	Everyone bool
}

// Directory is the guild membership directory. User returns a
// pkg/errors NOT_FOUND error for unknown ids.
type Directory interface {
	User(ctx context.Context, id string) (*User, error)
	Members(ctx context.Context) ([]Member, error)
	Roles(ctx context.Context) ([]Role, error)
}

// Messenger sends one direct message.
type Messenger interface {
	SendDirect(ctx context.Context, recipientID string, payload Payload) error
}

// ReportSink receives finished broadcast reports.
type ReportSink interface {
	PublishReport(ctx context.Context, report Report) error
}
