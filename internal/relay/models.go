package relay

import (
	"fmt"
	"time"
)

type TargetKind int

const (
	TargetSingle TargetKind = iota + 1
	TargetGroup
	TargetEveryone
)

func (k TargetKind) String() string {
	switch k {
	case TargetSingle:
		return "single"
	case TargetGroup:
		return "group"
	case TargetEveryone:
		return "everyone"
	default:
		return "unknown"
	}
}

// TargetSpec names the audience of one send request.
type TargetSpec struct {
	Kind        TargetKind
	RecipientID string
	// Group holds a role name, or a role id when GroupByID is set.
	Group     string
	GroupByID bool
}

func Single(recipientID string) TargetSpec {
	return TargetSpec{Kind: TargetSingle, RecipientID: recipientID}
}

func GroupNamed(name string) TargetSpec {
	return TargetSpec{Kind: TargetGroup, Group: name}
}

func GroupWithID(id string) TargetSpec {
	return TargetSpec{Kind: TargetGroup, Group: id, GroupByID: true}
}

func Everyone() TargetSpec {
	return TargetSpec{Kind: TargetEveryone}
}

func (t TargetSpec) String() string {
	switch t.Kind {
	case TargetSingle:
		return fmt.Sprintf("user %s", t.RecipientID)
	case TargetGroup:
		if t.GroupByID {
			return fmt.Sprintf("role id %s", t.Group)
		}
		return fmt.Sprintf("role %q", t.Group)
	case TargetEveryone:
		return "everyone"
	default:
		return "unknown target"
	}
}

// Payload is the message delivered to every recipient of a request.
type Payload struct {
	Content string
	Embeds  []Embed
}

func (p Payload) IsEmpty() bool {
	return p.Content == "" && len(p.Embeds) == 0
}

type Embed struct {
	Title        string
	Description  string
	URL          string
	Color        int
	Author       *EmbedAuthor
	Footer       *EmbedFooter
	ImageURL     string
	ThumbnailURL string
	Timestamp    *time.Time
	Fields       []EmbedField
}

type EmbedAuthor struct {
	Name    string
	URL     string
	IconURL string
}

type EmbedFooter struct {
	Text    string
	IconURL string
}

type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}
