package api

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"dmrelay/internal/relay"
	apperrors "dmrelay/pkg/errors"
)

const (
	SendTypeSingle = "single"
	SendTypeAll    = "all"
	SendTypeRole   = "role"
)

// SendRequest is the POST /send-dm body. UserID and RoleName are the
// field names used by older admin pages.
type SendRequest struct {
	RecipientTarget string         `json:"recipientTarget"`
	UserID          string         `json:"userId"`
	SendType        string         `json:"sendType" binding:"required,oneof=single all role"`
	GroupName       string         `json:"groupName"`
	RoleName        string         `json:"roleName"`
	Message         string         `json:"message" binding:"max=2000"`
	Embeds          []EmbedRequest `json:"embeds" binding:"omitempty,max=10,dive"`
}

type EmbedRequest struct {
	AuthorName  string         `json:"authorName" binding:"max=256"`
	AuthorURL   string         `json:"authorURL" binding:"omitempty,url"`
	AuthorIcon  string         `json:"authorIcon" binding:"omitempty,url"`
	Title       string         `json:"title" binding:"max=256"`
	URL         string         `json:"url" binding:"omitempty,url"`
	Description string         `json:"description" binding:"max=4096"`
	Color       Color          `json:"color" swaggertype:"string" example:"#5865F2"`
	Fields      []FieldRequest `json:"fields" binding:"omitempty,max=25,dive"`
	Thumbnail   string         `json:"thumbnail" binding:"omitempty,url"`
	Image       string         `json:"image" binding:"omitempty,url"`
	Footer      string         `json:"footer" binding:"max=2048"`
	FooterIcon  string         `json:"footerIcon" binding:"omitempty,url"`
	Timestamp   string         `json:"timestamp" example:"2024-05-01T10:30:00Z"`
}

type FieldRequest struct {
	Name   string `json:"name" binding:"required,max=256"`
	Value  string `json:"value" binding:"required,max=1024"`
	Inline bool   `json:"inline"`
}

// SendResponse acknowledges a send. BroadcastID is set for role and all
// sends, which deliver in the background.
type SendResponse struct {
	Status      string `json:"status"`
	Recipients  int    `json:"recipients"`
	BroadcastID string `json:"broadcast_id,omitempty"`
}

// Color accepts a JSON number or a "#RRGGBB" / "0xRRGGBB" string.
type Color int

func (c *Color) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = 0
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		return c.set(n)
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("color must be a number or a hex string")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*c = 0
		return nil
	}

	base := 10
	switch {
	case strings.HasPrefix(s, "#"):
		s, base = s[1:], 16
	case strings.HasPrefix(strings.ToLower(s), "0x"):
		s, base = s[2:], 16
	}
	v, err := strconv.ParseInt(s, base, 64)
	if err != nil {
		return fmt.Errorf("invalid color %q", string(data))
	}
	return c.set(int(v))
}

func (c *Color) set(v int) error {
	if v < 0 || v > 0xFFFFFF {
		return fmt.Errorf("color %d out of range", v)
	}
	*c = Color(v)
	return nil
}

// timestamp layouts accepted for embeds; the admin page sends datetime-local values
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

func (r *SendRequest) recipient() string {
	if r.RecipientTarget != "" {
		return strings.TrimSpace(r.RecipientTarget)
	}
	return strings.TrimSpace(r.UserID)
}

func (r *SendRequest) group() string {
	if r.GroupName != "" {
		return r.GroupName
	}
	return r.RoleName
}

// Target validates the fields required by SendType and builds the target.
func (r *SendRequest) Target() (relay.TargetSpec, error) {
	switch r.SendType {
	case SendTypeSingle:
		if r.recipient() == "" {
			return relay.TargetSpec{}, apperrors.ErrValidation.WithMessage("recipientTarget is required when sendType is single")
		}
		return relay.Single(r.recipient()), nil
	case SendTypeRole:
		if r.group() == "" {
			return relay.TargetSpec{}, apperrors.ErrValidation.WithMessage("groupName is required when sendType is role")
		}
		return relay.GroupNamed(r.group()), nil
	case SendTypeAll:
		return relay.Everyone(), nil
	default:
		return relay.TargetSpec{}, apperrors.ErrValidation.WithMessage(fmt.Sprintf("unsupported sendType %q", r.SendType))
	}
}

// Payload builds the message payload. Embeds are only kept when they
// carry something Discord will render.
func (r *SendRequest) Payload() (relay.Payload, error) {
	payload := relay.Payload{
		Content: strings.ReplaceAll(r.Message, "\r\n", "\n"),
	}

	for i, e := range r.Embeds {
		embed, err := e.embed()
		if err != nil {
			return relay.Payload{}, apperrors.ErrValidation.
				WithMessage(fmt.Sprintf("embeds[%d]: %v", i, err))
		}
		if embed == nil {
			continue
		}
		payload.Embeds = append(payload.Embeds, *embed)
	}

	if payload.IsEmpty() {
		return relay.Payload{}, apperrors.ErrValidation.WithMessage("message or embeds are required")
	}
	return payload, nil
}

func (e EmbedRequest) embed() (*relay.Embed, error) {
	embed := relay.Embed{
		Title:        e.Title,
		Description:  e.Description,
		URL:          e.URL,
		Color:        int(e.Color),
		ImageURL:     e.Image,
		ThumbnailURL: e.Thumbnail,
	}
	if e.AuthorName != "" {
		embed.Author = &relay.EmbedAuthor{Name: e.AuthorName, URL: e.AuthorURL, IconURL: e.AuthorIcon}
	}
	if e.Footer != "" {
		embed.Footer = &relay.EmbedFooter{Text: e.Footer, IconURL: e.FooterIcon}
	}
	if e.Timestamp != "" {
		ts, err := parseTimestamp(e.Timestamp)
		if err != nil {
			return nil, err
		}
		embed.Timestamp = &ts
	}
	for _, f := range e.Fields {
		embed.Fields = append(embed.Fields, relay.EmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}

	if embed.Title == "" && embed.Description == "" && embed.Author == nil && embed.Footer == nil &&
		embed.ImageURL == "" && embed.ThumbnailURL == "" && len(embed.Fields) == 0 {
		return nil, nil
	}
	return &embed, nil
}
