package discord

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dmrelay/internal/relay"
	apperrors "dmrelay/pkg/errors"
)

func TestMessageSend(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 30, 0, 0, time.FixedZone("CEST", 2*60*60))
	payload := relay.Payload{
		Content: "hello",
		Embeds: []relay.Embed{{
			Title:        "Booking",
			Description:  "Confirmed",
			URL:          "https://example.com/b/1",
			Color:        0x5865F2,
			Author:       &relay.EmbedAuthor{Name: "Desk", URL: "https://example.com", IconURL: "https://example.com/a.png"},
			Footer:       &relay.EmbedFooter{Text: "See you", IconURL: "https://example.com/f.png"},
			ImageURL:     "https://example.com/i.png",
			ThumbnailURL: "https://example.com/t.png",
			Timestamp:    &ts,
			Fields: []relay.EmbedField{
				{Name: "Date", Value: "May 1", Inline: true},
				{Name: "Room", Value: "3"},
			},
		}},
	}

	msg := MessageSend(payload)

	assert.Equal(t, "hello", msg.Content)
	require.Len(t, msg.Embeds, 1)
	embed := msg.Embeds[0]
	assert.Equal(t, discordgo.EmbedTypeRich, embed.Type)
	assert.Equal(t, "Booking", embed.Title)
	assert.Equal(t, 0x5865F2, embed.Color)
	assert.Equal(t, "Desk", embed.Author.Name)
	assert.Equal(t, "https://example.com/f.png", embed.Footer.IconURL)
	assert.Equal(t, "https://example.com/i.png", embed.Image.URL)
	assert.Equal(t, "https://example.com/t.png", embed.Thumbnail.URL)
	assert.Equal(t, "2024-05-01T10:30:00Z", embed.Timestamp)
	require.Len(t, embed.Fields, 2)
	assert.True(t, embed.Fields[0].Inline)
	assert.False(t, embed.Fields[1].Inline)
}

func TestMessageSend_TextOnly(t *testing.T) {
	msg := MessageSend(relay.Payload{Content: "hi"})
	assert.Nil(t, msg.Embeds)

	embed := MessageEmbed(relay.Embed{Title: "t"})
	assert.Nil(t, embed.Author)
	assert.Nil(t, embed.Footer)
	assert.Nil(t, embed.Image)
	assert.Nil(t, embed.Thumbnail)
	assert.Empty(t, embed.Timestamp)
}

func TestMessenger_SendDirect(t *testing.T) {
	api := &fakeREST{sendErr: map[string]error{
		"dm-2": restError(http.StatusForbidden, codeCannotMessageUser),
	}}
	messenger := NewMessenger(api)

	require.NoError(t, messenger.SendDirect(context.Background(), "1", relay.Payload{Content: "hi"}))
	assert.Equal(t, "hi", api.sent["dm-1"].Content)

	err := messenger.SendDirect(context.Background(), "2", relay.Payload{Content: "hi"})
	require.Error(t, err)
	assert.True(t, apperrors.IsDeliveryFailed(err))
	assert.Contains(t, apperrors.Describe(err), "recipient does not accept direct messages")
}
