package discord

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"

	"dmrelay/internal/relay"
)

// Messenger sends direct messages through a DM channel with the recipient.
type Messenger struct {
	api restAPI
}

func NewMessenger(api restAPI) *Messenger {
	return &Messenger{api: api}
}

func (m *Messenger) SendDirect(ctx context.Context, recipientID string, payload relay.Payload) error {
	channel, err := m.api.UserChannelCreate(recipientID, discordgo.WithContext(ctx))
	if err != nil {
		return translateError(err)
	}

	if _, err := m.api.ChannelMessageSendComplex(channel.ID, MessageSend(payload), discordgo.WithContext(ctx)); err != nil {
		return translateError(err)
	}
	return nil
}

// MessageSend converts a payload to the discordgo request body.
func MessageSend(payload relay.Payload) *discordgo.MessageSend {
	msg := &discordgo.MessageSend{Content: payload.Content}
	if len(payload.Embeds) > 0 {
		msg.Embeds = make([]*discordgo.MessageEmbed, 0, len(payload.Embeds))
		for _, e := range payload.Embeds {
			msg.Embeds = append(msg.Embeds, MessageEmbed(e))
		}
	}
	return msg
}

func MessageEmbed(e relay.Embed) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Type:        discordgo.EmbedTypeRich,
		Title:       e.Title,
		Description: e.Description,
		URL:         e.URL,
		Color:       e.Color,
	}
	if e.Author != nil {
		embed.Author = &discordgo.MessageEmbedAuthor{
			Name:    e.Author.Name,
			URL:     e.Author.URL,
			IconURL: e.Author.IconURL,
		}
	}
	if e.Footer != nil {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text:    e.Footer.Text,
			IconURL: e.Footer.IconURL,
		}
	}
	if e.ImageURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: e.ImageURL}
	}
	if e.ThumbnailURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: e.ThumbnailURL}
	}
	if e.Timestamp != nil {
		embed.Timestamp = e.Timestamp.UTC().Format(time.RFC3339)
	}
	for _, f := range e.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}
	return embed
}
