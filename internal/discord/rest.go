package discord

import (
	"github.com/bwmarrin/discordgo"
)

// restAPI is the subset of *discordgo.Session used for REST calls.
type restAPI interface {
	User(userID string, options ...discordgo.RequestOption) (*discordgo.User, error)
	GuildMembers(guildID string, after string, limit int, options ...discordgo.RequestOption) ([]*discordgo.Member, error)
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// interactionAPI is the subset of *discordgo.Session used to answer
// interactions.
type interactionAPI interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

var (
	_ restAPI        = (*discordgo.Session)(nil)
	_ interactionAPI = (*discordgo.Session)(nil)
)
