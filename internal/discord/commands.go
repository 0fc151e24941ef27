package discord

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"

	"dmrelay/internal/command"
	"dmrelay/internal/logger"
	"dmrelay/pkg/retry"
)

type commandAPI interface {
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// ApplicationCommands returns the guild command set published at startup.
func ApplicationCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        command.CommandName,
			Description: command.CommandDescription,
			Type:        discordgo.ChatApplicationCommand,
		},
	}
}

// RegisterCommands replaces the guild's command set. Permission and
// validation errors are not retried.
func RegisterCommands(ctx context.Context, api commandAPI, appID, guildID string, policy retry.Policy, log logger.Logger) error {
	commands := ApplicationCommands()

	err := retry.Retry(ctx, policy, func() error {
		// coded not-found and forbidden errors report IsFatal and stop the retry
		_, err := api.ApplicationCommandBulkOverwrite(appID, guildID, commands, discordgo.WithContext(ctx))
		return translateError(err)
	}, func(attempt int, err error, next time.Duration) {
		log.Warnw("Command registration failed, retrying",
			"attempt", attempt,
			"next_retry_in", next,
			"error", err,
		)
	})
	if err != nil {
		return err
	}

	log.Infow("Registered application commands",
		"guild_id", guildID,
		"count", len(commands),
	)
	return nil
}
