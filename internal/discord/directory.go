package discord

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"

	"dmrelay/internal/config"
	"dmrelay/internal/constants"
	"dmrelay/internal/relay"
	"dmrelay/pkg/circuitbreaker"
	apperrors "dmrelay/pkg/errors"
	"dmrelay/pkg/metrics"
)

// Directory reads guild membership over REST. Nothing is cached.
type Directory struct {
	api     restAPI
	guildID string
	cb      *circuitbreaker.Wrapper
}

func NewDirectory(api restAPI, guildID string, cbCfg config.CircuitBreakerConfig) *Directory {
	d := &Directory{
		api:     api,
		guildID: guildID,
	}
	if cbCfg.Enabled {
		cfg := circuitbreaker.FromConfig("discord-directory", cbCfg)
		cfg.IsSuccessful = isBreakerSuccess
		d.cb = circuitbreaker.NewWrapper(cfg)
	}
	return d
}

func (d *Directory) call(ctx context.Context, operation string, fn func() (interface{}, error)) (interface{}, error) {
	start := time.Now()
	wrapped := func() (interface{}, error) {
		result, err := fn()
		return result, translateError(err)
	}

	var (
		result interface{}
		err    error
	)
	if d.cb == nil {
		result, err = wrapped()
	} else {
		result, err = d.cb.ExecuteWithContext(ctx, wrapped)
		d.cb.RecordRequest(isBreakerSuccess(err))
	}

	status := "success"
	switch {
	case err == nil:
	case apperrors.IsNotFound(err):
		status = "not_found"
	default:
		status = "error"
	}
	metrics.ObserveDirectoryRequest(operation, status, time.Since(start))

	return result, err
}

// User looks up a Discord user. Ids that are not snowflakes are reported
// as not found without a request.
func (d *Directory) User(ctx context.Context, id string) (*relay.User, error) {
	if !isSnowflake(id) {
		return nil, apperrors.ErrNotFound.WithDetail("user_id", id)
	}

	result, err := d.call(ctx, "user", func() (interface{}, error) {
		return d.api.User(id, discordgo.WithContext(ctx))
	})
	if err != nil {
		return nil, err
	}

	u, ok := result.(*discordgo.User)
	if !ok || u == nil {
		return nil, apperrors.ErrNotFound.WithDetail("user_id", id)
	}
	return &relay.User{ID: u.ID, Username: u.Username, Bot: u.Bot}, nil
}

// Members pages through the full member list in id order.
func (d *Directory) Members(ctx context.Context) ([]relay.Member, error) {
	var (
		members []relay.Member
		after   string
	)
	for {
		result, err := d.call(ctx, "members", func() (interface{}, error) {
			return d.api.GuildMembers(d.guildID, after, constants.DiscordMemberPageSize, discordgo.WithContext(ctx))
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list guild members: %w", err)
		}

		page, _ := result.([]*discordgo.Member)
		for _, m := range page {
			if m == nil || m.User == nil {
				continue
			}
			members = append(members, relay.Member{
				User:    relay.User{ID: m.User.ID, Username: m.User.Username, Bot: m.User.Bot},
				RoleIDs: m.Roles,
			})
		}

		if len(page) < constants.DiscordMemberPageSize {
			return members, nil
		}
		last := page[len(page)-1]
		if last == nil || last.User == nil {
			return members, nil
		}
		after = last.User.ID
	}
}

func (d *Directory) Roles(ctx context.Context) ([]relay.Role, error) {
	result, err := d.call(ctx, "roles", func() (interface{}, error) {
		return d.api.GuildRoles(d.guildID, discordgo.WithContext(ctx))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list guild roles: %w", err)
	}

	roles, _ := result.([]*discordgo.Role)
	out := make([]relay.Role, 0, len(roles))
	for _, r := range roles {
		if r == nil {
			continue
		}
		out = append(out, relay.Role{
			ID:       r.ID,
			Name:     r.Name,
			Managed:  r.Managed,
			Everyone: r.ID == d.guildID,
		})
	}
	return out, nil
}

func isSnowflake(id string) bool {
	if id == "" {
		return false
	}
	_, err := strconv.ParseUint(id, 10, 64)
	return err == nil
}
