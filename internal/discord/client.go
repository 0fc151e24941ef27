// Package discord adapts the Discord gateway and REST API (discordgo) to
// the relay's directory and messenger interfaces and routes the slash
// command interactions.
package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"dmrelay/internal/config"
	"dmrelay/internal/logger"
	"dmrelay/pkg/health"
	"dmrelay/pkg/retry"
)

var ErrGatewayNotReady = errors.New("discord gateway not ready")

type Client struct {
	session *discordgo.Session
	cfg     config.DiscordConfig
	logger  logger.Logger
}

func New(cfg config.DiscordConfig, log logger.Logger) (*Client, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers
	session.ShouldReconnectOnError = true
	if cfg.RequestTimeout > 0 {
		session.Client.Timeout = cfg.RequestTimeout
	}

	c := &Client{
		session: session,
		cfg:     cfg,
		logger:  log,
	}
	session.AddHandler(c.onReady)
	routeLibraryLogs(log)

	return c, nil
}

func (c *Client) onReady(s *discordgo.Session, r *discordgo.Ready) {
	username := ""
	if r.User != nil {
		username = r.User.Username
	}
	c.logger.Infow("Discord gateway ready",
		"user", username,
		"guilds", len(r.Guilds),
	)

	if c.cfg.Activity == "" {
		return
	}
	if err := s.UpdateWatchStatus(0, c.cfg.Activity); err != nil {
		c.logger.Warnw("Failed to set presence", "error", err)
	}
}

// Open connects the gateway, retrying with backoff.
func (c *Client) Open(ctx context.Context) error {
	return retry.Retry(ctx, retry.DefaultPolicy(), c.session.Open, func(attempt int, err error, next time.Duration) {
		c.logger.Warnw("Discord gateway connection failed, retrying",
			"attempt", attempt,
			"next_retry_in", next,
			"error", err,
		)
	})
}

func (c *Client) Close() error {
	return c.session.Close()
}

func (c *Client) Directory(cbCfg config.CircuitBreakerConfig) *Directory {
	return NewDirectory(c.session, c.cfg.GuildID, cbCfg)
}

func (c *Client) Messenger() *Messenger {
	return NewMessenger(c.session)
}

// RegisterCommands publishes the slash command on the configured guild.
func (c *Client) RegisterCommands(ctx context.Context) error {
	return RegisterCommands(ctx, c.session, c.cfg.ApplicationID, c.cfg.GuildID, retry.DefaultPolicy(), c.logger)
}

// HandleInteractions routes gateway interactions to handler.
func (c *Client) HandleInteractions(handler CommandHandler) {
	router := NewInteractionRouter(c.session, handler, c.cfg.RequestTimeout, c.logger)
	c.session.AddHandler(router.Handle)
}

func (c *Client) HealthChecker() health.Checker {
	return health.CheckerFunc{
		CheckerName: "discord",
		Fn: func(context.Context) error {
			c.session.RLock()
			ready := c.session.DataReady
			c.session.RUnlock()
			if !ready {
				return ErrGatewayNotReady
			}
			return nil
		},
	}
}

// routeLibraryLogs sends discordgo's internal logging through log.
func routeLibraryLogs(log logger.Logger) {
	discordgo.Logger = func(level, _ int, format string, a ...interface{}) {
		msg := strings.TrimSpace(fmt.Sprintf(format, a...))
		switch level {
		case discordgo.LogError:
			log.Errorw(msg, "source", "discordgo")
		case discordgo.LogWarning:
			log.Warnw(msg, "source", "discordgo")
		case discordgo.LogInformational:
			log.Infow(msg, "source", "discordgo")
		default:
			log.Debugw(msg, "source", "discordgo")
		}
	}
}
