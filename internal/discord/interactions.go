package discord

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"dmrelay/internal/command"
	"dmrelay/internal/logger"
	apperrors "dmrelay/pkg/errors"
	"dmrelay/pkg/logging"
)

const (
	colorSuccess = 0x00FF00
	colorError   = 0xFF0000
)

// CommandHandler runs the command flow behind the interaction router.
type CommandHandler interface {
	Authorize(roleIDs []string) bool
	Deny(ctx context.Context, invokerID string) command.Reply
	Submit(ctx context.Context, sub command.Submission) command.Reply
}

// InteractionRouter answers the slash command with the modal and the modal
// submission with the delivery result.
type InteractionRouter struct {
	api     interactionAPI
	handler CommandHandler
	logger  logger.Logger
	timeout time.Duration
}

func NewInteractionRouter(api interactionAPI, handler CommandHandler, requestTimeout time.Duration, log logger.Logger) *InteractionRouter {
	if log == nil {
		log = logger.NopLogger()
	}
	return &InteractionRouter{
		api:     api,
		handler: handler,
		logger:  log,
		timeout: requestTimeout,
	}
}

// Handle is registered with Session.AddHandler.
func (r *InteractionRouter) Handle(_ *discordgo.Session, ic *discordgo.InteractionCreate) {
	if ic == nil || ic.Interaction == nil {
		return
	}
	ctx := logging.WithRequestID(context.Background(), uuid.New().String())
	r.Route(ctx, ic.Interaction)
}

// Route dispatches one interaction. Panics are logged, never propagated to
// the gateway event loop.
func (r *InteractionRouter) Route(ctx context.Context, i *discordgo.Interaction) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.ErrorwCtx(ctx, "Interaction handler panicked",
				"interaction_id", i.ID,
				"error", apperrors.RecoverPanic(rec),
			)
		}
	}()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if i.ApplicationCommandData().Name == command.CommandName {
			r.handleCommand(ctx, i)
		}
	case discordgo.InteractionModalSubmit:
		if i.ModalSubmitData().CustomID == command.ModalID {
			r.handleModalSubmit(ctx, i)
		}
	}
}

func (r *InteractionRouter) handleCommand(ctx context.Context, i *discordgo.Interaction) {
	if i.Member == nil || !r.handler.Authorize(i.Member.Roles) {
		reply := r.handler.Deny(ctx, invokerID(i))
		if err := r.respond(ctx, i, ephemeralEmbedResponse(reply)); err != nil {
			r.logger.ErrorwCtx(ctx, "Failed to send permission reply", "error", err)
		}
		return
	}

	if err := r.respond(ctx, i, SendMessageModal()); err != nil {
		r.logger.ErrorwCtx(ctx, "Failed to open send modal", "error", err)
	}
}

func (r *InteractionRouter) handleModalSubmit(ctx context.Context, i *discordgo.Interaction) {
	// the modal is only shown to authorized members, but the submit
	// endpoint is reachable on its own
	if i.Member == nil || !r.handler.Authorize(i.Member.Roles) {
		reply := r.handler.Deny(ctx, invokerID(i))
		if err := r.respond(ctx, i, ephemeralEmbedResponse(reply)); err != nil {
			r.logger.ErrorwCtx(ctx, "Failed to send permission reply", "error", err)
		}
		return
	}

	// deliveries can outlast the three second acknowledgement deadline
	err := r.respond(ctx, i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		r.logger.ErrorwCtx(ctx, "Failed to acknowledge modal submission", "error", err)
		return
	}

	values := ModalValues(i.ModalSubmitData())
	reply := r.handler.Submit(ctx, command.Submission{
		Kind:     values[command.FieldTarget],
		TargetID: values[command.FieldTargetID],
		Message:  values[command.FieldMessage],
	})

	embeds := []*discordgo.MessageEmbed{ReplyEmbed(reply)}
	editCtx, cancel := r.requestContext(ctx)
	defer cancel()
	if _, err := r.api.InteractionResponseEdit(i, &discordgo.WebhookEdit{Embeds: &embeds}, discordgo.WithContext(editCtx)); err != nil {
		r.logger.ErrorwCtx(ctx, "Failed to send command result", "error", translateError(err))
	}
}

func (r *InteractionRouter) respond(ctx context.Context, i *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
	reqCtx, cancel := r.requestContext(ctx)
	defer cancel()
	return translateError(r.api.InteractionRespond(i, resp, discordgo.WithContext(reqCtx)))
}

func (r *InteractionRouter) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func invokerID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func ephemeralEmbedResponse(reply command.Reply) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{ReplyEmbed(reply)},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	}
}

// ReplyEmbed renders a command reply, green on success and red otherwise.
func ReplyEmbed(reply command.Reply) *discordgo.MessageEmbed {
	color := colorError
	if reply.Success {
		color = colorSuccess
	}
	return &discordgo.MessageEmbed{
		Type:        discordgo.EmbedTypeRich,
		Title:       reply.Title,
		Description: reply.Description,
		Color:       color,
	}
}

// SendMessageModal builds the three-field input modal.
func SendMessageModal() *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: command.ModalID,
			Title:    command.ModalTitle,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    command.FieldTarget,
						Label:       "Target type: user / role / all",
						Style:       discordgo.TextInputShort,
						Placeholder: "user | role | all",
						Required:    true,
					},
				}},
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    command.FieldTargetID,
						Label:       "User ID or Role ID (if applicable)",
						Style:       discordgo.TextInputShort,
						Placeholder: "Leave empty if 'all'",
						Required:    false,
					},
				}},
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:  command.FieldMessage,
						Label:     "Enter your message",
						Style:     discordgo.TextInputParagraph,
						Required:  true,
						MaxLength: 2000,
					},
				}},
			},
		},
	}
}

// ModalValues collects text input values by custom id.
func ModalValues(data discordgo.ModalSubmitInteractionData) map[string]string {
	values := make(map[string]string)
	for _, c := range data.Components {
		var children []discordgo.MessageComponent
		switch row := c.(type) {
		case *discordgo.ActionsRow:
			children = row.Components
		case discordgo.ActionsRow:
			children = row.Components
		default:
			continue
		}
		for _, child := range children {
			switch input := child.(type) {
			case *discordgo.TextInput:
				values[input.CustomID] = input.Value
			case discordgo.TextInput:
				values[input.CustomID] = input.Value
			}
		}
	}
	return values
}
