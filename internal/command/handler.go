// Package command implements the /sendmessage slash command flow
// independently of the Discord wire types.
package command

import (
	"context"
	"fmt"
	"strings"

	"dmrelay/internal/logger"
	"dmrelay/internal/relay"
	apperrors "dmrelay/pkg/errors"
	"dmrelay/pkg/metrics"
)

const (
	CommandName        = "sendmessage"
	CommandDescription = "Send a DM to a user, role, or all members"

	ModalID       = "sendmessage_modal"
	ModalTitle    = "Send DM"
	FieldTarget   = "modal_target"
	FieldTargetID = "modal_targetId"
	FieldMessage  = "modal_message"
)

// Target kinds accepted in the modal.
const (
	KindUser = "user"
	KindRole = "role"
	KindAll  = "all"
)

const (
	outcomeSent   = "sent"
	outcomeError  = "error"
	outcomeDenied = "denied"
)

// Sender delivers a payload and waits for every recipient.
type Sender interface {
	Send(ctx context.Context, spec relay.TargetSpec, payload relay.Payload) (int, error)
}

// Submission holds the raw modal fields.
type Submission struct {
	Kind     string
	TargetID string
	Message  string
}

// Reply is shown privately to the invoker.
type Reply struct {
	Success     bool
	Title       string
	Description string
}

type Handler struct {
	sender           Sender
	authorizedRoleID string
	logger           logger.Logger
}

func NewHandler(sender Sender, authorizedRoleID string, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NopLogger()
	}
	return &Handler{
		sender:           sender,
		authorizedRoleID: authorizedRoleID,
		logger:           log,
	}
}

// Authorize reports whether a member holding roleIDs may use the command.
func (h *Handler) Authorize(roleIDs []string) bool {
	if h.authorizedRoleID == "" {
		return false
	}
	for _, id := range roleIDs {
		if id == h.authorizedRoleID {
			return true
		}
	}
	return false
}

// Deny records a refused invocation and returns the permission reply.
func (h *Handler) Deny(ctx context.Context, invokerID string) Reply {
	metrics.IncCommandInteraction(outcomeDenied)
	h.logger.InfowCtx(ctx, "Command denied: missing authorized role", "user_id", invokerID)
	return DeniedReply()
}

func DeniedReply() Reply {
	return Reply{
		Title:       "You do not have permission",
		Description: "You do not have sufficient permissions to send a message.",
	}
}

// ParseTarget validates the target kind (case-insensitive) and id fields.
// Role ids are matched by id, not by name.
func ParseTarget(kind, id string) (relay.TargetSpec, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	id = strings.TrimSpace(id)

	switch kind {
	case KindUser:
		if id == "" {
			return relay.TargetSpec{}, apperrors.ErrInvalidTarget.WithMessage("a user id is required for target type user")
		}
		return relay.Single(id), nil
	case KindRole:
		if id == "" {
			return relay.TargetSpec{}, apperrors.ErrInvalidTarget.WithMessage("a role id is required for target type role")
		}
		return relay.GroupWithID(id), nil
	case KindAll:
		return relay.Everyone(), nil
	default:
		return relay.TargetSpec{}, apperrors.ErrInvalidTarget.
			WithMessage(fmt.Sprintf("invalid target type %q: expected user, role or all", kind)).
			WithDetail("target", kind)
	}
}

// Submit runs a modal submission to completion.
func (h *Handler) Submit(ctx context.Context, sub Submission) Reply {
	spec, err := ParseTarget(sub.Kind, sub.TargetID)
	if err != nil {
		return h.failed(ctx, err)
	}

	payload := relay.Payload{Content: normalizeNewlines(sub.Message)}
	count, err := h.sender.Send(ctx, spec, payload)
	if err != nil {
		return h.failed(ctx, err)
	}

	metrics.IncCommandInteraction(outcomeSent)
	h.logger.InfowCtx(ctx, "Command message sent",
		"target", spec.String(),
		"delivered", count,
	)
	return Reply{
		Success:     true,
		Title:       "Message Sent",
		Description: fmt.Sprintf("Your message has been sent successfully to %d member(s).", count),
	}
}

func (h *Handler) failed(ctx context.Context, err error) Reply {
	metrics.IncCommandInteraction(outcomeError)
	h.logger.WarnwCtx(ctx, "Command send failed", "error", err)
	return Reply{
		Title:       "Error",
		Description: "There was an error sending the message: " + apperrors.Describe(err),
	}
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
