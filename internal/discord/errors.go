package discord

import (
	"errors"
	"net/http"

	"github.com/bwmarrin/discordgo"

	apperrors "dmrelay/pkg/errors"
)

// JSON error codes returned by the Discord REST API.
const (
	codeUnknownMember      = 10007
	codeUnknownRole        = 10011
	codeUnknownUser        = 10013
	codeMissingAccess      = 50001
	codeCannotMessageUser  = 50007
	codeMissingPermissions = 50013
)

func restErrorCode(restErr *discordgo.RESTError) int {
	if restErr.Message == nil {
		return 0
	}
	return restErr.Message.Code
}

func restStatus(restErr *discordgo.RESTError) int {
	if restErr.Response == nil {
		return 0
	}
	return restErr.Response.StatusCode
}

// translateError maps Discord REST failures onto coded errors. Errors that
// are not REST errors (network, context) are returned unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return err
	}

	switch code := restErrorCode(restErr); {
	case code == codeCannotMessageUser:
		return apperrors.ErrDeliveryFailed.
			WithMessage("recipient does not accept direct messages").
			WithCause(err)
	case code == codeUnknownUser, code == codeUnknownMember, code == codeUnknownRole,
		restStatus(restErr) == http.StatusNotFound:
		return apperrors.ErrNotFound.WithCause(err)
	case code == codeMissingAccess, code == codeMissingPermissions,
		restStatus(restErr) == http.StatusForbidden:
		return apperrors.ErrForbidden.WithCause(err)
	default:
		return err
	}
}

// isBreakerSuccess keeps answers from a healthy API from tripping the
// breaker.
func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	return apperrors.IsNotFound(err) || apperrors.IsDeliveryFailed(err)
}
