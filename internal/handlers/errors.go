package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/huddlehq/huddle/backend/internal/services"
	"github.com/huddlehq/huddle/backend/pkg/logger"
	"github.com/huddlehq/huddle/backend/pkg/response"
)

// handleServiceError maps service sentinels onto the HTTP status
// taxonomy. Unknown errors are logged and surfaced as a generic 500 so
// internals never leak.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrWorkspaceNotFound),
		errors.Is(err, services.ErrChannelNotFound),
		errors.Is(err, services.ErrInviteNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrMessageNotFound):
		response.NotFound(c, err.Error())

	case errors.Is(err, services.ErrInsufficientRole),
		errors.Is(err, services.ErrNotMember),
		errors.Is(err, services.ErrNotActiveMember),
		errors.Is(err, services.ErrChannelAccessDenied),
		errors.Is(err, services.ErrInvitesDisabled):
		response.Forbidden(c, err.Error())

	case errors.Is(err, services.ErrDuplicateMember),
		errors.Is(err, services.ErrAlreadyMember),
		errors.Is(err, services.ErrAllAlreadyMembers),
		errors.Is(err, services.ErrDuplicateChannelName),
		errors.Is(err, services.ErrEmailExists),
		errors.Is(err, services.ErrConcurrentModification):
		response.Conflict(c, err.Error())

	case errors.Is(err, services.ErrInvalidCredentials):
		response.Unauthorized(c, err.Error())

	case errors.Is(err, services.ErrRecoveryRateLimited):
		response.TooManyRequests(c, err.Error())

	case errors.Is(err, services.ErrInviteInvalidOrExpired),
		errors.Is(err, services.ErrInviteNotPending),
		errors.Is(err, services.ErrMembershipNotPending),
		errors.Is(err, services.ErrCannotRemoveOwner),
		errors.Is(err, services.ErrCannotRemoveSelf),
		errors.Is(err, services.ErrOwnerCannotLeave),
		errors.Is(err, services.ErrCannotModifyOwnerRole),
		errors.Is(err, services.ErrCannotDeleteGeneral),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrInvalidTaskStatus),
		errors.Is(err, services.ErrInvalidRecoveryToken):
		response.BadRequest(c, err.Error())

	default:
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled service error")
		response.ServerError(c, "internal server error")
	}
}
