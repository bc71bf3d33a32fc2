package services

import "errors"

// Sentinel errors returned by the service layer. Handlers map these to
// HTTP status codes; everything else surfaces as an internal error.
var (
	// Auth and accounts.
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrEmailExists          = errors.New("email already registered")
	ErrUserNotFound         = errors.New("user not found")
	ErrRecoveryRateLimited  = errors.New("a recovery email was sent recently, please wait before requesting another")
	ErrInvalidRecoveryToken = errors.New("recovery token is invalid or has expired")

	// Workspaces and membership.
	ErrWorkspaceNotFound      = errors.New("workspace not found")
	ErrNotMember              = errors.New("user is not a member of this workspace")
	ErrNotActiveMember        = errors.New("membership is not active")
	ErrDuplicateMember        = errors.New("user is already a member of this workspace")
	ErrMembershipNotPending   = errors.New("membership is not pending")
	ErrCannotRemoveOwner      = errors.New("the workspace owner cannot be removed")
	ErrCannotRemoveSelf       = errors.New("use leave to remove yourself from a workspace")
	ErrOwnerCannotLeave       = errors.New("the workspace owner cannot leave the workspace")
	ErrCannotModifyOwnerRole  = errors.New("the owner role cannot be changed or granted")
	ErrInsufficientRole       = errors.New("insufficient role for this operation")
	ErrInvalidRole            = errors.New("invalid role")
	ErrConcurrentModification = errors.New("workspace was modified concurrently, please retry")

	// Invites.
	ErrInviteNotFound         = errors.New("invite not found")
	ErrInviteInvalidOrExpired = errors.New("invite is invalid or has expired")
	ErrInviteNotPending       = errors.New("invite is not pending")
	ErrAllAlreadyMembers      = errors.New("all invited users are already members")
	ErrInvitesDisabled        = errors.New("invites are disabled for this workspace")
	ErrAlreadyMember          = errors.New("user is already a member")

	// Channels and messages.
	ErrChannelNotFound      = errors.New("channel not found")
	ErrDuplicateChannelName = errors.New("a channel with this name already exists in the workspace")
	ErrCannotDeleteGeneral  = errors.New("the general channel cannot be deleted")
	ErrChannelAccessDenied  = errors.New("you do not have access to this channel")
	ErrMessageNotFound      = errors.New("message not found")

	// Tasks.
	ErrTaskNotFound      = errors.New("task not found")
	ErrInvalidTaskStatus = errors.New("invalid task status")
)
