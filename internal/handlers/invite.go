package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/huddlehq/huddle/backend/internal/middleware"
	"github.com/huddlehq/huddle/backend/internal/services"
	"github.com/huddlehq/huddle/backend/pkg/response"
)

type InviteHandler struct {
	invites *services.InviteService
}

func NewInviteHandler(invites *services.InviteService) *InviteHandler {
	return &InviteHandler{invites: invites}
}

type issueInvitesRequest struct {
	Emails        []string `json:"emails"`
	UserIDs       []uint   `json:"user_ids"`
	Role          string   `json:"role"`
	CustomMessage string   `json:"custom_message" binding:"max=500"`
}

// Issue creates invites for a workspace, by email or by user id. The
// two paths can be mixed in one request.
func (h *InviteHandler) Issue(c *gin.Context) {
	workspaceID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req issueInvitesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if len(req.Emails) == 0 && len(req.UserIDs) == 0 {
		response.BadRequest(c, "emails or user_ids required")
		return
	}

	inviterID := middleware.GetUserID(c)
	combined := &services.InviteResult{}

	if len(req.Emails) > 0 {
		result, err := h.invites.IssueByEmails(workspaceID, inviterID, req.Emails, req.Role, req.CustomMessage)
		if err != nil && err != services.ErrAllAlreadyMembers {
			handleServiceError(c, err)
			return
		}
		combined.Invited = append(combined.Invited, result.Invited...)
		combined.Skipped = append(combined.Skipped, result.Skipped...)
	}
	if len(req.UserIDs) > 0 {
		result, err := h.invites.IssueByUserIDs(workspaceID, inviterID, req.UserIDs, req.Role, req.CustomMessage)
		if err != nil && err != services.ErrAllAlreadyMembers {
			handleServiceError(c, err)
			return
		}
		combined.Invited = append(combined.Invited, result.Invited...)
		combined.Skipped = append(combined.Skipped, result.Skipped...)
	}

	if len(combined.Invited) == 0 && len(combined.Skipped) > 0 {
		handleServiceError(c, services.ErrAllAlreadyMembers)
		return
	}
	response.Created(c, combined)
}

// ListForWorkspace returns a workspace's invites for admins.
func (h *InviteHandler) ListForWorkspace(c *gin.Context) {
	workspaceID, ok := paramID(c, "id")
	if !ok {
		return
	}
	invites, err := h.invites.ListForWorkspace(workspaceID, middleware.GetUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, invites)
}

// ListMine returns the caller's own pending invites.
func (h *InviteHandler) ListMine(c *gin.Context) {
	invites, err := h.invites.ListPendingForEmail(middleware.GetEmail(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, invites)
}

// Get resolves an invite token for the pre-accept landing page.
func (h *InviteHandler) Get(c *gin.Context) {
	invite, err := h.invites.GetByToken(c.Param("token"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, invite)
}

func (h *InviteHandler) Accept(c *gin.Context) {
	invite, err := h.invites.Accept(c.Param("token"), middleware.GetUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"workspace_id": invite.WorkspaceID, "role": invite.Role})
}

func (h *InviteHandler) Decline(c *gin.Context) {
	if _, err := h.invites.Decline(c.Param("token"), middleware.GetUserID(c)); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Message(c, "invite declined")
}
