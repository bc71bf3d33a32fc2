package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/huddlehq/huddle/backend/internal/middleware"
	"github.com/huddlehq/huddle/backend/internal/models"
	"github.com/huddlehq/huddle/backend/internal/services"
	"github.com/huddlehq/huddle/backend/pkg/response"
)

type WorkspaceHandler struct {
	workspaces *services.WorkspaceService
	membership *services.MembershipService
	invites    *services.InviteService
}

func NewWorkspaceHandler(workspaces *services.WorkspaceService, membership *services.MembershipService, invites *services.InviteService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaces: workspaces, membership: membership, invites: invites}
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

type createWorkspaceRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=500"`
}

func (h *WorkspaceHandler) Create(c *gin.Context) {
	var req createWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ws, err := h.workspaces.Create(middleware.GetUserID(c), services.CreateWorkspaceInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, ws)
}

func (h *WorkspaceHandler) List(c *gin.Context) {
	workspaces, err := h.workspaces.ListForUser(middleware.GetUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, workspaces)
}

func (h *WorkspaceHandler) Get(c *gin.Context) {
	workspaceID, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID := middleware.GetUserID(c)

	active, err := h.membership.IsActiveMember(workspaceID, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if !active {
		handleServiceError(c, services.ErrNotMember)
		return
	}

	ws, err := h.workspaces.Get(workspaceID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, ws)
}

// GetBySlug resolves a workspace by its URL slug. Same membership gate
// as Get.
func (h *WorkspaceHandler) GetBySlug(c *gin.Context) {
	ws, err := h.workspaces.GetBySlug(c.Param("slug"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	active, err := h.membership.IsActiveMember(ws.ID, middleware.GetUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if !active {
		handleServiceError(c, services.ErrNotMember)
		return
	}
	response.Success(c, ws)
}

type updateWorkspaceRequest struct {
	Name               *string `json:"name" binding:"omitempty,max=100"`
	Description        *string `json:"description" binding:"omitempty,max=500"`
	AllowInvites       *bool   `json:"allow_invites"`
	AllowMemberInvites *bool   `json:"allow_member_invites"`
}

func (h *WorkspaceHandler) Update(c *gin.Context) {
	workspaceID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req updateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ws, err := h.workspaces.Update(workspaceID, middleware.GetUserID(c), services.UpdateWorkspaceInput{
		Name:               req.Name,
		Description:        req.Description,
		AllowInvites:       req.AllowInvites,
		AllowMemberInvites: req.AllowMemberInvites,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, ws)
}

func (h *WorkspaceHandler) Delete(c *gin.Context) {
	workspaceID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.workspaces.Deactivate(workspaceID, middleware.GetUserID(c)); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Message(c, "workspace deactivated")
}

func (h *WorkspaceHandler) ListMembers(c *gin.Context) {
	workspaceID, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID := middleware.GetUserID(c)

	active, err := h.membership.IsActiveMember(workspaceID, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if !active {
		handleServiceError(c, services.ErrNotMember)
		return
	}

	members, err := h.membership.ListMembers(workspaceID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, members)
}

// CheckMembership resolves the caller's own role and status in a
// workspace, for frontend routing.
func (h *WorkspaceHandler) CheckMembership(c *gin.Context) {
	workspaceID, ok := paramID(c, "id")
	if !ok {
		return
	}
	member, err := h.membership.CheckMembership(workspaceID, middleware.GetUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	status := member.Status
	if member.IsActive() {
		status = models.MemberStatusActive
	}
	response.Success(c, gin.H{"role": member.Role, "status": status})
}

type setRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h *WorkspaceHandler) SetMemberRole(c *gin.Context) {
	workspaceID, ok := paramID(c, "id")
	if !ok {
		return
	}
	targetID, ok := paramID(c, "userId")
	if !ok {
		return
	}
	var req setRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.membership.SetRole(workspaceID, middleware.GetUserID(c), targetID, req.Role); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Message(c, "role updated")
}

func (h *WorkspaceHandler) RemoveMember(c *gin.Context) {
	workspaceID, ok := paramID(c, "id")
	if !ok {
		return
	}
	targetID, ok := paramID(c, "userId")
	if !ok {
		return
	}

	if err := h.membership.RemoveMember(workspaceID, middleware.GetUserID(c), targetID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Message(c, "member removed")
}

func (h *WorkspaceHandler) Leave(c *gin.Context) {
	workspaceID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.membership.Leave(workspaceID, middleware.GetUserID(c)); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Message(c, "left workspace")
}
