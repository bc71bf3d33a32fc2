package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/huddlehq/huddle/backend/internal/middleware"
	"github.com/huddlehq/huddle/backend/internal/services"
	"github.com/huddlehq/huddle/backend/pkg/response"
)

type ChannelHandler struct {
	channels *services.ChannelService
}

func NewChannelHandler(channels *services.ChannelService) *ChannelHandler {
	return &ChannelHandler{channels: channels}
}

type createChannelRequest struct {
	Name           string   `json:"name" binding:"required,max=50"`
	Description    string   `json:"description" binding:"max=200"`
	Type           string   `json:"type"`
	IsPrivate      bool     `json:"is_private"`
	AllowedUserIDs []uint   `json:"allowed_user_ids"`
	AllowedRoles   []string `json:"allowed_roles"`
}

func (h *ChannelHandler) Create(c *gin.Context) {
	workspaceID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req createChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	channel, err := h.channels.Create(workspaceID, middleware.GetUserID(c), services.CreateChannelInput{
		Name:           req.Name,
		Description:    req.Description,
		Type:           req.Type,
		IsPrivate:      req.IsPrivate,
		AllowedUserIDs: req.AllowedUserIDs,
		AllowedRoles:   req.AllowedRoles,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, channel)
}

func (h *ChannelHandler) ListForWorkspace(c *gin.Context) {
	workspaceID, ok := paramID(c, "id")
	if !ok {
		return
	}
	channels, err := h.channels.ListForWorkspace(workspaceID, middleware.GetUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, channels)
}

func (h *ChannelHandler) Get(c *gin.Context) {
	channelID, ok := paramID(c, "id")
	if !ok {
		return
	}
	channel, err := h.channels.Get(channelID, middleware.GetUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, channel)
}

type updateChannelRequest struct {
	Description    *string  `json:"description" binding:"omitempty,max=200"`
	IsPrivate      *bool    `json:"is_private"`
	AllowedUserIDs []uint   `json:"allowed_user_ids"`
	AllowedRoles   []string `json:"allowed_roles"`
	SetAllowLists  bool     `json:"set_allow_lists"`
}

func (h *ChannelHandler) Update(c *gin.Context) {
	channelID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req updateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	channel, err := h.channels.Update(channelID, middleware.GetUserID(c), services.UpdateChannelInput{
		Description:    req.Description,
		IsPrivate:      req.IsPrivate,
		AllowedUserIDs: req.AllowedUserIDs,
		AllowedRoles:   req.AllowedRoles,
		SetAllowLists:  req.SetAllowLists,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, channel)
}

func (h *ChannelHandler) Delete(c *gin.Context) {
	channelID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.channels.Delete(channelID, middleware.GetUserID(c)); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Message(c, "channel deleted")
}

type sendMessageRequest struct {
	Text  string `json:"text" binding:"max=4000"`
	Image string `json:"image" binding:"max=500"`
}

func (h *ChannelHandler) SendMessage(c *gin.Context) {
	channelID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if req.Text == "" && req.Image == "" {
		response.BadRequest(c, "text or image required")
		return
	}

	msg, err := h.channels.SendMessage(channelID, middleware.GetUserID(c), req.Text, req.Image)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, msg)
}

func queryCursor(c *gin.Context) (uint, int) {
	cursor, _ := strconv.ParseUint(c.Query("cursor"), 10, 32)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	return uint(cursor), limit
}

func (h *ChannelHandler) ListMessages(c *gin.Context) {
	channelID, ok := paramID(c, "id")
	if !ok {
		return
	}
	cursor, limit := queryCursor(c)
	messages, err := h.channels.ListMessages(channelID, middleware.GetUserID(c), cursor, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, messages)
}

func (h *ChannelHandler) SendDirectMessage(c *gin.Context) {
	receiverID, ok := paramID(c, "userId")
	if !ok {
		return
	}
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if req.Text == "" && req.Image == "" {
		response.BadRequest(c, "text or image required")
		return
	}

	msg, err := h.channels.SendDirectMessage(middleware.GetUserID(c), receiverID, req.Text, req.Image)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, msg)
}

func (h *ChannelHandler) ListDirectMessages(c *gin.Context) {
	otherID, ok := paramID(c, "userId")
	if !ok {
		return
	}
	cursor, limit := queryCursor(c)
	messages, err := h.channels.ListDirectMessages(middleware.GetUserID(c), otherID, cursor, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, messages)
}
