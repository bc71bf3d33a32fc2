package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/huddlehq/huddle/backend/internal/middleware"
	"github.com/huddlehq/huddle/backend/internal/services"
	"github.com/huddlehq/huddle/backend/pkg/response"
)

type TaskHandler struct {
	tasks *services.TaskService
}

func NewTaskHandler(tasks *services.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

type createTaskRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"max=2000"`
	ChannelID   *uint  `json:"channel_id"`
	AssigneeID  *uint  `json:"assignee_id"`
}

func (h *TaskHandler) Create(c *gin.Context) {
	workspaceID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := h.tasks.Create(workspaceID, middleware.GetUserID(c), services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		ChannelID:   req.ChannelID,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, task)
}

func (h *TaskHandler) ListForWorkspace(c *gin.Context) {
	workspaceID, ok := paramID(c, "id")
	if !ok {
		return
	}
	tasks, err := h.tasks.ListForWorkspace(workspaceID, middleware.GetUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, tasks)
}

type assignTaskRequest struct {
	AssigneeID *uint `json:"assignee_id"`
}

func (h *TaskHandler) Assign(c *gin.Context) {
	taskID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req assignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := h.tasks.Assign(taskID, middleware.GetUserID(c), req.AssigneeID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, task)
}

type setTaskStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *TaskHandler) SetStatus(c *gin.Context) {
	taskID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req setTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := h.tasks.SetStatus(taskID, middleware.GetUserID(c), req.Status)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, task)
}
