package services

import (
	"gorm.io/gorm"

	"github.com/huddlehq/huddle/backend/internal/models"
)

// TaskService is a thin CRUD layer over workspace tasks. Assignment is
// the interesting part: assignees must be active workspace members, and
// the account deletion cascade clears assignments rather than deleting
// tasks.
type TaskService struct {
	db         *gorm.DB
	membership *MembershipService
}

func NewTaskService(db *gorm.DB, membership *MembershipService) *TaskService {
	return &TaskService{db: db, membership: membership}
}

// CreateTaskInput carries the fields for a new task.
type CreateTaskInput struct {
	Title       string
	Description string
	ChannelID   *uint
	AssigneeID  *uint
}

// Create adds a task. Any active member may create tasks.
func (s *TaskService) Create(workspaceID, actorID uint, input CreateTaskInput) (*models.Task, error) {
	if _, err := s.membership.RequireRole(workspaceID, actorID, models.RoleMember); err != nil {
		return nil, err
	}
	if input.AssigneeID != nil {
		active, err := s.membership.IsActiveMember(workspaceID, *input.AssigneeID)
		if err != nil {
			return nil, err
		}
		if !active {
			return nil, ErrNotMember
		}
	}

	task := models.Task{
		WorkspaceID: workspaceID,
		ChannelID:   input.ChannelID,
		Title:       input.Title,
		Description: input.Description,
		Status:      models.TaskStatusTodo,
		AssigneeID:  input.AssigneeID,
		CreatedBy:   actorID,
	}
	if err := s.db.Create(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// Assign points a task at a member, or clears the assignment when
// assigneeID is nil.
func (s *TaskService) Assign(taskID, actorID uint, assigneeID *uint) (*models.Task, error) {
	var task models.Task
	if err := s.db.First(&task, taskID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	if _, err := s.membership.RequireRole(task.WorkspaceID, actorID, models.RoleMember); err != nil {
		return nil, err
	}
	if assigneeID != nil {
		active, err := s.membership.IsActiveMember(task.WorkspaceID, *assigneeID)
		if err != nil {
			return nil, err
		}
		if !active {
			return nil, ErrNotMember
		}
	}
	if err := s.db.Model(&task).Update("assignee_id", assigneeID).Error; err != nil {
		return nil, err
	}
	task.AssigneeID = assigneeID
	return &task, nil
}

// SetStatus moves a task between TODO, IN_PROGRESS and DONE.
func (s *TaskService) SetStatus(taskID, actorID uint, status string) (*models.Task, error) {
	switch status {
	case models.TaskStatusTodo, models.TaskStatusInProgress, models.TaskStatusDone:
	default:
		return nil, ErrInvalidTaskStatus
	}
	var task models.Task
	if err := s.db.First(&task, taskID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	if _, err := s.membership.RequireRole(task.WorkspaceID, actorID, models.RoleMember); err != nil {
		return nil, err
	}
	if err := s.db.Model(&task).Update("status", status).Error; err != nil {
		return nil, err
	}
	task.Status = status
	return &task, nil
}

// ListForWorkspace returns a workspace's tasks, newest first.
func (s *TaskService) ListForWorkspace(workspaceID, actorID uint) ([]models.Task, error) {
	if _, err := s.membership.RequireRole(workspaceID, actorID, models.RoleMember); err != nil {
		return nil, err
	}
	var tasks []models.Task
	err := s.db.Where("workspace_id = ?", workspaceID).
		Order("created_at DESC").
		Find(&tasks).Error
	return tasks, err
}
