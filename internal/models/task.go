package models

import (
	"time"
)

// Task statuses.
const (
	TaskStatusTodo       = "TODO"
	TaskStatusInProgress = "IN_PROGRESS"
	TaskStatusDone       = "DONE"
)

// Task is referenced by the deletion cascade: when an account is removed its
// assignments are cleared rather than the tasks being deleted.
type Task struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	WorkspaceID uint   `gorm:"index;not null" json:"workspace_id"`
	ChannelID   *uint  `gorm:"index" json:"channel_id,omitempty"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"size:2000" json:"description"`
	Status      string `gorm:"size:20;default:TODO" json:"status"`
	AssigneeID  *uint  `gorm:"index" json:"assignee_id,omitempty"`
	CreatedBy   uint   `gorm:"index;not null" json:"created_by"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Task) TableName() string { return "tasks" }
