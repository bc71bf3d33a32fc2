package models

import (
	"time"
)

// Invite statuses. Expiry is lazy: a PENDING invite past ExpiresAt is
// treated as invalid on read, the EXPIRED status is never written back.
const (
	InviteStatusPending  = "PENDING"
	InviteStatusAccepted = "ACCEPTED"
	InviteStatusDeclined = "DECLINED"
	InviteStatusExpired  = "EXPIRED"
)

// Invite is a tokenized, time-limited offer to join a workspace.
type Invite struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Token       string     `gorm:"uniqueIndex;size:64;not null" json:"token"`
	WorkspaceID uint       `gorm:"index;not null" json:"workspace_id"`
	Workspace   *Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
	InvitedBy   uint       `gorm:"not null" json:"invited_by"`
	Inviter     *User      `gorm:"foreignKey:InvitedBy" json:"inviter,omitempty"`
	Email       string     `gorm:"index;size:255;not null" json:"email"`
	Role        string     `gorm:"size:20;default:MEMBER" json:"role"`
	Status      string     `gorm:"size:20;default:PENDING" json:"status"`
	ExpiresAt   time.Time  `gorm:"index;not null" json:"expires_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	AcceptedBy  *uint      `json:"accepted_by,omitempty"`

	// Set on the direct user-id invite path; that path skips pre-creating a
	// PENDING membership.
	InvitedUserID *uint `json:"invited_user_id,omitempty"`

	CustomMessage string `gorm:"size:500" json:"custom_message"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Invite) TableName() string { return "invites" }

// IsValid reports whether the invite can still be accepted.
func (i *Invite) IsValid(now time.Time) bool {
	return i.Status == InviteStatusPending && i.ExpiresAt.After(now)
}
