package models

import (
	"time"
)

// Workspace is a tenant container owning channels, tasks and members.
// Revision is an optimistic-concurrency counter: every member-list mutation
// runs as a compare-and-swap against it so concurrent admin actions cannot
// lose updates.
type Workspace struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Slug        string `gorm:"uniqueIndex;size:120;not null" json:"slug"`
	Description string `gorm:"size:500" json:"description"`
	OwnerID     uint   `gorm:"index;not null" json:"owner_id"`
	Owner       *User  `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`

	// Settings
	AllowInvites       bool   `gorm:"default:true" json:"allow_invites"`
	AllowMemberInvites bool   `gorm:"default:false" json:"allow_member_invites"`
	DefaultChannelName string `gorm:"size:50;default:general" json:"default_channel_name"`

	IsActive  bool  `gorm:"default:true" json:"is_active"`
	Revision  int64 `gorm:"not null;default:0" json:"-"`

	Members []WorkspaceMember `gorm:"foreignKey:WorkspaceID" json:"members,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Workspace) TableName() string { return "workspaces" }

// IsMember reports whether userID has an ACTIVE membership. An empty status
// is treated as ACTIVE: rows written before the status column existed carry
// none (legacy shim, see the membership service).
func (w *Workspace) IsMember(userID uint) bool {
	for i := range w.Members {
		m := &w.Members[i]
		if m.UserID == userID && m.IsActive() {
			return true
		}
	}
	return false
}

// MemberRole returns the role of userID's ACTIVE membership, or "" when
// there is none. A pending member holds no role yet, whatever the invite
// promised.
func (w *Workspace) MemberRole(userID uint) string {
	for i := range w.Members {
		m := &w.Members[i]
		if m.UserID == userID && m.IsActive() {
			return m.Role
		}
	}
	return ""
}

// HasPermission reports whether userID holds requiredRole or better.
func (w *Workspace) HasPermission(userID uint, requiredRole string) bool {
	return HasRolePermission(w.MemberRole(userID), requiredRole)
}

// MemberCount counts ACTIVE (or legacy) memberships.
func (w *Workspace) MemberCount() int {
	n := 0
	for i := range w.Members {
		if w.Members[i].Status == "" || w.Members[i].Status == MemberStatusActive {
			n++
		}
	}
	return n
}

// WorkspaceMember is the (workspace, user) relationship carrying role and
// status. At most one row exists per pair.
type WorkspaceMember struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	WorkspaceID uint       `gorm:"uniqueIndex:idx_workspace_user;not null" json:"workspace_id"`
	UserID      uint       `gorm:"uniqueIndex:idx_workspace_user;not null" json:"user_id"`
	User        *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role        string     `gorm:"size:20;default:MEMBER" json:"role"`
	Status      string     `gorm:"size:20;default:ACTIVE" json:"status"`
	JoinedAt    time.Time  `json:"joined_at"`
	InvitedBy   *uint      `json:"invited_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (WorkspaceMember) TableName() string { return "workspace_members" }

// IsActive reports whether the membership counts toward access checks.
func (m *WorkspaceMember) IsActive() bool {
	return m.Status == "" || m.Status == MemberStatusActive
}
