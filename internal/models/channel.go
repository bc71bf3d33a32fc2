package models

import (
	"strconv"
	"strings"
	"time"
)

// Channel types.
const (
	ChannelTypeText      = "TEXT"
	ChannelTypeVoice     = "VOICE"
	ChannelTypeTaskBoard = "TASK_BOARD"
)

// GeneralChannelName is the reserved default channel created with every
// workspace. It cannot be created by hand or deleted.
const GeneralChannelName = "general"

// Channel belongs to a workspace. Names are lowercased and unique among the
// workspace's active channels. AllowedUserIDs and AllowedRoles are stored as
// comma-separated columns; both are only consulted for private channels.
type Channel struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	WorkspaceID uint       `gorm:"index;not null" json:"workspace_id"`
	Workspace   *Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
	Name        string     `gorm:"size:50;not null" json:"name"`
	Description string     `gorm:"size:200" json:"description"`
	Type        string     `gorm:"size:20;default:TEXT" json:"type"`

	IsPrivate      bool   `gorm:"default:false" json:"is_private"`
	AllowedUserIDs string `gorm:"size:2000" json:"allowed_user_ids"`
	AllowedRoles   string `gorm:"size:200" json:"allowed_roles"`

	CreatedBy uint  `gorm:"index;not null" json:"created_by"`
	Creator   *User `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	IsActive  bool  `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Channel) TableName() string { return "channels" }

// AllowedUserIDList parses the comma-separated allow-list.
func (c *Channel) AllowedUserIDList() []uint {
	var ids []uint
	for _, part := range strings.Split(c.AllowedUserIDs, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids
}

// AllowedRoleList parses the comma-separated role allow-list.
func (c *Channel) AllowedRoleList() []string {
	var roles []string
	for _, part := range strings.Split(c.AllowedRoles, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			roles = append(roles, part)
		}
	}
	return roles
}

// CanUserAccess decides read/write access for a user whose workspace
// membership has already been validated. Public channels admit every member;
// private channels admit users on the id allow-list OR whose role is on the
// role allow-list.
func (c *Channel) CanUserAccess(userID uint, userRole string) bool {
	if !c.IsPrivate {
		return true
	}
	for _, id := range c.AllowedUserIDList() {
		if id == userID {
			return true
		}
	}
	if userRole != "" {
		for _, role := range c.AllowedRoleList() {
			if role == userRole {
				return true
			}
		}
	}
	return false
}

// JoinUserIDs serializes a user-id allow-list for storage.
func JoinUserIDs(ids []uint) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatUint(uint64(id), 10))
	}
	return strings.Join(parts, ",")
}

// JoinRoles serializes a role allow-list for storage.
func JoinRoles(roles []string) string {
	return strings.Join(roles, ",")
}
