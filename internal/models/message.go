package models

import (
	"time"
)

// Message kinds.
const (
	MessageKindText       = "TEXT"
	MessageKindImage      = "IMAGE"
	MessageKindFile       = "FILE"
	MessageKindSystem     = "SYSTEM"
	MessageKindTaskUpdate = "TASK_UPDATE"
)

// Message is either a direct message (ReceiverID set, ChannelID nil) or a
// channel message (ChannelID set). SenderID is nullable: the account
// deletion cascade anonymizes authored channel messages instead of deleting
// them, and repoints direct messages at their receiver with the transfer
// fields recording the original author.
type Message struct {
	ID          uint  `gorm:"primaryKey" json:"id"`
	SenderID    *uint `gorm:"index" json:"sender_id"`
	ReceiverID  *uint `gorm:"index" json:"receiver_id,omitempty"`
	ChannelID   *uint `gorm:"index" json:"channel_id,omitempty"`
	WorkspaceID *uint `gorm:"index" json:"workspace_id,omitempty"`

	Text  string `gorm:"type:text" json:"text"`
	Image string `gorm:"size:500" json:"image,omitempty"`
	Kind  string `gorm:"size:20;default:TEXT" json:"kind"`

	SenderDeleted bool `gorm:"default:false" json:"sender_deleted"`

	// Ownership transfer, set by the hard-delete cascade
	OwnershipTransferred bool       `gorm:"default:false" json:"ownership_transferred"`
	OriginalSenderID     *uint      `json:"original_sender_id,omitempty"`
	TransferredAt        *time.Time `json:"transferred_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Message) TableName() string { return "messages" }

// IsDirect reports whether the message is a direct message.
func (m *Message) IsDirect() bool { return m.ChannelID == nil }
