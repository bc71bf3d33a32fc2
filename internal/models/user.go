package models

import (
	"time"
)

// User represents an account. DeletedAt is an explicit soft-delete stamp
// rather than gorm.DeletedAt: soft-deleted rows must stay queryable for the
// recovery flow and the retention sweep.
type User struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Email      string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	FullName   string `gorm:"size:100;not null" json:"full_name"`
	Password   string `gorm:"size:255;not null" json:"-"` // bcrypt hash
	ProfilePic string `gorm:"size:500" json:"profile_pic"`

	// Account recovery (soft-deleted accounts only)
	RecoveryToken        string     `gorm:"size:64;index" json:"-"`
	RecoveryTokenExpires *time.Time `json:"-"`
	RecoveryEmailSent    *time.Time `json:"-"`

	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// IsDeleted reports whether the account has been soft-deleted.
func (u *User) IsDeleted() bool { return u.DeletedAt != nil }
